package http

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/GeekyBear/inventory-api/internal/domain"
	"github.com/GeekyBear/inventory-api/internal/event"
	"github.com/GeekyBear/inventory-api/internal/service"
	"github.com/GeekyBear/inventory-api/pkg/health"
	pkgkafka "github.com/GeekyBear/inventory-api/pkg/kafka"
)

type mockProductRepository struct {
	mock.Mock
}

func (m *mockProductRepository) Create(ctx context.Context, product *domain.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *mockProductRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockProductRepository) Update(ctx context.Context, product *domain.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *mockProductRepository) SoftDelete(ctx context.Context, id primitive.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockProductRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockProductRepository) Search(ctx context.Context, query domain.ProductSearchQuery) ([]domain.Product, int64, error) {
	args := m.Called(ctx, query)
	return args.Get(0).([]domain.Product), args.Get(1).(int64), args.Error(2)
}

func (m *mockProductRepository) Suggest(ctx context.Context, text string, limit int) ([]string, error) {
	args := m.Called(ctx, text, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockProductRepository) CountByCategory(ctx context.Context, categoryID primitive.ObjectID) (int64, error) {
	args := m.Called(ctx, categoryID)
	return args.Get(0).(int64), args.Error(1)
}

type mockCategoryRepository struct {
	mock.Mock
}

func (m *mockCategoryRepository) Create(ctx context.Context, category *domain.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

func (m *mockCategoryRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Category), args.Error(1)
}

func (m *mockCategoryRepository) GetBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Category), args.Error(1)
}

func (m *mockCategoryRepository) Update(ctx context.Context, category *domain.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

func (m *mockCategoryRepository) SoftDelete(ctx context.Context, id primitive.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockCategoryRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockCategoryRepository) Search(ctx context.Context, query domain.CategorySearchQuery) ([]domain.Category, int64, error) {
	args := m.Called(ctx, query)
	return args.Get(0).([]domain.Category), args.Get(1).(int64), args.Error(2)
}

func (m *mockCategoryRepository) Suggest(ctx context.Context, text string, limit int) ([]string, error) {
	args := m.Called(ctx, text, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type mockFacetsProvider struct {
	mock.Mock
}

func (m *mockFacetsProvider) Facets(ctx context.Context) (*domain.ProductFacets, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProductFacets), args.Error(1)
}

const testMaxPageSize = 100

func newTestRouter(products *mockProductRepository, categories *mockCategoryRepository, facets *mockFacetsProvider) http.Handler {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	kafkaProducer := pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig([]string{"localhost:9092"}), logger)
	producer := event.NewProducer(kafkaProducer, logger)

	productService := service.NewProductService(products, categories, facets, producer, logger, testMaxPageSize)
	categoryService := service.NewCategoryService(categories, products, producer, logger, testMaxPageSize)

	return NewRouter(productService, categoryService, health.NewHandler(), logger)
}
