package service

import (
	"context"
	"log/slog"
	"os"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/GeekyBear/inventory-api/internal/domain"
	"github.com/GeekyBear/inventory-api/internal/event"
	pkgkafka "github.com/GeekyBear/inventory-api/pkg/kafka"
)

// --- Mock Repositories ---

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

// --- Test Helpers ---

const testMaxPageSize = 100

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

// newTestProducer returns a producer pointed at a dead broker; publishes
// fail and the services log and continue.
func newTestProducer() *event.Producer {
	logger := newTestLogger()
	kafkaCfg := pkgkafka.DefaultProducerConfig([]string{"localhost:9092"})
	return event.NewProducer(pkgkafka.NewProducer(kafkaCfg, logger), logger)
}

func newTestProductService(products *mockProductRepository, categories *mockCategoryRepository, facets *mockFacetsProvider) *ProductService {
	return NewProductService(products, categories, facets, newTestProducer(), newTestLogger(), testMaxPageSize)
}

func newTestCategoryService(categories *mockCategoryRepository, products *mockProductRepository) *CategoryService {
	return NewCategoryService(categories, products, newTestProducer(), newTestLogger(), testMaxPageSize)
}

func strPtr(s string) *string    { return &s }
func intPtr(i int) *int          { return &i }
func floatPtr(f float64) *float64 { return &f }
func boolPtr(b bool) *bool       { return &b }
