package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"unicode/utf8"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/GeekyBear/inventory-api/internal/domain"
	"github.com/GeekyBear/inventory-api/internal/event"
	"github.com/GeekyBear/inventory-api/internal/repository"
	apperrors "github.com/GeekyBear/inventory-api/pkg/errors"
	"github.com/GeekyBear/inventory-api/pkg/pagination"
)

const (
	defaultSuggestionLimit = 10
	minSuggestionLength    = 2
)

// ProductService implements the business logic for product operations.
type ProductService struct {
	products    repository.ProductRepository
	categories  repository.CategoryRepository
	facets      repository.FacetsProvider
	producer    *event.Producer
	logger      *slog.Logger
	maxPageSize int
}

// NewProductService creates a new product service. maxPageSize caps the
// requested page size for search and suggestion queries.
func NewProductService(
	products repository.ProductRepository,
	categories repository.CategoryRepository,
	facets repository.FacetsProvider,
	producer *event.Producer,
	logger *slog.Logger,
	maxPageSize int,
) *ProductService {
	return &ProductService{
		products:    products,
		categories:  categories,
		facets:      facets,
		producer:    producer,
		logger:      logger,
		maxPageSize: maxPageSize,
	}
}

// CreateProductInput holds the parameters for creating a product.
type CreateProductInput struct {
	Name              string
	Description       string
	Price             float64
	SKU               string
	Quantity          int
	LowStockThreshold *int
	CategoryID        string
	Brand             string
	Tags              []string
	Images            []string
	Specifications    map[string]any
	IsFeatured        bool
}

// UpdateProductInput holds the parameters for a partial product update.
// Nil fields keep their stored value.
type UpdateProductInput struct {
	Name              *string
	Description       *string
	Price             *float64
	SKU               *string
	Quantity          *int
	LowStockThreshold *int
	CategoryID        *string
	Brand             *string
	Tags              []string
	Images            []string
	Specifications    map[string]any
	IsActive          *bool
	IsFeatured        *bool
}

// CreateProduct creates a product after verifying that the referenced
// category exists and is active. The SKU is normalized to uppercase;
// uniqueness is enforced by the storage layer at write time.
func (s *ProductService) CreateProduct(ctx context.Context, input *CreateProductInput) (*domain.ProductResponse, error) {
	categoryID, err := parseObjectID(input.CategoryID, "categoryId")
	if err != nil {
		return nil, err
	}
	if err := validatePrice(input.Price); err != nil {
		return nil, err
	}

	category, err := s.activeCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	threshold := domain.DefaultLowStockThreshold
	if input.LowStockThreshold != nil {
		threshold = *input.LowStockThreshold
	}

	product := &domain.Product{
		Name:              strings.TrimSpace(input.Name),
		Description:       strings.TrimSpace(input.Description),
		Price:             input.Price,
		SKU:               normalizeSKU(input.SKU),
		Quantity:          input.Quantity,
		LowStockThreshold: threshold,
		CategoryID:        categoryID,
		Brand:             strings.TrimSpace(input.Brand),
		Tags:              input.Tags,
		Images:            input.Images,
		Specifications:    input.Specifications,
		IsActive:          true,
		IsFeatured:        input.IsFeatured,
	}
	if product.Tags == nil {
		product.Tags = []string{}
	}
	if product.Images == nil {
		product.Images = []string{}
	}

	if err := s.products.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	if err := s.producer.PublishProductCreated(ctx, product); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product.created event",
			slog.String("product_id", product.ID.Hex()),
			slog.String("error", err.Error()),
		)
		// Event publishing is best-effort; the write already succeeded.
	}
	if product.LowStock() {
		s.notifyLowStock(ctx, product)
	}
	s.invalidateFacets(ctx)

	s.logger.InfoContext(ctx, "product created",
		slog.String("product_id", product.ID.Hex()),
		slog.String("sku", product.SKU),
	)

	product.Category = category
	resp := domain.NewProductResponse(product)
	return &resp, nil
}

// GetProduct retrieves a product by its ID, embedding its category when the
// reference still resolves.
func (s *ProductService) GetProduct(ctx context.Context, id string) (*domain.ProductResponse, error) {
	objectID, err := parseObjectID(id, "id")
	if err != nil {
		return nil, err
	}

	product, err := s.products.GetByID(ctx, objectID)
	if err != nil {
		return nil, fmt.Errorf("get product by id: %w", err)
	}

	if category, err := s.categories.GetByID(ctx, product.CategoryID); err == nil {
		product.Category = category
	}

	resp := domain.NewProductResponse(product)
	return &resp, nil
}

// UpdateProduct applies a partial update. A changed category reference is
// revalidated; a changed SKU is renormalized and rechecked for uniqueness by
// the storage layer. Crossing into low stock publishes a low-stock event.
func (s *ProductService) UpdateProduct(ctx context.Context, id string, input *UpdateProductInput) (*domain.ProductResponse, error) {
	objectID, err := parseObjectID(id, "id")
	if err != nil {
		return nil, err
	}

	product, err := s.products.GetByID(ctx, objectID)
	if err != nil {
		return nil, fmt.Errorf("get product for update: %w", err)
	}
	wasLowStock := product.LowStock()

	if input.Price != nil {
		if err := validatePrice(*input.Price); err != nil {
			return nil, err
		}
		product.Price = *input.Price
	}
	if input.CategoryID != nil {
		categoryID, err := parseObjectID(*input.CategoryID, "categoryId")
		if err != nil {
			return nil, err
		}
		if categoryID != product.CategoryID {
			if _, err := s.activeCategory(ctx, categoryID); err != nil {
				return nil, err
			}
			product.CategoryID = categoryID
		}
	}
	if input.Name != nil {
		product.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		product.Description = strings.TrimSpace(*input.Description)
	}
	if input.SKU != nil {
		product.SKU = normalizeSKU(*input.SKU)
	}
	if input.Quantity != nil {
		product.Quantity = *input.Quantity
	}
	if input.LowStockThreshold != nil {
		product.LowStockThreshold = *input.LowStockThreshold
	}
	if input.Brand != nil {
		product.Brand = strings.TrimSpace(*input.Brand)
	}
	if input.Tags != nil {
		product.Tags = input.Tags
	}
	if input.Images != nil {
		product.Images = input.Images
	}
	if input.Specifications != nil {
		product.Specifications = input.Specifications
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}
	if input.IsFeatured != nil {
		product.IsFeatured = *input.IsFeatured
	}

	if err := s.products.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}

	if err := s.producer.PublishProductUpdated(ctx, product); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product.updated event",
			slog.String("product_id", product.ID.Hex()),
			slog.String("error", err.Error()),
		)
	}
	if !wasLowStock && product.LowStock() {
		s.notifyLowStock(ctx, product)
	}
	s.invalidateFacets(ctx)

	s.logger.InfoContext(ctx, "product updated",
		slog.String("product_id", product.ID.Hex()),
		slog.String("sku", product.SKU),
	)

	resp := domain.NewProductResponse(product)
	return &resp, nil
}

// DeleteProduct soft-deletes by default; hard removes the record permanently.
func (s *ProductService) DeleteProduct(ctx context.Context, id string, hard bool) error {
	objectID, err := parseObjectID(id, "id")
	if err != nil {
		return err
	}

	product, err := s.products.GetByID(ctx, objectID)
	if err != nil {
		return fmt.Errorf("get product for delete: %w", err)
	}

	if hard {
		err = s.products.Delete(ctx, objectID)
	} else {
		err = s.products.SoftDelete(ctx, objectID)
	}
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	if err := s.producer.PublishProductDeleted(ctx, product, hard); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product.deleted event",
			slog.String("product_id", id),
			slog.String("error", err.Error()),
		)
	}
	s.invalidateFacets(ctx)

	s.logger.InfoContext(ctx, "product deleted",
		slog.String("product_id", id),
		slog.Bool("hard", hard),
	)

	return nil
}

// SearchProducts runs the multi-criteria search and assembles responses with
// pagination metadata. The page size is capped at the configured maximum.
func (s *ProductService) SearchProducts(ctx context.Context, query domain.ProductSearchQuery) (*pagination.Result[domain.ProductResponse], error) {
	if query.Limit > s.maxPageSize {
		query.Limit = s.maxPageSize
	}
	params := pagination.New(query.Page, query.Limit)
	query.Page = params.Page
	query.Limit = params.Limit

	products, total, err := s.products.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}

	responses := make([]domain.ProductResponse, 0, len(products))
	for i := range products {
		responses = append(responses, domain.NewProductResponse(&products[i]))
	}

	result := pagination.NewResult(responses, total, params)
	return &result, nil
}

// SuggestProducts returns autocomplete candidates for the given text. Input
// shorter than two characters yields an empty result without touching the
// store.
func (s *ProductService) SuggestProducts(ctx context.Context, text string, limit int) ([]string, error) {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) < minSuggestionLength {
		return []string{}, nil
	}

	limit = s.clampSuggestionLimit(limit)
	suggestions, err := s.products.Suggest(ctx, text, limit)
	if err != nil {
		return nil, fmt.Errorf("suggest products: %w", err)
	}
	if suggestions == nil {
		suggestions = []string{}
	}
	return suggestions, nil
}

// ProductFacets reports the filterable dimensions of the active product set.
func (s *ProductService) ProductFacets(ctx context.Context) (*domain.ProductFacets, error) {
	facets, err := s.facets.Facets(ctx)
	if err != nil {
		return nil, fmt.Errorf("product facets: %w", err)
	}
	return facets, nil
}

func (s *ProductService) clampSuggestionLimit(limit int) int {
	if limit < 1 {
		return defaultSuggestionLimit
	}
	if limit > s.maxPageSize {
		return s.maxPageSize
	}
	return limit
}

// activeCategory resolves a category reference that must exist and be
// active; anything else is invalid input on the product side.
func (s *ProductService) activeCategory(ctx context.Context, id primitive.ObjectID) (*domain.Category, error) {
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.InvalidInput(fmt.Sprintf("category %s does not exist", id.Hex()))
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	if !category.IsActive {
		return nil, apperrors.InvalidInput(fmt.Sprintf("category %s is not active", id.Hex()))
	}
	return category, nil
}

func (s *ProductService) notifyLowStock(ctx context.Context, product *domain.Product) {
	if err := s.producer.PublishLowStock(ctx, product); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product.low_stock event",
			slog.String("product_id", product.ID.Hex()),
			slog.String("error", err.Error()),
		)
	}
}

func (s *ProductService) invalidateFacets(ctx context.Context) {
	if invalidator, ok := s.facets.(repository.FacetsInvalidator); ok {
		invalidator.Invalidate(ctx)
	}
}

func normalizeSKU(sku string) string {
	return strings.ToUpper(strings.TrimSpace(sku))
}

// validatePrice rejects more than two decimal places; range checks happen at
// the transport boundary.
func validatePrice(price float64) error {
	cents := price * 100
	if math.Abs(cents-math.Round(cents)) > 1e-9 {
		return apperrors.InvalidInput("price must have at most 2 decimal places")
	}
	return nil
}

func parseObjectID(id, field string) (primitive.ObjectID, error) {
	objectID, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return primitive.NilObjectID, apperrors.InvalidInput(fmt.Sprintf("%s must be a valid object id", field))
	}
	return objectID, nil
}
