package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/GeekyBear/inventory-api/internal/domain"
)

// ProductRepository defines persistence operations for products.
type ProductRepository interface {
	// Create inserts a new product. A duplicate SKU yields an
	// already-exists error from the store's unique index.
	Create(ctx context.Context, product *domain.Product) error

	// GetByID retrieves a product by its identifier.
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Product, error)

	// Update replaces an existing product document.
	Update(ctx context.Context, product *domain.Product) error

	// SoftDelete marks a product inactive without removing it.
	SoftDelete(ctx context.Context, id primitive.ObjectID) error

	// Delete removes a product permanently.
	Delete(ctx context.Context, id primitive.ObjectID) error

	// Search runs the filtered, sorted, paginated product search and returns
	// the page of matching products (with joined categories) plus the total
	// match count.
	Search(ctx context.Context, query domain.ProductSearchQuery) ([]domain.Product, int64, error)

	// Suggest returns deduplicated autocomplete candidates for the given
	// text, drawn from active product names, brands, and tags.
	Suggest(ctx context.Context, text string, limit int) ([]string, error)

	// CountByCategory counts active products referencing the given category.
	CountByCategory(ctx context.Context, categoryID primitive.ObjectID) (int64, error)
}

// CategoryRepository defines persistence operations for categories.
type CategoryRepository interface {
	// Create inserts a new category. A duplicate name or slug yields an
	// already-exists error from the store's unique index.
	Create(ctx context.Context, category *domain.Category) error

	// GetByID retrieves a category by its identifier.
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Category, error)

	// GetBySlug retrieves a category by its URL-friendly slug.
	GetBySlug(ctx context.Context, slug string) (*domain.Category, error)

	// Update replaces an existing category document.
	Update(ctx context.Context, category *domain.Category) error

	// SoftDelete marks a category inactive without removing it.
	SoftDelete(ctx context.Context, id primitive.ObjectID) error

	// Delete removes a category permanently.
	Delete(ctx context.Context, id primitive.ObjectID) error

	// Search runs the filtered, sorted, paginated category search.
	Search(ctx context.Context, query domain.CategorySearchQuery) ([]domain.Category, int64, error)

	// Suggest returns deduplicated autocomplete candidates drawn from active
	// category names.
	Suggest(ctx context.Context, text string, limit int) ([]string, error)
}

// FacetsProvider computes the available filter dimensions over the active
// product set. Implementations may cache; the mongo implementation scans.
type FacetsProvider interface {
	Facets(ctx context.Context) (*domain.ProductFacets, error)
}

// FacetsInvalidator is implemented by caching facets providers. Services
// type-assert for it after writes that change the facet dimensions.
type FacetsInvalidator interface {
	Invalidate(ctx context.Context)
}
