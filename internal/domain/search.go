package domain

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Sort keys accepted by the search endpoints.
const (
	SortRelevance = "relevance"
	SortPrice     = "price"
	SortName      = "name"
	SortCreatedAt = "createdAt"
	SortQuantity  = "quantity"
)

// Sort directions.
const (
	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// ProductSortKeys returns the sort keys valid for product search.
func ProductSortKeys() []string {
	return []string{SortRelevance, SortPrice, SortName, SortCreatedAt, SortQuantity}
}

// CategorySortKeys returns the sort keys valid for category search.
func CategorySortKeys() []string {
	return []string{SortRelevance, SortName, SortCreatedAt}
}

// ProductSearchQuery holds the full set of filter, sort, and pagination
// parameters for one product search request. The HTTP layer populates
// defaults before the query reaches the repository, so the predicate builder
// never distinguishes "omitted" from "explicitly set to the default":
// IsActive is a non-nil pointer to true unless the caller passed false.
type ProductSearchQuery struct {
	// Query is matched case-insensitively as a substring against name,
	// description, brand, sku, and tag values (OR semantics).
	Query string

	// Per-field substring filters (AND semantics across fields).
	Name        string
	Description string
	Brand       string
	SKU         string

	CategoryID *primitive.ObjectID

	MinPrice    *float64
	MaxPrice    *float64
	MinQuantity *int
	MaxQuantity *int

	// Tags matches if ANY supplied tag substring matches ANY stored tag.
	Tags []string

	IsActive   *bool
	IsFeatured *bool
	IsLowStock *bool

	// Specifications is free text matched against the stringified values of
	// the specifications map. It joins the general-text OR group rather than
	// filtering independently.
	Specifications string

	SortBy    string
	SortOrder string

	Page  int
	Limit int
}

// HasTextQuery reports whether the general-text OR group will be non-empty.
func (q *ProductSearchQuery) HasTextQuery() bool {
	return q.Query != ""
}

// CategorySearchQuery holds the parameters for one category search request.
type CategorySearchQuery struct {
	// Query is matched case-insensitively against name and description.
	Query string

	Name        string
	Description string

	IsActive *bool

	SortBy    string
	SortOrder string

	Page  int
	Limit int
}

// ProductFacets summarizes the filterable dimensions of the active product
// set for client-side filter UIs.
type ProductFacets struct {
	Brands     []string      `json:"brands"`
	Categories []CategoryRef `json:"categories"`
	PriceRange PriceRange    `json:"priceRange"`
	Tags       []string      `json:"tags"`
}

// PriceRange is the global min/max price over the active product set.
// Both bounds are zero when no active products exist.
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}
