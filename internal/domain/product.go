package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultLowStockThreshold is applied when a product is created without an
// explicit threshold.
const DefaultLowStockThreshold = 5

// Product represents a product document in the inventory collection.
// The low-stock state is never stored; it is derived at read time from
// quantity and lowStockThreshold (see LowStock and ProductResponse).
type Product struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name              string             `bson:"name" json:"name"`
	Description       string             `bson:"description" json:"description"`
	Price             float64            `bson:"price" json:"price"`
	SKU               string             `bson:"sku" json:"sku"`
	Quantity          int                `bson:"quantity" json:"quantity"`
	LowStockThreshold int                `bson:"lowStockThreshold" json:"lowStockThreshold"`
	CategoryID        primitive.ObjectID `bson:"categoryId" json:"categoryId"`
	Brand             string             `bson:"brand,omitempty" json:"brand,omitempty"`
	Tags              []string           `bson:"tags" json:"tags"`
	Images            []string           `bson:"images" json:"images"`
	Specifications    map[string]any     `bson:"specifications,omitempty" json:"specifications,omitempty"`
	IsActive          bool               `bson:"isActive" json:"isActive"`
	IsFeatured        bool               `bson:"isFeatured" json:"isFeatured"`
	CreatedAt         time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time          `bson:"updatedAt" json:"updatedAt"`

	// Category is populated by the search pipeline's category join; it is
	// never written back to the products collection.
	Category *Category `bson:"category,omitempty" json:"-"`
}

// LowStock reports whether the product is at or below its low-stock threshold.
func (p *Product) LowStock() bool {
	return p.Quantity <= p.LowStockThreshold
}

// ProductResponse is the public shape of a product. IsLowStock is always
// recomputed at assembly time, and the category is embedded by value only
// when it was resolved.
type ProductResponse struct {
	ID                primitive.ObjectID `json:"id"`
	Name              string             `json:"name"`
	Description       string             `json:"description"`
	Price             float64            `json:"price"`
	SKU               string             `json:"sku"`
	Quantity          int                `json:"quantity"`
	LowStockThreshold int                `json:"lowStockThreshold"`
	CategoryID        primitive.ObjectID `json:"categoryId"`
	Brand             string             `json:"brand,omitempty"`
	Tags              []string           `json:"tags"`
	Images            []string           `json:"images"`
	Specifications    map[string]any     `json:"specifications,omitempty"`
	IsActive          bool               `json:"isActive"`
	IsFeatured        bool               `json:"isFeatured"`
	IsLowStock        bool               `json:"isLowStock"`
	CreatedAt         time.Time          `json:"createdAt"`
	UpdatedAt         time.Time          `json:"updatedAt"`
	Category          *Category          `json:"category,omitempty"`
}

// NewProductResponse maps a stored product into its public shape,
// recomputing the low-stock flag.
func NewProductResponse(p *Product) ProductResponse {
	resp := ProductResponse{
		ID:                p.ID,
		Name:              p.Name,
		Description:       p.Description,
		Price:             p.Price,
		SKU:               p.SKU,
		Quantity:          p.Quantity,
		LowStockThreshold: p.LowStockThreshold,
		CategoryID:        p.CategoryID,
		Brand:             p.Brand,
		Tags:              p.Tags,
		Images:            p.Images,
		Specifications:    p.Specifications,
		IsActive:          p.IsActive,
		IsFeatured:        p.IsFeatured,
		IsLowStock:        p.LowStock(),
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
		Category:          p.Category,
	}

	if resp.Tags == nil {
		resp.Tags = []string{}
	}
	if resp.Images == nil {
		resp.Images = []string{}
	}

	return resp
}
