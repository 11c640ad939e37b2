package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/GeekyBear/inventory-api/internal/service"
	"github.com/GeekyBear/inventory-api/pkg/httputil"
	"github.com/GeekyBear/inventory-api/pkg/validator"
)

// ProductHandler handles HTTP requests for product endpoints.
type ProductHandler struct {
	service *service.ProductService
	logger  *slog.Logger
}

// NewProductHandler creates a new product HTTP handler.
func NewProductHandler(svc *service.ProductService, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// CreateProductRequest is the JSON request body for creating a product.
type CreateProductRequest struct {
	Name              string         `json:"name" validate:"required,min=2,max=200"`
	Description       string         `json:"description" validate:"required,min=10,max=1000"`
	Price             float64        `json:"price" validate:"gte=0,lte=999999.99"`
	SKU               string         `json:"sku" validate:"required,max=50"`
	Quantity          int            `json:"quantity" validate:"gte=0"`
	LowStockThreshold *int           `json:"lowStockThreshold" validate:"omitempty,gte=0"`
	CategoryID        string         `json:"categoryId" validate:"required"`
	Brand             string         `json:"brand" validate:"omitempty,max=100"`
	Tags              []string       `json:"tags"`
	Images            []string       `json:"images" validate:"omitempty,dive,url"`
	Specifications    map[string]any `json:"specifications"`
	IsFeatured        bool           `json:"isFeatured"`
}

// UpdateProductRequest is the JSON request body for a partial product update.
type UpdateProductRequest struct {
	Name              *string        `json:"name" validate:"omitempty,min=2,max=200"`
	Description       *string        `json:"description" validate:"omitempty,min=10,max=1000"`
	Price             *float64       `json:"price" validate:"omitempty,gte=0,lte=999999.99"`
	SKU               *string        `json:"sku" validate:"omitempty,max=50"`
	Quantity          *int           `json:"quantity" validate:"omitempty,gte=0"`
	LowStockThreshold *int           `json:"lowStockThreshold" validate:"omitempty,gte=0"`
	CategoryID        *string        `json:"categoryId"`
	Brand             *string        `json:"brand" validate:"omitempty,max=100"`
	Tags              []string       `json:"tags"`
	Images            []string       `json:"images" validate:"omitempty,dive,url"`
	Specifications    map[string]any `json:"specifications"`
	IsActive          *bool          `json:"isActive"`
	IsFeatured        *bool          `json:"isFeatured"`
}

// --- Handlers ---

// SearchProducts handles GET /api/v1/products.
func (h *ProductHandler) SearchProducts(w http.ResponseWriter, r *http.Request) {
	query, err := parseProductSearchQuery(r)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	result, err := h.service.SearchProducts(r.Context(), query)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: result})
}

// SuggestProducts handles GET /api/v1/products/suggestions.
func (h *ProductHandler) SuggestProducts(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	suggestions, err := h.service.SuggestProducts(r.Context(), r.URL.Query().Get("q"), limit)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: suggestions})
}

// ProductFilters handles GET /api/v1/products/filters.
func (h *ProductHandler) ProductFilters(w http.ResponseWriter, r *http.Request) {
	facets, err := h.service.ProductFacets(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: facets})
}

// GetProduct handles GET /api/v1/products/{id}.
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.service.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: product})
}

// CreateProduct handles POST /api/v1/products.
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_BODY", Message: "request body must be valid JSON"},
		})
		return
	}
	if err := validator.Validate(&req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	product, err := h.service.CreateProduct(r.Context(), &service.CreateProductInput{
		Name:              req.Name,
		Description:       req.Description,
		Price:             req.Price,
		SKU:               req.SKU,
		Quantity:          req.Quantity,
		LowStockThreshold: req.LowStockThreshold,
		CategoryID:        req.CategoryID,
		Brand:             req.Brand,
		Tags:              req.Tags,
		Images:            req.Images,
		Specifications:    req.Specifications,
		IsFeatured:        req.IsFeatured,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: product})
}

// UpdateProduct handles PUT /api/v1/products/{id}.
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var req UpdateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_BODY", Message: "request body must be valid JSON"},
		})
		return
	}
	if err := validator.Validate(&req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	product, err := h.service.UpdateProduct(r.Context(), chi.URLParam(r, "id"), &service.UpdateProductInput{
		Name:              req.Name,
		Description:       req.Description,
		Price:             req.Price,
		SKU:               req.SKU,
		Quantity:          req.Quantity,
		LowStockThreshold: req.LowStockThreshold,
		CategoryID:        req.CategoryID,
		Brand:             req.Brand,
		Tags:              req.Tags,
		Images:            req.Images,
		Specifications:    req.Specifications,
		IsActive:          req.IsActive,
		IsFeatured:        req.IsFeatured,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: product})
}

// DeleteProduct handles DELETE /api/v1/products/{id}. The default is a soft
// delete; ?hard=true removes the record permanently.
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	hard, err := queryBool(r, "hard")
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	if err := h.service.DeleteProduct(r.Context(), chi.URLParam(r, "id"), hard != nil && *hard); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
