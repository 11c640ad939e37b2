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

// CategoryHandler handles HTTP requests for category endpoints.
type CategoryHandler struct {
	service *service.CategoryService
	logger  *slog.Logger
}

// NewCategoryHandler creates a new category HTTP handler.
func NewCategoryHandler(svc *service.CategoryService, logger *slog.Logger) *CategoryHandler {
	return &CategoryHandler{
		service: svc,
		logger:  logger,
	}
}

// CreateCategoryRequest is the JSON request body for creating a category.
type CreateCategoryRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=100"`
	Description string `json:"description" validate:"required,min=10,max=500"`
	Slug        string `json:"slug" validate:"omitempty,max=100"`
}

// UpdateCategoryRequest is the JSON request body for a partial category
// update.
type UpdateCategoryRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=2,max=100"`
	Description *string `json:"description" validate:"omitempty,min=10,max=500"`
	Slug        *string `json:"slug" validate:"omitempty,max=100"`
	IsActive    *bool   `json:"isActive"`
}

// SearchCategories handles GET /api/v1/categories.
func (h *CategoryHandler) SearchCategories(w http.ResponseWriter, r *http.Request) {
	query, err := parseCategorySearchQuery(r)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	result, err := h.service.SearchCategories(r.Context(), query)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: result})
}

// SuggestCategories handles GET /api/v1/categories/suggestions.
func (h *CategoryHandler) SuggestCategories(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	suggestions, err := h.service.SuggestCategories(r.Context(), r.URL.Query().Get("q"), limit)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: suggestions})
}

// GetCategory handles GET /api/v1/categories/{id}.
func (h *CategoryHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	category, err := h.service.GetCategory(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: category})
}

// GetCategoryBySlug handles GET /api/v1/categories/slug/{slug}.
func (h *CategoryHandler) GetCategoryBySlug(w http.ResponseWriter, r *http.Request) {
	category, err := h.service.GetCategoryBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: category})
}

// CreateCategory handles POST /api/v1/categories.
func (h *CategoryHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CreateCategoryRequest
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

	category, err := h.service.CreateCategory(r.Context(), &service.CreateCategoryInput{
		Name:        req.Name,
		Description: req.Description,
		Slug:        req.Slug,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: category})
}

// UpdateCategory handles PUT /api/v1/categories/{id}.
func (h *CategoryHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	var req UpdateCategoryRequest
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

	category, err := h.service.UpdateCategory(r.Context(), chi.URLParam(r, "id"), &service.UpdateCategoryInput{
		Name:        req.Name,
		Description: req.Description,
		Slug:        req.Slug,
		IsActive:    req.IsActive,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: category})
}

// DeleteCategory handles DELETE /api/v1/categories/{id}. The default is a
// soft delete; ?hard=true removes the record permanently.
func (h *CategoryHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	hard, err := queryBool(r, "hard")
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	if err := h.service.DeleteCategory(r.Context(), chi.URLParam(r, "id"), hard != nil && *hard); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
