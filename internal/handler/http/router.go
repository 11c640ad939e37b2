package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/GeekyBear/inventory-api/internal/service"
	"github.com/GeekyBear/inventory-api/pkg/health"
	"github.com/GeekyBear/inventory-api/pkg/middleware"
)

// NewRouter creates a chi router with all inventory routes registered.
func NewRouter(
	productService *service.ProductService,
	categoryService *service.CategoryService,
	healthHandler *health.Handler,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("inventory-api"))

	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	productHandler := NewProductHandler(productService, logger)

	r.Route("/api/v1/products", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Get("/", productHandler.SearchProducts)
		// Fixed paths register before the {id} wildcard.
		r.Get("/suggestions", productHandler.SuggestProducts)
		r.Get("/filters", productHandler.ProductFilters)
		r.Get("/{id}", productHandler.GetProduct)
		r.Post("/", productHandler.CreateProduct)
		r.Put("/{id}", productHandler.UpdateProduct)
		r.Delete("/{id}", productHandler.DeleteProduct)
	})

	categoryHandler := NewCategoryHandler(categoryService, logger)

	r.Route("/api/v1/categories", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Get("/", categoryHandler.SearchCategories)
		r.Get("/suggestions", categoryHandler.SuggestCategories)
		r.Get("/slug/{slug}", categoryHandler.GetCategoryBySlug)
		r.Get("/{id}", categoryHandler.GetCategory)
		r.Post("/", categoryHandler.CreateCategory)
		r.Put("/{id}", categoryHandler.UpdateCategory)
		r.Delete("/{id}", categoryHandler.DeleteCategory)
	})

	return r
}
