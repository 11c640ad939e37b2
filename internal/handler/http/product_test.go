package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/GeekyBear/inventory-api/internal/domain"
	apperrors "github.com/GeekyBear/inventory-api/pkg/errors"
)

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder, data any) {
	t.Helper()
	var envelope struct {
		Data  json.RawMessage `json:"data"`
		Error *struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	if data != nil {
		require.NotNil(t, envelope.Data, "expected data in envelope, got error: %v", envelope.Error)
		require.NoError(t, json.Unmarshal(envelope.Data, data))
	}
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var envelope struct {
		Error *struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
	return envelope.Error.Code
}

func TestSearchProducts_DefaultsMadeExplicit(t *testing.T) {
	products := new(mockProductRepository)
	router := newTestRouter(products, new(mockCategoryRepository), new(mockFacetsProvider))

	products.On("Search", mock.Anything, mock.MatchedBy(func(q domain.ProductSearchQuery) bool {
		return q.IsActive != nil && *q.IsActive &&
			q.Page == 1 && q.Limit == 10 &&
			q.IsFeatured == nil && q.IsLowStock == nil
	})).Return([]domain.Product{}, int64(0), nil)

	rec := doJSON(t, router, http.MethodGet, "/api/v1/products", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	products.AssertExpectations(t)
}

func TestSearchProducts_ExplicitInactiveIncluded(t *testing.T) {
	products := new(mockProductRepository)
	router := newTestRouter(products, new(mockCategoryRepository), new(mockFacetsProvider))

	products.On("Search", mock.Anything, mock.MatchedBy(func(q domain.ProductSearchQuery) bool {
		return q.IsActive != nil && !*q.IsActive
	})).Return([]domain.Product{}, int64(0), nil)

	rec := doJSON(t, router, http.MethodGet, "/api/v1/products?isActive=false", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	products.AssertExpectations(t)
}

func TestSearchProducts_FiltersParsed(t *testing.T) {
	products := new(mockProductRepository)
	router := newTestRouter(products, new(mockCategoryRepository), new(mockFacetsProvider))

	categoryID := primitive.NewObjectID()
	products.On("Search", mock.Anything, mock.MatchedBy(func(q domain.ProductSearchQuery) bool {
		return q.Query == "laptop" &&
			q.CategoryID != nil && *q.CategoryID == categoryID &&
			q.MinPrice != nil && *q.MinPrice == 100 &&
			q.MaxPrice != nil && *q.MaxPrice == 2000 &&
			len(q.Tags) == 2 && q.Tags[0] == "gaming" && q.Tags[1] == "rgb" &&
			q.SortBy == "price" && q.SortOrder == "asc"
	})).Return([]domain.Product{}, int64(0), nil)

	path := fmt.Sprintf("/api/v1/products?q=laptop&categoryId=%s&minPrice=100&maxPrice=2000&tags=gaming,rgb&sortBy=price&order=asc", categoryID.Hex())
	rec := doJSON(t, router, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	products.AssertExpectations(t)
}

func TestSearchProducts_PaginationEnvelope(t *testing.T) {
	products := new(mockProductRepository)
	router := newTestRouter(products, new(mockCategoryRepository), new(mockFacetsProvider))

	stored := []domain.Product{
		{ID: primitive.NewObjectID(), Name: "Widget", Quantity: 1, LowStockThreshold: 5},
	}
	products.On("Search", mock.Anything, mock.Anything).Return(stored, int64(21), nil)

	rec := doJSON(t, router, http.MethodGet, "/api/v1/products?page=2&limit=10", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var result struct {
		Data []struct {
			Name       string `json:"name"`
			IsLowStock bool   `json:"isLowStock"`
		} `json:"data"`
		Total      int64 `json:"total"`
		TotalPages int   `json:"totalPages"`
		HasNext    bool  `json:"hasNext"`
		HasPrev    bool  `json:"hasPrev"`
	}
	decodeEnvelope(t, rec, &result)

	require.Len(t, result.Data, 1)
	assert.True(t, result.Data[0].IsLowStock)
	assert.Equal(t, int64(21), result.Total)
	assert.Equal(t, 3, result.TotalPages)
	assert.True(t, result.HasNext)
	assert.True(t, result.HasPrev)
}

func TestSearchProducts_InvalidNumberRejected(t *testing.T) {
	router := newTestRouter(new(mockProductRepository), new(mockCategoryRepository), new(mockFacetsProvider))

	rec := doJSON(t, router, http.MethodGet, "/api/v1/products?minPrice=abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_INPUT", errorCode(t, rec))
}

func TestGetProduct_NotFound(t *testing.T) {
	products := new(mockProductRepository)
	router := newTestRouter(products, new(mockCategoryRepository), new(mockFacetsProvider))

	id := primitive.NewObjectID()
	products.On("GetByID", mock.Anything, id).Return(nil, apperrors.NotFound("product", id.Hex()))

	rec := doJSON(t, router, http.MethodGet, "/api/v1/products/"+id.Hex(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", errorCode(t, rec))
}

func TestGetProduct_MalformedID(t *testing.T) {
	router := newTestRouter(new(mockProductRepository), new(mockCategoryRepository), new(mockFacetsProvider))

	rec := doJSON(t, router, http.MethodGet, "/api/v1/products/not-hex", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateProduct_Success(t *testing.T) {
	products := new(mockProductRepository)
	categories := new(mockCategoryRepository)
	router := newTestRouter(products, categories, new(mockFacetsProvider))

	category := &domain.Category{ID: primitive.NewObjectID(), Name: "Electronics", IsActive: true}
	categories.On("GetByID", mock.Anything, category.ID).Return(category, nil)
	products.On("Create", mock.Anything, mock.AnythingOfType("*domain.Product")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*domain.Product).ID = primitive.NewObjectID()
		}).
		Return(nil)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/products", map[string]any{
		"name":        "MacBook Pro 16-inch",
		"description": "Apple laptop with M2 chip and 16-inch display",
		"price":       2499.99,
		"sku":         "mbp16-m2-512",
		"quantity":    25,
		"categoryId":  category.ID.Hex(),
		"brand":       "Apple",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created struct {
		SKU               string `json:"sku"`
		LowStockThreshold int    `json:"lowStockThreshold"`
		IsActive          bool   `json:"isActive"`
	}
	decodeEnvelope(t, rec, &created)
	assert.Equal(t, "MBP16-M2-512", created.SKU)
	assert.Equal(t, 5, created.LowStockThreshold)
	assert.True(t, created.IsActive)
}

func TestCreateProduct_ValidationErrors(t *testing.T) {
	router := newTestRouter(new(mockProductRepository), new(mockCategoryRepository), new(mockFacetsProvider))

	rec := doJSON(t, router, http.MethodPost, "/api/v1/products", map[string]any{
		"name":        "x",
		"description": "too short",
		"price":       -1,
		"sku":         "",
		"categoryId":  "",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, rec))
}

func TestCreateProduct_DuplicateSKUConflict(t *testing.T) {
	products := new(mockProductRepository)
	categories := new(mockCategoryRepository)
	router := newTestRouter(products, categories, new(mockFacetsProvider))

	category := &domain.Category{ID: primitive.NewObjectID(), Name: "Electronics", IsActive: true}
	categories.On("GetByID", mock.Anything, category.ID).Return(category, nil)
	products.On("Create", mock.Anything, mock.AnythingOfType("*domain.Product")).
		Return(apperrors.AlreadyExists("product", "sku", "MBP16-M2-512"))

	rec := doJSON(t, router, http.MethodPost, "/api/v1/products", map[string]any{
		"name":        "MacBook Pro 16-inch",
		"description": "Apple laptop with M2 chip and 16-inch display",
		"price":       2499.99,
		"sku":         "mbp16-m2-512",
		"quantity":    25,
		"categoryId":  category.ID.Hex(),
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "ALREADY_EXISTS", errorCode(t, rec))
}

func TestCreateProduct_WrongContentType(t *testing.T) {
	router := newTestRouter(new(mockProductRepository), new(mockCategoryRepository), new(mockFacetsProvider))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/products", bytes.NewReader([]byte("name=widget")))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestUpdateProduct_Success(t *testing.T) {
	products := new(mockProductRepository)
	router := newTestRouter(products, new(mockCategoryRepository), new(mockFacetsProvider))

	product := &domain.Product{
		ID:          primitive.NewObjectID(),
		Name:        "Widget",
		Description: "A very useful widget for all purposes",
		Price:       19.99,
		SKU:         "WID-001",
		CategoryID:  primitive.NewObjectID(),
	}
	products.On("GetByID", mock.Anything, product.ID).Return(product, nil)
	products.On("Update", mock.Anything, mock.AnythingOfType("*domain.Product")).Return(nil)

	rec := doJSON(t, router, http.MethodPut, "/api/v1/products/"+product.ID.Hex(), map[string]any{
		"price": 24.99,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var updated struct {
		Price float64 `json:"price"`
		Name  string  `json:"name"`
	}
	decodeEnvelope(t, rec, &updated)
	assert.Equal(t, 24.99, updated.Price)
	assert.Equal(t, "Widget", updated.Name)
}

func TestDeleteProduct_SoftByDefault(t *testing.T) {
	products := new(mockProductRepository)
	router := newTestRouter(products, new(mockCategoryRepository), new(mockFacetsProvider))

	product := &domain.Product{ID: primitive.NewObjectID(), SKU: "WID-001"}
	products.On("GetByID", mock.Anything, product.ID).Return(product, nil)
	products.On("SoftDelete", mock.Anything, product.ID).Return(nil)

	rec := doJSON(t, router, http.MethodDelete, "/api/v1/products/"+product.ID.Hex(), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	products.AssertExpectations(t)
}

func TestDeleteProduct_Hard(t *testing.T) {
	products := new(mockProductRepository)
	router := newTestRouter(products, new(mockCategoryRepository), new(mockFacetsProvider))

	product := &domain.Product{ID: primitive.NewObjectID(), SKU: "WID-001"}
	products.On("GetByID", mock.Anything, product.ID).Return(product, nil)
	products.On("Delete", mock.Anything, product.ID).Return(nil)

	rec := doJSON(t, router, http.MethodDelete, "/api/v1/products/"+product.ID.Hex()+"?hard=true", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	products.AssertExpectations(t)
}

func TestSuggestProducts(t *testing.T) {
	products := new(mockProductRepository)
	router := newTestRouter(products, new(mockCategoryRepository), new(mockFacetsProvider))

	products.On("Suggest", mock.Anything, "lap", 10).Return([]string{"Laptop Stand", "Laptop Pro"}, nil)

	rec := doJSON(t, router, http.MethodGet, "/api/v1/products/suggestions?q=lap", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var suggestions []string
	decodeEnvelope(t, rec, &suggestions)
	assert.Equal(t, []string{"Laptop Stand", "Laptop Pro"}, suggestions)
}

func TestSuggestProducts_ShortQueryEmpty(t *testing.T) {
	products := new(mockProductRepository)
	router := newTestRouter(products, new(mockCategoryRepository), new(mockFacetsProvider))

	rec := doJSON(t, router, http.MethodGet, "/api/v1/products/suggestions?q=l", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// An empty data slice is dropped from the envelope by omitempty.
	var envelope struct {
		Data []string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Empty(t, envelope.Data)
	products.AssertNotCalled(t, "Suggest", mock.Anything, mock.Anything, mock.Anything)
}

func TestProductFilters(t *testing.T) {
	facets := new(mockFacetsProvider)
	router := newTestRouter(new(mockProductRepository), new(mockCategoryRepository), facets)

	facets.On("Facets", mock.Anything).Return(&domain.ProductFacets{
		Brands:     []string{"Acme"},
		Categories: []domain.CategoryRef{},
		PriceRange: domain.PriceRange{Min: 5, Max: 100},
		Tags:       []string{"gaming"},
	}, nil)

	rec := doJSON(t, router, http.MethodGet, "/api/v1/products/filters", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var result struct {
		Brands     []string `json:"brands"`
		PriceRange struct {
			Min float64 `json:"min"`
			Max float64 `json:"max"`
		} `json:"priceRange"`
	}
	decodeEnvelope(t, rec, &result)
	assert.Equal(t, []string{"Acme"}, result.Brands)
	assert.Equal(t, 5.0, result.PriceRange.Min)
	assert.Equal(t, 100.0, result.PriceRange.Max)
}
