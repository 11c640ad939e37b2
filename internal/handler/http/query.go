package http

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/GeekyBear/inventory-api/internal/domain"
	apperrors "github.com/GeekyBear/inventory-api/pkg/errors"
)

// parseProductSearchQuery maps query parameters onto a fully-populated
// search query. Defaults are made explicit here so downstream code never
// distinguishes "omitted" from "set to the default": isActive arrives at the
// predicate builder as a non-nil pointer unless the caller sent isActive
// explicitly.
func parseProductSearchQuery(r *http.Request) (domain.ProductSearchQuery, error) {
	q := domain.ProductSearchQuery{
		Query:          r.URL.Query().Get("q"),
		Name:           r.URL.Query().Get("name"),
		Description:    r.URL.Query().Get("description"),
		Brand:          r.URL.Query().Get("brand"),
		SKU:            r.URL.Query().Get("sku"),
		Specifications: r.URL.Query().Get("specifications"),
		SortBy:         r.URL.Query().Get("sortBy"),
		SortOrder:      r.URL.Query().Get("order"),
	}

	if v := r.URL.Query().Get("categoryId"); v != "" {
		id, err := primitive.ObjectIDFromHex(v)
		if err != nil {
			return q, apperrors.InvalidInput("categoryId must be a valid object id")
		}
		q.CategoryID = &id
	}

	var err error
	if q.MinPrice, err = queryFloat(r, "minPrice"); err != nil {
		return q, err
	}
	if q.MaxPrice, err = queryFloat(r, "maxPrice"); err != nil {
		return q, err
	}
	if q.MinQuantity, err = queryIntPtr(r, "minQuantity"); err != nil {
		return q, err
	}
	if q.MaxQuantity, err = queryIntPtr(r, "maxQuantity"); err != nil {
		return q, err
	}

	if v := r.URL.Query().Get("tags"); v != "" {
		for _, tag := range strings.Split(v, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				q.Tags = append(q.Tags, tag)
			}
		}
	}

	if q.IsActive, err = queryBool(r, "isActive"); err != nil {
		return q, err
	}
	if q.IsActive == nil {
		active := true
		q.IsActive = &active
	}
	if q.IsFeatured, err = queryBool(r, "isFeatured"); err != nil {
		return q, err
	}
	if q.IsLowStock, err = queryBool(r, "isLowStock"); err != nil {
		return q, err
	}

	if q.Page, err = queryInt(r, "page", 1); err != nil {
		return q, err
	}
	if q.Limit, err = queryInt(r, "limit", 10); err != nil {
		return q, err
	}

	return q, nil
}

// parseCategorySearchQuery maps query parameters onto a category search
// query, with the same explicit isActive default as products.
func parseCategorySearchQuery(r *http.Request) (domain.CategorySearchQuery, error) {
	q := domain.CategorySearchQuery{
		Query:       r.URL.Query().Get("q"),
		Name:        r.URL.Query().Get("name"),
		Description: r.URL.Query().Get("description"),
		SortBy:      r.URL.Query().Get("sortBy"),
		SortOrder:   r.URL.Query().Get("order"),
	}

	var err error
	if q.IsActive, err = queryBool(r, "isActive"); err != nil {
		return q, err
	}
	if q.IsActive == nil {
		active := true
		q.IsActive = &active
	}

	if q.Page, err = queryInt(r, "page", 1); err != nil {
		return q, err
	}
	if q.Limit, err = queryInt(r, "limit", 10); err != nil {
		return q, err
	}

	return q, nil
}

func queryInt(r *http.Request, name string, fallback int) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, apperrors.InvalidInput(fmt.Sprintf("%s must be a valid integer", name))
	}
	return n, nil
}

func queryIntPtr(r *http.Request, name string) (*int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil, apperrors.InvalidInput(fmt.Sprintf("%s must be a valid integer", name))
	}
	return &n, nil
}

func queryFloat(r *http.Request, name string) (*float64, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, apperrors.InvalidInput(fmt.Sprintf("%s must be a valid number", name))
	}
	return &f, nil
}

func queryBool(r *http.Request, name string) (*bool, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil, apperrors.InvalidInput(fmt.Sprintf("%s must be true or false", name))
	}
	return &b, nil
}
