package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotFound(t *testing.T) {
	err := NotFound("product", "abc123")

	assert.Equal(t, "NOT_FOUND", err.Code)
	assert.Equal(t, http.StatusNotFound, err.Status)
	assert.Contains(t, err.Message, "product")
	assert.Contains(t, err.Message, "abc123")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestAlreadyExists(t *testing.T) {
	err := AlreadyExists("product", "sku", "WDG-001")

	assert.Equal(t, "ALREADY_EXISTS", err.Code)
	assert.Equal(t, http.StatusConflict, err.Status)
	assert.Contains(t, err.Message, `sku "WDG-001"`)
	assert.True(t, errors.Is(err, ErrAlreadyExists))
}

func TestConflict(t *testing.T) {
	err := Conflict("category has active products")

	assert.Equal(t, "CONFLICT", err.Code)
	assert.Equal(t, http.StatusConflict, err.Status)
	assert.True(t, errors.Is(err, ErrConflict))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"app error", NotFound("product", "x"), http.StatusNotFound},
		{"wrapped app error", fmt.Errorf("search: %w", InvalidInput("bad")), http.StatusBadRequest},
		{"sentinel not found", ErrNotFound, http.StatusNotFound},
		{"sentinel already exists", ErrAlreadyExists, http.StatusConflict},
		{"sentinel conflict", ErrConflict, http.StatusConflict},
		{"sentinel invalid input", ErrInvalidInput, http.StatusBadRequest},
		{"sentinel unavailable", ErrServiceUnavail, http.StatusServiceUnavailable},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, HTTPStatus(tt.err))
		})
	}
}

func TestAppErrorUnwrap(t *testing.T) {
	inner := errors.New("mongo: connection refused")
	err := Internal(inner)

	assert.True(t, errors.Is(err, inner))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(err))
}
