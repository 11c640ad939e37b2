package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/GeekyBear/inventory-api/internal/domain"
	"github.com/GeekyBear/inventory-api/internal/event"
	"github.com/GeekyBear/inventory-api/internal/repository"
	apperrors "github.com/GeekyBear/inventory-api/pkg/errors"
	"github.com/GeekyBear/inventory-api/pkg/pagination"
	"github.com/GeekyBear/inventory-api/pkg/slug"
)

// CategoryService implements the business logic for category operations.
type CategoryService struct {
	categories  repository.CategoryRepository
	products    repository.ProductRepository
	producer    *event.Producer
	logger      *slog.Logger
	maxPageSize int
}

// NewCategoryService creates a new category service.
func NewCategoryService(
	categories repository.CategoryRepository,
	products repository.ProductRepository,
	producer *event.Producer,
	logger *slog.Logger,
	maxPageSize int,
) *CategoryService {
	return &CategoryService{
		categories:  categories,
		products:    products,
		producer:    producer,
		logger:      logger,
		maxPageSize: maxPageSize,
	}
}

// CreateCategoryInput holds the parameters for creating a category.
type CreateCategoryInput struct {
	Name        string
	Description string
	Slug        string
}

// UpdateCategoryInput holds the parameters for a partial category update.
type UpdateCategoryInput struct {
	Name        *string
	Description *string
	Slug        *string
	IsActive    *bool
}

// CreateCategory creates a category. The slug is derived from the name when
// not supplied; name and slug uniqueness are enforced by the storage layer.
func (s *CategoryService) CreateCategory(ctx context.Context, input *CreateCategoryInput) (*domain.Category, error) {
	category := &domain.Category{
		Name:        strings.TrimSpace(input.Name),
		Description: strings.TrimSpace(input.Description),
		Slug:        strings.TrimSpace(input.Slug),
		IsActive:    true,
	}
	if category.Slug == "" {
		category.Slug = slug.Generate(category.Name)
	}

	if err := s.categories.Create(ctx, category); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}

	if err := s.producer.PublishCategoryCreated(ctx, category); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish category.created event",
			slog.String("category_id", category.ID.Hex()),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "category created",
		slog.String("category_id", category.ID.Hex()),
		slog.String("slug", category.Slug),
	)

	return category, nil
}

// GetCategory retrieves a category by its ID.
func (s *CategoryService) GetCategory(ctx context.Context, id string) (*domain.Category, error) {
	objectID, err := parseObjectID(id, "id")
	if err != nil {
		return nil, err
	}

	category, err := s.categories.GetByID(ctx, objectID)
	if err != nil {
		return nil, fmt.Errorf("get category by id: %w", err)
	}
	return category, nil
}

// GetCategoryBySlug retrieves a category by its slug.
func (s *CategoryService) GetCategoryBySlug(ctx context.Context, categorySlug string) (*domain.Category, error) {
	category, err := s.categories.GetBySlug(ctx, categorySlug)
	if err != nil {
		return nil, fmt.Errorf("get category by slug: %w", err)
	}
	return category, nil
}

// UpdateCategory applies a partial update. A renamed category keeps its slug
// unless a new one is supplied explicitly.
func (s *CategoryService) UpdateCategory(ctx context.Context, id string, input *UpdateCategoryInput) (*domain.Category, error) {
	objectID, err := parseObjectID(id, "id")
	if err != nil {
		return nil, err
	}

	category, err := s.categories.GetByID(ctx, objectID)
	if err != nil {
		return nil, fmt.Errorf("get category for update: %w", err)
	}

	if input.Name != nil {
		category.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		category.Description = strings.TrimSpace(*input.Description)
	}
	if input.Slug != nil {
		category.Slug = slug.Generate(*input.Slug)
	}
	if input.IsActive != nil {
		category.IsActive = *input.IsActive
	}

	if err := s.categories.Update(ctx, category); err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}

	if err := s.producer.PublishCategoryUpdated(ctx, category); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish category.updated event",
			slog.String("category_id", category.ID.Hex()),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "category updated",
		slog.String("category_id", category.ID.Hex()),
		slog.String("slug", category.Slug),
	)

	return category, nil
}

// DeleteCategory soft-deletes by default; hard removes the record. Either
// way, a category still referenced by active products is not deletable.
func (s *CategoryService) DeleteCategory(ctx context.Context, id string, hard bool) error {
	objectID, err := parseObjectID(id, "id")
	if err != nil {
		return err
	}

	if _, err := s.categories.GetByID(ctx, objectID); err != nil {
		return fmt.Errorf("get category for delete: %w", err)
	}

	count, err := s.products.CountByCategory(ctx, objectID)
	if err != nil {
		return fmt.Errorf("count products in category: %w", err)
	}
	if count > 0 {
		return apperrors.Conflict(fmt.Sprintf("category has %d active products", count))
	}

	if hard {
		err = s.categories.Delete(ctx, objectID)
	} else {
		err = s.categories.SoftDelete(ctx, objectID)
	}
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}

	if err := s.producer.PublishCategoryDeleted(ctx, id, hard); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish category.deleted event",
			slog.String("category_id", id),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "category deleted",
		slog.String("category_id", id),
		slog.Bool("hard", hard),
	)

	return nil
}

// SearchCategories runs the filtered category listing with pagination.
func (s *CategoryService) SearchCategories(ctx context.Context, query domain.CategorySearchQuery) (*pagination.Result[domain.Category], error) {
	if query.Limit > s.maxPageSize {
		query.Limit = s.maxPageSize
	}
	params := pagination.New(query.Page, query.Limit)
	query.Page = params.Page
	query.Limit = params.Limit

	categories, total, err := s.categories.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search categories: %w", err)
	}

	result := pagination.NewResult(categories, total, params)
	return &result, nil
}

// SuggestCategories returns autocomplete candidates from category names.
func (s *CategoryService) SuggestCategories(ctx context.Context, text string, limit int) ([]string, error) {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) < minSuggestionLength {
		return []string{}, nil
	}

	if limit < 1 {
		limit = defaultSuggestionLimit
	} else if limit > s.maxPageSize {
		limit = s.maxPageSize
	}

	suggestions, err := s.categories.Suggest(ctx, text, limit)
	if err != nil {
		return nil, fmt.Errorf("suggest categories: %w", err)
	}
	if suggestions == nil {
		suggestions = []string{}
	}
	return suggestions, nil
}
