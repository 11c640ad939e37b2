package mongo

import (
	"context"
	"fmt"
	"sort"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/errgroup"

	"github.com/GeekyBear/inventory-api/internal/domain"
)

// Facets computes the filterable dimensions of the active product set:
// distinct brands, active categories, the global price range, and distinct
// tags. The four aggregates run concurrently.
func (r *ProductRepository) Facets(ctx context.Context) (*domain.ProductFacets, error) {
	facets := &domain.ProductFacets{}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		brands, err := r.distinctStrings(ctx, "brand", bson.M{
			"isActive": true,
			"brand":    bson.M{"$nin": bson.A{nil, ""}},
		})
		facets.Brands = brands
		return err
	})
	g.Go(func() error {
		categories, err := r.activeCategories(ctx)
		facets.Categories = categories
		return err
	})
	g.Go(func() error {
		priceRange, err := r.priceRange(ctx)
		facets.PriceRange = priceRange
		return err
	})
	g.Go(func() error {
		tags, err := r.distinctStrings(ctx, "tags", bson.M{"isActive": true})
		facets.Tags = tags
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return facets, nil
}

// distinctStrings collects the distinct non-empty string values of a field
// over documents matching the filter, sorted ascending.
func (r *ProductRepository) distinctStrings(ctx context.Context, field string, filter bson.M) ([]string, error) {
	raw, err := r.products.Distinct(ctx, field, filter)
	if err != nil {
		return nil, fmt.Errorf("distinct %s: %w", field, err)
	}

	values := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok && s != "" {
			values = append(values, s)
		}
	}
	sort.Strings(values)
	return values, nil
}

// activeCategories lists (id, name) pairs of active categories sorted by name.
func (r *ProductRepository) activeCategories(ctx context.Context) ([]domain.CategoryRef, error) {
	opts := options.Find().
		SetProjection(bson.M{"_id": 1, "name": 1}).
		SetSort(bson.D{{Key: "name", Value: 1}})

	cursor, err := r.categories.Find(ctx, bson.M{"isActive": true}, opts)
	if err != nil {
		return nil, fmt.Errorf("list active categories: %w", err)
	}
	defer cursor.Close(ctx)

	refs := []domain.CategoryRef{}
	if err := cursor.All(ctx, &refs); err != nil {
		return nil, fmt.Errorf("decode category refs: %w", err)
	}
	return refs, nil
}

// priceRange computes the min/max price over active products. With no
// active products both bounds stay zero.
func (r *ProductRepository) priceRange(ctx context.Context) (domain.PriceRange, error) {
	pipeline := []bson.D{
		{{Key: "$match", Value: bson.M{"isActive": true}}},
		{{Key: "$group", Value: bson.M{
			"_id": nil,
			"min": bson.M{"$min": "$price"},
			"max": bson.M{"$max": "$price"},
		}}},
	}

	cursor, err := r.products.Aggregate(ctx, pipeline)
	if err != nil {
		return domain.PriceRange{}, fmt.Errorf("aggregate price range: %w", err)
	}
	defer cursor.Close(ctx)

	var results []domain.PriceRange
	if err := cursor.All(ctx, &results); err != nil {
		return domain.PriceRange{}, fmt.Errorf("decode price range: %w", err)
	}
	if len(results) == 0 {
		return domain.PriceRange{}, nil
	}
	return results[0], nil
}
