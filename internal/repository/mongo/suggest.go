package mongo

import (
	"context"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/errgroup"
)

// Suggest returns autocomplete candidates for the given text, drawn from
// active product names, brands, and tag values. The three lookups run
// concurrently; results merge in that fixed priority order, deduplicate
// case-sensitively on first occurrence, and truncate to limit.
func (r *ProductRepository) Suggest(ctx context.Context, text string, limit int) ([]string, error) {
	var names, brands, tags []string

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		names, err = r.suggestField(ctx, "name", text, limit)
		return err
	})
	g.Go(func() error {
		var err error
		brands, err = r.suggestField(ctx, "brand", text, limit)
		return err
	})
	g.Go(func() error {
		var err error
		tags, err = r.suggestTags(ctx, text, limit)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return mergeSuggestions(limit, names, brands, tags), nil
}

// suggestField collects up to limit distinct-enough values of a scalar
// string field from active products matching the text.
func (r *ProductRepository) suggestField(ctx context.Context, field, text string, limit int) ([]string, error) {
	filter := bson.M{
		"isActive": true,
		field:      containsRegex(text),
	}
	opts := options.Find().
		SetProjection(bson.M{field: 1}).
		SetSort(bson.D{{Key: field, Value: 1}}).
		SetLimit(int64(limit))

	cursor, err := r.products.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("suggest product %s: %w", field, err)
	}
	defer cursor.Close(ctx)

	var values []string
	for cursor.Next(ctx) {
		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode product %s suggestion: %w", field, err)
		}
		if v, ok := doc[field].(string); ok && v != "" {
			values = append(values, v)
		}
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("iterate product %s suggestions: %w", field, err)
	}
	return values, nil
}

// suggestTags collects up to limit tag values containing the text. The
// index-backed filter selects candidate documents; the per-tag containment
// check happens here because a document matches if ANY of its tags match.
func (r *ProductRepository) suggestTags(ctx context.Context, text string, limit int) ([]string, error) {
	filter := bson.M{
		"isActive": true,
		"tags":     containsRegex(text),
	}
	opts := options.Find().
		SetProjection(bson.M{"tags": 1}).
		SetLimit(int64(limit))

	cursor, err := r.products.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("suggest product tags: %w", err)
	}
	defer cursor.Close(ctx)

	needle := strings.ToLower(text)
	var values []string
	for cursor.Next(ctx) {
		var doc struct {
			Tags []string `bson:"tags"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode product tag suggestion: %w", err)
		}
		for _, tag := range doc.Tags {
			if strings.Contains(strings.ToLower(tag), needle) {
				values = append(values, tag)
				if len(values) == limit {
					return values, nil
				}
			}
		}
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("iterate product tag suggestions: %w", err)
	}
	return values, nil
}

// mergeSuggestions concatenates the per-source candidate lists in priority
// order, then deduplicates and truncates.
func mergeSuggestions(limit int, sources ...[]string) []string {
	var merged []string
	for _, source := range sources {
		merged = append(merged, source...)
	}
	return dedupeSuggestions(merged, limit)
}

// dedupeSuggestions removes exact duplicates, keeping first occurrence, and
// truncates to limit. Matching is case-insensitive everywhere upstream, but
// dedupe is deliberately case-sensitive: "Apple" and "apple" are distinct
// suggestions.
func dedupeSuggestions(values []string, limit int) []string {
	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, limit)
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
		if len(result) == limit {
			break
		}
	}
	return result
}
