package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/GeekyBear/inventory-api/internal/domain"
	"github.com/GeekyBear/inventory-api/internal/repository"
)

const facetsKey = "inventory:facets"

// FacetsCache decorates a FacetsProvider with a Redis read-through cache.
// Facet aggregation scans the whole active product set, so results are kept
// for a short TTL; a cache failure degrades to the underlying provider.
type FacetsCache struct {
	next   repository.FacetsProvider
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewFacetsCache wraps the given provider.
func NewFacetsCache(next repository.FacetsProvider, client *redis.Client, ttl time.Duration, logger *slog.Logger) *FacetsCache {
	return &FacetsCache{
		next:   next,
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

// Facets returns the cached facets when present, otherwise computes and
// stores them.
func (c *FacetsCache) Facets(ctx context.Context) (*domain.ProductFacets, error) {
	data, err := c.client.Get(ctx, facetsKey).Bytes()
	if err == nil {
		var facets domain.ProductFacets
		if err := json.Unmarshal(data, &facets); err == nil {
			return &facets, nil
		}
		// A corrupt entry is recomputed and overwritten below.
	} else if !errors.Is(err, redis.Nil) {
		c.logger.WarnContext(ctx, "facets cache read failed", "error", err)
	}

	facets, err := c.next.Facets(ctx)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(facets); err == nil {
		if err := c.client.Set(ctx, facetsKey, data, c.ttl).Err(); err != nil {
			c.logger.WarnContext(ctx, "facets cache write failed", "error", err)
		}
	}

	return facets, nil
}

// Invalidate drops the cached facets. Called after product or category
// writes so the next read reflects them.
func (c *FacetsCache) Invalidate(ctx context.Context) {
	if err := c.client.Del(ctx, facetsKey).Err(); err != nil {
		c.logger.WarnContext(ctx, "facets cache invalidation failed", "error", err)
	}
}
