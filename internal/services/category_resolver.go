package services

import (
	"context"
	"errors"
	"time"

	"wallet/internal/cache"
	"wallet/internal/core"
	"wallet/internal/storage"
)

type cachedCategory struct {
	category core.Category
	found    bool
}

// CachedCategoryResolver memoises category lookups, including misses.
type CachedCategoryResolver struct {
	next  storage.CategoryResolver
	cache *cache.LRUCache[int64, cachedCategory]
}

func NewCachedCategoryResolver(next storage.CategoryResolver, size int, ttl time.Duration) *CachedCategoryResolver {
	return &CachedCategoryResolver{
		next:  next,
		cache: cache.NewLRUCache[int64, cachedCategory](size, ttl),
	}
}

func (r *CachedCategoryResolver) ResolveCategory(ctx context.Context, id int64) (core.Category, error) {
	if hit, ok := r.cache.Get(id); ok {
		if !hit.found {
			return core.Category{}, core.ErrCategoryNotFound
		}
		return hit.category, nil
	}

	c, err := r.next.ResolveCategory(ctx, id)
	switch {
	case errors.Is(err, core.ErrCategoryNotFound):
		r.cache.Set(id, cachedCategory{})
		return core.Category{}, err
	case err != nil:
		return core.Category{}, err
	}
	r.cache.Set(id, cachedCategory{category: c, found: true})
	return c, nil
}

// Invalidate drops id so the next lookup hits the store.
func (r *CachedCategoryResolver) Invalidate(id int64) {
	r.cache.Delete(id)
}

// Cache exposes the underlying cache for registration with a cache.Manager.
func (r *CachedCategoryResolver) Cache() cache.Cleaner {
	return r.cache
}

func (r *CachedCategoryResolver) Stats() cache.Stats {
	return r.cache.Stats()
}

// resolveDisplay applies the fixed fallback for missing or unknown categories.
// Any lookup error yields the fallback; the error is returned only for logging.
func resolveDisplay(ctx context.Context, r storage.CategoryResolver, id *int64) (core.Category, error) {
	if id == nil {
		return core.FallbackCategory(), nil
	}
	c, err := r.ResolveCategory(ctx, *id)
	if err != nil {
		return core.FallbackCategory(), err
	}
	return c, nil
}
