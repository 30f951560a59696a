package store

import (
	"context"
	"fmt"
	"time"

	"github.com/go-pkgz/lcw/v2"
)

// Interface is the preference storage Cached wraps.
type Interface interface {
	Get(ctx context.Context, visitor, key string) (string, error)
	Set(ctx context.Context, visitor, key, value string) error
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
	Close() error
}

// Cached wraps a store Interface with a loading cache and satisfies the Interface itself.
// Cache is populated on reads via loader function, invalidated on writes.
// Rendering a page persists the applied theme, so a visitor's theme entry is dropped on every
// view and the cache mostly saves repeated reads within one request cycle.
type Cached struct {
	store Interface
	cache lcw.LoadingCache[string]
}

// NewCached creates a new cached store wrapper.
// maxKeys sets the maximum number of entries in the cache.
func NewCached(store Interface, maxKeys int) (*Cached, error) {
	cache, err := lcw.NewLruCache(lcw.NewOpts[string]().MaxKeys(maxKeys))
	if err != nil {
		return nil, fmt.Errorf("failed to create cache: %w", err)
	}
	return &Cached{store: store, cache: cache}, nil
}

// Get retrieves the visitor's value for key, using cache with load-through.
// Missing entries are not cached.
func (c *Cached) Get(ctx context.Context, visitor, key string) (string, error) {
	value, err := c.cache.Get(cacheKey(visitor, key), func() (string, error) {
		v, loadErr := c.store.Get(ctx, visitor, key)
		if loadErr != nil {
			return "", fmt.Errorf("load from store: %w", loadErr)
		}
		return v, nil
	})
	if err != nil {
		return "", fmt.Errorf("cache get: %w", err)
	}
	return value, nil
}

// Set stores a value and invalidates the cache entry.
func (c *Cached) Set(ctx context.Context, visitor, key, value string) error {
	if err := c.store.Set(ctx, visitor, key, value); err != nil {
		return fmt.Errorf("store set: %w", err)
	}
	ck := cacheKey(visitor, key)
	c.cache.Invalidate(func(k string) bool { return k == ck })
	return nil
}

// DeleteExpired removes preferences not updated since cutoff and purges the whole cache,
// as the removed entries are not known.
func (c *Cached) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	deleted, err := c.store.DeleteExpired(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("store delete expired: %w", err)
	}
	if deleted > 0 {
		c.cache.Purge()
	}
	return deleted, nil
}

// Close closes the cache and underlying store.
func (c *Cached) Close() error {
	_ = c.cache.Close()
	if err := c.store.Close(); err != nil {
		return fmt.Errorf("store close: %w", err)
	}
	return nil
}

// Stats returns cache statistics.
func (c *Cached) Stats() lcw.CacheStat {
	return c.cache.Stat()
}

func cacheKey(visitor, key string) string {
	return visitor + "/" + key
}
