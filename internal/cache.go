package internal

import (
	"context"
	"fmt"
	"time"

	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	common "github.com/peteraglen/task-dispatch/common"
)

// Cache is a thin generic wrapper around a gocache store.
// Read errors are logged and reported as a miss, since a cache read is never
// allowed to fail a request. Explicit deletes do return errors.
type Cache[T any] struct {
	cache     cache.CacheInterface[T]
	keyPrefix string
	logger    common.Logger
}

// NewCache creates a new Cache instance on top of the provided store.
// The key prefix is optional, but useful for namespacing keys in shared stores.
func NewCache[T any](cacheStore store.StoreInterface, keyPrefix string, logger common.Logger) *Cache[T] {
	return &Cache[T]{
		cache:     cache.New[T](cacheStore),
		keyPrefix: keyPrefix,
		logger:    logger,
	}
}

// Get retrieves the item with the given key.
// If the item is not found, or the read fails, it returns a zero value and false.
func (c *Cache[T]) Get(ctx context.Context, key string) (T, bool) {
	key = c.keyPrefix + key

	value, err := c.cache.Get(ctx, key)
	if err != nil {
		if err.Error() == store.NOT_FOUND_ERR {
			return *new(T), false
		}

		c.logger.Errorf("Cache read failed: %s", err)

		return *new(T), false
	}

	return value, true
}

// Set stores an item with the given key and expiration duration.
// Write errors are logged.
func (c *Cache[T]) Set(ctx context.Context, key string, value T, expiration time.Duration) {
	key = c.keyPrefix + key

	if err := c.cache.Set(ctx, key, value, store.WithExpiration(expiration)); err != nil {
		c.logger.Errorf("Cache write failed: %s", err)
	}
}

// Delete removes the item with the given key.
func (c *Cache[T]) Delete(ctx context.Context, key string) error {
	key = c.keyPrefix + key

	if err := c.cache.Delete(ctx, key); err != nil {
		return fmt.Errorf("cache delete failed: %w", err)
	}

	return nil
}
