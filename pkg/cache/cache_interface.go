package cache

import (
	"context"
	"time"
)

// Cache is the contract for the read-through cache layer.
// The redis implementation lives in internal/infrastructure/cache.
type Cache interface {
	// Get unmarshals the cached value into dest.
	// Returns (false, nil) on a cache miss; dest is left untouched.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)

	// Set stores value under key with the given TTL.
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	// Delete removes the given keys.
	Delete(ctx context.Context, keys ...string) error

	// Ping verifies the backing store is reachable.
	Ping(ctx context.Context) error
}
