// Package cache provides the key-value stores that back the manifest cache.
//
// The gateway memoizes every composer.json it reads from GitLab under a key
// derived from the project path and the commit SHA. Content at a fixed
// commit never changes, so entries are written once with no expiry and read
// many times.
//
// # Backends
//
//   - [NullCache]: stores nothing (caching disabled)
//   - [MemoryCache]: process-local map, used by tests and single-instance setups
//   - [FileCache]: one JSON file per key under a directory (default)
//   - [RedisCache]: shared cache for multi-instance deployments
//   - [MongoCache]: shared cache stored in a MongoDB collection
//
// All backends are safe for concurrent use. Concurrent requests that miss on
// the same key may each fetch and Set the same value; the value is
// deterministic so the last write is as good as the first.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key-value store with optional expiry.
//
// Get reports a miss as (nil, false, nil). A ttl of 0 passed to Set means
// the entry never expires.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
