package cache

import (
	"context"
	"time"
)

// ManifestFile is the file the gateway reads from each repository.
const ManifestFile = "composer.json"

// ManifestKey returns the cache key for a project's composer.json at a commit:
// "{projectPath}@{sha}/composer.json".
func ManifestKey(projectPath, sha string) string {
	return projectPath + "@" + sha + "/" + ManifestFile
}

// PrefixedCache prefixes every key before delegating to the wrapped Cache.
type PrefixedCache struct {
	inner  Cache
	prefix string
}

// Prefixed wraps inner so that every key is prefixed. It returns inner
// unchanged when prefix is empty. Prefixes keep entries apart when a Redis
// database or Mongo collection is shared with other applications or with
// gateways pointing at different GitLab hosts.
//
// Example usage:
//
//	shared := cache.Prefixed(redisCache, "composer-gateway:gitlab.com:")
func Prefixed(inner Cache, prefix string) Cache {
	if prefix == "" {
		return inner
	}
	return &PrefixedCache{inner: inner, prefix: prefix}
}

// Get retrieves a prefixed key.
func (c *PrefixedCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return c.inner.Get(ctx, c.prefix+key)
}

// Set stores a prefixed key.
func (c *PrefixedCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return c.inner.Set(ctx, c.prefix+key, data, ttl)
}

// Delete removes a prefixed key.
func (c *PrefixedCache) Delete(ctx context.Context, key string) error {
	return c.inner.Delete(ctx, c.prefix+key)
}

// Close closes the wrapped cache.
func (c *PrefixedCache) Close() error {
	return c.inner.Close()
}

var _ Cache = (*PrefixedCache)(nil)
