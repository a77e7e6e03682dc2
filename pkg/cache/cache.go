// Package cache provides byte caches for data fetched from remote
// repositories.
//
// Three backends implement [Cache]: [FileCache] for the CLI's local cache
// directory, [RedisCache] for a cache shared between machines, and
// [NullCache] when caching is disabled. [Namespace] scopes a cache to a key
// prefix and reports hits and misses to the registered cache hooks.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte values under string keys.
//
// A miss is reported as (nil, false, nil); errors are reserved for backend
// failures. A zero ttl stores the entry without expiration.
// Implementations are safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
