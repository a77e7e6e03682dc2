package cache

import (
	"context"
	"time"

	"github.com/matzehuels/buildpath/pkg/observability"
)

// Scoped wraps a Cache with a key prefix and a default TTL, so several
// repositories can share one backend without key collisions:
//
//	central := cache.Namespace(shared, "maven:central", 24*time.Hour)
//	mirror := cache.Namespace(shared, "maven:mirror", 24*time.Hour)
//
// Every lookup is reported to [observability.Cache] with the prefix as the
// key type.
type Scoped struct {
	inner  Cache
	prefix string
	ttl    time.Duration
}

// Namespace returns a Scoped view of inner. A nil inner behaves like a
// [NullCache].
func Namespace(inner Cache, prefix string, ttl time.Duration) *Scoped {
	if inner == nil {
		inner = NullCache{}
	}
	if s, ok := inner.(*Scoped); ok {
		return &Scoped{inner: s.inner, prefix: Key(s.prefix, prefix), ttl: ttl}
	}
	return &Scoped{inner: inner, prefix: prefix, ttl: ttl}
}

// Prefix returns the key prefix of this view.
func (s *Scoped) Prefix() string { return s.prefix }

func (s *Scoped) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, ok, err := s.inner.Get(ctx, Key(s.prefix, key))
	if err == nil {
		if ok {
			observability.Cache().OnCacheHit(ctx, s.prefix)
		} else {
			observability.Cache().OnCacheMiss(ctx, s.prefix)
		}
	}
	return data, ok, err
}

// Set stores data; a zero ttl falls back to the view's default TTL.
func (s *Scoped) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if ttl == 0 {
		ttl = s.ttl
	}
	if err := s.inner.Set(ctx, Key(s.prefix, key), data, ttl); err != nil {
		return err
	}
	observability.Cache().OnCacheSet(ctx, s.prefix, len(data))
	return nil
}

func (s *Scoped) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, Key(s.prefix, key))
}

// Close closes the underlying cache.
func (s *Scoped) Close() error { return s.inner.Close() }

var _ Cache = (*Scoped)(nil)
