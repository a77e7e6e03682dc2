package repository

import (
	"context"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/matzehuels/buildpath/pkg/model"
	"github.com/matzehuels/buildpath/pkg/observability"
	"github.com/matzehuels/buildpath/pkg/resolver"
)

// DefaultCacheSize bounds the number of identities a Caching repository keeps.
const DefaultCacheSize = 4096

const keyTypeArtifact = "artifact"

// Caching memoises another repository in memory.
//
// Each identity is cached at most once. Concurrent lookups of the same
// identity share a single call to the underlying repository. An entry
// resolved without content is fetched again, and replaced, the first time
// content is requested. Callers receive clones, so cached entries never
// change.
type Caching struct {
	repo    resolver.Repository
	entries *lru.Cache[model.ArtifactID, cachedArtifact]
	group   singleflight.Group
	mu      sync.Mutex // serialises the store of metadata and content results
}

type cachedArtifact struct {
	artifact  *model.Artifact
	retrieved bool
}

// NewCaching wraps repo with a cache of at most size identities
// (DefaultCacheSize when size <= 0).
func NewCaching(repo resolver.Repository, size int) *Caching {
	if size <= 0 {
		size = DefaultCacheSize
	}
	entries, err := lru.New[model.ArtifactID, cachedArtifact](size)
	if err != nil {
		// Only returned for a non-positive size.
		panic(err)
	}
	return &Caching{repo: repo, entries: entries}
}

func (c *Caching) Resolve(ctx context.Context, id model.ArtifactID, retrieve bool) (*model.Artifact, error) {
	if e, ok := c.entries.Get(id); ok && (e.retrieved || !retrieve) {
		observability.Cache().OnCacheHit(ctx, keyTypeArtifact)
		return e.artifact.Clone(), nil
	}
	observability.Cache().OnCacheMiss(ctx, keyTypeArtifact)

	key := id.String()
	if retrieve {
		key += "+content"
	}
	v, err, _ := c.group.Do(key, func() (any, error) {
		a, err := c.repo.Resolve(ctx, id, retrieve)
		if err != nil {
			return nil, err
		}
		a = a.Clone()
		c.store(id, a, retrieve)
		return a, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*model.Artifact).Clone(), nil
}

// store caches a unless it would replace a retrieved entry with a
// metadata-only one.
func (c *Caching) store(id model.ArtifactID, a *model.Artifact, retrieved bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries.Peek(id); ok && e.retrieved && !retrieved {
		return
	}
	c.entries.Add(id, cachedArtifact{artifact: a, retrieved: retrieved})
}

// Len returns the number of cached identities.
func (c *Caching) Len() int { return c.entries.Len() }

// Purge drops every cached entry.
func (c *Caching) Purge() { c.entries.Purge() }
