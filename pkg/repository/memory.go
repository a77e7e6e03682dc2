package repository

import (
	"context"
	"sync"

	"github.com/matzehuels/buildpath/pkg/errors"
	"github.com/matzehuels/buildpath/pkg/model"
)

// Memory is a repository backed by a map. It is mostly useful in tests and
// for artifacts assembled at runtime.
//
// Memory holds no content: Resolve returns artifacts exactly as stored and
// never sets LocalCopy or Hash, whatever retrieve asks for. A stub stored
// without a LocalCopy therefore fails the resolver's licensing check unless
// stubs are permitted.
type Memory struct {
	mu        sync.RWMutex
	artifacts map[model.ArtifactID]*model.Artifact
}

// NewMemory creates a repository holding the given artifacts.
func NewMemory(artifacts ...*model.Artifact) *Memory {
	m := &Memory{artifacts: make(map[model.ArtifactID]*model.Artifact, len(artifacts))}
	for _, a := range artifacts {
		m.Add(a)
	}
	return m
}

// Add stores a, replacing any artifact with the same identity. A renamed
// artifact is also reachable under its original identity.
func (m *Memory) Add(a *model.Artifact) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.artifacts[a.ID] = a
	if !a.OriginalID.IsZero() {
		m.artifacts[a.OriginalID] = a
	}
}

// Len returns the number of stored identities.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.artifacts)
}

// Resolve returns the artifact stored under id.
func (m *Memory) Resolve(ctx context.Context, id model.ArtifactID, retrieve bool) (*model.Artifact, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if a, ok := m.artifacts[id]; ok {
		return a, nil
	}
	return nil, &errors.UnresolvedArtifactError{ID: id.String(), Tried: []string{"memory"}}
}
