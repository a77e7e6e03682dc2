package repository

import (
	"context"
	stderrors "errors"

	"github.com/matzehuels/buildpath/pkg/errors"
	"github.com/matzehuels/buildpath/pkg/model"
	"github.com/matzehuels/buildpath/pkg/resolver"
)

// Chain tries its repositories in order and returns the first hit.
//
// A miss in one repository moves on to the next; any other error stops the
// lookup. When every repository misses, the returned
// [errors.UnresolvedArtifactError] lists all locations tried.
type Chain struct {
	repos []resolver.Repository
}

// NewChain creates a chain over repos, consulted in the order given.
func NewChain(repos ...resolver.Repository) *Chain {
	return &Chain{repos: repos}
}

func (c *Chain) Resolve(ctx context.Context, id model.ArtifactID, retrieve bool) (*model.Artifact, error) {
	var tried []string
	for _, r := range c.repos {
		a, err := r.Resolve(ctx, id, retrieve)
		if err == nil {
			return a, nil
		}
		var miss *errors.UnresolvedArtifactError
		if !stderrors.As(err, &miss) {
			return nil, err
		}
		tried = append(tried, miss.Tried...)
	}
	return nil, &errors.UnresolvedArtifactError{ID: id.String(), Tried: tried}
}
