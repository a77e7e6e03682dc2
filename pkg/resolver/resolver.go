package resolver

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/buildpath/pkg/errors"
	"github.com/matzehuels/buildpath/pkg/model"
	"github.com/matzehuels/buildpath/pkg/observability"
	"github.com/matzehuels/buildpath/pkg/paths"
	"github.com/matzehuels/buildpath/pkg/pathspec"
)

// Repository retrieves artifact metadata by identity.
//
// Implementations must return an [errors.UnresolvedArtifactError] when the
// identity cannot be found. With retrieve set the returned artifact carries
// a LocalCopy of its content; otherwise it carries a comparison Hash.
// Returned artifacts may be shared between callers and must not be modified.
type Repository interface {
	Resolve(ctx context.Context, id model.ArtifactID, retrieve bool) (*model.Artifact, error)
}

// Options configures a Resolver.
type Options struct {
	Retrieve    bool              // Fetch artifact content, not just metadata
	PermitStubs bool              // Accept licensing stubs without a local copy
	Overrides   []*model.Override // Applied ahead of the root artifact's own overrides
	Logger      *log.Logger       // Debug output (default: discard)
}

// WithDefaults returns a copy of Options with zero values replaced by defaults.
func (o Options) WithDefaults() Options {
	opts := o
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	return opts
}

// Resolver flattens the dependency graph below a root artifact into a
// [model.ResolvedPath].
//
// A Resolver holds no per-call state; concurrent calls are safe as long as the
// Repository is.
type Resolver struct {
	repo Repository
	opts Options
}

// New creates a Resolver reading artifacts from repo.
func New(repo Repository, opts Options) *Resolver {
	return &Resolver{repo: repo, opts: opts.WithDefaults()}
}

// ResolvePath resolves the path pathID of root: every dependency root assigns
// to pathID, followed transitively according to each path spec.
func (r *Resolver) ResolvePath(ctx context.Context, pathID string, root *model.Artifact) (*model.ResolvedPath, error) {
	return r.ResolveSpec(ctx, root, &model.PathSpec{From: pathID})
}

// ResolveSpec resolves root's spec.From path, seeding the walk with
// spec.Options. An unset spec.Descend descends; with descend false only the
// dependencies named by an inclusion option are followed.
func (r *Resolver) ResolveSpec(ctx context.Context, root *model.Artifact, spec *model.PathSpec) (*model.ResolvedPath, error) {
	start := time.Now()
	label := fmt.Sprintf("%s %s", root.ID, spec.From)
	observability.Resolve().OnResolveStart(ctx, root.ID.String(), spec.From)

	res, err := r.resolveSpec(ctx, root, spec, label)

	count := 0
	if res != nil {
		count = res.Len()
	}
	observability.Resolve().OnResolveComplete(ctx, root.ID.String(), spec.From, count, time.Since(start), err)
	if err != nil {
		r.opts.Logger.Debugf("resolve %s failed: %v", label, err)
		return nil, err
	}
	r.opts.Logger.Debugf("resolved %s: %d artifacts (run %s)", label, count, res.Run)
	return res, nil
}

func (r *Resolver) resolveSpec(ctx context.Context, root *model.Artifact, spec *model.PathSpec, label string) (*model.ResolvedPath, error) {
	if spec.From == "" {
		spec = spec.Clone()
		spec.From = model.DefaultFrom
	}
	opts, err := pathspec.ParseOptions(spec.Options)
	if err != nil {
		return nil, err
	}

	w := newWalk(ctx, r, spec.From, label)
	descend := spec.IsDescend(true)
	if descend || !pathspec.AllExclusions(opts) {
		if err := w.walk(root, spec.From, dedupe(opts), descend, r.opts.Overrides); err != nil {
			return nil, err
		}
	}
	if err := w.checkStubs(); err != nil {
		return nil, err
	}
	return w.path, nil
}

// ResolveGroup resolves each spec against root and merges the results into
// one path. Version conflicts between the specs fail with an
// [errors.ConflictError].
func (r *Resolver) ResolveGroup(ctx context.Context, root *model.Artifact, specs []*model.PathSpec) (*model.ResolvedPath, error) {
	resolved := make([]*model.ResolvedPath, 0, len(specs))
	for _, s := range specs {
		p, err := r.ResolveSpec(ctx, root, s)
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, p)
	}
	merged, err := paths.Merge(resolved...)
	conflicts := 0
	var ce *errors.ConflictError
	if stderrors.As(err, &ce) {
		conflicts = len(ce.Conflicts)
	}
	observability.Resolve().OnMerge(ctx, len(resolved), conflicts)
	if err != nil {
		return nil, err
	}
	merged.Label = fmt.Sprintf("%s group of %d", root.ID, len(specs))
	merged.Run = uuid.NewString()
	return merged, nil
}
