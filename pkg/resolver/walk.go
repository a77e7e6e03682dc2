package resolver

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/matzehuels/buildpath/pkg/errors"
	"github.com/matzehuels/buildpath/pkg/model"
	"github.com/matzehuels/buildpath/pkg/observability"
	"github.com/matzehuels/buildpath/pkg/override"
	"github.com/matzehuels/buildpath/pkg/pathspec"
)

// walk is the state of one resolution call.
type walk struct {
	ctx    context.Context
	r      *Resolver
	pathID string
	path   *model.ResolvedPath

	stack   []model.ArtifactID
	onStack map[model.ArtifactID]bool
	pins    map[model.ArtifactID]pin
	done    map[string]bool
}

// pin is a version requested by an "@version" option.
type pin struct {
	version string
	option  string
}

// edge is a dependency about to be resolved, with its effective flags.
type edge struct {
	id         model.ArtifactID
	spec       *model.PathSpec
	descend    bool
	mandatory  bool
	overridden bool
}

func newWalk(ctx context.Context, r *Resolver, pathID, label string) *walk {
	p := model.NewResolvedPath(label)
	p.Run = uuid.NewString()
	return &walk{
		ctx:     ctx,
		r:       r,
		pathID:  pathID,
		path:    p,
		onStack: make(map[model.ArtifactID]bool),
		pins:    make(map[model.ArtifactID]pin),
		done:    make(map[string]bool),
	}
}

// resolve follows one edge: it applies the inclusion gate, adds the
// dependency to the path and walks into it unless the descend gate stops it.
// Only an edge that descends into an artifact already on the stack is a
// cycle.
func (w *walk) resolve(e edge, options []pathspec.Option, force bool, parent model.ArtifactID, overrides []*model.Override) error {
	own, err := pathspec.ParseOptions(e.spec.Options)
	if err != nil {
		return err
	}
	options = dedupe(append(options, own...))
	inclusive := !pathspec.AllExclusions(options)

	if !inclusive && !e.mandatory && !force {
		return nil
	}

	a, err := w.fetch(e.id)
	if err != nil {
		return err
	}
	if w.path.Add(a, parent) {
		observability.Resolve().OnArtifact(w.ctx, a.ID.String(), parent.String())
		w.r.opts.Logger.Debug("add", "id", a.ID, "declared_by", parent, "path", w.pathID, "run", w.path.Run)
	} else if existing, ok := w.path.Get(a.ID); ok {
		a = existing
	}
	if e.overridden {
		w.path.Annotate(a.ID, func(r *model.Resolution) { r.Overridden = true })
	}

	if !inclusive && !e.descend {
		return nil
	}
	if w.onStack[a.ID] {
		return w.cycle(a.ID)
	}
	return w.walk(a, e.spec.From, options, e.descend, overrides)
}

// walk matches options against the dependencies a assigns to bucket from
// and resolves the ones selected, then reports options nothing consumed.
func (w *walk) walk(a *model.Artifact, from string, options []pathspec.Option, descend bool, inherited []*model.Override) error {
	key := walkKey(a.ID, from, options, descend, inherited)
	if w.done[key] {
		return nil
	}

	w.stack = append(w.stack, a.ID)
	w.onStack[a.ID] = true
	defer func() {
		w.stack = w.stack[:len(w.stack)-1]
		delete(w.onStack, a.ID)
	}()

	overrides := append(override.Filter(from, inherited), override.Filter(from, a.Overrides)...)
	siblings := siblingsByName(a, from)
	consumed := make([]bool, len(options))

	for _, declared := range a.Dependencies {
		dep, applied := override.Apply(declared, overrides)
		if applied != nil {
			w.r.opts.Logger.Debugf("override %s -> %s (%s)", declared.ID, dep.ID, applied)
		}

		for _, spec := range dep.PathSpecs {
			if spec.To != from {
				continue
			}

			var matched []pathspec.Option
			for i, o := range options {
				if !o.Matches(dep.ID) {
					continue
				}
				if !o.Qualified() {
					if cands := siblings[o.Name]; len(cands) > 1 {
						return &errors.AmbiguousOptionError{
							Option:     o.Raw,
							Artifact:   a.ID.String(),
							Path:       from,
							Candidates: idStrings(cands),
						}
					}
				}
				consumed[i] = true
				matched = append(matched, o)
			}

			e := edge{id: dep.ID, spec: spec, overridden: applied != nil}
			defDescend, defMandatory := a.PathDefaults(spec.To)
			e.descend = spec.IsDescend(defDescend)
			e.mandatory = spec.IsMandatory(defMandatory)

			excluded := len(matched) > 0 && pathspec.AllExclusions(matched)
			recurse := (descend && !excluded) || (!descend && len(matched) > 0 && !excluded)
			if !recurse {
				continue
			}

			var next []pathspec.Option
			for _, o := range matched {
				if o.Exclude {
					continue
				}
				if o.Version != "" {
					if err := w.pin(dep.ID, o); err != nil {
						return err
					}
					if e.id.Version != o.Version {
						e.id = e.id.WithVersion(o.Version)
						e.overridden = true
					}
				}
				nested, err := pathspec.ParseOptions(o.Nested)
				if err != nil {
					return err
				}
				next = append(next, nested...)
			}

			if err := w.resolve(e, next, len(matched) > 0, a.ID, overrides); err != nil {
				return err
			}
		}
	}

	var leftover []string
	for i, o := range options {
		if !consumed[i] {
			leftover = append(leftover, o.Raw)
		}
	}
	if len(leftover) > 0 {
		return &errors.UnmatchedOptionError{Artifact: a.ID.String(), Path: from, Options: leftover}
	}

	w.done[key] = true
	return nil
}

func (w *walk) fetch(id model.ArtifactID) (*model.Artifact, error) {
	a, err := w.r.repo.Resolve(w.ctx, id, w.r.opts.Retrieve)
	if err != nil {
		return nil, err
	}
	return a.Clone(), nil
}

// pin records the version an option requests for dep, failing when another
// option of the same run asked for a different one.
func (w *walk) pin(dep model.ArtifactID, o pathspec.Option) error {
	key := dep.Unversioned()
	if prev, ok := w.pins[key]; ok {
		if prev.version != o.Version {
			return &errors.ConflictingOptionError{
				Dependency: key.String(),
				Versions:   []string{prev.version, o.Version},
				Options:    []string{prev.option, o.Raw},
			}
		}
		return nil
	}
	w.pins[key] = pin{version: o.Version, option: o.Raw}
	return nil
}

func (w *walk) cycle(repeat model.ArtifactID) error {
	stack := idStrings(w.stack)
	return &errors.CycleError{Path: w.pathID, Stack: append(stack, repeat.String())}
}

func (w *walk) checkStubs() error {
	if w.r.opts.PermitStubs {
		return nil
	}
	for _, a := range w.path.Artifacts() {
		if a.Stub && a.LocalCopy == "" {
			return &errors.LicensingStubError{Artifact: a.ID.String(), Path: w.pathID}
		}
	}
	return nil
}

// siblingsByName groups the distinct dependencies a assigns to bucket to by
// artifact name.
func siblingsByName(a *model.Artifact, to string) map[string][]model.ArtifactID {
	out := make(map[string][]model.ArtifactID)
	seen := make(map[model.ArtifactID]bool)
	for _, d := range a.Dependencies {
		if len(d.SpecsTo(to)) == 0 {
			continue
		}
		ga := model.ArtifactID{Group: d.ID.Group, Name: d.ID.Name}
		if seen[ga] {
			continue
		}
		seen[ga] = true
		out[d.ID.Name] = append(out[d.ID.Name], d.ID)
	}
	return out
}

func dedupe(opts []pathspec.Option) []pathspec.Option {
	seen := make(map[string]bool, len(opts))
	out := opts[:0:0]
	for _, o := range opts {
		if seen[o.Raw] {
			continue
		}
		seen[o.Raw] = true
		out = append(out, o)
	}
	return out
}

func walkKey(id model.ArtifactID, from string, opts []pathspec.Option, descend bool, overrides []*model.Override) string {
	var b strings.Builder
	b.WriteString(id.String())
	b.WriteByte('|')
	b.WriteString(from)
	if descend {
		b.WriteString("|<")
	} else {
		b.WriteString("|+")
	}
	for _, o := range opts {
		b.WriteByte('|')
		b.WriteString(o.Raw)
	}
	for _, o := range overrides {
		b.WriteString("|o:")
		b.WriteString(o.String())
		for _, s := range o.WithPathSpecs {
			b.WriteByte(' ')
			b.WriteString(pathspec.FormatRelative(s, nil))
		}
	}
	return b.String()
}

func idStrings(ids []model.ArtifactID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
