// Package override selects and applies version/path-spec overrides.
//
// Both functions are pure: they never modify their inputs.
//
//	scoped := override.Filter("runtime", artifact.Overrides)
//	dep, applied := override.Apply(dep, scoped)
//	if applied != nil {
//	    // dep.ID carries applied.WithVersion
//	}
package override

import (
	"github.com/matzehuels/buildpath/pkg/model"
)

// Filter returns copies of the overrides whose scope covers pathID, in
// order. The copies are rescoped to [model.AllPaths] so that once an override
// enters a branch it covers every path beneath it.
func Filter(pathID string, overrides []*model.Override) []*model.Override {
	var out []*model.Override
	for _, o := range overrides {
		if !o.AppliesTo(pathID) {
			continue
		}
		c := o.Clone()
		c.Paths = []string{model.AllPaths}
		out = append(out, c)
	}
	return out
}

// Apply applies the first override matching dep's identity. Later overrides
// are never tried.
//
// When nothing matches, dep itself is returned. Otherwise the result is a
// copy: its version is replaced when the override carries one, and each of
// its path specs is replaced by the override's spec with the same From,
// inheriting whatever that replacement leaves unset. The second return value
// is the override that replaced the version, or nil when no version changed.
func Apply(dep *model.Dependency, overrides []*model.Override) (*model.Dependency, *model.Override) {
	o := first(dep.ID, overrides)
	if o == nil {
		return dep, nil
	}

	c := dep.Clone()
	var applied *model.Override
	if o.WithVersion != "" {
		c.ID = c.ID.WithVersion(o.WithVersion)
		applied = o
	}
	for i, spec := range c.PathSpecs {
		for _, repl := range o.WithPathSpecs {
			if repl.From == spec.From {
				c.PathSpecs[i] = repl.Inherit(spec)
				break
			}
		}
	}
	return c, applied
}

// first returns the first override matching id, or nil.
func first(id model.ArtifactID, overrides []*model.Override) *model.Override {
	for _, o := range overrides {
		if o.Matches(id) {
			return o
		}
	}
	return nil
}
