// Package paths merges resolved paths, detects version conflicts between
// them and renders them as declaration trees.
//
// Conflicts are keyed by unversioned identity. An artifact that was renamed
// from a versioned original is keyed under both identities, so a renamed
// artifact still conflicts with copies resolved under its old name.
package paths

import (
	"fmt"
	"slices"
	"strings"

	"github.com/matzehuels/buildpath/pkg/errors"
	"github.com/matzehuels/buildpath/pkg/model"
)

type member struct {
	path     int
	artifact *model.Artifact
	version  string
}

type group struct {
	key      model.ArtifactID
	members  []member
	versions []string
}

// Merge combines paths into one flat path holding one representative per
// unversioned identity, in order of first appearance. The result carries no
// declared-by parents. Overridden markers are kept.
//
// When an unversioned identity occurs at more than one version, Merge
// returns an [errors.ConflictError] whose Tree shows, for every input path,
// the declaring chains leading to each conflicting artifact.
func Merge(paths ...*model.ResolvedPath) (*model.ResolvedPath, error) {
	groups, order := groupByKey(paths)

	var conflicted []*group
	for _, key := range order {
		if g := groups[key]; len(g.versions) > 1 {
			conflicted = append(conflicted, g)
		}
	}
	if len(conflicted) > 0 {
		return nil, conflictError(paths, conflicted)
	}

	merged := model.NewResolvedPath(mergedLabel(paths))
	represented := make(map[model.ArtifactID]bool)
	for _, p := range paths {
		for _, a := range p.Artifacts() {
			keys := a.UnversionedIDs()
			if merged.Contains(a.ID) || anyRepresented(represented, keys) {
				continue
			}
			for _, k := range keys {
				represented[k] = true
			}
			merged.Add(a, model.ArtifactID{})
			if p.Resolution(a.ID).Overridden {
				merged.Annotate(a.ID, func(r *model.Resolution) { r.Overridden = true })
			}
		}
	}
	return merged, nil
}

// Override aligns path to with: after both are self-merged, every artifact
// of path whose unversioned identity occurs in with at another version is
// replaced by with's artifact and marked overridden. Artifacts already
// marked overridden are left alone.
func Override(path, with *model.ResolvedPath) (*model.ResolvedPath, error) {
	base, err := Merge(path)
	if err != nil {
		return nil, err
	}
	target, err := Merge(with)
	if err != nil {
		return nil, err
	}

	byKey := make(map[model.ArtifactID]*model.Artifact)
	for _, a := range target.Artifacts() {
		for _, k := range a.UnversionedIDs() {
			if _, ok := byKey[k]; !ok {
				byKey[k] = a
			}
		}
	}

	out := model.NewResolvedPath(base.Label)
	out.Run = path.Run
	for _, a := range base.Artifacts() {
		overridden := base.Resolution(a.ID).Overridden
		if !overridden {
			if repl := replacement(a, byKey); repl != nil {
				a = repl.Clone()
				overridden = true
			}
		}
		if out.Add(a, model.ArtifactID{}) && overridden {
			out.Annotate(a.ID, func(r *model.Resolution) { r.Overridden = true })
		}
	}
	return out, nil
}

func replacement(a *model.Artifact, byKey map[model.ArtifactID]*model.Artifact) *model.Artifact {
	for _, k := range a.UnversionedIDs() {
		if repl, ok := byKey[k]; ok && repl.ID.Version != versionUnder(a, k) {
			return repl
		}
	}
	return nil
}

// versionUnder returns the version a carries under key: its own version, or
// its original's version when key is the original identity.
func versionUnder(a *model.Artifact, key model.ArtifactID) string {
	if a.ID.Unversioned() != key && a.OriginalID.Unversioned() == key {
		return a.OriginalID.Version
	}
	return a.ID.Version
}

func groupByKey(paths []*model.ResolvedPath) (map[model.ArtifactID]*group, []model.ArtifactID) {
	groups := make(map[model.ArtifactID]*group)
	var order []model.ArtifactID
	for pi, p := range paths {
		for _, a := range p.Artifacts() {
			for _, key := range a.UnversionedIDs() {
				g, ok := groups[key]
				if !ok {
					g = &group{key: key}
					groups[key] = g
					order = append(order, key)
				}
				v := versionUnder(a, key)
				g.members = append(g.members, member{path: pi, artifact: a, version: v})
				if !slices.Contains(g.versions, v) {
					g.versions = append(g.versions, v)
				}
			}
		}
	}
	return groups, order
}

func conflictError(paths []*model.ResolvedPath, conflicted []*group) error {
	annotated := make([]*model.ResolvedPath, len(paths))
	for i, p := range paths {
		annotated[i] = p.Copy()
	}

	conflicts := make([]errors.Conflict, len(conflicted))
	for i, g := range conflicted {
		index := i + 1
		conflicts[i] = errors.Conflict{Index: index, ID: g.key.String(), Versions: g.versions}
		for _, m := range g.members {
			p := annotated[m.path]
			p.Annotate(m.artifact.ID, func(r *model.Resolution) {
				if r.Conflict == 0 {
					r.Conflict = index
				}
			})
			markAncestors(p, m.artifact.ID)
		}
	}

	var tree strings.Builder
	for _, p := range annotated {
		rendered := Format(p, true)
		if rendered == "" {
			continue
		}
		if p.Label != "" {
			fmt.Fprintf(&tree, "%s:\n", p.Label)
		}
		tree.WriteString(rendered)
	}
	return &errors.ConflictError{Conflicts: conflicts, Tree: strings.TrimRight(tree.String(), "\n")}
}

func markAncestors(p *model.ResolvedPath, id model.ArtifactID) {
	seen := map[model.ArtifactID]bool{id: true}
	for {
		parent, ok := p.DeclaredBy(id)
		if !ok || seen[parent] || !p.Contains(parent) {
			return
		}
		seen[parent] = true
		p.Annotate(parent, func(r *model.Resolution) { r.ConflictParent = true })
		id = parent
	}
}

func mergedLabel(paths []*model.ResolvedPath) string {
	if len(paths) == 1 {
		return paths[0].Label
	}
	labels := make([]string, 0, len(paths))
	for _, p := range paths {
		if p.Label != "" {
			labels = append(labels, p.Label)
		}
	}
	return strings.Join(labels, " + ")
}

func anyRepresented(represented map[model.ArtifactID]bool, keys []model.ArtifactID) bool {
	for _, k := range keys {
		if represented[k] {
			return true
		}
	}
	return false
}
