package model

import "slices"

// Well-known path ids.
const (
	PathCompile = "compile"
	PathRuntime = "runtime"
	PathTest    = "test"
)

// Path is a named bucket declared by an artifact. Descend and Mandatory are
// the defaults picked up by path specs that leave those fields unset.
type Path struct {
	ID          string
	Description string
	Descend     bool
	Mandatory   bool
}

// NewPath returns a path that descends and is mandatory by default.
func NewPath(id, description string) *Path {
	return &Path{ID: id, Description: description, Descend: true, Mandatory: true}
}

// Artifact is the metadata for one identity as returned by a repository.
//
// Artifacts handed out by a repository must be treated as read-only; the
// resolver always works on a [Artifact.Clone].
type Artifact struct {
	ID          ArtifactID
	OriginalID  ArtifactID // Pre-rename identity, zero when never renamed
	Description string
	Stub        bool   // Licensing placeholder without distributable content
	LocalCopy   string // Path of retrieved content, empty when not retrieved
	Hash        string // Content hash, populated when content was not retrieved
	Licenses    []ArtifactID

	Dependencies []*Dependency
	Paths        []*Path
	Overrides    []*Override
}

// NewArtifact creates an empty artifact for id.
func NewArtifact(id ArtifactID) *Artifact {
	return &Artifact{ID: id}
}

// Path returns the declared path with the given id.
func (a *Artifact) Path(id string) (*Path, bool) {
	for _, p := range a.Paths {
		if p.ID == id {
			return p, true
		}
	}
	return nil, false
}

// AddPath declares p, replacing any path with the same id.
func (a *Artifact) AddPath(p *Path) {
	for i, existing := range a.Paths {
		if existing.ID == p.ID {
			a.Paths[i] = p
			return
		}
	}
	a.Paths = append(a.Paths, p)
}

// AddDependency appends d.
func (a *Artifact) AddDependency(d *Dependency) {
	a.Dependencies = append(a.Dependencies, d)
}

// AddOverride appends o. Overrides are tried in the order they were added.
func (a *Artifact) AddOverride(o *Override) {
	a.Overrides = append(a.Overrides, o)
}

// PathDefaults returns the descend and mandatory defaults of path id, or
// true/true when the artifact does not declare it.
func (a *Artifact) PathDefaults(id string) (descend, mandatory bool) {
	if p, ok := a.Path(id); ok {
		return p.Descend, p.Mandatory
	}
	return true, true
}

// UnversionedIDs returns the identities under which a itself can conflict:
// its unversioned id and, when it was renamed from a versioned original, the
// original's unversioned id.
func (a *Artifact) UnversionedIDs() []ArtifactID {
	ids := []ArtifactID{a.ID.Unversioned()}
	if a.OriginalID.Version != "" {
		if u := a.OriginalID.Unversioned(); u != ids[0] {
			ids = append(ids, u)
		}
	}
	return ids
}

// Clone returns a deep copy of a. Back-references from path specs point into
// the copy.
func (a *Artifact) Clone() *Artifact {
	if a == nil {
		return nil
	}
	c := *a
	c.Licenses = slices.Clone(a.Licenses)
	c.Dependencies = make([]*Dependency, len(a.Dependencies))
	for i, d := range a.Dependencies {
		c.Dependencies[i] = d.Clone()
	}
	c.Paths = make([]*Path, len(a.Paths))
	for i, p := range a.Paths {
		cp := *p
		c.Paths[i] = &cp
	}
	c.Overrides = make([]*Override, len(a.Overrides))
	for i, o := range a.Overrides {
		c.Overrides[i] = o.Clone()
	}
	return &c
}

// Dependency is a target identity together with the path specs that assign
// it to buckets of the declaring artifact.
type Dependency struct {
	ID        ArtifactID
	PathSpecs []*PathSpec
}

// NewDependency creates a dependency on id owning the given specs.
func NewDependency(id ArtifactID, specs ...*PathSpec) *Dependency {
	d := &Dependency{ID: id}
	for _, s := range specs {
		d.AddPathSpec(s)
	}
	return d
}

// AddPathSpec appends s and points its back-reference at d.
func (d *Dependency) AddPathSpec(s *PathSpec) {
	s.Dependency = d
	d.PathSpecs = append(d.PathSpecs, s)
}

// SpecsTo returns the specs assigning d to path to, in declaration order.
func (d *Dependency) SpecsTo(to string) []*PathSpec {
	var out []*PathSpec
	for _, s := range d.PathSpecs {
		if s.To == to {
			out = append(out, s)
		}
	}
	return out
}

// Clone returns a deep copy whose specs refer back to the copy.
func (d *Dependency) Clone() *Dependency {
	c := &Dependency{ID: d.ID, PathSpecs: make([]*PathSpec, 0, len(d.PathSpecs))}
	for _, s := range d.PathSpecs {
		c.AddPathSpec(s.Clone())
	}
	return c
}
