package model

import "maps"

// Resolution is the per-run metadata recorded for one entry of a
// [ResolvedPath]. It is never stored on the artifact itself.
type Resolution struct {
	DeclaredBy     ArtifactID // Parent whose traversal added the entry; zero for roots
	Conflict       int        // 1-based conflict index assigned by a merge, 0 when none
	ConflictParent bool       // Entry lies on the declaring chain of a conflict
	Overridden     bool       // A version override already replaced this entry
}

// ResolvedPath is an ordered collection of artifacts, unique by identity,
// together with the resolution metadata of each entry.
//
// A ResolvedPath is not safe for concurrent mutation. Artifacts added to it
// must be private copies; they are shared (not cloned again) by [ResolvedPath.Copy].
type ResolvedPath struct {
	Label string // Human-readable description, e.g. "g:root:jar:1.0 runtime"
	Run   string // Identifier of the resolution run that produced the path

	artifacts []*Artifact
	index     map[ArtifactID]int
	meta      map[ArtifactID]*Resolution
}

// NewResolvedPath creates an empty resolved path.
func NewResolvedPath(label string) *ResolvedPath {
	return &ResolvedPath{
		Label: label,
		index: make(map[ArtifactID]int),
		meta:  make(map[ArtifactID]*Resolution),
	}
}

// Add appends a unless an artifact with the same identity is already
// present, recording declaredBy as its parent. It reports whether a was
// added. Adding an existing identity keeps the first parent.
func (p *ResolvedPath) Add(a *Artifact, declaredBy ArtifactID) bool {
	if _, ok := p.index[a.ID]; ok {
		return false
	}
	p.index[a.ID] = len(p.artifacts)
	p.artifacts = append(p.artifacts, a)
	p.meta[a.ID] = &Resolution{DeclaredBy: declaredBy}
	return true
}

// Get returns the artifact with identity id.
func (p *ResolvedPath) Get(id ArtifactID) (*Artifact, bool) {
	i, ok := p.index[id]
	if !ok {
		return nil, false
	}
	return p.artifacts[i], true
}

// Contains reports whether id is in the path.
func (p *ResolvedPath) Contains(id ArtifactID) bool {
	_, ok := p.index[id]
	return ok
}

// Len returns the number of entries.
func (p *ResolvedPath) Len() int { return len(p.artifacts) }

// Artifacts returns the entries in insertion order. The slice is a copy.
func (p *ResolvedPath) Artifacts() []*Artifact {
	out := make([]*Artifact, len(p.artifacts))
	copy(out, p.artifacts)
	return out
}

// IDs returns the entry identities in insertion order.
func (p *ResolvedPath) IDs() []ArtifactID {
	out := make([]ArtifactID, len(p.artifacts))
	for i, a := range p.artifacts {
		out[i] = a.ID
	}
	return out
}

// Resolution returns a copy of the metadata recorded for id.
func (p *ResolvedPath) Resolution(id ArtifactID) Resolution {
	if r, ok := p.meta[id]; ok {
		return *r
	}
	return Resolution{}
}

// DeclaredBy returns the parent recorded for id, if any.
func (p *ResolvedPath) DeclaredBy(id ArtifactID) (ArtifactID, bool) {
	r, ok := p.meta[id]
	if !ok || r.DeclaredBy.IsZero() {
		return ArtifactID{}, false
	}
	return r.DeclaredBy, true
}

// Annotate applies fn to the metadata of id. It is a no-op when id is not in
// the path.
func (p *ResolvedPath) Annotate(id ArtifactID, fn func(*Resolution)) {
	if r, ok := p.meta[id]; ok {
		fn(r)
	}
}

// Copy returns a path with the same entries and an independent copy of the
// metadata.
func (p *ResolvedPath) Copy() *ResolvedPath {
	c := &ResolvedPath{
		Label:     p.Label,
		Run:       p.Run,
		artifacts: make([]*Artifact, len(p.artifacts)),
		index:     maps.Clone(p.index),
		meta:      make(map[ArtifactID]*Resolution, len(p.meta)),
	}
	copy(c.artifacts, p.artifacts)
	for id, r := range p.meta {
		rc := *r
		c.meta[id] = &rc
	}
	return c
}
