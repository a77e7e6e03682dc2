package render

import (
	"github.com/matzehuels/buildpath/pkg/dag"
	"github.com/matzehuels/buildpath/pkg/model"
)

// Node metadata keys set by [Graph].
const (
	MetaVersion        = "version"
	MetaDescription    = "description"
	MetaStub           = "stub"
	MetaRoot           = "root"
	MetaConflict       = "conflict"
	MetaConflictParent = "conflict_parent"
	MetaOverridden     = "overridden"
)

// Graph-level metadata keys set by [Graph].
const (
	MetaLabel = "label"
	MetaRun   = "run"
)

// Graph converts p into a declaration graph. Nodes appear in path order,
// preceded by parents that are not themselves entries.
func Graph(p *model.ResolvedPath) *dag.DAG {
	g := dag.New(dag.Metadata{MetaLabel: p.Label, MetaRun: p.Run})
	ids := p.IDs()

	rows := make(map[model.ArtifactID]int, len(ids))
	visiting := make(map[model.ArtifactID]bool)
	var depth func(id model.ArtifactID) int
	depth = func(id model.ArtifactID) int {
		if r, ok := rows[id]; ok {
			return r
		}
		parent, ok := p.DeclaredBy(id)
		if !ok || !p.Contains(id) || visiting[id] {
			return 0
		}
		visiting[id] = true
		r := depth(parent) + 1
		visiting[id] = false
		rows[id] = r
		return r
	}

	for _, id := range ids {
		parent, ok := p.DeclaredBy(id)
		if !ok || p.Contains(parent) {
			continue
		}
		if _, exists := g.Node(parent.String()); !exists {
			_ = g.AddNode(dag.Node{
				ID:   parent.String(),
				Meta: dag.Metadata{MetaVersion: parent.Version, MetaRoot: true},
			})
		}
	}

	for _, a := range p.Artifacts() {
		_ = g.AddNode(dag.Node{ID: a.ID.String(), Row: depth(a.ID), Meta: nodeMeta(a, p.Resolution(a.ID))})
	}

	for _, id := range ids {
		parent, ok := p.DeclaredBy(id)
		if !ok || parent == id {
			continue
		}
		_ = g.AddEdge(dag.Edge{From: parent.String(), To: id.String()})
	}
	return g
}

func nodeMeta(a *model.Artifact, r model.Resolution) dag.Metadata {
	m := dag.Metadata{MetaVersion: a.ID.Version}
	if a.Description != "" {
		m[MetaDescription] = a.Description
	}
	if a.Stub {
		m[MetaStub] = true
	}
	if r.Conflict > 0 {
		m[MetaConflict] = r.Conflict
	}
	if r.ConflictParent {
		m[MetaConflictParent] = true
	}
	if r.Overridden {
		m[MetaOverridden] = true
	}
	return m
}
