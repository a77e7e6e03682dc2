package paths

import (
	"fmt"
	"slices"
	"strings"

	"github.com/matzehuels/buildpath/pkg/model"
)

// Format renders p as an indented declaration tree, two spaces per level.
//
// Top-level nodes are entries without a declared-by parent, plus parents
// that are not themselves entries (typically the root artifact the path was
// resolved for). Children are sorted by identity. With onlyConflicted set,
// only subtrees holding a conflict or conflict-parent marker are emitted.
// Conflicting entries are suffixed with " (conflict N)".
func Format(p *model.ResolvedPath, onlyConflicted bool) string {
	t := newTree(p)
	var b strings.Builder
	for _, id := range t.tops {
		t.render(&b, id, 0, onlyConflicted, make(map[model.ArtifactID]bool))
	}
	return b.String()
}

type tree struct {
	p        *model.ResolvedPath
	tops     []model.ArtifactID
	children map[model.ArtifactID][]model.ArtifactID
	marked   map[model.ArtifactID]bool
}

func newTree(p *model.ResolvedPath) *tree {
	t := &tree{p: p, children: make(map[model.ArtifactID][]model.ArtifactID)}

	var external, roots []model.ArtifactID
	for _, id := range p.IDs() {
		parent, ok := p.DeclaredBy(id)
		if !ok || parent == id {
			roots = append(roots, id)
			continue
		}
		if !p.Contains(parent) && t.children[parent] == nil {
			external = append(external, parent)
		}
		t.children[parent] = append(t.children[parent], id)
	}

	byString := func(a, b model.ArtifactID) int { return strings.Compare(a.String(), b.String()) }
	slices.SortFunc(external, byString)
	slices.SortFunc(roots, byString)
	for _, kids := range t.children {
		slices.SortFunc(kids, byString)
	}
	t.tops = append(external, roots...)
	t.marked = t.markSubtrees()
	return t
}

// markSubtrees records which nodes have a marker in their subtree.
func (t *tree) markSubtrees() map[model.ArtifactID]bool {
	marked := make(map[model.ArtifactID]bool)
	visiting := make(map[model.ArtifactID]bool)
	var visit func(id model.ArtifactID) bool
	visit = func(id model.ArtifactID) bool {
		if m, ok := marked[id]; ok {
			return m
		}
		if visiting[id] {
			return false
		}
		visiting[id] = true
		r := t.p.Resolution(id)
		m := r.Conflict > 0 || r.ConflictParent
		for _, c := range t.children[id] {
			if visit(c) {
				m = true
			}
		}
		marked[id] = m
		return m
	}
	for _, id := range t.tops {
		visit(id)
	}
	return marked
}

func (t *tree) render(b *strings.Builder, id model.ArtifactID, depth int, onlyConflicted bool, seen map[model.ArtifactID]bool) {
	if seen[id] || (onlyConflicted && !t.marked[id]) {
		return
	}
	seen[id] = true

	b.WriteString(strings.Repeat("  ", depth))
	b.WriteString(id.String())
	if c := t.p.Resolution(id).Conflict; c > 0 {
		fmt.Fprintf(b, " (conflict %d)", c)
	}
	b.WriteByte('\n')

	for _, c := range t.children[id] {
		t.render(b, c, depth+1, onlyConflicted, seen)
	}
}
