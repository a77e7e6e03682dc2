package model

import "testing"

func TestResolvedPathAddIsIdempotent(t *testing.T) {
	root := MustParseID("g:root:1.0")
	p := NewResolvedPath("test")
	a := NewArtifact(MustParseID("g:a:1.0"))

	if !p.Add(a, root) {
		t.Fatal("first Add should report true")
	}
	if p.Add(a.Clone(), MustParseID("g:other:1.0")) {
		t.Fatal("second Add should report false")
	}
	if p.Len() != 1 {
		t.Errorf("Len() = %d, want 1", p.Len())
	}
	if by, _ := p.DeclaredBy(a.ID); by != root {
		t.Errorf("DeclaredBy = %v, want first parent %v", by, root)
	}
}

func TestResolvedPathOrderAndLookup(t *testing.T) {
	p := NewResolvedPath("test")
	ids := []ArtifactID{MustParseID("g:c:1.0"), MustParseID("g:a:1.0"), MustParseID("g:b:1.0")}
	for _, id := range ids {
		p.Add(NewArtifact(id), ArtifactID{})
	}
	got := p.IDs()
	for i := range ids {
		if got[i] != ids[i] {
			t.Errorf("IDs()[%d] = %v, want %v", i, got[i], ids[i])
		}
	}
	if _, ok := p.DeclaredBy(ids[0]); ok {
		t.Error("zero declared-by should report false")
	}
	if _, ok := p.Get(MustParseID("g:zz:1.0")); ok {
		t.Error("Get of absent id should fail")
	}
}

func TestResolvedPathCopyIsolatesMetadata(t *testing.T) {
	p := NewResolvedPath("test")
	id := MustParseID("g:a:1.0")
	p.Add(NewArtifact(id), ArtifactID{})

	c := p.Copy()
	c.Annotate(id, func(r *Resolution) { r.Conflict = 1 })

	if p.Resolution(id).Conflict != 0 {
		t.Error("annotating a copy changed the original")
	}
	if c.Resolution(id).Conflict != 1 {
		t.Error("annotation lost on copy")
	}
}
