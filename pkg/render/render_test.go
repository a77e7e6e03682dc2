package render

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/buildpath/pkg/dag"
	"github.com/matzehuels/buildpath/pkg/model"
)

func testPath() *model.ResolvedPath {
	app := model.MustParseID("g:app:1.0")
	lib := model.NewArtifact(model.MustParseID("g:lib:1.0"))
	lib.Description = "library"
	leaf := model.NewArtifact(model.MustParseID("g:leaf:2.0"))
	other := model.NewArtifact(model.MustParseID("g:other:3.0"))

	p := model.NewResolvedPath("g:app:jar:1.0 runtime")
	p.Run = "run-1"
	p.Add(lib, app)
	p.Add(leaf, lib.ID)
	p.Add(other, app)
	p.Annotate(lib.ID, func(r *model.Resolution) { r.ConflictParent = true })
	p.Annotate(leaf.ID, func(r *model.Resolution) { r.Conflict = 1 })
	p.Annotate(other.ID, func(r *model.Resolution) { r.Overridden = true })
	return p
}

func TestGraph(t *testing.T) {
	g := Graph(testPath())

	if err := g.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	wantNodes := []string{"g:app:jar:1.0", "g:lib:jar:1.0", "g:leaf:jar:2.0", "g:other:jar:3.0"}
	if diff := cmp.Diff(wantNodes, dag.NodeIDs(g.Nodes())); diff != "" {
		t.Errorf("nodes mismatch (-want +got):\n%s", diff)
	}
	rows := make(map[string]int)
	for _, n := range g.Nodes() {
		rows[n.ID] = n.Row
	}
	wantRows := map[string]int{"g:app:jar:1.0": 0, "g:lib:jar:1.0": 1, "g:leaf:jar:2.0": 2, "g:other:jar:3.0": 1}
	if diff := cmp.Diff(wantRows, rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"g:lib:jar:1.0", "g:other:jar:3.0"}, g.Children("g:app:jar:1.0")); diff != "" {
		t.Errorf("children mismatch (-want +got):\n%s", diff)
	}

	root, _ := g.Node("g:app:jar:1.0")
	leaf, _ := g.Node("g:leaf:jar:2.0")
	lib, _ := g.Node("g:lib:jar:1.0")
	other, _ := g.Node("g:other:jar:3.0")
	switch {
	case !root.Meta.Bool(MetaRoot):
		t.Error("external parent should be a root node")
	case leaf.Meta.Int(MetaConflict) != 1:
		t.Errorf("leaf meta = %v", leaf.Meta)
	case !lib.Meta.Bool(MetaConflictParent) || lib.Meta.String(MetaDescription) != "library":
		t.Errorf("lib meta = %v", lib.Meta)
	case !other.Meta.Bool(MetaOverridden):
		t.Errorf("other meta = %v", other.Meta)
	}
	if g.Meta().String(MetaRun) != "run-1" {
		t.Errorf("graph meta = %v", g.Meta())
	}
}

func TestGraphFlatPath(t *testing.T) {
	p := model.NewResolvedPath("merged")
	p.Add(model.NewArtifact(model.MustParseID("g:a:1")), model.ArtifactID{})
	p.Add(model.NewArtifact(model.MustParseID("g:b:1")), model.ArtifactID{})

	g := Graph(p)
	if g.Len() != 2 || len(g.Edges()) != 0 {
		t.Errorf("got %d nodes, %d edges", g.Len(), len(g.Edges()))
	}
	if len(g.Roots()) != 2 {
		t.Error("every entry of a flat path is a source")
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, Graph(testPath())); err != nil {
		t.Fatal(err)
	}

	var got struct {
		Label string `json:"label"`
		Rows  int    `json:"rows"`
		Nodes []struct {
			ID   string         `json:"id"`
			Row  int            `json:"row"`
			Meta map[string]any `json:"meta"`
		} `json:"nodes"`
		Edges []struct {
			From string `json:"from"`
			To   string `json:"to"`
		} `json:"edges"`
	}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}
	if got.Label != "g:app:jar:1.0 runtime" || got.Rows != 3 {
		t.Errorf("label = %q, rows = %d", got.Label, got.Rows)
	}
	if len(got.Nodes) != 4 || len(got.Edges) != 3 {
		t.Fatalf("got %d nodes, %d edges", len(got.Nodes), len(got.Edges))
	}
	if leaf := got.Nodes[2]; leaf.Row != 2 || leaf.Meta["conflict"] != float64(1) {
		t.Errorf("leaf = %+v", leaf)
	}
	if e := got.Edges[1]; e.From != "g:lib:jar:1.0" || e.To != "g:leaf:jar:2.0" {
		t.Errorf("edge = %+v", e)
	}
}

func TestWriteJSONRejectsUpwardEdges(t *testing.T) {
	g := dag.New(nil)
	_ = g.AddNode(dag.Node{ID: "a", Row: 1})
	_ = g.AddNode(dag.Node{ID: "b", Row: 0})
	_ = g.AddEdge(dag.Edge{From: "a", To: "b"})
	if err := WriteJSON(&bytes.Buffer{}, g); !errors.Is(err, dag.ErrRowOrder) {
		t.Errorf("WriteJSON() = %v, want ErrRowOrder", err)
	}
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(Graph(testPath()), Options{})

	for _, want := range []string{
		"digraph G {",
		`label="g:app:jar:1.0 runtime";`,
		`"g:leaf:jar:2.0" [label="g:leaf:jar:2.0\nconflict 1", fillcolor="#f8d7da", color=red`,
		`"g:lib:jar:1.0" -> "g:leaf:jar:2.0" [color=red];`,
		`"g:app:jar:1.0" -> "g:lib:jar:1.0";`,
		`style="rounded,filled,dashed"`,
		`style="rounded,filled,bold"`,
		"color=orange",
		`{rank=same; "g:lib:jar:1.0"; "g:other:jar:3.0";}`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT output missing %q\n%s", want, dot)
		}
	}
}

func TestToDOTDetailed(t *testing.T) {
	dot := ToDOT(Graph(testPath()), Options{Detailed: true})
	if !strings.Contains(dot, `row: 1\nconflict_parent: true\ndescription: library\nversion: 1.0`) {
		t.Errorf("detailed label missing metadata:\n%s", dot)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	got := string(normalizeViewBox(in))
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.00 50.00" width="100" height="50"><g/></svg>`
	if got != want {
		t.Errorf("normalizeViewBox() =\n%s\nwant\n%s", got, want)
	}

	plain := []byte("<svg><g/></svg>")
	if string(normalizeViewBox(plain)) != string(plain) {
		t.Error("SVG without viewBox should be unchanged")
	}
}

func TestSVG(t *testing.T) {
	if testing.Short() {
		t.Skip("graphviz rendering is slow")
	}
	svg, err := SVG(context.Background(), ToDOT(Graph(testPath()), Options{}))
	if err != nil {
		t.Fatalf("SVG: %v", err)
	}
	if !bytes.Contains(svg, []byte("<svg")) || !bytes.Contains(svg, []byte("g:leaf:jar:2.0")) {
		t.Errorf("unexpected SVG output:\n%s", svg)
	}
}
