package render

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/buildpath/pkg/dag"
)

// Options configures DOT output.
type Options struct {
	// Detailed adds the row and every metadata entry to node labels.
	Detailed bool
}

// ToDOT converts g to Graphviz DOT. Conflicting artifacts are filled red,
// their declaring chain is outlined orange and overridden artifacts are
// dashed. Root nodes are drawn bold. Nodes sharing a row are ranked
// together.
func ToDOT(g *dag.DAG, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	if label := g.Meta().String(MetaLabel); label != "" {
		fmt.Fprintf(&buf, "  label=%q;\n  labelloc=t;\n", label)
	}
	buf.WriteString("\n")

	for _, n := range g.Nodes() {
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(fmtAttrs(*n, fmtLabel(*n, opts.Detailed)), ", "))
	}

	for _, row := range g.Rows() {
		if nodes := g.Row(row); len(nodes) > 1 {
			fmt.Fprintf(&buf, "  {rank=same; %s;}\n", strings.Join(quoted(dag.NodeIDs(nodes)), "; "))
		}
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		to, _ := g.Node(e.To)
		if to != nil && to.Meta.Int(MetaConflict) > 0 {
			fmt.Fprintf(&buf, "  %q -> %q [color=red];\n", e.From, e.To)
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.From, e.To)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func quoted(ids []string) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = strconv.Quote(id)
	}
	return out
}

func fmtLabel(n dag.Node, detailed bool) string {
	label := n.ID
	if c := n.Meta.Int(MetaConflict); c > 0 {
		label += fmt.Sprintf("\nconflict %d", c)
	}
	if !detailed {
		return label
	}

	parts := []string{fmt.Sprintf("row: %d", n.Row)}
	for _, k := range slices.Sorted(maps.Keys(n.Meta)) {
		parts = append(parts, fmt.Sprintf("%s: %v", k, n.Meta[k]))
	}
	return label + "\n" + strings.Join(parts, "\n")
}

func fmtAttrs(n dag.Node, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	style := []string{"rounded", "filled"}
	switch {
	case n.Meta.Int(MetaConflict) > 0:
		attrs = append(attrs, "fillcolor=\"#f8d7da\"", "color=red", "penwidth=2")
	case n.Meta.Bool(MetaConflictParent):
		attrs = append(attrs, "color=orange", "penwidth=2")
	case n.Meta.Bool(MetaRoot):
		attrs = append(attrs, "fillcolor=\"#dbe9f6\"")
		style = append(style, "bold")
	}
	if n.Meta.Bool(MetaOverridden) {
		style = append(style, "dashed")
	}
	if n.Meta.Bool(MetaStub) {
		attrs = append(attrs, "fontcolor=grey40")
	}
	return append(attrs, fmt.Sprintf("style=%q", strings.Join(style, ",")))
}

// SVG renders a DOT graph with the embedded Graphviz.
func SVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces the root element so the drawing scales from the
// origin.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}
	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
