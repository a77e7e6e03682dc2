package render

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/matzehuels/buildpath/pkg/dag"
)

type graph struct {
	Label string `json:"label,omitempty"`
	Run   string `json:"run,omitempty"`
	Rows  int    `json:"rows"`
	Nodes []node `json:"nodes"`
	Edges []edge `json:"edges"`
}

type node struct {
	ID   string       `json:"id"`
	Row  int          `json:"row"`
	Meta dag.Metadata `json:"meta,omitempty"`
}

type edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// WriteJSON encodes g as indented JSON after checking that every edge
// points to a lower row.
func WriteJSON(w io.Writer, g *dag.DAG) error {
	if err := g.Validate(); err != nil {
		return fmt.Errorf("invalid graph: %w", err)
	}
	nodes, edges := g.Nodes(), g.Edges()
	out := graph{
		Label: g.Meta().String(MetaLabel),
		Run:   g.Meta().String(MetaRun),
		Rows:  len(g.Rows()),
		Nodes: make([]node, len(nodes)),
		Edges: make([]edge, len(edges)),
	}
	for i, n := range nodes {
		out.Nodes[i] = node{ID: n.ID, Row: n.Row, Meta: n.Meta}
	}
	for i, e := range edges {
		out.Edges[i] = edge{From: e.From, To: e.To}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}
