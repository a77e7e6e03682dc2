package dag

import (
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrEmptyID is returned by [DAG.AddNode] for a node without ID.
	ErrEmptyID = errors.New("empty node id")

	// ErrDuplicateNode is returned by [DAG.AddNode] when the ID is taken.
	ErrDuplicateNode = errors.New("duplicate node")

	// ErrUnknownNode is returned by [DAG.AddEdge] when an endpoint was never
	// added.
	ErrUnknownNode = errors.New("unknown node")

	// ErrRowOrder is returned by [DAG.Validate] when an edge does not point
	// to a lower row.
	ErrRowOrder = errors.New("edge does not point downward")

	// ErrCycle is returned by [DAG.TopoOrder] and [DAG.Validate].
	ErrCycle = errors.New("graph contains a cycle")
)

// Metadata holds free-form attributes of a node or of the whole graph.
type Metadata map[string]any

// Bool returns the boolean stored under key, false when absent.
func (m Metadata) Bool(key string) bool {
	b, _ := m[key].(bool)
	return b
}

// Int returns the integer stored under key, 0 when absent.
func (m Metadata) Int(key string) int {
	i, _ := m[key].(int)
	return i
}

// String returns the string stored under key, "" when absent.
func (m Metadata) String(key string) string {
	s, _ := m[key].(string)
	return s
}

// Node is a vertex. Row is its depth below the roots.
type Node struct {
	ID   string
	Row  int
	Meta Metadata
}

// Edge points from a declaring node to the node it declares.
type Edge struct {
	From string
	To   string
}

// DAG is a directed graph whose nodes and edges keep their insertion order.
// Use [New] to create one; it is not safe for concurrent use.
type DAG struct {
	meta  Metadata
	nodes []*Node
	index map[string]int
	edges []Edge
	out   [][]int
	in    [][]int
}

// New returns an empty graph carrying meta, which may be nil.
func New(meta Metadata) *DAG {
	if meta == nil {
		meta = Metadata{}
	}
	return &DAG{meta: meta, index: make(map[string]int)}
}

// Meta returns the graph-level metadata.
func (d *DAG) Meta() Metadata { return d.meta }

// AddNode adds n, giving it an empty Meta when it has none.
func (d *DAG) AddNode(n Node) error {
	if n.ID == "" {
		return ErrEmptyID
	}
	if _, ok := d.index[n.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateNode, n.ID)
	}
	if n.Meta == nil {
		n.Meta = Metadata{}
	}
	d.index[n.ID] = len(d.nodes)
	d.nodes = append(d.nodes, &n)
	d.out = append(d.out, nil)
	d.in = append(d.in, nil)
	return nil
}

// AddEdge connects two nodes that were added before.
func (d *DAG) AddEdge(e Edge) error {
	from, ok := d.index[e.From]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNode, e.From)
	}
	to, ok := d.index[e.To]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNode, e.To)
	}
	d.edges = append(d.edges, e)
	d.out[from] = append(d.out[from], to)
	d.in[to] = append(d.in[to], from)
	return nil
}

func (d *DAG) Node(id string) (*Node, bool) {
	i, ok := d.index[id]
	if !ok {
		return nil, false
	}
	return d.nodes[i], true
}

// Nodes returns the graph's nodes in insertion order.
func (d *DAG) Nodes() []*Node { return slices.Clone(d.nodes) }

// Edges returns the edges in insertion order.
func (d *DAG) Edges() []Edge { return slices.Clone(d.edges) }

func (d *DAG) Len() int { return len(d.nodes) }

// Children returns the IDs id points to.
func (d *DAG) Children(id string) []string { return d.ids(d.out, id) }

// Parents returns the IDs pointing to id.
func (d *DAG) Parents(id string) []string { return d.ids(d.in, id) }

func (d *DAG) ids(adj [][]int, id string) []string {
	i, ok := d.index[id]
	if !ok {
		return nil
	}
	out := make([]string, len(adj[i]))
	for k, j := range adj[i] {
		out[k] = d.nodes[j].ID
	}
	return out
}

// Roots returns the nodes nothing points to.
func (d *DAG) Roots() []*Node { return d.filter(func(i int) bool { return len(d.in[i]) == 0 }) }

// Leaves returns the nodes that point nowhere.
func (d *DAG) Leaves() []*Node { return d.filter(func(i int) bool { return len(d.out[i]) == 0 }) }

// Row returns the nodes of one row.
func (d *DAG) Row(row int) []*Node { return d.filter(func(i int) bool { return d.nodes[i].Row == row }) }

func (d *DAG) filter(keep func(i int) bool) []*Node {
	var out []*Node
	for i, n := range d.nodes {
		if keep(i) {
			out = append(out, n)
		}
	}
	return out
}

// Rows returns the distinct rows in ascending order.
func (d *DAG) Rows() []int {
	var rows []int
	for _, n := range d.nodes {
		if !slices.Contains(rows, n.Row) {
			rows = append(rows, n.Row)
		}
	}
	slices.Sort(rows)
	return rows
}

// TopoOrder returns the node IDs so that every edge points forward. Ties
// keep insertion order.
func (d *DAG) TopoOrder() ([]string, error) {
	pending := make([]int, len(d.nodes))
	var ready []int
	for i := range d.nodes {
		if pending[i] = len(d.in[i]); pending[i] == 0 {
			ready = append(ready, i)
		}
	}

	order := make([]string, 0, len(d.nodes))
	for len(ready) > 0 {
		i := ready[0]
		ready = ready[1:]
		order = append(order, d.nodes[i].ID)
		for _, j := range d.out[i] {
			if pending[j]--; pending[j] == 0 {
				ready = append(ready, j)
			}
		}
	}
	if len(order) != len(d.nodes) {
		return nil, ErrCycle
	}
	return order, nil
}

// Validate checks that every edge points to a lower row, which also rules
// out cycles.
func (d *DAG) Validate() error {
	for _, e := range d.edges {
		from, to := d.nodes[d.index[e.From]], d.nodes[d.index[e.To]]
		if to.Row <= from.Row {
			return fmt.Errorf("%w: %s (row %d) -> %s (row %d)", ErrRowOrder, e.From, from.Row, e.To, to.Row)
		}
	}
	return nil
}

// NodeIDs returns the IDs of nodes.
func NodeIDs(nodes []*Node) []string {
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	return ids
}
