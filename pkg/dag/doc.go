// Package dag holds resolved dependency paths as a graph for export.
//
// Nodes and edges keep their insertion order so exports are deterministic.
// A node's Row is its depth below the roots, and an edge points from the
// artifact that declared a dependency to the dependency, so a well-formed
// graph only has edges into lower rows ([DAG.Validate]).
//
//	g := dag.New(nil)
//	g.AddNode(dag.Node{ID: "app", Row: 0})
//	g.AddNode(dag.Node{ID: "lib", Row: 1})
//	g.AddEdge(dag.Edge{From: "app", To: "lib"})
package dag
