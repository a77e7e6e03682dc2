// Package render exports resolved paths as graphs.
//
// [Graph] turns a [model.ResolvedPath] into a [dag.DAG] whose edges run from
// the artifact that declared a dependency to the dependency itself. Parents
// that are not entries of the path, typically the root artifact the path was
// resolved for, become extra nodes flagged with [MetaRoot]. Conflict and
// override markers of the path are copied into node metadata.
//
// The graph can then be written as JSON with [WriteJSON], as Graphviz DOT
// with [ToDOT], or rendered to SVG with [SVG]:
//
//	g := render.Graph(path)
//	dot := render.ToDOT(g, render.Options{})
//	svg, err := render.SVG(ctx, dot)
package render
