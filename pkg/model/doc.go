// Package model defines the data types shared by the resolver, the
// repositories and the merge tooling.
//
// # Identities
//
// [ArtifactID] is a comparable (group, name, type, version) tuple. Identities
// are parsed from "group:name[:type]:version" strings; the type defaults to
// [DefaultType]. An identity without a version acts as a pattern and is
// matched with [ArtifactID.Matches].
//
// # Artifacts, Paths and PathSpecs
//
// An [Artifact] declares named buckets ([Path]) and dependencies. Each
// [Dependency] carries one or more [PathSpec] values that assign the
// dependency's From bucket to the declaring artifact's To bucket:
//
//	root := model.NewArtifact(model.MustParseID("com.acme:app:1.0"))
//	root.AddPath(model.NewPath("runtime", "runtime classpath"))
//	root.AddDependency(model.NewDependency(
//	    model.MustParseID("org.slf4j:slf4j-api:2.0.9"),
//	    &model.PathSpec{From: "runtime", To: "runtime"},
//	))
//
// # Resolution Metadata
//
// [ResolvedPath] keeps the per-run metadata (declared-by parent, conflict
// markers, override markers) in a side table keyed by identity, so artifacts
// obtained from a shared repository cache are never annotated in place.
package model
