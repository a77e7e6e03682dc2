// Package repository provides the artifact sources a [resolver.Resolver]
// reads from.
//
// All implementations satisfy [resolver.Repository] and report a missing
// identity with an [errors.UnresolvedArtifactError] naming the locations
// they tried:
//
//   - [Memory] holds artifacts in a map
//   - [Dir] reads TOML or YAML descriptors from a directory tree
//   - [Maven] reads POMs from a remote Maven repository
//   - [Chain] consults several repositories in order
//   - [Caching] memoises another repository in a bounded LRU
//
// A typical command-line setup layers them:
//
//	repo := repository.NewCaching(repository.NewChain(
//	    repository.NewDir("./repo"),
//	    repository.NewMaven(repository.MavenOptions{Cache: fileCache}),
//	), 0)
//
// # Descriptors
//
// [LoadDescriptor] reads the descriptor format used by [Dir] and by the
// command line for root artifacts. Dependencies list their path specs in
// shorthand form, for example "test<runtime" or "compile?(opt)".
package repository
