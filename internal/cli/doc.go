// Package cli implements the buildpath command-line interface.
//
// # Commands
//
//   - resolve: resolve one path of a root artifact and print it
//   - merge: resolve several roots concurrently and merge their paths
//   - align: override the versions of one path with those of another
//   - shorthand: parse path spec shorthands
//   - paths: list the paths an artifact declares
//   - cache: inspect or clear the metadata cache
//
// Roots are given either as descriptor files (TOML or YAML) or as
// identities looked up in the repository chain. The chain consists of every
// --repo directory followed by the --remote Maven repository.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The logger is
// carried through the command context.
package cli
