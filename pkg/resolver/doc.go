// Package resolver walks an artifact's dependency graph along path specs and
// flattens it into a [model.ResolvedPath].
//
// # Algorithm
//
// Resolving path "runtime" of a root artifact visits every dependency the
// root assigns to "runtime". For each such edge:
//
//  1. The edge is skipped when the branch carries no inclusion option, the
//     spec is optional and no parent option forced it in.
//  2. Otherwise the artifact is fetched from the [Repository], cloned and
//     added to the path with the parent recorded as its declared-by.
//  3. The walk stops when the branch carries no inclusion option and the
//     spec does not descend.
//  4. Otherwise the dependencies the fetched artifact assigns to the spec's
//     From bucket are matched against the branch options and followed.
//
// Overrides flow downwards: a branch applies its parents' overrides first and
// the visited artifact's own overrides after them, and the first match wins.
//
// # Options
//
// Options such as "runtime(x(y),-z,w@2.0)" include optional dependencies
// (x, and y one level below it), exclude others (z), and pin versions (w).
// A bare name must be unambiguous among the dependencies that target the same
// bucket; options nothing consumed are reported as errors.
//
// # Errors
//
// Every failure is typed: [errors.CycleError] carries the descent stack,
// [errors.AmbiguousOptionError], [errors.UnmatchedOptionError] and
// [errors.ConflictingOptionError] report authoring mistakes, and
// [errors.LicensingStubError] is returned when a stub without a local copy is
// resolved while stubs are not permitted.
package resolver
