// Package pathspec parses and formats the path-spec shorthand and the
// per-dependency option grammar.
//
// # Shorthand
//
//	toId[?|!][<|+|=][fromId][(opt,...)]
//
// "?" makes the spec optional and "!" mandatory. "<" forces descent into the
// dependency's own dependencies, "+" stops it, and "=" leaves the choice to
// the declared path's default. fromId names the dependency bucket to read
// from and defaults to "runtime", so "compile(a)" equals "compile=runtime(a)".
// A from id can only follow a descend operator.
//
// The root-relative form replaces toId with "*" and yields a spec with an
// empty To; it is used where the target path is implied, such as the
// replacement specs of an override.
//
// # Options
//
//	[-][group:]name[@version][(opt,...)]
//
// Options are comma separated at the top level. A bare name force-includes
// an optional dependency, a leading "-" excludes one, "@version" pins the
// matched dependency, and a parenthesised group applies one level deeper.
//
// Both grammars share one scanner. Every syntax problem is reported as an
// [errors.FormatError] carrying the offending text and the expected grammar.
package pathspec
