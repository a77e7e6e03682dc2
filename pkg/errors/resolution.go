package errors

import (
	"fmt"
	"strings"
)

// FormatError reports a malformed shorthand, option group or identity string.
// It is always an authoring error and is surfaced verbatim.
type FormatError struct {
	Input   string // The offending text, exactly as given
	Grammar string // The grammar the text was expected to follow
	Reason  string // What went wrong (optional)
}

func (e *FormatError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "invalid format %q", e.Input)
	if e.Reason != "" {
		b.WriteString(": ")
		b.WriteString(e.Reason)
	}
	if e.Grammar != "" {
		fmt.Fprintf(&b, " (expected %s)", e.Grammar)
	}
	return b.String()
}

func (e *FormatError) ErrorCode() Code { return ErrCodeInvalidFormat }

// UnresolvedArtifactError is returned by repositories when an identity cannot
// be found anywhere in the repository chain.
type UnresolvedArtifactError struct {
	ID    string   // Identity that was looked up
	Tried []string // Locations consulted, in order
}

func (e *UnresolvedArtifactError) Error() string {
	if len(e.Tried) == 0 {
		return fmt.Sprintf("artifact %s not found", e.ID)
	}
	return fmt.Sprintf("artifact %s not found (tried: %s)", e.ID, strings.Join(e.Tried, ", "))
}

func (e *UnresolvedArtifactError) ErrorCode() Code { return ErrCodeUnresolved }

// AmbiguousOptionError is returned when a bare option name matches more than
// one sibling dependency targeting the same path.
type AmbiguousOptionError struct {
	Option     string   // The option token as written
	Artifact   string   // Artifact whose dependencies were being matched
	Path       string   // Path the siblings target
	Candidates []string // Identities sharing the name
}

func (e *AmbiguousOptionError) Error() string {
	return fmt.Sprintf("option %q is ambiguous for %s path %q: matches %s; qualify it as group:name",
		e.Option, e.Artifact, e.Path, strings.Join(e.Candidates, ", "))
}

func (e *AmbiguousOptionError) ErrorCode() Code { return ErrCodeAmbiguousOption }

// UnmatchedOptionError is returned when option tokens remain after all
// dependencies of an artifact were processed.
type UnmatchedOptionError struct {
	Artifact string
	Path     string
	Options  []string
}

func (e *UnmatchedOptionError) Error() string {
	return fmt.Sprintf("options [%s] do not match any dependency of %s on path %q",
		strings.Join(e.Options, ", "), e.Artifact, e.Path)
}

func (e *UnmatchedOptionError) ErrorCode() Code { return ErrCodeUnmatchedOption }

// ConflictingOptionError is returned when two option tokens request different
// versions of the same dependency within one resolution.
type ConflictingOptionError struct {
	Dependency string // Unversioned identity
	Versions   []string
	Options    []string
}

func (e *ConflictingOptionError) Error() string {
	return fmt.Sprintf("conflicting versions %s requested for %s by options [%s]",
		strings.Join(e.Versions, " and "), e.Dependency, strings.Join(e.Options, ", "))
}

func (e *ConflictingOptionError) ErrorCode() Code { return ErrCodeConflictingOption }

// CycleError is returned when an identity reappears on the current descent stack.
type CycleError struct {
	Path  string   // Path being resolved
	Stack []string // Descent stack from the root, ending with the repeated identity
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("cycle detected resolving path %q: %s", e.Path, strings.Join(e.Stack, " -> "))
}

func (e *CycleError) ErrorCode() Code { return ErrCodeCycle }

// Conflict describes one unversioned identity resolved at several versions.
type Conflict struct {
	Index    int      // Marker index shown in the rendered tree
	ID       string   // Unversioned identity
	Versions []string // Distinct versions, in order of appearance
}

// ConflictError is returned when merged paths contain incompatible versions of
// the same artifact. Tree is the conflict-only rendering of every input path.
type ConflictError struct {
	Conflicts []Conflict
	Tree      string
}

func (e *ConflictError) Error() string {
	var b strings.Builder
	b.WriteString("version conflicts detected:")
	for _, c := range e.Conflicts {
		fmt.Fprintf(&b, "\n  conflict %d: %s at %s", c.Index, c.ID, strings.Join(c.Versions, ", "))
	}
	if e.Tree != "" {
		b.WriteString("\n")
		b.WriteString(e.Tree)
	}
	return b.String()
}

func (e *ConflictError) ErrorCode() Code { return ErrCodeConflict }

// LicensingStubError is returned when a stub artifact without a local copy is
// resolved while stubs are not permitted.
type LicensingStubError struct {
	Artifact string
	Path     string
}

func (e *LicensingStubError) Error() string {
	return fmt.Sprintf("%s on path %q is a licensing stub with no local copy; "+
		"install the licensed artifact or permit stubs", e.Artifact, e.Path)
}

func (e *LicensingStubError) ErrorCode() Code { return ErrCodeLicensingStub }
