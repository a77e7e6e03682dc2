package model

import (
	"cmp"
	"strings"

	"github.com/matzehuels/buildpath/pkg/errors"
)

// DefaultType is the artifact type assumed when an identity string omits it.
const DefaultType = "jar"

const (
	idGrammar      = "group:name[:type]:version"
	patternGrammar = "group:name[:type][:version]"
)

// ArtifactID identifies an artifact by group, name, type and version.
//
// ArtifactID is a comparable value type and is used directly as a map key.
// An empty Version makes it an unversioned (pattern) identity; empty
// Group/Name/Type fields act as wildcards when the id is used as a pattern
// in [ArtifactID.Matches].
type ArtifactID struct {
	Group   string
	Name    string
	Type    string
	Version string
}

// NewID creates an identity. An empty typ defaults to [DefaultType].
func NewID(group, name, typ, version string) ArtifactID {
	if typ == "" {
		typ = DefaultType
	}
	return ArtifactID{Group: group, Name: name, Type: typ, Version: version}
}

// ParseID parses "group:name:version" or "group:name:type:version".
func ParseID(s string) (ArtifactID, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	var id ArtifactID
	switch len(parts) {
	case 3:
		id = NewID(parts[0], parts[1], "", parts[2])
	case 4:
		id = NewID(parts[0], parts[1], parts[2], parts[3])
	default:
		return ArtifactID{}, &errors.FormatError{Input: s, Grammar: idGrammar, Reason: "wrong number of fields"}
	}
	if id.Version == "" {
		return ArtifactID{}, &errors.FormatError{Input: s, Grammar: idGrammar, Reason: "missing version"}
	}
	if err := id.Validate(); err != nil {
		return ArtifactID{}, &errors.FormatError{Input: s, Grammar: idGrammar, Reason: errors.UserMessage(err)}
	}
	return id, nil
}

// MustParseID is like [ParseID] but panics on error. Intended for tests and
// package-level variables.
func MustParseID(s string) ArtifactID {
	id, err := ParseID(s)
	if err != nil {
		panic(err)
	}
	return id
}

// ParsePattern parses a match pattern: "group:name", "group:name:type" or
// "group:name:type:version". Empty fields and "*" are wildcards. Unlike
// [ParseID], a three-field pattern names the type, not the version.
func ParsePattern(s string) (ArtifactID, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 4 {
		return ArtifactID{}, &errors.FormatError{Input: s, Grammar: patternGrammar, Reason: "wrong number of fields"}
	}
	for i, p := range parts {
		if p == "*" {
			parts[i] = ""
		}
	}
	var id ArtifactID
	id.Group, id.Name = parts[0], parts[1]
	if len(parts) > 2 {
		id.Type = parts[2]
	}
	if len(parts) > 3 {
		id.Version = parts[3]
	}
	fields := []struct{ name, value string }{{"group", id.Group}, {"name", id.Name}, {"type", id.Type}}
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		if err := errors.ValidateIDField(f.name, f.value); err != nil {
			return ArtifactID{}, &errors.FormatError{Input: s, Grammar: patternGrammar, Reason: errors.UserMessage(err)}
		}
	}
	return id, nil
}

// String returns "group:name:type:version", or "group:name:type" for an
// unversioned identity.
func (id ArtifactID) String() string {
	s := id.Group + ":" + id.Name + ":" + id.Type
	if id.Version != "" {
		s += ":" + id.Version
	}
	return s
}

// IsZero reports whether id is the zero identity.
func (id ArtifactID) IsZero() bool { return id == ArtifactID{} }

// Unversioned returns id with its version erased.
func (id ArtifactID) Unversioned() ArtifactID {
	id.Version = ""
	return id
}

// WithVersion returns a copy of id with the given version.
func (id ArtifactID) WithVersion(v string) ArtifactID {
	id.Version = v
	return id
}

// Matches reports whether id matches pattern. Every non-empty field of
// pattern must equal the corresponding field of id.
func (id ArtifactID) Matches(pattern ArtifactID) bool {
	return (pattern.Group == "" || pattern.Group == id.Group) &&
		(pattern.Name == "" || pattern.Name == id.Name) &&
		(pattern.Type == "" || pattern.Type == id.Type) &&
		(pattern.Version == "" || pattern.Version == id.Version)
}

// Validate checks that group, name and type are present and free of reserved
// characters, and that the version (when set) is well formed.
func (id ArtifactID) Validate() error {
	if err := errors.ValidateIDField("group", id.Group); err != nil {
		return err
	}
	if err := errors.ValidateIDField("name", id.Name); err != nil {
		return err
	}
	if err := errors.ValidateIDField("type", id.Type); err != nil {
		return err
	}
	if id.Version != "" {
		return errors.ValidateVersion(id.Version)
	}
	return nil
}

// CompareIDs orders identities by group, name, type and then version.
func CompareIDs(a, b ArtifactID) int {
	return cmp.Or(
		cmp.Compare(a.Group, b.Group),
		cmp.Compare(a.Name, b.Name),
		cmp.Compare(a.Type, b.Type),
		CompareVersions(a.Version, b.Version),
	)
}
