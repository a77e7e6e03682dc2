package model

import (
	"fmt"
	"slices"
	"strings"
)

// AllPaths is the override scope matching every path id.
const AllPaths = "*"

// Override substitutes the version and/or path specs of dependencies whose
// identity matches Pattern and whose version lies in Versions.
type Override struct {
	Paths    []string      // Scope; AllPaths matches everything
	Pattern  ArtifactID    // Group/name/type pattern; Version is ignored
	Versions *VersionRange // nil matches any version

	WithVersion   string      // Replacement version, empty to keep
	WithPathSpecs []*PathSpec // Replacement specs, matched to existing ones by From
}

// AppliesTo reports whether the override's scope covers pathID.
func (o *Override) AppliesTo(pathID string) bool {
	return slices.Contains(o.Paths, AllPaths) || slices.Contains(o.Paths, pathID)
}

// Matches reports whether id falls under the override's pattern and range.
func (o *Override) Matches(id ArtifactID) bool {
	return id.Matches(o.Pattern.Unversioned()) && o.Versions.Contains(id.Version)
}

// Clone returns a deep copy of o.
func (o *Override) Clone() *Override {
	c := *o
	c.Paths = slices.Clone(o.Paths)
	c.WithPathSpecs = make([]*PathSpec, len(o.WithPathSpecs))
	for i, s := range o.WithPathSpecs {
		c.WithPathSpecs[i] = s.Clone()
	}
	return &c
}

func (o *Override) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s:%s:%s@%s", strings.Join(o.Paths, ","),
		orStar(o.Pattern.Group), orStar(o.Pattern.Name), orStar(o.Pattern.Type), o.Versions)
	if o.WithVersion != "" {
		fmt.Fprintf(&b, " -> %s", o.WithVersion)
	}
	if n := len(o.WithPathSpecs); n > 0 {
		fmt.Fprintf(&b, " (+%d path specs)", n)
	}
	return b.String()
}

func orStar(s string) string {
	if s == "" {
		return "*"
	}
	return s
}
