package model

// DefaultFrom is the bucket a path spec reads from when none is named.
const DefaultFrom = PathRuntime

// PathSpec assigns a dependency's From bucket to the declaring artifact's To
// bucket.
//
// Descend and Mandatory are tri-state: nil means "take the default of the
// declared Path named by To". Options is the raw option group without its
// enclosing parentheses.
type PathSpec struct {
	From      string
	To        string
	Options   string
	Descend   *bool
	Mandatory *bool

	// Dependency owning this spec. Set by [Dependency.AddPathSpec].
	Dependency *Dependency
}

// Bool returns a pointer to b, for populating tri-state fields.
func Bool(b bool) *bool { return &b }

// IsDescend returns the effective descend flag, falling back to def.
func (s *PathSpec) IsDescend(def bool) bool {
	if s.Descend != nil {
		return *s.Descend
	}
	return def
}

// IsMandatory returns the effective mandatory flag, falling back to def.
func (s *PathSpec) IsMandatory(def bool) bool {
	if s.Mandatory != nil {
		return *s.Mandatory
	}
	return def
}

// Inherit returns a copy of s whose unset fields are taken from base. The
// copy keeps base's owning dependency.
func (s *PathSpec) Inherit(base *PathSpec) *PathSpec {
	c := s.Clone()
	if c.From == "" {
		c.From = base.From
	}
	if c.To == "" {
		c.To = base.To
	}
	if c.Options == "" {
		c.Options = base.Options
	}
	if c.Descend == nil && base.Descend != nil {
		c.Descend = Bool(*base.Descend)
	}
	if c.Mandatory == nil && base.Mandatory != nil {
		c.Mandatory = Bool(*base.Mandatory)
	}
	c.Dependency = base.Dependency
	return c
}

// Clone returns a copy of s with its own tri-state pointers. The owning
// dependency reference is shared.
func (s *PathSpec) Clone() *PathSpec {
	c := *s
	if s.Descend != nil {
		c.Descend = Bool(*s.Descend)
	}
	if s.Mandatory != nil {
		c.Mandatory = Bool(*s.Mandatory)
	}
	return &c
}

// Equal reports structural equality, including the identity of the owning
// dependency.
func (s *PathSpec) Equal(o *PathSpec) bool {
	if s == nil || o == nil {
		return s == o
	}
	if s.From != o.From || s.To != o.To || s.Options != o.Options {
		return false
	}
	if !equalTri(s.Descend, o.Descend) || !equalTri(s.Mandatory, o.Mandatory) {
		return false
	}
	switch {
	case s.Dependency == nil && o.Dependency == nil:
		return true
	case s.Dependency == nil || o.Dependency == nil:
		return false
	default:
		return s.Dependency.ID == o.Dependency.ID
	}
}

func equalTri(a, b *bool) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
