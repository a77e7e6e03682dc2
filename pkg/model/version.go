package model

import (
	"strings"

	"github.com/matzehuels/buildpath/pkg/errors"
)

const rangeGrammar = `"*", "1.0", "[1.0,2.0)", "(,1.5]" or a comma-joined union of intervals`

// CompareVersions compares two version strings segment by segment.
//
// Segments are separated by '.' and '-'. Two numeric segments compare
// numerically; a numeric segment sorts after a textual qualifier; textual
// segments compare case-insensitively. A missing segment counts as "0"
// against a numeric one and sorts after a textual one, so "1.0" equals
// "1.0.0" and "1.0-SNAPSHOT" sorts before "1.0".
func CompareVersions(a, b string) int {
	as, bs := splitVersion(a), splitVersion(b)
	for i := range max(len(as), len(bs)) {
		var x, y string
		if i < len(as) {
			x = as[i]
		}
		if i < len(bs) {
			y = bs[i]
		}
		if c := compareSegment(x, y); c != 0 {
			return c
		}
	}
	return 0
}

func splitVersion(v string) []string {
	if v == "" {
		return nil
	}
	return strings.FieldsFunc(v, func(r rune) bool { return r == '.' || r == '-' })
}

func compareSegment(x, y string) int {
	xn, yn := isNumeric(x), isNumeric(y)
	switch {
	case x == "" && y == "":
		return 0
	case x == "":
		if yn {
			return compareNumeric("0", y)
		}
		return 1
	case y == "":
		if xn {
			return compareNumeric(x, "0")
		}
		return -1
	case xn && yn:
		return compareNumeric(x, y)
	case xn:
		return 1
	case yn:
		return -1
	default:
		return strings.Compare(strings.ToLower(x), strings.ToLower(y))
	}
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// compareNumeric compares digit strings of arbitrary length.
func compareNumeric(x, y string) int {
	x = strings.TrimLeft(x, "0")
	y = strings.TrimLeft(y, "0")
	if len(x) != len(y) {
		if len(x) < len(y) {
			return -1
		}
		return 1
	}
	return strings.Compare(x, y)
}

// VersionRange is a union of version intervals used by override patterns.
// A nil *VersionRange matches every version.
type VersionRange struct {
	raw       string
	intervals []interval
}

type interval struct {
	lower, upper       string // empty means unbounded
	lowerInc, upperInc bool
}

func (iv interval) contains(v string) bool {
	if iv.lower != "" {
		c := CompareVersions(v, iv.lower)
		if c < 0 || (c == 0 && !iv.lowerInc) {
			return false
		}
	}
	if iv.upper != "" {
		c := CompareVersions(v, iv.upper)
		if c > 0 || (c == 0 && !iv.upperInc) {
			return false
		}
	}
	return true
}

// ParseVersionRange parses a version range. "" and "*" return nil (any
// version); a bare version matches exactly that version (by
// [CompareVersions]); bracketed intervals follow Maven's notation.
func ParseVersionRange(s string) (*VersionRange, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "*" {
		return nil, nil
	}
	if s[0] != '[' && s[0] != '(' {
		if err := errors.ValidateVersion(s); err != nil {
			return nil, &errors.FormatError{Input: s, Grammar: rangeGrammar, Reason: errors.UserMessage(err)}
		}
		return &VersionRange{raw: s, intervals: []interval{{lower: s, upper: s, lowerInc: true, upperInc: true}}}, nil
	}

	r := &VersionRange{raw: s}
	rest := s
	for rest != "" {
		end := strings.IndexAny(rest, "])")
		if end < 0 || (rest[0] != '[' && rest[0] != '(') {
			return nil, &errors.FormatError{Input: s, Grammar: rangeGrammar, Reason: "unterminated interval"}
		}
		iv, err := parseInterval(rest[:end+1])
		if err != nil {
			return nil, &errors.FormatError{Input: s, Grammar: rangeGrammar, Reason: err.Error()}
		}
		r.intervals = append(r.intervals, iv)
		rest = strings.TrimSpace(rest[end+1:])
		if rest != "" {
			if rest[0] != ',' {
				return nil, &errors.FormatError{Input: s, Grammar: rangeGrammar, Reason: "intervals must be separated by ','"}
			}
			rest = strings.TrimSpace(rest[1:])
			if rest == "" {
				return nil, &errors.FormatError{Input: s, Grammar: rangeGrammar, Reason: "trailing ','"}
			}
		}
	}
	return r, nil
}

func parseInterval(s string) (interval, error) {
	iv := interval{lowerInc: s[0] == '[', upperInc: s[len(s)-1] == ']'}
	body := s[1 : len(s)-1]
	bounds := strings.Split(body, ",")
	switch len(bounds) {
	case 1:
		v := strings.TrimSpace(bounds[0])
		if v == "" || !iv.lowerInc || !iv.upperInc {
			return iv, errors.New(errors.ErrCodeInvalidFormat, "single-version interval must be [v]")
		}
		iv.lower, iv.upper = v, v
	case 2:
		iv.lower, iv.upper = strings.TrimSpace(bounds[0]), strings.TrimSpace(bounds[1])
		if iv.lower != "" && iv.upper != "" && CompareVersions(iv.lower, iv.upper) > 0 {
			return iv, errors.New(errors.ErrCodeInvalidFormat, "lower bound %s exceeds upper bound %s", iv.lower, iv.upper)
		}
	default:
		return iv, errors.New(errors.ErrCodeInvalidFormat, "interval %s has too many bounds", s)
	}
	return iv, nil
}

// Contains reports whether v lies in the range. A nil range contains every
// version, including the empty one.
func (r *VersionRange) Contains(v string) bool {
	if r == nil {
		return true
	}
	for _, iv := range r.intervals {
		if iv.contains(v) {
			return true
		}
	}
	return false
}

// String returns the range as it was written, or "*" for a nil range.
func (r *VersionRange) String() string {
	if r == nil {
		return "*"
	}
	return r.raw
}
