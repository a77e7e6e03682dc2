package pathspec

import (
	"strings"

	"github.com/matzehuels/buildpath/pkg/errors"
	"github.com/matzehuels/buildpath/pkg/model"
)

// Grammars reported in format errors.
const (
	Grammar         = "toId[?|!][<|+|=][fromId][(opt,...)]"
	RelativeGrammar = "*[?|!][<|+|=][fromId][(opt,...)]"
)

// relativeTo is the placeholder written in place of the to id by the
// root-relative form.
const relativeTo = "*"

const headStops = "?!<+=("

// Parse parses a full shorthand such as "compile", "compile?",
// "compile<runtime(a,-b)" or "test+compile".
//
// From defaults to [model.DefaultFrom]. Descend and Mandatory stay nil unless
// a marker sets them. The returned spec has no owning dependency.
func Parse(s string) (*model.PathSpec, error) {
	return parse(s, false)
}

// ParseRelative parses the root-relative form "*[?|!][<|+|=][fromId][(opts)]"
// used where the to id is implied. The returned spec has an empty To.
func ParseRelative(s string) (*model.PathSpec, error) {
	return parse(s, true)
}

// MustParse is like [Parse] but panics on error.
func MustParse(s string) *model.PathSpec {
	spec, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return spec
}

func parse(input string, relative bool) (*model.PathSpec, error) {
	grammar := Grammar
	if relative {
		grammar = RelativeGrammar
	}
	fail := func(reason string) error {
		return &errors.FormatError{Input: input, Grammar: grammar, Reason: reason}
	}

	sc := newScanner(strings.TrimSpace(input))
	spec := &model.PathSpec{From: model.DefaultFrom}

	to := sc.until(headStops)
	switch {
	case relative && to != relativeTo:
		return nil, fail("root-relative shorthand must start with '*'")
	case !relative && to == relativeTo:
		return nil, fail("'*' is only valid in root-relative shorthands")
	case !relative:
		if err := errors.ValidatePathID(to); err != nil {
			return nil, fail("to id: " + errors.UserMessage(err))
		}
		spec.To = to
	}

	if c, ok := sc.accept(string([]byte{markOptional, markMandatory})); ok {
		spec.Mandatory = model.Bool(c == markMandatory)
	}

	if c, ok := sc.accept(string([]byte{opDescend, opNoDescend, opDefault})); ok {
		switch c {
		case opDescend:
			spec.Descend = model.Bool(true)
		case opNoDescend:
			spec.Descend = model.Bool(false)
		}
		if from := sc.until(headStops); from != "" {
			if err := errors.ValidateIDField("from id", from); err != nil {
				return nil, fail(errors.UserMessage(err))
			}
			spec.From = from
		}
	}

	if sc.peek() == groupOpen {
		opts, err := sc.group()
		if err != nil {
			return nil, fail(err.Error())
		}
		if _, err := ParseOptions(opts); err != nil {
			return nil, fail("options: " + reason(err))
		}
		spec.Options = strings.TrimSpace(opts)
	}

	if !sc.eof() {
		switch c := sc.peek(); {
		case strings.IndexByte("?!", c) >= 0:
			return nil, fail(sc.errorf("mandatory marker '%c' must directly follow the to id", c).Error())
		case strings.IndexByte("<+=", c) >= 0:
			return nil, fail(sc.errorf("duplicate descend operator '%c'", c).Error())
		default:
			return nil, fail(sc.errorf("unexpected '%c'", c).Error())
		}
	}
	return spec, nil
}

// Format renders spec in shorthand notation. Markers are emitted only where
// the spec differs from defaults (the declared Path the spec targets); a nil
// defaults emits every explicitly set marker. "=runtime" is never written
// because it is implied.
func Format(spec *model.PathSpec, defaults *model.Path) string {
	return format(spec.To, spec, defaults)
}

// FormatRelative renders spec in root-relative notation.
func FormatRelative(spec *model.PathSpec, defaults *model.Path) string {
	return format(relativeTo, spec, defaults)
}

func format(to string, spec *model.PathSpec, defaults *model.Path) string {
	var b strings.Builder
	b.WriteString(to)

	if m := spec.Mandatory; m != nil && (defaults == nil || *m != defaults.Mandatory) {
		if *m {
			b.WriteByte(markMandatory)
		} else {
			b.WriteByte(markOptional)
		}
	}

	var op byte
	if d := spec.Descend; d != nil && (defaults == nil || *d != defaults.Descend) {
		op = opNoDescend
		if *d {
			op = opDescend
		}
	}
	from := spec.From
	if from == model.DefaultFrom {
		from = ""
	}
	if from != "" && op == 0 {
		op = opDefault
	}
	if op != 0 {
		b.WriteByte(op)
		b.WriteString(from)
	}

	if spec.Options != "" {
		b.WriteByte(groupOpen)
		b.WriteString(spec.Options)
		b.WriteByte(groupClose)
	}
	return b.String()
}

func reason(err error) string {
	if fe, ok := err.(*errors.FormatError); ok && fe.Reason != "" {
		return fe.Reason
	}
	return err.Error()
}
