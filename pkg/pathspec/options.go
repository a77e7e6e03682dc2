package pathspec

import (
	"strings"

	"github.com/matzehuels/buildpath/pkg/errors"
	"github.com/matzehuels/buildpath/pkg/model"
)

// OptionGrammar is the grammar of one option token.
const OptionGrammar = "[-][group:]name[@version][(opt,...)]"

// Option is one parsed token of an option group.
type Option struct {
	Raw     string // Token as written, trimmed
	Exclude bool   // Leading '-'
	Group   string // Empty for a bare name
	Name    string
	Version string // Local version override, empty when absent
	Nested  string // Option group applying one level deeper, without parentheses
}

// Split splits an option group on commas outside parentheses and trims each
// token. An empty group yields no tokens.
func Split(group string) ([]string, error) {
	if strings.TrimSpace(group) == "" {
		return nil, nil
	}
	parts, err := splitTopLevel(group, optionSep)
	if err != nil {
		return nil, &errors.FormatError{Input: group, Grammar: OptionGrammar, Reason: err.Error()}
	}
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			return nil, &errors.FormatError{Input: group, Grammar: OptionGrammar, Reason: "empty option"}
		}
		parts[i] = p
	}
	return parts, nil
}

// Join is the inverse of [Split].
func Join(tokens []string) string {
	return strings.Join(tokens, string(optionSep))
}

// ParseOptions splits and parses a whole option group, validating nested
// groups recursively.
func ParseOptions(group string) ([]Option, error) {
	tokens, err := Split(group)
	if err != nil {
		return nil, err
	}
	opts := make([]Option, 0, len(tokens))
	for _, tok := range tokens {
		o, err := ParseOption(tok)
		if err != nil {
			return nil, err
		}
		opts = append(opts, o)
	}
	return opts, nil
}

// ParseOption parses one token such as "dep", "-org.acme:dep",
// "dep@2.0" or "dep(child,-other)".
func ParseOption(token string) (Option, error) {
	raw := strings.TrimSpace(token)
	fail := func(reason string) (Option, error) {
		return Option{}, &errors.FormatError{Input: raw, Grammar: OptionGrammar, Reason: reason}
	}

	o := Option{Raw: raw}
	sc := newScanner(raw)
	if _, ok := sc.accept(string(optionExclude)); ok {
		o.Exclude = true
	}

	head := sc.until(string(groupOpen))
	if sc.peek() == groupOpen {
		nested, err := sc.group()
		if err != nil {
			return fail(err.Error())
		}
		if !sc.eof() {
			return fail(sc.errorf("unexpected '%c' after nested options", sc.peek()).Error())
		}
		if _, err := ParseOptions(nested); err != nil {
			return fail("nested: " + reason(err))
		}
		o.Nested = strings.TrimSpace(nested)
	}

	if strings.ContainsAny(head, ")"+string(optionSep)) {
		return fail("unexpected delimiter in option name")
	}
	name, version, hasVersion := strings.Cut(head, string(optionVersion))
	if hasVersion {
		if err := errors.ValidateVersion(version); err != nil {
			return fail(errors.UserMessage(err))
		}
		o.Version = version
	}
	if g, n, qualified := strings.Cut(name, string(groupSep)); qualified {
		if err := errors.ValidateIDField("group", g); err != nil {
			return fail(errors.UserMessage(err))
		}
		o.Group, name = g, n
	}
	if err := errors.ValidateIDField("name", name); err != nil {
		return fail(errors.UserMessage(err))
	}
	o.Name = name

	if o.Exclude && (o.Version != "" || o.Nested != "") {
		return fail("exclusions cannot carry a version or nested options")
	}
	return o, nil
}

// Matches reports whether the option names id. A bare name matches any
// group.
func (o Option) Matches(id model.ArtifactID) bool {
	return o.Name == id.Name && (o.Group == "" || o.Group == id.Group)
}

// Qualified reports whether the option names a group.
func (o Option) Qualified() bool { return o.Group != "" }

// String renders the option in canonical form.
func (o Option) String() string {
	var b strings.Builder
	if o.Exclude {
		b.WriteByte(optionExclude)
	}
	if o.Group != "" {
		b.WriteString(o.Group)
		b.WriteByte(groupSep)
	}
	b.WriteString(o.Name)
	if o.Version != "" {
		b.WriteByte(optionVersion)
		b.WriteString(o.Version)
	}
	if o.Nested != "" {
		b.WriteByte(groupOpen)
		b.WriteString(o.Nested)
		b.WriteByte(groupClose)
	}
	return b.String()
}

// AllExclusions reports whether opts is empty or holds only exclusions.
func AllExclusions(opts []Option) bool {
	for _, o := range opts {
		if !o.Exclude {
			return false
		}
	}
	return true
}
