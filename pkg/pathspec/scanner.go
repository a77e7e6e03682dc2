package pathspec

import (
	"fmt"
	"strings"
)

// Delimiters of the shorthand grammar.
const (
	markOptional  = '?'
	markMandatory = '!'
	opDescend     = '<'
	opNoDescend   = '+'
	opDefault     = '='
	groupOpen     = '('
	groupClose    = ')'
	optionSep     = ','
	optionExclude = '-'
	optionVersion = '@'
	groupSep      = ':'
)

// scanner is a byte cursor shared by the shorthand and option parsers.
type scanner struct {
	src string
	pos int
}

func newScanner(s string) *scanner {
	return &scanner{src: s}
}

func (s *scanner) eof() bool { return s.pos >= len(s.src) }

// peek returns the next byte, or 0 at end of input.
func (s *scanner) peek() byte {
	if s.eof() {
		return 0
	}
	return s.src[s.pos]
}

// accept consumes the next byte if it is one of chars.
func (s *scanner) accept(chars string) (byte, bool) {
	c := s.peek()
	if c != 0 && strings.IndexByte(chars, c) >= 0 {
		s.pos++
		return c, true
	}
	return 0, false
}

// until consumes bytes up to (not including) the first byte in stops.
func (s *scanner) until(stops string) string {
	start := s.pos
	for !s.eof() && strings.IndexByte(stops, s.src[s.pos]) < 0 {
		s.pos++
	}
	return s.src[start:s.pos]
}

// group consumes a balanced parenthesised group and returns its contents.
// The scanner must be positioned on the opening parenthesis.
func (s *scanner) group() (string, error) {
	if s.peek() != groupOpen {
		return "", s.errorf("expected '%c'", groupOpen)
	}
	start := s.pos
	depth := 0
	for ; !s.eof(); s.pos++ {
		switch s.src[s.pos] {
		case groupOpen:
			depth++
		case groupClose:
			depth--
			if depth == 0 {
				s.pos++
				return s.src[start+1 : s.pos-1], nil
			}
		}
	}
	s.pos = start
	return "", s.errorf("unbalanced '%c'", groupOpen)
}

// errorf describes a problem at the current position. Callers wrap the
// message into a FormatError carrying the full input.
func (s *scanner) errorf(format string, args ...any) error {
	return fmt.Errorf("%s at offset %d", fmt.Sprintf(format, args...), s.pos)
}

// splitTopLevel splits s on sep outside parentheses.
func splitTopLevel(s string, sep byte) ([]string, error) {
	var parts []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case groupOpen:
			depth++
		case groupClose:
			depth--
			if depth < 0 {
				return nil, fmt.Errorf("unexpected '%c' at offset %d", groupClose, i)
			}
		case sep:
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return nil, fmt.Errorf("unbalanced '%c'", groupOpen)
	}
	return append(parts, s[start:]), nil
}
