package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidInput, "test message: %s", "value")

	if err.Code != ErrCodeInvalidInput {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidInput)
	}

	if err.Message != "test message: value" {
		t.Errorf("Message = %v, want %v", err.Message, "test message: value")
	}

	expected := "INVALID_INPUT: test message: value"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeNetwork, cause, "failed to fetch")

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if errors.Unwrap(err) != cause {
		t.Errorf("Unwrap() = %v, want %v", errors.Unwrap(err), cause)
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{"matching code", New(ErrCodeInvalidInput, "test"), ErrCodeInvalidInput, true},
		{"non-matching code", New(ErrCodeInvalidInput, "test"), ErrCodeNetwork, false},
		{"wrapped error", Wrap(ErrCodeNetwork, New(ErrCodeInvalidInput, "inner"), "outer"), ErrCodeNetwork, true},
		{"non-Error type", errors.New("plain error"), ErrCodeInvalidInput, false},
		{"typed error", &CycleError{Path: "runtime"}, ErrCodeCycle, true},
		{"typed error wrapped by fmt", fmt.Errorf("resolve: %w", &FormatError{Input: "x"}), ErrCodeInvalidFormat, true},
		{"nil error", nil, ErrCodeInternal, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	if got := UserMessage(New(ErrCodeInvalidInput, "bad path")); got != "bad path" {
		t.Errorf("UserMessage = %q, want %q", got, "bad path")
	}
	if got := UserMessage(errors.New("plain")); got != "plain" {
		t.Errorf("UserMessage = %q, want %q", got, "plain")
	}
}

func TestTypedErrorMessages(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want []string
	}{
		{
			name: "format",
			err:  &FormatError{Input: "compile<<runtime", Grammar: "toId[?|!][<|+|=][fromId][(opts)]", Reason: "unexpected '<'"},
			want: []string{`"compile<<runtime"`, "unexpected '<'", "toId[?|!]"},
		},
		{
			name: "unresolved",
			err:  &UnresolvedArtifactError{ID: "g:a:jar:1.0", Tried: []string{"memory", "/repo"}},
			want: []string{"g:a:jar:1.0", "memory, /repo"},
		},
		{
			name: "ambiguous",
			err:  &AmbiguousOptionError{Option: "x", Artifact: "g:root:jar:1", Path: "runtime", Candidates: []string{"g1:x:jar:1", "g2:x:jar:1"}},
			want: []string{`"x"`, "g1:x:jar:1, g2:x:jar:1", "group:name"},
		},
		{
			name: "unmatched",
			err:  &UnmatchedOptionError{Artifact: "g:a:jar:1", Path: "runtime", Options: []string{"nope"}},
			want: []string{"[nope]", "g:a:jar:1"},
		},
		{
			name: "cycle",
			err:  &CycleError{Path: "runtime", Stack: []string{"a", "b", "a"}},
			want: []string{"a -> b -> a"},
		},
		{
			name: "conflict",
			err:  &ConflictError{Conflicts: []Conflict{{Index: 1, ID: "g:c:jar", Versions: []string{"1.0", "2.0"}}}, Tree: "tree"},
			want: []string{"conflict 1: g:c:jar at 1.0, 2.0", "tree"},
		},
		{
			name: "stub",
			err:  &LicensingStubError{Artifact: "javax:jta:jar:1.0", Path: "runtime"},
			want: []string{"javax:jta:jar:1.0", "licensing stub"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, w := range tt.want {
				if !strings.Contains(msg, w) {
					t.Errorf("Error() = %q, missing %q", msg, w)
				}
			}
		})
	}
}

func TestErrorCodesAreUnique(t *testing.T) {
	codes := []Code{
		ErrCodeInvalidInput, ErrCodeInvalidFormat, ErrCodeInvalidIdentity,
		ErrCodeAmbiguousOption, ErrCodeUnmatchedOption, ErrCodeConflictingOption,
		ErrCodeUnresolved, ErrCodeNetwork, ErrCodeCycle, ErrCodeConflict,
		ErrCodeLicensingStub, ErrCodeInternal,
	}
	seen := make(map[Code]bool)
	for _, c := range codes {
		if seen[c] {
			t.Errorf("duplicate error code: %s", c)
		}
		seen[c] = true
	}
}
