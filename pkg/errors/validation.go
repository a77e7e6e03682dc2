package errors

import (
	"strings"
	"unicode"
)

// ReservedChars are the characters that may never appear in a group, name or
// type because the shorthand and option grammars use them as delimiters.
const ReservedChars = ":@(),!?<+=*"

// ValidateIDField validates one field (group, name or type) of an identity.
//
// The validation rules are:
//   - No empty values
//   - No whitespace or control characters
//   - None of [ReservedChars]
//   - Maximum length of 256 characters
func ValidateIDField(field, value string) error {
	if value == "" {
		return New(ErrCodeInvalidIdentity, "%s cannot be empty", field)
	}
	if len(value) > 256 {
		return New(ErrCodeInvalidIdentity, "%s too long (max 256 characters)", field)
	}
	for _, r := range value {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return New(ErrCodeInvalidIdentity, "%s %q contains whitespace or control characters", field, value)
		}
	}
	if i := strings.IndexAny(value, ReservedChars); i >= 0 {
		return New(ErrCodeInvalidIdentity, "%s %q contains reserved character %q", field, value, value[i])
	}
	return nil
}

// ValidateVersion validates a version string. Versions may contain '@', '!'
// and friends but never the identity or option-group delimiters.
func ValidateVersion(version string) error {
	if version == "" {
		return New(ErrCodeInvalidIdentity, "version cannot be empty")
	}
	for _, r := range version {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return New(ErrCodeInvalidIdentity, "version %q contains whitespace or control characters", version)
		}
	}
	if strings.ContainsAny(version, ":(),") {
		return New(ErrCodeInvalidIdentity, "version %q contains reserved characters", version)
	}
	return nil
}

// ValidatePathID validates a path (bucket) id such as "compile" or "runtime".
func ValidatePathID(id string) error {
	if id == "*" {
		return nil
	}
	return ValidateIDField("path id", id)
}
