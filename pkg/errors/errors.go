// Package errors provides structured error types for buildpath.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the resolver, repositories and CLI
//   - Machine-readable error codes for programmatic handling
//   - Structured context (identity, path, declaring chain) for rendering
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Authoring errors in shorthands, options or identities
//   - UNRESOLVED_*: Artifacts missing from every repository
//   - *_CONFLICT / CYCLE: Structural problems of the resolved graph
//   - INTERNAL_*: Unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidInput, "invalid path id: %s", id)
//	if errors.Is(err, errors.ErrCodeInvalidInput) {
//	    // Handle validation error
//	}
//
//	// Typed resolution errors carry their context
//	var amb *errors.AmbiguousOptionError
//	if stderrors.As(err, &amb) {
//	    fmt.Println(amb.Candidates)
//	}
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Authoring errors
	ErrCodeInvalidInput      Code = "INVALID_INPUT"
	ErrCodeInvalidFormat     Code = "INVALID_FORMAT"
	ErrCodeInvalidIdentity   Code = "INVALID_IDENTITY"
	ErrCodeAmbiguousOption   Code = "INVALID_AMBIGUOUS_OPTION"
	ErrCodeUnmatchedOption   Code = "INVALID_UNMATCHED_OPTION"
	ErrCodeConflictingOption Code = "INVALID_CONFLICTING_OPTION"

	// Repository errors
	ErrCodeUnresolved Code = "UNRESOLVED_ARTIFACT"
	ErrCodeNetwork    Code = "NETWORK_ERROR"

	// Graph errors
	ErrCodeCycle         Code = "CYCLE"
	ErrCodeConflict      Code = "VERSION_CONFLICT"
	ErrCodeLicensingStub Code = "LICENSING_STUB"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// ErrorCode returns the error code.
func (e *Error) ErrorCode() Code { return e.Code }

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// coded is implemented by every error type in this package.
type coded interface {
	error
	ErrorCode() Code
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for the first coded error.
func Is(err error, code Code) bool {
	return GetCode(err) == code
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if no error in the chain carries a code.
func GetCode(err error) Code {
	var c coded
	if errors.As(err, &c) {
		return c.ErrorCode()
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
