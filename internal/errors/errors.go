// Package errors provides the structured error type shared by the API client,
// the host registry and the CLI.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes for categorizing errors.
const (
	ErrNetwork     = "NETWORK"     // request rejected or non-2xx status
	ErrValidation  = "VALIDATION"  // local field checks before submission
	ErrApplication = "APPLICATION" // 2xx response whose payload signals failure
	ErrConfig      = "CONFIG"
)

// ErrCancelled is returned when the user declines a confirmation.
var ErrCancelled = errors.New("cancelled")

// Error is a structured error with code, message, suggestion and optional cause.
type Error struct {
	Code       string
	Message    string
	Suggestion string
	Cause      error
}

// New creates a structured error with the given code, message and suggestion.
func New(code, message, suggestion string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
	}
}

// Wrap wraps err with a code and message.
func Wrap(err error, code, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// Validation is shorthand for a VALIDATION error without a cause.
func Validation(message string) *Error {
	return New(ErrValidation, message, "")
}

// Error implements the error interface. The first line is the message, the
// cause and suggestion follow on indented lines.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	if e.Cause != nil {
		b.WriteString(fmt.Sprintf(": %s", e.Cause.Error()))
	}
	if e.Suggestion != "" {
		b.WriteString(fmt.Sprintf("\n  %s", e.Suggestion))
	}
	return b.String()
}

// Unwrap returns the underlying cause for use with errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// IsCode reports whether err is a structured Error carrying code.
func IsCode(err error, code string) bool {
	if err == nil {
		return false
	}
	var hwErr *Error
	if errors.As(err, &hwErr) {
		return hwErr.Code == code
	}
	return false
}

// Code returns the code of a structured error, or "" for anything else.
func Code(err error) string {
	var hwErr *Error
	if errors.As(err, &hwErr) {
		return hwErr.Code
	}
	return ""
}

// Is and As re-export the standard helpers so callers need a single import.
func Is(err, target error) bool { return errors.Is(err, target) }

func As(err error, target any) bool { return errors.As(err, target) }
