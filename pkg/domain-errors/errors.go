// Package dErrors defines the domain error taxonomy shared by all services.
//
// Services return these errors instead of transport-specific failures so the
// HTTP layer can translate them uniformly. Stores return sentinel errors
// (pkg/platform/sentinel) and services translate those into domain errors at
// the boundary.
package dErrors

import "errors"

// Code is a machine-readable error code. The string value doubles as the
// "error" field of HTTP error envelopes.
type Code string

const (
	CodeInternal       Code = "internal_error"
	CodeUnauthorized   Code = "unauthorized"
	CodeForbidden      Code = "forbidden"
	CodeNotFound       Code = "not_found"
	CodeConflict       Code = "conflict"
	CodeBadRequest     Code = "bad_request"
	CodeInvalidInput   Code = "invalid_input"
	CodeValidation     Code = "validation_error"
	CodePartialFailure Code = "partial_failure"
	CodeTimeout        Code = "timeout"
)

// Error is the domain error type. Message is safe to log; whether it is safe
// to show a caller depends on the code (see httputil.WriteError).
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap exposes the underlying cause for errors.Is/As traversal.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches by code so callers can compare against New(code, "...") targets
// without caring about the exact message.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// New creates a domain error with a code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap creates a domain error that preserves the underlying cause.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, Cause: err}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}

// Is is a convenience alias for HasCode kept for call-site readability.
func Is(err error, code Code) bool {
	return HasCode(err, code)
}

// MessageOf extracts the domain message from err without the wrapped cause,
// falling back to the raw error string for non-domain errors.
func MessageOf(err error) string {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}
	return err.Error()
}

// CodeOf extracts the domain code from err, defaulting to CodeInternal for
// non-domain errors so unexpected failures never leak details.
func CodeOf(err error) Code {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return CodeInternal
}
