// Package domainerrors defines the coded errors shared by services, stores,
// and transport. Handlers translate codes to HTTP statuses; services wrap
// store errors with the code the caller should act on.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies an error for the boundary that has to act on it.
type Code string

const (
	// CodeNotFound marks a missing referenced entity. Never retried.
	CodeNotFound Code = "not_found"
	// CodeInvalidOperation marks a well-formed request that violates a
	// business rule. Surfaced with a human-readable reason.
	CodeInvalidOperation Code = "invalid_operation"
	// CodeInvalidInput marks input rejected before reaching domain logic.
	CodeInvalidInput Code = "invalid_input"
	// CodeInternal marks infrastructure failures. Details stay server-side.
	CodeInternal Code = "internal_error"
)

// Error carries a code plus a message safe to show at the boundary.
type Error struct {
	Code    Code
	Message string
	err     error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.err }

// New creates a coded error.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(code Code, message string, err error) *Error {
	return &Error{Code: code, Message: message, err: err}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// CodeOf extracts the code from err, defaulting to CodeInternal so unknown
// failures never leak details through the boundary.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// MessageOf extracts the boundary-safe message from err, if any.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return ""
}

// ToHTTPStatus maps an error code to its HTTP response status.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeInvalidOperation, CodeInvalidInput:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
