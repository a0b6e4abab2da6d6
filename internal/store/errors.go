package store

import (
	"fmt"
	"net/http"
)

// Error is a storage error carrying the HTTP status it most closely maps to.
type Error struct {
	Code    int    // HTTP status code
	Message string // User-facing message
	Err     error  // Underlying error (optional)

	kind *Error // sentinel this error specializes, if any
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// WithMessage returns a new error of the same kind with a custom message.
func (e *Error) WithMessage(msg string) *Error {
	kind := e.kind
	if kind == nil {
		kind = e
	}
	return &Error{
		Code:    e.Code,
		Message: msg,
		Err:     e.Err,
		kind:    kind,
	}
}

// WithCause wraps an underlying error.
func (e *Error) WithCause(err error) *Error {
	kind := e.kind
	if kind == nil {
		kind = e
	}
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Err:     err,
		kind:    kind,
	}
}

// Sentinel errors.
var (
	ErrNotFound = &Error{
		Code:    http.StatusNotFound,
		Message: "resource not found",
	}

	ErrAlreadyExists = &Error{
		Code:    http.StatusConflict,
		Message: "resource already exists",
	}

	// ErrConflict is returned when a transaction lost a write race and
	// should be retried by the caller.
	ErrConflict = &Error{
		Code:    http.StatusConflict,
		Message: "transaction conflict",
	}
)
