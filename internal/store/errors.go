package store

import (
	"fmt"
	"net/http"
)

// Error is a persistence error with an HTTP status code.
type Error struct {
	Code    int    // HTTP status code
	Message string // User-facing message
	Err     error  // Underlying error (optional)
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error with the same code, so that variants created with
// WithMessage still satisfy errors.Is against their sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// HTTPCode returns the HTTP status code associated with this error.
func (e *Error) HTTPCode() int { return e.Code }

// WithMessage returns a new error with a custom message.
func (e *Error) WithMessage(msg string) *Error {
	return &Error{Code: e.Code, Message: msg, Err: e.Err}
}

// WithCause wraps an underlying error.
func (e *Error) WithCause(err error) *Error {
	return &Error{Code: e.Code, Message: e.Message, Err: err}
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
)

// Entity-specific variants.
var (
	ErrBookNotFound    = ErrNotFound.WithMessage("book not found")
	ErrUserNotFound    = ErrNotFound.WithMessage("user not found")
	ErrSessionNotFound = ErrNotFound.WithMessage("reading session not found")

	// ErrUsernameTaken is returned when a username collides with an existing account.
	ErrUsernameTaken = ErrAlreadyExists.WithMessage("username already taken")

	// ErrActiveSessionExists is returned when opening a session for a user who already has one open.
	ErrActiveSessionExists = ErrAlreadyExists.WithMessage("user already has an active reading session")
)
