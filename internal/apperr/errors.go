// Package apperr defines the closed set of error kinds the HTTP surface is
// allowed to expose. Provider-side failures are normalized into one of these
// at the boundary where they are first observed; raw provider detail goes to
// the logs, never to a response body.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrBadRequest         = errors.New("bad request")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not found")
	ErrInternal           = errors.New("internal error")
)

// Error tags a human-readable message with one of the sentinel kinds above.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// E builds a tagged error. An unknown kind is treated as ErrInternal.
func E(kind error, message string) error {
	if kind == nil {
		kind = ErrInternal
	}
	return &Error{Kind: kind, Message: message}
}

// Message returns the client-facing text for err, falling back to a generic
// message per kind so provider internals never leak by accident.
func Message(err error) string {
	var tagged *Error
	if errors.As(err, &tagged) && tagged.Message != "" {
		return tagged.Message
	}
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return "Invalid credentials"
	case errors.Is(err, ErrBadRequest):
		return "Invalid request"
	case errors.Is(err, ErrUnauthorized):
		return "Unauthorized access"
	case errors.Is(err, ErrForbidden):
		return "Unauthorized access"
	case errors.Is(err, ErrNotFound):
		return "Not found"
	default:
		return "Internal server error"
	}
}

// Status maps an error kind to its HTTP status code.
func Status(err error) int {
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
