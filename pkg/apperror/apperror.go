package apperror

import (
	"fmt"
	"net/http"
)

// Kind classifies an API failure and fixes its HTTP status code.
type Kind int

const (
	KindBadRequest Kind = iota
	KindNotFound
	KindConflict
	KindInternal
)

func (k Kind) status() int {
	switch k {
	case KindBadRequest:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error is a failure carrying the message and status emitted to clients.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Status returns the HTTP status code for the error's kind
func (e *Error) Status() int {
	return e.Kind.status()
}

// BadRequest creates a 400 error for missing or malformed input
func BadRequest(message string) *Error {
	return &Error{Kind: KindBadRequest, Message: message}
}

// NotFound creates a 404 error for an absent entity
func NotFound(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Conflict creates a 409 error for a uniqueness or reference violation
func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// Internal creates a 500 error wrapping an unclassified failure
func Internal(message string) *Error {
	return &Error{Kind: KindInternal, Message: message}
}
