// Package apperr defines the business-rule error taxonomy for ProgramHub.
// Guard failures are raised immediately with a descriptive message and
// surfaced to the caller without retry; the HTTP layer maps each kind to
// a status code in a central Fiber error handler.
package apperr

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Kind categorizes a business-rule violation.
type Kind string

const (
	KindNotFound  Kind = "not_found" // Referenced entity missing or inactive
	KindForbidden Kind = "forbidden" // Role or ownership check failed
	KindConflict  Kind = "conflict"  // Duplicate row or terminal-state re-entry
	KindInvalid   Kind = "invalid"   // Malformed or rule-violating input
)

// Error is a categorized business error. It wraps an optional cause.
type Error struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// NotFound creates a not-found error with a formatted message.
func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Forbidden creates a forbidden error with a formatted message.
func Forbidden(format string, args ...any) *Error {
	return &Error{Kind: KindForbidden, Message: fmt.Sprintf(format, args...)}
}

// Conflict creates a conflict error with a formatted message.
func Conflict(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// Invalid creates a validation error with a formatted message.
func Invalid(format string, args ...any) *Error {
	return &Error{Kind: KindInvalid, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a cause to the error and returns it.
func (e *Error) Wrap(cause error) *Error {
	e.cause = cause
	return e
}

// KindOf extracts the Kind from an error chain. Returns "" for
// non-business errors (infrastructure failures and the like).
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// HTTPStatus maps an error to the HTTP status code the API returns.
// Non-business errors surface as 500.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindNotFound:
		return fiber.StatusNotFound
	case KindForbidden:
		return fiber.StatusForbidden
	case KindConflict:
		return fiber.StatusConflict
	case KindInvalid:
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}
