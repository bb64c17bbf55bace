// Package apperror defines the error taxonomy shared by the store, the
// services and the HTTP layer.
//
// Lower layers return an *AppError wrapping one of the sentinels below; the
// HTTP layer maps the sentinel to a status code with errors.Is. Anything that
// does not wrap a sentinel (upstream failures, driver errors) is treated as an
// internal error and collapses to a generic 500.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation error")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
)

type AppError struct {
	Err     error  // sentinel
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NotFound reports a lookup miss. key names the lookup field, e.g.
// NotFound("user", "externalId", "42").
func NotFound(resource, key, value string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with %s %s", resource, key, value),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// Conflict reports a uniqueness violation on key.
func Conflict(resource, key, value string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s already exists with %s %s", resource, key, value),
		Field:   key,
	}
}

// Unauthorized is returned before any upstream call when the caller did not
// supply credentials.
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}
