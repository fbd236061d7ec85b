// Package apperror defines the application's error taxonomy.
//
// Services and repositories return these errors; the HTTP layer maps them
// to status codes in one place. Sentinels are matched with errors.Is, the
// wrapping *AppError carries the human-readable message.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation error")
	ErrConflict   = errors.New("conflict")
	ErrGeneration = errors.New("generation failed")
)

type AppError struct {
	Err     error  // sentinel this error wraps
	Message string // human-readable error message
	Field   string // optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

func Conflict(resource, id string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s already exists with id %s", resource, id),
	}
}

// GenerationFailed wraps an upstream AI failure. HTTP handlers map this
// to 500; the message is safe to surface to the client.
func GenerationFailed(message string) *AppError {
	return &AppError{
		Err:     ErrGeneration,
		Message: message,
	}
}
