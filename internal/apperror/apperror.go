// Package apperror defines the application's error taxonomy.
//
// Services return these typed errors; the HTTP layer maps them to status
// codes in one place (handler/response.go). Sentinel errors are matched with
// errors.Is, which works through any fmt.Errorf("%w") wrapping the service
// layer adds on the way up.
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
	ErrUpload       = errors.New("upload error")
)

// AppError carries a sentinel for classification plus a human-readable
// message safe to expose in a response body.
type AppError struct {
	Err     error  // sentinel above
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

func Conflict(message string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: message,
	}
}

// Unauthorized covers both "no valid session" and "bad credentials".
// For login failures the message must stay generic — the same text for an
// unknown email and a wrong password, so responses can't be used to
// enumerate registered addresses.
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}

// UploadFailed marks a rejected or failed file upload (wrong MIME type,
// size over the ceiling, blob store failure).
func UploadFailed(message string) *AppError {
	return &AppError{
		Err:     ErrUpload,
		Message: message,
	}
}
