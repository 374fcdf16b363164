// Package apperr defines the error kinds shared by the store, router and
// HTTP layers, and their mapping to response status codes.
package apperr

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

var (
	ErrValidation        = errors.New("validation error")
	ErrUpload            = fmt.Errorf("%w: upload", ErrValidation)
	ErrDuplicate         = errors.New("duplicate")
	ErrAuth              = errors.New("invalid credentials")
	ErrNotFound          = errors.New("not found")
	ErrPersistence       = errors.New("persistence error")
	ErrResourceExhausted = errors.New("resource exhausted")
)

// Validation returns an ErrValidation carrying a human readable message.
func Validation(format string, args ...any) error {
	return &messageError{kind: ErrValidation, msg: fmt.Sprintf(format, args...)}
}

// Upload returns an ErrUpload carrying a human readable message.
func Upload(msg string) error {
	return &messageError{kind: ErrUpload, msg: msg}
}

// Duplicate returns an ErrDuplicate carrying a human readable message.
func Duplicate(msg string) error {
	return &messageError{kind: ErrDuplicate, msg: msg}
}

// Persistence wraps a store or blob failure.
func Persistence(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrPersistence, op, err)
}

type messageError struct {
	kind error
	msg  string
}

func (e *messageError) Error() string { return e.msg }

func (e *messageError) Unwrap() error { return e.kind }

// Status maps an error to the HTTP status code it should surface as.
func Status(err error) int {
	switch {
	case err == nil:
		return fiber.StatusOK
	case errors.Is(err, ErrPersistence):
		return fiber.StatusInternalServerError
	case errors.Is(err, ErrValidation), errors.Is(err, ErrDuplicate):
		return fiber.StatusBadRequest
	case errors.Is(err, ErrAuth):
		return fiber.StatusUnauthorized
	case errors.Is(err, ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, ErrResourceExhausted):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// Message returns the text that is safe to show to a client. Internal
// failures are reported generically.
func Message(err error) string {
	switch {
	case errors.Is(err, ErrPersistence):
		return "Internal server error"
	case errors.Is(err, ErrValidation), errors.Is(err, ErrDuplicate), errors.Is(err, ErrNotFound):
		return err.Error()
	case errors.Is(err, ErrAuth):
		return "Invalid email or password"
	case errors.Is(err, ErrResourceExhausted):
		return "Server is busy, please try again"
	default:
		return "Internal server error"
	}
}

// Code is a short machine readable identifier for an error, used in
// realtime error events.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrPersistence):
		return "persistence_error"
	case errors.Is(err, ErrUpload):
		return "upload_error"
	case errors.Is(err, ErrValidation):
		return "validation_error"
	case errors.Is(err, ErrDuplicate):
		return "duplicate_error"
	case errors.Is(err, ErrAuth):
		return "auth_error"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrResourceExhausted):
		return "resource_exhausted"
	default:
		return "persistence_error"
	}
}

// Classify returns err unchanged when it already carries one of the kinds
// above, and wraps it as ErrPersistence otherwise.
func Classify(op string, err error) error {
	if err == nil {
		return nil
	}
	for _, kind := range []error{ErrValidation, ErrDuplicate, ErrAuth, ErrNotFound, ErrPersistence, ErrResourceExhausted} {
		if errors.Is(err, kind) {
			return err
		}
	}
	return Persistence(op, err)
}
