// Package apperr defines the error taxonomy services raise towards the HTTP
// layer. Handlers translate these sentinels into status codes; everything
// else is treated as an internal error and summarised for the client.
package apperr

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

var (
	// ErrNotFound signals a missing student, teacher, course or scope.
	ErrNotFound = errors.New("not found")
	// ErrPermissionDenied signals a scope the caller does not own.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrInvalidInput signals a malformed filter, date or payload.
	ErrInvalidInput = errors.New("invalid input")
	// ErrStoreUnavailable signals a transient storage failure.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// NotFound wraps ErrNotFound with a user-safe subject.
func NotFound(subject string) error {
	return fmt.Errorf("%s: %w", subject, ErrNotFound)
}

// PermissionDenied wraps ErrPermissionDenied with a user-safe summary.
func PermissionDenied(summary string) error {
	return fmt.Errorf("%s: %w", summary, ErrPermissionDenied)
}

// InvalidInput wraps ErrInvalidInput with a user-safe summary.
func InvalidInput(summary string) error {
	return fmt.Errorf("%s: %w", summary, ErrInvalidInput)
}

// StoreUnavailable wraps a storage client error without leaking its
// internal representation to callers.
func StoreUnavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, ErrStoreUnavailable, err)
}

// StatusCode maps a service error onto the HTTP status the handler should
// return. Unknown errors map to 500.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, ErrPermissionDenied):
		return fiber.StatusForbidden
	case errors.Is(err, ErrInvalidInput):
		return fiber.StatusBadRequest
	case errors.Is(err, ErrStoreUnavailable):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}
