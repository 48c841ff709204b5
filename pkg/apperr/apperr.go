// Package apperr holds the error taxonomy shared by repositories, services
// and handlers. Callers wrap these with fmt.Errorf("...: %w", ...) and
// classify with errors.Is.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUsernameTaken      = errors.New("username already taken, please choose another one")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrForbidden          = errors.New("forbidden")
	ErrStorage            = errors.New("storage error")

	// ErrDuplicate marks a unique-constraint violation. It is always
	// returned together with ErrStorage.
	ErrDuplicate = errors.New("duplicate key")

	// ErrReferenced marks a foreign-key violation. It is always returned
	// together with ErrConflict and never carries driver text.
	ErrReferenced = errors.New("referenced record is missing or still in use")
)

// Validation builds an ErrValidation carrying a user-facing message.
func Validation(msg string) error {
	return &validationError{msg: msg}
}

type validationError struct{ msg string }

func (e *validationError) Error() string { return e.msg }
func (e *validationError) Unwrap() error { return ErrValidation }

// Wrapf prefixes kind with a formatted message, keeping errors.Is(err, kind).
func Wrapf(kind error, format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), kind)
}
