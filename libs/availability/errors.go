package availability

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by this package wraps exactly one of them.
var (
	ErrNullInput       = errors.New("null input")
	ErrArrayMismatch   = errors.New("array length mismatch")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrOutOfRange      = errors.New("out of range")
)

// ValidationError describes which input failed validation.
// Index is the position of the offending booking, or -1 when the failure is not
// tied to a single booking.
type ValidationError struct {
	Kind    error
	Field   string
	Index   int
	Message string
}

func (e *ValidationError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("%s: %s[%d]: %s", e.Kind, e.Field, e.Index, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Kind, e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Kind
}

func newError(kind error, field, msg string) error {
	return &ValidationError{Kind: kind, Field: field, Index: -1, Message: msg}
}

func newBookingError(kind error, index int, msg string) error {
	return &ValidationError{Kind: kind, Field: "bookings", Index: index, Message: msg}
}
