package store

import (
	"errors"
	"fmt"
)

var (
	// ErrUnavailable is matched by every error a backend reports. Use
	// errors.Is(err, ErrUnavailable) to detect storage outages, and
	// errors.Unwrap or errors.As to reach the backend's own error.
	ErrUnavailable = errors.New("store: unavailable")

	// ErrInvalidKey indicates an empty partition or sort key.
	ErrInvalidKey = errors.New("store: partition and sort key are required")

	// ErrInvalidType indicates an unknown record type.
	ErrInvalidType = errors.New("store: invalid record type")

	// ErrInvalidCursor indicates a cursor that was not produced by this store.
	ErrInvalidCursor = errors.New("store: invalid cursor")

	// ErrUnknownOp indicates a request with an operation the backend does not support.
	ErrUnknownOp = errors.New("store: unknown operation")
)

// UnavailableError wraps a backend failure for a single operation.
type UnavailableError struct {
	Op  Op
	Err error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

// Unwrap returns the backend error unchanged.
func (e *UnavailableError) Unwrap() error { return e.Err }

// Is makes every UnavailableError match ErrUnavailable.
func (e *UnavailableError) Is(target error) bool { return target == ErrUnavailable }

func unavailable(op Op, err error) error {
	var ue *UnavailableError
	if errors.As(err, &ue) {
		return err
	}
	return &UnavailableError{Op: op, Err: err}
}
