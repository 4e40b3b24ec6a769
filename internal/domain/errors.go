package domain

import (
	"errors"
	"fmt"
)

// Local validation errors are resolved before any network call and are
// always recoverable by correcting input. ErrDuplicateRecord and
// ErrPermissionDenied may also come back from the backend and are mapped to
// these sentinels at the store boundary.
var (
	ErrInvalidQuantity      = errors.New("invalid quantity")
	ErrMissingJustification = errors.New("missing justification")
	ErrUnknownProduct       = errors.New("unknown product")
	ErrPermissionDenied     = errors.New("permission denied")
	ErrDuplicateRecord      = errors.New("duplicate record")
	ErrNotFound             = errors.New("not found")

	// ErrInsufficientBalance is a confirmation gate, not a rejection: it is
	// returned only when the caller declines the soft-block confirmation.
	ErrInsufficientBalance = errors.New("insufficient balance")
)

// RemoteError is an opaque backend failure passed through verbatim for
// display. It is never auto-retried; retry is a user-initiated resubmission.
type RemoteError struct {
	Op      string
	Message string
}

func (e *RemoteError) Error() string {
	if e.Op == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

// Remote wraps err as a RemoteError unless it already is one of the local
// sentinels or a RemoteError.
func Remote(op string, err error) error {
	if err == nil {
		return nil
	}
	var re *RemoteError
	if errors.As(err, &re) {
		return err
	}
	for _, sentinel := range []error{
		ErrInvalidQuantity, ErrMissingJustification, ErrUnknownProduct,
		ErrPermissionDenied, ErrDuplicateRecord, ErrNotFound,
		ErrInsufficientBalance,
	} {
		if errors.Is(err, sentinel) {
			return err
		}
	}
	return &RemoteError{Op: op, Message: err.Error()}
}
