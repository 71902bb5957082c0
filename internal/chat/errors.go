package chat

import (
	"github.com/pkg/errors"

	"github.com/rahmanfaizur/PulseChat/internal/data"
)

// Failure taxonomy. Every error returned by Service matches one of these
// with errors.Is, or is a *StoreError.
var (
	ErrUnauthorized    = errors.New("unauthorized")
	ErrNotFound        = errors.New("not found")
	ErrNotAMember      = errors.New("not a member of this conversation")
	ErrForbidden       = errors.New("forbidden")
	ErrInvalidArgument = errors.New("invalid argument")
)

// StoreError wraps a store transport failure. It is the only retryable class.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return e.Op + ": " + e.Err.Error() }

func (e *StoreError) Unwrap() error { return e.Err }

// IsRetryable reports whether err is a store failure worth retrying.
func IsRetryable(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}

// storeErr translates an adapter error. data.ErrNotFound becomes notFound
// (callers pass the taxonomy error that fits the lookup), anything else is
// a StoreError. Taxonomy errors already produced inside a transaction pass
// through untouched.
func storeErr(err error, op string, notFound error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, data.ErrNotFound):
		return errors.Wrap(notFound, op)
	case isTaxonomy(err):
		return err
	default:
		return &StoreError{Op: op, Err: err}
	}
}

func isTaxonomy(err error) bool {
	for _, target := range []error{ErrUnauthorized, ErrNotFound, ErrNotAMember, ErrForbidden, ErrInvalidArgument} {
		if errors.Is(err, target) {
			return true
		}
	}
	var se *StoreError
	return errors.As(err, &se)
}
