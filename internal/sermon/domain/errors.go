package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrSermonNotFound is returned when a sermon does not exist or is
	// not owned by the requesting user.
	ErrSermonNotFound = errors.New("sermon not found")

	// ErrDuplicateIdempotencyKey is returned when an insert collides
	// with the (user_id, idempotency_key) uniqueness constraint. This
	// is a benign outcome of concurrent identical submissions, not a
	// failure: the caller re-fetches the winning row.
	ErrDuplicateIdempotencyKey = errors.New("sermon with this idempotency key already exists")

	// ErrUnauthenticated is returned when no owner identity accompanies
	// a request.
	ErrUnauthenticated = errors.New("no authenticated user")
)

// ValidationError reports malformed input rejected before any external
// call is made.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// StorageError wraps a persistence failure. Kept distinct from pipeline
// errors so callers can tell "your content failed to process" apart
// from "we could not record the result".
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s failed: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
