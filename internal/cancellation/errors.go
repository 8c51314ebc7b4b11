package cancellation

import "errors"

var (
	// ErrNotFound indicates no cancellation record exists for the event.
	ErrNotFound = errors.New("cancellation record not found")

	// ErrAlreadyCancelled indicates a second cancellation of the same event.
	ErrAlreadyCancelled = errors.New("event is already cancelled")
)
