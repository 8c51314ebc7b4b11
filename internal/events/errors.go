package events

import "errors"

var (
	// ErrNotFound is returned when the referenced event does not exist
	ErrNotFound = errors.New("event not found")

	// ErrNotActive is returned when an operation requires an active event
	ErrNotActive = errors.New("event is not active")

	// ErrInvalidState is returned when a status transition is not legal from
	// the event's current status
	ErrInvalidState = errors.New("operation not allowed in current event state")

	// ErrInsufficientCapacity is returned when a reservation asks for more
	// tickets than are available
	ErrInsufficientCapacity = errors.New("insufficient ticket capacity")

	// ErrCapacityExceeded signals that a release would push the available
	// count above total capacity. The store clamps defensively, but the
	// caller must treat this as a consistency violation.
	ErrCapacityExceeded = errors.New("available tickets would exceed total capacity")
)
