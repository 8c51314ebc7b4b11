package inventory

import "errors"

var (
	// ErrEventNotFound indicates the event does not exist in the store.
	ErrEventNotFound = errors.New("event not found")

	// ErrEventNotSellable indicates the event is cancelled or completed and
	// can no longer allocate tickets.
	ErrEventNotSellable = errors.New("event is not open for sale")

	// ErrInsufficientInventory indicates fewer tickets remain than requested.
	ErrInsufficientInventory = errors.New("insufficient tickets available")

	// ErrConsistency indicates a release would have pushed the available
	// count above the event total. The release is clamped and the caller
	// gets this error for alerting.
	ErrConsistency = errors.New("inventory consistency violation")

	// ErrInvalidQuantity indicates a non-positive reserve/release quantity.
	ErrInvalidQuantity = errors.New("quantity must be positive")
)
