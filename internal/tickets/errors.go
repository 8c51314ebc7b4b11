package tickets

import "errors"

var (
	// ErrNotFound indicates no ticket exists with the given ID.
	ErrNotFound = errors.New("ticket not found")

	// ErrUnknownToken indicates no ticket carries the presented token.
	ErrUnknownToken = errors.New("unknown ticket token")

	// ErrAlreadyUsed indicates the ticket was checked in before.
	ErrAlreadyUsed = errors.New("ticket already used")

	// ErrNotValid indicates the ticket is not in a state that admits
	// check-in (listed or refunded).
	ErrNotValid = errors.New("ticket is not valid for entry")

	// ErrNotRefundable indicates the ticket is used or already refunded.
	ErrNotRefundable = errors.New("ticket is not refundable")

	// ErrInvalidState indicates the requested lifecycle transition is not
	// permitted from the ticket's current status.
	ErrInvalidState = errors.New("invalid ticket state transition")

	// ErrPriceOutOfBand indicates a resale price outside the allowed
	// multiple of the ticket's original face price.
	ErrPriceOutOfBand = errors.New("resale price outside allowed band")

	// ErrNotOwner indicates the caller does not own the ticket.
	ErrNotOwner = errors.New("caller does not own this ticket")

	// ErrNotListed indicates a resale operation on a ticket that has no
	// open listing.
	ErrNotListed = errors.New("ticket is not listed for resale")

	// ErrSelfPurchase indicates an owner attempting to buy their own
	// listing.
	ErrSelfPurchase = errors.New("cannot buy your own listing")

	// ErrEventNotSellable indicates a resale operation on a ticket whose
	// event is cancelled or completed.
	ErrEventNotSellable = errors.New("event is no longer selling tickets")

	// ErrTokenExhausted indicates token generation could not find an
	// unused token after repeated attempts.
	ErrTokenExhausted = errors.New("could not generate a unique ticket token")
)
