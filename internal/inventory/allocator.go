package inventory

import (
	"context"
	"errors"
	"fmt"

	"eventx/internal/events"
	"eventx/pkg/logger"

	"github.com/google/uuid"
)

// Allocator owns the available-ticket counter for every event. Reserve and
// Release are the only ways the counter moves; both are atomic with respect
// to concurrent callers so the counter never oversells and never exceeds
// the event total.
type Allocator interface {
	// Reserve atomically takes quantity tickets from the event's available
	// pool. Either the full quantity is taken or nothing is.
	Reserve(ctx context.Context, eventID uuid.UUID, quantity int) (*events.Event, error)

	// Release atomically returns quantity tickets to the pool. Releases that
	// would exceed the event total are clamped to the total and reported as
	// ErrConsistency.
	Release(ctx context.Context, eventID uuid.UUID, quantity int) (*events.Event, error)

	// Available reports the current available count for an event.
	Available(ctx context.Context, eventID uuid.UUID) (int, error)

	// Forget discards any fast-path state held for an event. Called when
	// the event stops selling (cancelled or completed).
	Forget(ctx context.Context, eventID uuid.UUID) error
}

type storeAllocator struct {
	repo   events.Repository
	logger *logger.Logger
}

// NewStoreAllocator builds an allocator backed by the entity store. The
// store serializes counter movements per event, so two concurrent reserves
// for the last ticket resolve to exactly one winner.
func NewStoreAllocator(repo events.Repository) Allocator {
	return &storeAllocator{
		repo:   repo,
		logger: logger.GetDefault(),
	}
}

func (a *storeAllocator) Reserve(ctx context.Context, eventID uuid.UUID, quantity int) (*events.Event, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("reserve %d tickets: %w", quantity, ErrInvalidQuantity)
	}

	event, err := a.repo.AdjustAvailable(ctx, eventID, -quantity)
	if err != nil {
		return nil, translateStoreError(eventID, err)
	}
	return event, nil
}

func (a *storeAllocator) Release(ctx context.Context, eventID uuid.UUID, quantity int) (*events.Event, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("release %d tickets: %w", quantity, ErrInvalidQuantity)
	}

	event, err := a.repo.AdjustAvailable(ctx, eventID, quantity)
	if err != nil {
		if errors.Is(err, events.ErrCapacityExceeded) {
			// The counter was clamped to the event total. Surface it loudly:
			// somebody released tickets that were never reserved.
			a.logger.LogConsistencyViolation(ctx, "inventory",
				fmt.Sprintf("release of %d tickets for event %s clamped to total %d",
					quantity, eventID, event.TotalTickets))
			return event, fmt.Errorf("release %d tickets for event %s: %w", quantity, eventID, ErrConsistency)
		}
		return nil, translateStoreError(eventID, err)
	}
	return event, nil
}

func (a *storeAllocator) Available(ctx context.Context, eventID uuid.UUID) (int, error) {
	event, err := a.repo.GetByID(ctx, eventID)
	if err != nil {
		return 0, translateStoreError(eventID, err)
	}
	return event.AvailableTickets, nil
}

// Forget is a no-op: the store allocator keeps no state outside the store.
func (a *storeAllocator) Forget(ctx context.Context, eventID uuid.UUID) error {
	return nil
}

// translateStoreError maps entity-store sentinels onto the allocator's own
// error surface so callers never import store errors for inventory outcomes.
func translateStoreError(eventID uuid.UUID, err error) error {
	switch {
	case errors.Is(err, events.ErrNotFound):
		return fmt.Errorf("event %s: %w", eventID, ErrEventNotFound)
	case errors.Is(err, events.ErrNotActive):
		return fmt.Errorf("event %s: %w", eventID, ErrEventNotSellable)
	case errors.Is(err, events.ErrInsufficientCapacity):
		return fmt.Errorf("event %s: %w", eventID, ErrInsufficientInventory)
	default:
		return err
	}
}
