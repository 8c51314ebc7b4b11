package inventory

import (
	"context"
	"errors"

	"eventx/internal/events"
	"eventx/pkg/logger"

	"github.com/google/uuid"
)

// gatedAllocator puts the Redis counters in front of the store allocator.
// The gate rejects doomed reserves without touching the store; the store
// decision is still final, and a store rejection rolls the gate back.
type gatedAllocator struct {
	store    Allocator
	counters *AtomicCounterOps
	logger   *logger.Logger
}

// NewGatedAllocator wraps a store allocator with the Redis counter gate.
func NewGatedAllocator(store Allocator, counters *AtomicCounterOps) Allocator {
	return &gatedAllocator{
		store:    store,
		counters: counters,
		logger:   logger.GetDefault(),
	}
}

func (g *gatedAllocator) Reserve(ctx context.Context, eventID uuid.UUID, quantity int) (*events.Event, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	gated := true
	if _, err := g.counters.Reserve(ctx, eventID, quantity); err != nil {
		if errors.Is(err, ErrInsufficientInventory) {
			return nil, err
		}
		// Unprimed counters or Redis trouble: fall through to the store,
		// which stays correct without the gate.
		gated = false
	}

	event, err := g.store.Reserve(ctx, eventID, quantity)
	if err != nil {
		if gated {
			if _, relErr := g.counters.Release(ctx, eventID, quantity); relErr != nil && !errors.Is(relErr, ErrConsistency) {
				g.logger.ErrorWithContext(ctx, "failed to roll back counter gate", relErr, map[string]interface{}{
					"event_id": eventID.String(),
					"quantity": quantity,
				})
			}
		}
		return nil, err
	}

	if !gated {
		// Re-seed so the next burst gets gated again.
		if primeErr := g.counters.Prime(ctx, eventID, event.AvailableTickets, event.TotalTickets); primeErr != nil {
			g.logger.ErrorWithContext(ctx, "failed to prime counter gate", primeErr, map[string]interface{}{
				"event_id": eventID.String(),
			})
		}
	}
	return event, nil
}

func (g *gatedAllocator) Release(ctx context.Context, eventID uuid.UUID, quantity int) (*events.Event, error) {
	event, err := g.store.Release(ctx, eventID, quantity)
	if err != nil && !errors.Is(err, ErrConsistency) {
		return nil, err
	}

	if _, gateErr := g.counters.Release(ctx, eventID, quantity); gateErr != nil && !errors.Is(gateErr, ErrConsistency) && !errors.Is(gateErr, ErrEventNotFound) {
		g.logger.ErrorWithContext(ctx, "failed to release counter gate", gateErr, map[string]interface{}{
			"event_id": eventID.String(),
			"quantity": quantity,
		})
	}
	return event, err
}

func (g *gatedAllocator) Available(ctx context.Context, eventID uuid.UUID) (int, error) {
	return g.store.Available(ctx, eventID)
}

func (g *gatedAllocator) Forget(ctx context.Context, eventID uuid.UUID) error {
	return g.counters.Forget(ctx, eventID)
}
