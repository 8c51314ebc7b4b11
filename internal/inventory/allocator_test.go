package inventory

import (
	"context"
	"sync"
	"testing"
	"time"

	"eventx/internal/events"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedEvent(t *testing.T, repo events.Repository, total int) *events.Event {
	t.Helper()

	event := &events.Event{
		ID:               uuid.New(),
		Title:            "Go Conference",
		Venue:            "Convention Center",
		DateTime:         time.Now().Add(48 * time.Hour),
		TicketPrice:      decimal.NewFromInt(50),
		TotalTickets:     total,
		AvailableTickets: total,
		OrganizerID:      "org-1",
		Status:           events.StatusActive,
	}
	require.NoError(t, repo.Create(context.Background(), event))
	return event
}

func TestStoreAllocator_ReserveAndRelease(t *testing.T) {
	repo := events.NewMemoryRepository()
	alloc := NewStoreAllocator(repo)
	ctx := context.Background()

	event := seedEvent(t, repo, 10)

	updated, err := alloc.Reserve(ctx, event.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 7, updated.AvailableTickets)

	updated, err = alloc.Release(ctx, event.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 9, updated.AvailableTickets)
}

func TestStoreAllocator_ReserveInsufficient(t *testing.T) {
	repo := events.NewMemoryRepository()
	alloc := NewStoreAllocator(repo)
	ctx := context.Background()

	event := seedEvent(t, repo, 2)

	_, err := alloc.Reserve(ctx, event.ID, 3)
	assert.ErrorIs(t, err, ErrInsufficientInventory)

	// The failed reserve must not have taken anything.
	available, err := alloc.Available(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, available)
}

func TestStoreAllocator_ReserveUnknownEvent(t *testing.T) {
	repo := events.NewMemoryRepository()
	alloc := NewStoreAllocator(repo)

	_, err := alloc.Reserve(context.Background(), uuid.New(), 1)
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestStoreAllocator_ReserveCancelledEvent(t *testing.T) {
	repo := events.NewMemoryRepository()
	alloc := NewStoreAllocator(repo)
	ctx := context.Background()

	event := seedEvent(t, repo, 5)
	_, err := repo.UpdateStatusIf(ctx, event.ID, []events.Status{events.StatusActive}, events.StatusCancelled)
	require.NoError(t, err)

	_, err = alloc.Reserve(ctx, event.ID, 1)
	assert.ErrorIs(t, err, ErrEventNotSellable)
}

func TestStoreAllocator_InvalidQuantity(t *testing.T) {
	repo := events.NewMemoryRepository()
	alloc := NewStoreAllocator(repo)
	ctx := context.Background()

	event := seedEvent(t, repo, 5)

	_, err := alloc.Reserve(ctx, event.ID, 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = alloc.Release(ctx, event.ID, -1)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestStoreAllocator_ReleaseClampsAtTotal(t *testing.T) {
	repo := events.NewMemoryRepository()
	alloc := NewStoreAllocator(repo)
	ctx := context.Background()

	event := seedEvent(t, repo, 5)

	updated, err := alloc.Release(ctx, event.ID, 3)
	assert.ErrorIs(t, err, ErrConsistency)
	require.NotNil(t, updated)
	assert.Equal(t, 5, updated.AvailableTickets)
}

func TestStoreAllocator_ReleaseAfterCancellation(t *testing.T) {
	repo := events.NewMemoryRepository()
	alloc := NewStoreAllocator(repo)
	ctx := context.Background()

	event := seedEvent(t, repo, 5)
	_, err := alloc.Reserve(ctx, event.ID, 4)
	require.NoError(t, err)

	_, err = repo.UpdateStatusIf(ctx, event.ID, []events.Status{events.StatusActive}, events.StatusCancelled)
	require.NoError(t, err)

	// Refunds keep releasing inventory after the event stops selling.
	updated, err := alloc.Release(ctx, event.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, 5, updated.AvailableTickets)
}

func TestStoreAllocator_ConcurrentReservesNeverOversell(t *testing.T) {
	repo := events.NewMemoryRepository()
	alloc := NewStoreAllocator(repo)
	ctx := context.Background()

	const total = 50
	const buyers = 200
	event := seedEvent(t, repo, total)

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0

	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := alloc.Reserve(ctx, event.ID, 1); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, total, succeeded)

	available, err := alloc.Available(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, available)
}

func TestStoreAllocator_LastTicketHasOneWinner(t *testing.T) {
	repo := events.NewMemoryRepository()
	alloc := NewStoreAllocator(repo)
	ctx := context.Background()

	event := seedEvent(t, repo, 1)

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := alloc.Reserve(ctx, event.ID, 1)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	wins, losses := 0, 0
	for err := range results {
		if err == nil {
			wins++
		} else {
			assert.ErrorIs(t, err, ErrInsufficientInventory)
			losses++
		}
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, 1, losses)
}
