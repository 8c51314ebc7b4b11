package purchases

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"eventx/internal/events"
	"eventx/internal/inventory"
	"eventx/internal/notifications"
	"eventx/internal/shared/config"
	"eventx/internal/tickets"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	service   Service
	eventRepo *events.MemoryRepository
	allocator inventory.Allocator
	producer  *notifications.RecordingProducer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	eventRepo := events.NewMemoryRepository()
	ticketRepo := tickets.NewMemoryRepository()
	allocator := inventory.NewStoreAllocator(eventRepo)
	producer := notifications.NewRecordingProducer()
	eventService := events.NewService(eventRepo)
	resale := config.ResaleConfig{
		MinRatio: decimal.RequireFromString("0.10"),
		MaxRatio: decimal.RequireFromString("3.00"),
	}
	ticketService := tickets.NewService(ticketRepo, eventService, allocator, producer, resale)

	return &fixture{
		service:   NewService(eventService, ticketService, allocator, producer),
		eventRepo: eventRepo,
		allocator: allocator,
		producer:  producer,
	}
}

func (f *fixture) createEvent(t *testing.T, total int, price string) *events.Event {
	t.Helper()

	event := &events.Event{
		ID:               uuid.New(),
		Title:            "Spring Festival",
		Venue:            "City Park",
		DateTime:         time.Now().Add(96 * time.Hour),
		TicketPrice:      decimal.RequireFromString(price),
		TotalTickets:     total,
		AvailableTickets: total,
		OrganizerID:      "org-1",
		Status:           events.StatusActive,
	}
	require.NoError(t, f.eventRepo.Create(context.Background(), event))
	return event
}

func TestPurchase_Success(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	event := f.createEvent(t, 10, "25.00")

	purchase, err := f.service.Purchase(ctx, "alice", PurchaseRequest{
		EventID:  event.ID.String(),
		Quantity: 3,
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(purchase.OrderRef, "ORD-"))
	assert.Equal(t, 3, purchase.Quantity)
	assert.True(t, purchase.TotalPrice.Equal(decimal.RequireFromString("75.00")))
	require.Len(t, purchase.Tickets, 3)
	for _, ticket := range purchase.Tickets {
		assert.Equal(t, tickets.StatusValid, ticket.Status)
		assert.Equal(t, "alice", ticket.OwnerID)
		assert.Equal(t, purchase.OrderRef, ticket.OrderRef)
	}

	available, err := f.allocator.Available(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, available)

	messages := f.producer.LifecycleMessages()
	require.Len(t, messages, 1)
	assert.Equal(t, notifications.MessagePurchaseConfirmed, messages[0].Type)
	assert.Equal(t, purchase.OrderRef, messages[0].OrderRef)
}

func TestPurchase_InsufficientInventory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	event := f.createEvent(t, 2, "25.00")

	_, err := f.service.Purchase(ctx, "alice", PurchaseRequest{
		EventID:  event.ID.String(),
		Quantity: 3,
	})
	assert.ErrorIs(t, err, inventory.ErrInsufficientInventory)

	// A rejected order takes nothing
	available, err := f.allocator.Available(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, available)
	assert.Empty(t, f.producer.LifecycleMessages())
}

func TestPurchase_UnknownEvent(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Purchase(context.Background(), "alice", PurchaseRequest{
		EventID:  uuid.New().String(),
		Quantity: 1,
	})
	assert.ErrorIs(t, err, inventory.ErrEventNotFound)
}

func TestPurchase_CancelledEvent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	event := f.createEvent(t, 5, "25.00")

	_, err := f.eventRepo.UpdateStatusIf(ctx, event.ID, []events.Status{events.StatusActive}, events.StatusCancelled)
	require.NoError(t, err)

	_, err = f.service.Purchase(ctx, "alice", PurchaseRequest{
		EventID:  event.ID.String(),
		Quantity: 1,
	})
	assert.ErrorIs(t, err, inventory.ErrEventNotSellable)
}

func TestPurchase_TwoBuyersLastTicket(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	event := f.createEvent(t, 1, "25.00")

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for _, buyer := range []string{"alice", "bob"} {
		wg.Add(1)
		go func(buyer string) {
			defer wg.Done()
			_, err := f.service.Purchase(ctx, buyer, PurchaseRequest{
				EventID:  event.ID.String(),
				Quantity: 1,
			})
			results <- err
		}(buyer)
	}
	wg.Wait()
	close(results)

	wins, losses := 0, 0
	for err := range results {
		if err == nil {
			wins++
		} else {
			assert.ErrorIs(t, err, inventory.ErrInsufficientInventory)
			losses++
		}
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, 1, losses)

	available, err := f.allocator.Available(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, available)
}

func TestPurchase_ConcurrentOrdersNeverOversell(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const total = 30
	event := f.createEvent(t, total, "25.00")

	var wg sync.WaitGroup
	var mu sync.Mutex
	sold := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			purchase, err := f.service.Purchase(ctx, "buyer", PurchaseRequest{
				EventID:  event.ID.String(),
				Quantity: 2,
			})
			if err == nil {
				mu.Lock()
				sold += purchase.Quantity
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, total, sold)

	available, err := f.allocator.Available(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, available)
}
