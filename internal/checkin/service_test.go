package checkin

import (
	"context"
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
	service       Service
	ticketService tickets.Service
	ticketRepo    *tickets.MemoryRepository
	eventRepo     *events.MemoryRepository
	allocator     inventory.Allocator
	producer      *notifications.RecordingProducer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	eventRepo := events.NewMemoryRepository()
	eventService := events.NewService(eventRepo)
	ticketRepo := tickets.NewMemoryRepository()
	allocator := inventory.NewStoreAllocator(eventRepo)
	producer := notifications.NewRecordingProducer()
	resale := config.ResaleConfig{
		MinRatio: decimal.RequireFromString("0.10"),
		MaxRatio: decimal.RequireFromString("3.00"),
	}
	ticketService := tickets.NewService(ticketRepo, eventService, allocator, producer, resale)

	return &fixture{
		service:       NewService(ticketRepo, eventService, producer),
		ticketService: ticketService,
		ticketRepo:    ticketRepo,
		eventRepo:     eventRepo,
		allocator:     allocator,
		producer:      producer,
	}
}

func (f *fixture) mintTicket(t *testing.T, ownerID string) tickets.Ticket {
	t.Helper()
	ctx := context.Background()

	event := &events.Event{
		ID:               uuid.New(),
		Title:            "Tech Meetup",
		Venue:            "Hall B",
		DateTime:         time.Now().Add(24 * time.Hour),
		TicketPrice:      decimal.RequireFromString("30.00"),
		TotalTickets:     10,
		AvailableTickets: 10,
		OrganizerID:      "org-1",
		Status:           events.StatusActive,
	}
	require.NoError(t, f.eventRepo.Create(ctx, event))

	_, err := f.allocator.Reserve(ctx, event.ID, 1)
	require.NoError(t, err)

	minted, err := f.ticketService.Mint(ctx, event, ownerID, "ORD-GATE", 1)
	require.NoError(t, err)
	return minted[0]
}

func TestCheckIn_AdmitsValidTicket(t *testing.T) {
	f := newFixture(t)
	ticket := f.mintTicket(t, "alice")

	result, err := f.service.CheckIn(context.Background(), ticket.Token)
	require.NoError(t, err)
	assert.Equal(t, ticket.ID.String(), result.Ticket.ID)
	assert.Equal(t, "alice", result.Ticket.OwnerID)
	assert.Equal(t, tickets.StatusUsed, result.Ticket.Status)
	assert.False(t, result.CheckedIn.IsZero())

	// The gate display gets the event snapshot alongside the ticket
	assert.Equal(t, "Tech Meetup", result.Event.Title)
	assert.Equal(t, "Hall B", result.Event.Venue)

	stored, err := f.ticketRepo.GetByID(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, tickets.StatusUsed, stored.Status)
	require.NotNil(t, stored.UsedAt)

	messages := f.producer.LifecycleMessages()
	require.Len(t, messages, 1)
	assert.Equal(t, notifications.MessageCheckInRecorded, messages[0].Type)
}

func TestCheckIn_SecondPresentationRejected(t *testing.T) {
	f := newFixture(t)
	ticket := f.mintTicket(t, "alice")
	ctx := context.Background()

	_, err := f.service.CheckIn(ctx, ticket.Token)
	require.NoError(t, err)

	_, err = f.service.CheckIn(ctx, ticket.Token)
	assert.ErrorIs(t, err, tickets.ErrAlreadyUsed)
}

func TestCheckIn_UnknownToken(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.CheckIn(context.Background(), "TKT-DOESNOTEXIST")
	assert.ErrorIs(t, err, tickets.ErrUnknownToken)

	_, err = f.service.CheckIn(context.Background(), "")
	assert.ErrorIs(t, err, tickets.ErrUnknownToken)
}

func TestCheckIn_ListedTicketRejected(t *testing.T) {
	f := newFixture(t)
	ticket := f.mintTicket(t, "alice")
	ctx := context.Background()

	_, err := f.ticketService.ListForResale(ctx, ticket.ID, "alice", decimal.RequireFromString("30.00"))
	require.NoError(t, err)

	_, err = f.service.CheckIn(ctx, ticket.Token)
	assert.ErrorIs(t, err, tickets.ErrNotValid)
}

func TestCheckIn_RefundedTicketRejected(t *testing.T) {
	f := newFixture(t)
	ticket := f.mintTicket(t, "alice")
	ctx := context.Background()

	_, err := f.ticketService.Refund(ctx, ticket.ID, "alice")
	require.NoError(t, err)

	_, err = f.service.CheckIn(ctx, ticket.Token)
	assert.ErrorIs(t, err, tickets.ErrNotValid)
}

func TestCheckIn_ConcurrentPresentationsAdmitOnce(t *testing.T) {
	f := newFixture(t)
	ticket := f.mintTicket(t, "alice")
	ctx := context.Background()

	const gates = 20
	var wg sync.WaitGroup
	results := make(chan error, gates)
	for i := 0; i < gates; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.service.CheckIn(ctx, ticket.Token)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	admitted, rejected := 0, 0
	for err := range results {
		if err == nil {
			admitted++
		} else {
			assert.ErrorIs(t, err, tickets.ErrAlreadyUsed)
			rejected++
		}
	}
	assert.Equal(t, 1, admitted)
	assert.Equal(t, gates-1, rejected)
}
