package cancellation

import (
	"context"
	"errors"
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
	checkInRepo   tickets.Repository
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
		service:       NewService(NewMemoryRepository(), eventService, ticketService, ticketRepo, producer),
		ticketService: ticketService,
		ticketRepo:    ticketRepo,
		eventRepo:     eventRepo,
		allocator:     allocator,
		producer:      producer,
		checkInRepo:   ticketRepo,
	}
}

func (f *fixture) createEvent(t *testing.T, total int, price string) *events.Event {
	t.Helper()

	event := &events.Event{
		ID:               uuid.New(),
		Title:            "Autumn Gala",
		Venue:            "Grand Hall",
		DateTime:         time.Now().Add(120 * time.Hour),
		TicketPrice:      decimal.RequireFromString(price),
		TotalTickets:     total,
		AvailableTickets: total,
		OrganizerID:      "org-1",
		Status:           events.StatusActive,
	}
	require.NoError(t, f.eventRepo.Create(context.Background(), event))
	return event
}

func (f *fixture) mintOne(t *testing.T, event *events.Event, ownerID string) tickets.Ticket {
	t.Helper()
	ctx := context.Background()

	_, err := f.allocator.Reserve(ctx, event.ID, 1)
	require.NoError(t, err)
	minted, err := f.ticketService.Mint(ctx, event, ownerID, "ORD-CANCEL", 1)
	require.NoError(t, err)
	return minted[0]
}

func TestCancelEvent_RefundsValidAndListedLeavesUsed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	event := f.createEvent(t, 10, "80.00")

	valid := f.mintOne(t, event, "alice")
	listed := f.mintOne(t, event, "bob")
	used := f.mintOne(t, event, "carol")

	_, err := f.ticketService.ListForResale(ctx, listed.ID, "bob", decimal.RequireFromString("90.00"))
	require.NoError(t, err)

	_, err = f.checkInRepo.UpdateStatusIf(ctx, used.ID, []tickets.Status{tickets.StatusValid}, tickets.StatusUsed, "", map[string]interface{}{
		"used_at": time.Now().UTC(),
	})
	require.NoError(t, err)

	report, err := f.service.CancelEvent(ctx, event.ID, "admin-1", "venue flooded")
	require.NoError(t, err)

	assert.Equal(t, 2, report.Refunded)
	assert.Empty(t, report.Failed)
	assert.True(t, report.TotalRefunded.Equal(decimal.RequireFromString("160.00")))

	// Valid and listed tickets became refunded; the used one is untouched
	for _, id := range []uuid.UUID{valid.ID, listed.ID} {
		stored, err := f.ticketRepo.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, tickets.StatusRefunded, stored.Status)
	}
	usedStored, err := f.ticketRepo.GetByID(ctx, used.ID)
	require.NoError(t, err)
	assert.Equal(t, tickets.StatusUsed, usedStored.Status)

	// Event is cancelled
	storedEvent, err := f.eventRepo.GetByID(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, events.StatusCancelled, storedEvent.Status)

	// One refund instruction per refunded ticket
	instructions := f.producer.RefundInstructions()
	require.Len(t, instructions, 2)
	for _, instruction := range instructions {
		assert.Equal(t, notifications.RefundReasonEventCancelled, instruction.Reason)
	}

	// Audit record persisted
	record, err := f.service.GetCancellation(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, record.TicketsRefunded)
	assert.Equal(t, 0, record.TicketsFailed)
	assert.Equal(t, "admin-1", record.RequestedBy)
}

func TestCancelEvent_SecondCancellationRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	event := f.createEvent(t, 5, "40.00")

	_, err := f.service.CancelEvent(ctx, event.ID, "admin-1", "")
	require.NoError(t, err)

	_, err = f.service.CancelEvent(ctx, event.ID, "admin-1", "")
	assert.ErrorIs(t, err, ErrAlreadyCancelled)
}

func TestCancelEvent_UnknownEvent(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.CancelEvent(context.Background(), uuid.New(), "admin-1", "")
	assert.ErrorIs(t, err, events.ErrNotFound)
}

func TestCancelEvent_AggregatesDeliveryFailures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	event := f.createEvent(t, 5, "40.00")

	f.mintOne(t, event, "alice")
	f.mintOne(t, event, "bob")

	f.producer.FailRefunds = errors.New("broker unreachable")

	report, err := f.service.CancelEvent(ctx, event.ID, "admin-1", "")
	require.NoError(t, err)

	// Every refund attempt failed to reach the payment provider, but the
	// run completed and reported each one.
	assert.Equal(t, 0, report.Refunded)
	assert.Len(t, report.Failed, 2)
	for _, failure := range report.Failed {
		assert.Contains(t, failure.Reason, "broker unreachable")
	}

	record, err := f.service.GetCancellation(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, record.TicketsFailed)
}

func TestCancelEvent_NoOutstandingTickets(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	event := f.createEvent(t, 5, "40.00")

	report, err := f.service.CancelEvent(ctx, event.ID, "admin-1", "")
	require.NoError(t, err)
	assert.Equal(t, 0, report.Refunded)
	assert.Empty(t, report.Failed)
	assert.True(t, report.TotalRefunded.IsZero())
}
