package events

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (Service, *MemoryRepository) {
	t.Helper()

	repo := NewMemoryRepository()
	return NewService(repo), repo
}

func validCreateRequest(total int, price string) CreateEventRequest {
	return CreateEventRequest{
		Title:        "Jazz Night",
		Description:  "An evening of live jazz",
		Venue:        "Blue Hall",
		DateTime:     time.Now().Add(72 * time.Hour),
		TicketPrice:  decimal.RequireFromString(price),
		TotalTickets: total,
		Category:     "music",
	}
}

func TestService_CreateEvent(t *testing.T) {
	service, _ := newTestService(t)

	resp, err := service.CreateEvent(context.Background(), "org-1", validCreateRequest(100, "50.00"))
	require.NoError(t, err)

	assert.Equal(t, StatusActive, resp.Status)
	assert.Equal(t, 100, resp.TotalTickets)
	assert.Equal(t, 100, resp.AvailableTickets)
	assert.Equal(t, "org-1", resp.OrganizerID)
	assert.True(t, resp.TicketPrice.Equal(decimal.RequireFromString("50.00")))
}

func TestService_CreateEvent_Validation(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	_, err := service.CreateEvent(ctx, "", validCreateRequest(10, "50.00"))
	assert.Error(t, err)

	past := validCreateRequest(10, "50.00")
	past.DateTime = time.Now().Add(-time.Hour)
	_, err = service.CreateEvent(ctx, "org-1", past)
	assert.Error(t, err)

	negative := validCreateRequest(10, "-1.00")
	_, err = service.CreateEvent(ctx, "org-1", negative)
	assert.Error(t, err)
}

func TestService_GetEventByID_NotFound(t *testing.T) {
	service, _ := newTestService(t)

	_, err := service.GetEventByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_GetAllEvents_Pagination(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := service.CreateEvent(ctx, "org-1", validCreateRequest(10, "20.00"))
		require.NoError(t, err)
	}

	page, err := service.GetAllEvents(ctx, EventListQuery{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page.Events, 2)
	assert.Equal(t, int64(5), page.TotalCount)
	assert.Equal(t, 3, page.TotalPages)

	last, err := service.GetAllEvents(ctx, EventListQuery{Page: 3, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, last.Events, 1)
}

func TestService_GetAllEvents_StatusFilter(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	active, err := service.CreateEvent(ctx, "org-1", validCreateRequest(10, "20.00"))
	require.NoError(t, err)
	cancelled, err := service.CreateEvent(ctx, "org-1", validCreateRequest(10, "20.00"))
	require.NoError(t, err)

	cancelledID := uuid.MustParse(cancelled.ID)
	_, err = service.MarkCancelled(ctx, cancelledID)
	require.NoError(t, err)

	page, err := service.GetAllEvents(ctx, EventListQuery{Status: string(StatusActive)})
	require.NoError(t, err)
	require.Len(t, page.Events, 1)
	assert.Equal(t, active.ID, page.Events[0].ID)

	// Unknown filter values are rejected rather than matched against nothing
	_, err = service.GetAllEvents(ctx, EventListQuery{Status: "PENDING"})
	assert.Error(t, err)
}

func TestService_GetUpcomingEvents_OrderedByDate(t *testing.T) {
	service, repo := newTestService(t)
	ctx := context.Background()

	later := &Event{
		ID: uuid.New(), Title: "Later", Venue: "Hall B",
		DateTime:    time.Now().Add(96 * time.Hour),
		TicketPrice: decimal.RequireFromString("20.00"),
		TotalTickets: 10, AvailableTickets: 10,
		OrganizerID: "org-1", Status: StatusActive,
	}
	sooner := &Event{
		ID: uuid.New(), Title: "Sooner", Venue: "Hall A",
		DateTime:    time.Now().Add(24 * time.Hour),
		TicketPrice: decimal.RequireFromString("20.00"),
		TotalTickets: 10, AvailableTickets: 10,
		OrganizerID: "org-1", Status: StatusActive,
	}
	require.NoError(t, repo.Create(ctx, later))
	require.NoError(t, repo.Create(ctx, sooner))

	upcoming, err := service.GetUpcomingEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, upcoming, 2)
	assert.Equal(t, "Sooner", upcoming[0].Title)
	assert.Equal(t, "Later", upcoming[1].Title)
}

func TestService_MarkCancelled(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	created, err := service.CreateEvent(ctx, "org-1", validCreateRequest(10, "20.00"))
	require.NoError(t, err)
	id := uuid.MustParse(created.ID)

	event, err := service.MarkCancelled(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, event.Status)

	// A cancelled event cannot be cancelled again
	_, err = service.MarkCancelled(ctx, id)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestService_MarkCompleted(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	created, err := service.CreateEvent(ctx, "org-1", validCreateRequest(10, "20.00"))
	require.NoError(t, err)
	id := uuid.MustParse(created.ID)

	resp, err := service.MarkCompleted(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, resp.Status)

	_, err = service.MarkCompleted(ctx, id)
	assert.ErrorIs(t, err, ErrInvalidState)
}

type stubTallier struct {
	tally TicketTally
}

func (s *stubTallier) TallyForEvent(ctx context.Context, eventID uuid.UUID) (TicketTally, error) {
	return s.tally, nil
}

func TestService_GetEventStats(t *testing.T) {
	service, repo := newTestService(t)
	ctx := context.Background()

	created, err := service.CreateEvent(ctx, "org-1", validCreateRequest(100, "50.00"))
	require.NoError(t, err)
	id := uuid.MustParse(created.ID)

	// 40 tickets reserved: 30 valid, 5 listed, 5 admitted
	_, err = repo.AdjustAvailable(ctx, id, -40)
	require.NoError(t, err)

	service.SetTicketTallier(&stubTallier{tally: TicketTally{
		Valid:    30,
		Listed:   5,
		Used:     5,
		Refunded: 2,
		Revenue:  decimal.RequireFromString("2000.00"),
	}})

	stats, err := service.GetEventStats(ctx, id)
	require.NoError(t, err)

	assert.Equal(t, 40, stats.Sold)
	assert.Equal(t, 5, stats.CheckedIn)
	assert.Equal(t, 2, stats.Refunded)
	assert.Equal(t, 60, stats.AvailableTickets)
	assert.InDelta(t, 40.0, stats.Utilization, 0.001)
	assert.True(t, stats.GrossRevenue.Equal(decimal.RequireFromString("2000.00")))
}

type stubForgetter struct {
	forgotten []uuid.UUID
}

func (s *stubForgetter) Forget(ctx context.Context, eventID uuid.UUID) error {
	s.forgotten = append(s.forgotten, eventID)
	return nil
}

func TestService_StatusTransitionsDropCounters(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	forgetter := &stubForgetter{}
	service.SetCounterForgetter(forgetter)

	cancelled, err := service.CreateEvent(ctx, "org-1", validCreateRequest(10, "20.00"))
	require.NoError(t, err)
	completed, err := service.CreateEvent(ctx, "org-1", validCreateRequest(10, "20.00"))
	require.NoError(t, err)

	cancelledID := uuid.MustParse(cancelled.ID)
	completedID := uuid.MustParse(completed.ID)

	_, err = service.MarkCancelled(ctx, cancelledID)
	require.NoError(t, err)
	_, err = service.MarkCompleted(ctx, completedID)
	require.NoError(t, err)

	assert.Equal(t, []uuid.UUID{cancelledID, completedID}, forgetter.forgotten)

	// A rejected transition must not drop counters
	_, err = service.MarkCancelled(ctx, cancelledID)
	require.ErrorIs(t, err, ErrInvalidState)
	assert.Len(t, forgetter.forgotten, 2)
}
