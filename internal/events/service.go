package events

import (
	"context"
	"fmt"
	"math"
	"time"

	"eventx/internal/shared/constants"
	"eventx/pkg/cache"
	"eventx/pkg/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Service interface {
	// Service dependency injection
	SetCacheService(cacheService cache.Service)
	SetTicketTallier(tallier TicketTallier)
	SetCounterForgetter(forgetter CounterForgetter)

	CreateEvent(ctx context.Context, organizerID string, req CreateEventRequest) (*EventResponse, error)
	GetEventByID(ctx context.Context, id uuid.UUID) (*EventResponse, error)
	GetAllEvents(ctx context.Context, query EventListQuery) (*PaginatedEvents, error)
	GetUpcomingEvents(ctx context.Context, limit int) ([]EventResponse, error)
	GetEventStats(ctx context.Context, id uuid.UUID) (*EventStats, error)

	// Internal collaborators (purchases, check-in, cancellation) need the
	// raw record rather than the API shape.
	GetEventRecord(ctx context.Context, id uuid.UUID) (*Event, error)

	// Status transitions
	MarkCancelled(ctx context.Context, id uuid.UUID) (*Event, error)
	MarkCompleted(ctx context.Context, id uuid.UUID) (*EventResponse, error)
}

// TicketTallier counts tickets per status for an event. Implemented by the
// ticket store; injected to avoid a package cycle.
type TicketTallier interface {
	TallyForEvent(ctx context.Context, eventID uuid.UUID) (TicketTally, error)
}

// CounterForgetter discards fast-path inventory state for an event that has
// stopped selling. Implemented by the Inventory Allocator; injected to avoid
// a package cycle.
type CounterForgetter interface {
	Forget(ctx context.Context, eventID uuid.UUID) error
}

type service struct {
	repo         Repository
	cacheService cache.Service
	tallier      TicketTallier
	forgetter    CounterForgetter
	log          *logger.Logger
}

func NewService(repo Repository) Service {
	return &service{
		repo: repo,
		log:  logger.GetDefault(),
	}
}

// SetCacheService injects the cache service dependency
func (s *service) SetCacheService(cacheService cache.Service) {
	s.cacheService = cacheService
}

func (s *service) SetTicketTallier(tallier TicketTallier) {
	s.tallier = tallier
}

func (s *service) SetCounterForgetter(forgetter CounterForgetter) {
	s.forgetter = forgetter
}

// forgetCounters drops the inventory gate for an event that left ACTIVE.
// Best effort: the store remains authoritative without the gate.
func (s *service) forgetCounters(ctx context.Context, id uuid.UUID) {
	if s.forgetter == nil {
		return
	}
	if err := s.forgetter.Forget(ctx, id); err != nil {
		s.log.WithError(err).Warn("failed to drop inventory counters", "event_id", id.String())
	}
}

// Cache helper methods

func (s *service) setCache(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if s.cacheService == nil {
		return
	}
	if err := s.cacheService.Set(ctx, key, value, ttl); err != nil {
		s.log.WithError(err).Debug("cache set failed", "key", key)
	}
}

func (s *service) getCache(ctx context.Context, key string, dest interface{}) error {
	if s.cacheService == nil {
		return cache.ErrCacheMiss
	}
	return s.cacheService.Get(ctx, key, dest)
}

func (s *service) invalidateEventCache(ctx context.Context, eventID *uuid.UUID) {
	if s.cacheService == nil {
		return
	}

	patterns := []string{constants.PATTERN_INVALIDATE_EVENT_ALL}
	if eventID != nil {
		patterns = append(patterns, constants.PATTERN_INVALIDATE_EVENT_DETAIL+eventID.String()+"*")
	}

	for _, pattern := range patterns {
		if err := s.cacheService.DeletePattern(ctx, pattern); err != nil {
			s.log.WithError(err).Debug("cache invalidation failed", "pattern", pattern)
		}
	}
}

// CreateEvent creates a new event owned by the given organizer. The full
// capacity starts available; the Inventory Allocator is the only component
// that decrements it afterwards.
func (s *service) CreateEvent(ctx context.Context, organizerID string, req CreateEventRequest) (*EventResponse, error) {
	if organizerID == "" {
		return nil, fmt.Errorf("organizer identity is required")
	}
	if req.TicketPrice.IsNegative() {
		return nil, fmt.Errorf("ticket price must not be negative")
	}
	if req.DateTime.Before(time.Now()) {
		return nil, fmt.Errorf("event date must be in the future")
	}

	event := &Event{
		ID:               uuid.New(),
		Title:            req.Title,
		Description:      req.Description,
		Venue:            req.Venue,
		DateTime:         req.DateTime,
		TicketPrice:      req.TicketPrice,
		TotalTickets:     req.TotalTickets,
		AvailableTickets: req.TotalTickets,
		OrganizerID:      organizerID,
		Category:         req.Category,
		ImageURL:         req.ImageURL,
		Status:           StatusActive,
	}

	if err := s.repo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	s.invalidateEventCache(ctx, nil)
	s.log.LogEventCreated(ctx, event.ID.String(), organizerID)

	response := event.ToResponse()
	return &response, nil
}

// GetEventByID retrieves a single event, cache-aside
func (s *service) GetEventByID(ctx context.Context, id uuid.UUID) (*EventResponse, error) {
	cacheKey := constants.BuildEventDetailKey(id.String())

	var cached EventResponse
	if err := s.getCache(ctx, cacheKey, &cached); err == nil {
		return &cached, nil
	}

	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	response := event.ToResponse()
	s.setCache(ctx, cacheKey, response, constants.TTL_EVENT_DETAIL)
	return &response, nil
}

func (s *service) GetEventRecord(ctx context.Context, id uuid.UUID) (*Event, error) {
	return s.repo.GetByID(ctx, id)
}

// GetAllEvents returns a filtered, paginated event listing in creation order
func (s *service) GetAllEvents(ctx context.Context, query EventListQuery) (*PaginatedEvents, error) {
	if query.Page == 0 {
		query.Page = 1
	}
	if query.Limit == 0 {
		query.Limit = 10
	}
	if query.Status != "" && !Status(query.Status).IsValid() {
		return nil, fmt.Errorf("unknown status filter %q", query.Status)
	}

	// Only unfiltered pages are worth caching; filter combinations churn too much
	cacheable := query.Search == "" && query.Venue == "" && query.Category == "" &&
		query.DateFrom == "" && query.DateTo == ""
	cacheKey := constants.BuildEventListKey(query.Page, query.Limit, query.Status)

	if cacheable {
		var cached PaginatedEvents
		if err := s.getCache(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	events, totalCount, err := s.repo.GetAll(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	responses := make([]EventResponse, len(events))
	for i, event := range events {
		responses[i] = event.ToResponse()
	}

	result := &PaginatedEvents{
		Events:     responses,
		TotalCount: totalCount,
		Page:       query.Page,
		Limit:      query.Limit,
		TotalPages: int(math.Ceil(float64(totalCount) / float64(query.Limit))),
	}

	if cacheable {
		s.setCache(ctx, cacheKey, result, constants.TTL_EVENT_LIST)
	}
	return result, nil
}

func (s *service) GetUpcomingEvents(ctx context.Context, limit int) ([]EventResponse, error) {
	if limit <= 0 {
		limit = 10
	}

	cacheKey := fmt.Sprintf("%s:limit:%d", constants.CACHE_KEY_EVENTS_UPCOMING, limit)
	var cached []EventResponse
	if err := s.getCache(ctx, cacheKey, &cached); err == nil {
		return cached, nil
	}

	events, err := s.repo.GetUpcoming(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list upcoming events: %w", err)
	}

	responses := make([]EventResponse, len(events))
	for i, event := range events {
		responses[i] = event.ToResponse()
	}

	s.setCache(ctx, cacheKey, responses, constants.TTL_EVENT_UPCOMING)
	return responses, nil
}

// GetEventStats aggregates ticket counts and revenue for one event
func (s *service) GetEventStats(ctx context.Context, id uuid.UUID) (*EventStats, error) {
	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	stats := &EventStats{
		EventID:          event.ID.String(),
		Title:            event.Title,
		TotalTickets:     event.TotalTickets,
		AvailableTickets: event.AvailableTickets,
		GrossRevenue:     decimal.Zero,
	}

	if s.tallier != nil {
		tally, err := s.tallier.TallyForEvent(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to tally tickets for event %s: %w", id, err)
		}
		stats.Sold = tally.Valid + tally.Listed + tally.Used
		stats.CheckedIn = tally.Used
		stats.Refunded = tally.Refunded
		stats.GrossRevenue = tally.Revenue
	}

	if event.TotalTickets > 0 {
		stats.Utilization = float64(event.TotalTickets-event.AvailableTickets) / float64(event.TotalTickets) * 100
	}

	return stats, nil
}

// MarkCancelled transitions an active event to CANCELLED. The Refund
// Coordinator drives this as the first step of cancelEvent; ticket refunds
// follow in the coordinator.
func (s *service) MarkCancelled(ctx context.Context, id uuid.UUID) (*Event, error) {
	event, err := s.repo.UpdateStatusIf(ctx, id, []Status{StatusActive}, StatusCancelled)
	if err != nil {
		return nil, err
	}

	s.invalidateEventCache(ctx, &id)
	s.forgetCounters(ctx, id)
	return event, nil
}

// MarkCompleted transitions an active event to COMPLETED after it has run
func (s *service) MarkCompleted(ctx context.Context, id uuid.UUID) (*EventResponse, error) {
	event, err := s.repo.UpdateStatusIf(ctx, id, []Status{StatusActive}, StatusCompleted)
	if err != nil {
		return nil, err
	}

	s.invalidateEventCache(ctx, &id)
	s.forgetCounters(ctx, id)

	response := event.ToResponse()
	return &response, nil
}
