package events

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepository is the in-memory store driver. All reads return snapshot
// copies so callers cannot mutate store state outside the repository's
// mutation operations. A single mutex guards the event map; reserve/release
// and status transitions are therefore atomic with respect to all callers.
type MemoryRepository struct {
	mu     sync.RWMutex
	events map[uuid.UUID]*Event
	order  []uuid.UUID // creation order for stable listings
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		events: make(map[uuid.UUID]*Event),
	}
}

func (r *MemoryRepository) Create(ctx context.Context, event *Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if _, exists := r.events[event.ID]; exists {
		return fmt.Errorf("event %s already exists", event.ID)
	}

	now := time.Now().UTC()
	if event.CreatedAt.IsZero() {
		event.CreatedAt = now
	}
	event.UpdatedAt = now

	stored := *event
	r.events[event.ID] = &stored
	r.order = append(r.order, event.ID)
	return nil
}

func (r *MemoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	event, ok := r.events[id]
	if !ok {
		return nil, ErrNotFound
	}
	snapshot := *event
	return &snapshot, nil
}

func (r *MemoryRepository) GetAll(ctx context.Context, query EventListQuery) ([]Event, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []Event
	for _, id := range r.order {
		event := r.events[id]
		if !matchesQuery(event, query) {
			continue
		}
		matched = append(matched, *event)
	}

	totalCount := int64(len(matched))

	if query.Page == 0 {
		query.Page = 1
	}
	if query.Limit == 0 {
		query.Limit = 10
	}

	offset := (query.Page - 1) * query.Limit
	if offset >= len(matched) {
		return []Event{}, totalCount, nil
	}

	end := offset + query.Limit
	if end > len(matched) {
		end = len(matched)
	}

	return matched[offset:end], totalCount, nil
}

func (r *MemoryRepository) GetByStatus(ctx context.Context, status Status) ([]Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []Event
	for _, id := range r.order {
		if event := r.events[id]; event.Status == status {
			result = append(result, *event)
		}
	}
	return result, nil
}

func (r *MemoryRepository) GetUpcoming(ctx context.Context, limit int) ([]Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	now := time.Now()
	var result []Event
	for _, id := range r.order {
		event := r.events[id]
		if event.Status == StatusActive && event.DateTime.After(now) {
			result = append(result, *event)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].DateTime.Before(result[j].DateTime)
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (r *MemoryRepository) UpdateStatusIf(ctx context.Context, id uuid.UUID, from []Status, to Status) (*Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	event, ok := r.events[id]
	if !ok {
		return nil, ErrNotFound
	}

	matched := false
	for _, s := range from {
		if event.Status == s {
			matched = true
			break
		}
	}
	if !matched {
		return nil, fmt.Errorf("cannot transition event %s from %s to %s: %w",
			id, event.Status, to, ErrInvalidState)
	}

	event.Status = to
	event.UpdatedAt = time.Now().UTC()
	snapshot := *event
	return &snapshot, nil
}

func (r *MemoryRepository) AdjustAvailable(ctx context.Context, id uuid.UUID, delta int) (*Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	event, ok := r.events[id]
	if !ok {
		return nil, ErrNotFound
	}

	newAvailable := event.AvailableTickets + delta

	if delta < 0 {
		if !event.Status.IsSellable() {
			return nil, fmt.Errorf("event %s has status %s: %w", id, event.Status, ErrNotActive)
		}
		if newAvailable < 0 {
			return nil, fmt.Errorf("event %s has %d tickets available, requested %d: %w",
				id, event.AvailableTickets, -delta, ErrInsufficientCapacity)
		}
	}

	var capacityErr error
	if newAvailable > event.TotalTickets {
		newAvailable = event.TotalTickets
		capacityErr = fmt.Errorf("event %s: %w", id, ErrCapacityExceeded)
	}

	event.AvailableTickets = newAvailable
	event.UpdatedAt = time.Now().UTC()
	snapshot := *event
	return &snapshot, capacityErr
}

func matchesQuery(event *Event, query EventListQuery) bool {
	if query.Status != "" && string(event.Status) != query.Status {
		return false
	}
	if query.Category != "" && !strings.EqualFold(event.Category, query.Category) {
		return false
	}
	if query.Venue != "" && !strings.Contains(strings.ToLower(event.Venue), strings.ToLower(query.Venue)) {
		return false
	}
	if query.Search != "" {
		term := strings.ToLower(query.Search)
		if !strings.Contains(strings.ToLower(event.Title), term) &&
			!strings.Contains(strings.ToLower(event.Description), term) &&
			!strings.Contains(strings.ToLower(event.Venue), term) {
			return false
		}
	}
	if query.DateFrom != "" {
		if dateFrom, err := time.Parse("2006-01-02", query.DateFrom); err == nil {
			if event.DateTime.Before(dateFrom) {
				return false
			}
		}
	}
	if query.DateTo != "" {
		if dateTo, err := time.Parse("2006-01-02", query.DateTo); err == nil {
			if !event.DateTime.Before(dateTo.Add(24 * time.Hour)) {
				return false
			}
		}
	}
	return true
}
