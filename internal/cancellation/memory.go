package cancellation

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepository is the in-memory store driver for cancellation records
type MemoryRepository struct {
	mu      sync.RWMutex
	records map[uuid.UUID]*EventCancellation // keyed by event ID
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		records: make(map[uuid.UUID]*EventCancellation),
	}
}

func (r *MemoryRepository) Create(ctx context.Context, record *EventCancellation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if _, exists := r.records[record.EventID]; exists {
		return fmt.Errorf("cancellation for event %s already recorded", record.EventID)
	}

	now := time.Now().UTC()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now

	stored := *record
	r.records[record.EventID] = &stored
	return nil
}

func (r *MemoryRepository) GetByEventID(ctx context.Context, eventID uuid.UUID) (*EventCancellation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.records[eventID]
	if !ok {
		return nil, ErrNotFound
	}
	snapshot := *record
	return &snapshot, nil
}

func (r *MemoryRepository) GetAll(ctx context.Context) ([]EventCancellation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]EventCancellation, 0, len(r.records))
	for _, record := range r.records {
		result = append(result, *record)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}
