package events

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id uuid.UUID) (*Event, error)
	GetAll(ctx context.Context, query EventListQuery) ([]Event, int64, error)
	GetByStatus(ctx context.Context, status Status) ([]Event, error)
	GetUpcoming(ctx context.Context, limit int) ([]Event, error)

	// UpdateStatusIf atomically transitions the event status when the current
	// status is one of from. Returns ErrInvalidState otherwise.
	UpdateStatusIf(ctx context.Context, id uuid.UUID, from []Status, to Status) (*Event, error)

	// AdjustAvailable atomically changes the available-ticket count by delta.
	// Negative deltas require an active event and sufficient availability
	// (ErrNotActive / ErrInsufficientCapacity). Positive deltas that would
	// exceed total capacity are clamped to total and reported with
	// ErrCapacityExceeded.
	AdjustAvailable(ctx context.Context, id uuid.UUID, delta int) (*Event, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, event *Event) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Event, error) {
	var event Event
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&event).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &event, nil
}

func (r *repository) GetAll(ctx context.Context, query EventListQuery) ([]Event, int64, error) {
	var events []Event
	var totalCount int64

	db := r.db.WithContext(ctx).Model(&Event{})

	// Apply filters
	if query.Search != "" {
		searchTerm := "%" + strings.ToLower(query.Search) + "%"
		db = db.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ? OR LOWER(venue) LIKE ?",
			searchTerm, searchTerm, searchTerm)
	}

	if query.Venue != "" {
		db = db.Where("LOWER(venue) LIKE ?", "%"+strings.ToLower(query.Venue)+"%")
	}

	if query.Category != "" {
		db = db.Where("LOWER(category) = ?", strings.ToLower(query.Category))
	}

	if query.Status != "" {
		db = db.Where("status = ?", query.Status)
	}

	// Date filters
	if query.DateFrom != "" {
		if dateFrom, err := time.Parse("2006-01-02", query.DateFrom); err == nil {
			db = db.Where("date_time >= ?", dateFrom)
		}
	}

	if query.DateTo != "" {
		if dateTo, err := time.Parse("2006-01-02", query.DateTo); err == nil {
			// Add 24 hours to include the entire day
			dateTo = dateTo.Add(24 * time.Hour)
			db = db.Where("date_time < ?", dateTo)
		}
	}

	// Count total records
	if err := db.Count(&totalCount).Error; err != nil {
		return nil, 0, err
	}

	// Apply pagination
	if query.Page == 0 {
		query.Page = 1
	}
	if query.Limit == 0 {
		query.Limit = 10
	}

	offset := (query.Page - 1) * query.Limit

	// Stable listing order: creation order
	err := db.Order("created_at ASC").
		Offset(offset).
		Limit(query.Limit).
		Find(&events).Error

	return events, totalCount, err
}

func (r *repository) GetByStatus(ctx context.Context, status Status) ([]Event, error) {
	var events []Event
	err := r.db.WithContext(ctx).Where("status = ?", status).Order("created_at ASC").Find(&events).Error
	return events, err
}

func (r *repository) GetUpcoming(ctx context.Context, limit int) ([]Event, error) {
	var events []Event
	now := time.Now()

	err := r.db.WithContext(ctx).
		Where("date_time > ? AND status = ?", now, StatusActive).
		Order("date_time ASC").
		Limit(limit).
		Find(&events).Error

	return events, err
}

func (r *repository) UpdateStatusIf(ctx context.Context, id uuid.UUID, from []Status, to Status) (*Event, error) {
	var event Event

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&Event{}).
			Where("id = ? AND status IN ?", id, from).
			Update("status", to)
		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected == 0 {
			// Distinguish missing event from illegal transition
			if err := tx.Where("id = ?", id).First(&event).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrNotFound
				}
				return err
			}
			return fmt.Errorf("cannot transition event %s from %s to %s: %w",
				id, event.Status, to, ErrInvalidState)
		}

		return tx.Where("id = ?", id).First(&event).Error
	})
	if err != nil {
		return nil, err
	}

	return &event, nil
}

func (r *repository) AdjustAvailable(ctx context.Context, id uuid.UUID, delta int) (*Event, error) {
	var event Event
	var capacityErr error

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Lock the row for update
		if err := tx.Set("gorm:query_option", "FOR UPDATE").
			Where("id = ?", id).
			First(&event).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		newAvailable := event.AvailableTickets + delta

		if delta < 0 {
			if !event.Status.IsSellable() {
				return fmt.Errorf("event %s has status %s: %w", id, event.Status, ErrNotActive)
			}
			if newAvailable < 0 {
				return fmt.Errorf("event %s has %d tickets available, requested %d: %w",
					id, event.AvailableTickets, -delta, ErrInsufficientCapacity)
			}
		}

		if newAvailable > event.TotalTickets {
			// Clamp defensively; surface the violation to the caller
			newAvailable = event.TotalTickets
			capacityErr = fmt.Errorf("event %s: %w", id, ErrCapacityExceeded)
		}

		if err := tx.Model(&event).Update("available_tickets", newAvailable).Error; err != nil {
			return err
		}
		event.AvailableTickets = newAvailable
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &event, capacityErr
}
