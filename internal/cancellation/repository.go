package cancellation

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists cancellation audit records
type Repository interface {
	Create(ctx context.Context, record *EventCancellation) error
	GetByEventID(ctx context.Context, eventID uuid.UUID) (*EventCancellation, error)
	GetAll(ctx context.Context) ([]EventCancellation, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository creates a new cancellation repository
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, record *EventCancellation) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *repository) GetByEventID(ctx context.Context, eventID uuid.UUID) (*EventCancellation, error) {
	var record EventCancellation
	err := r.db.WithContext(ctx).Where("event_id = ?", eventID).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

func (r *repository) GetAll(ctx context.Context) ([]EventCancellation, error) {
	var records []EventCancellation
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&records).Error
	return records, err
}
