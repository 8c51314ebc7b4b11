package tickets

import (
	"context"
	"errors"
	"fmt"

	"eventx/internal/events"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Repository defines persistence for tickets. UpdateStatusIf is the single
// mutation primitive: a compare-and-set on status (and optionally owner)
// that concurrent callers race on, with exactly one winner.
type Repository interface {
	CreateBatch(ctx context.Context, batch []*Ticket) error
	GetByID(ctx context.Context, id uuid.UUID) (*Ticket, error)
	GetByToken(ctx context.Context, token string) (*Ticket, error)
	GetByOwner(ctx context.Context, ownerID string) ([]Ticket, error)
	GetByEvent(ctx context.Context, eventID uuid.UUID) ([]Ticket, error)
	GetByEventAndStatuses(ctx context.Context, eventID uuid.UUID, statuses []Status) ([]Ticket, error)
	GetListed(ctx context.Context) ([]Ticket, error)

	// UpdateStatusIf atomically moves the ticket to status to, provided its
	// current status is one of from and, when owner is non-empty, it is
	// owned by owner. Extra column updates ride in set. Losing the race
	// returns ErrInvalidState (or ErrNotOwner when ownership failed).
	UpdateStatusIf(ctx context.Context, id uuid.UUID, from []Status, to Status, owner string, set map[string]interface{}) (*Ticket, error)

	// DeleteByOrderRef removes all tickets minted under an order reference.
	// Used to unwind a purchase that failed after minting.
	DeleteByOrderRef(ctx context.Context, orderRef string) error

	TallyForEvent(ctx context.Context, eventID uuid.UUID) (events.TicketTally, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository creates a new ticket repository
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateBatch(ctx context.Context, batch []*Ticket) error {
	if len(batch) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(batch).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Ticket, error) {
	var ticket Ticket
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&ticket).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &ticket, nil
}

func (r *repository) GetByToken(ctx context.Context, token string) (*Ticket, error) {
	var ticket Ticket
	err := r.db.WithContext(ctx).Where("token = ?", token).First(&ticket).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnknownToken
		}
		return nil, err
	}
	return &ticket, nil
}

func (r *repository) GetByOwner(ctx context.Context, ownerID string) ([]Ticket, error) {
	var list []Ticket
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at ASC").
		Find(&list).Error
	return list, err
}

func (r *repository) GetByEvent(ctx context.Context, eventID uuid.UUID) ([]Ticket, error) {
	var list []Ticket
	err := r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("created_at ASC").
		Find(&list).Error
	return list, err
}

func (r *repository) GetByEventAndStatuses(ctx context.Context, eventID uuid.UUID, statuses []Status) ([]Ticket, error) {
	var list []Ticket
	err := r.db.WithContext(ctx).
		Where("event_id = ? AND status IN ?", eventID, statuses).
		Order("created_at ASC").
		Find(&list).Error
	return list, err
}

func (r *repository) GetListed(ctx context.Context) ([]Ticket, error) {
	var list []Ticket
	err := r.db.WithContext(ctx).
		Where("status = ?", StatusListed).
		Order("updated_at ASC").
		Find(&list).Error
	return list, err
}

func (r *repository) UpdateStatusIf(ctx context.Context, id uuid.UUID, from []Status, to Status, owner string, set map[string]interface{}) (*Ticket, error) {
	updates := map[string]interface{}{"status": to}
	for k, v := range set {
		updates[k] = v
	}

	var ticket Ticket
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		query := tx.Model(&Ticket{}).Where("id = ? AND status IN ?", id, from)
		if owner != "" {
			query = query.Where("owner_id = ?", owner)
		}

		result := query.Updates(updates)
		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected == 0 {
			// Lost the race or the precondition never held. Read back to
			// say which.
			if err := tx.Where("id = ?", id).First(&ticket).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrNotFound
				}
				return err
			}
			if owner != "" && ticket.OwnerID != owner {
				return ErrNotOwner
			}
			return fmt.Errorf("cannot transition ticket %s from %s to %s: %w",
				id, ticket.Status, to, ErrInvalidState)
		}

		return tx.Where("id = ?", id).First(&ticket).Error
	})
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *repository) DeleteByOrderRef(ctx context.Context, orderRef string) error {
	return r.db.WithContext(ctx).
		Where("order_ref = ?", orderRef).
		Delete(&Ticket{}).Error
}

func (r *repository) TallyForEvent(ctx context.Context, eventID uuid.UUID) (events.TicketTally, error) {
	type row struct {
		Status Status
		Count  int
		Total  decimal.Decimal
	}

	var rows []row
	err := r.db.WithContext(ctx).
		Model(&Ticket{}).
		Select("status, COUNT(*) as count, COALESCE(SUM(purchase_price), 0) as total").
		Where("event_id = ?", eventID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return events.TicketTally{}, err
	}

	tally := events.TicketTally{Revenue: decimal.Zero}
	for _, r := range rows {
		switch r.Status {
		case StatusValid:
			tally.Valid = r.Count
			tally.Revenue = tally.Revenue.Add(r.Total)
		case StatusListed:
			tally.Listed = r.Count
			tally.Revenue = tally.Revenue.Add(r.Total)
		case StatusUsed:
			tally.Used = r.Count
			tally.Revenue = tally.Revenue.Add(r.Total)
		case StatusRefunded:
			tally.Refunded = r.Count
		}
	}
	return tally, nil
}
