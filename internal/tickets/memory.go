package tickets

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"eventx/internal/events"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MemoryRepository is the in-memory store driver for tickets. Reads return
// snapshot copies; one mutex serializes mutations, so UpdateStatusIf is a
// true compare-and-set against concurrent callers.
type MemoryRepository struct {
	mu      sync.RWMutex
	tickets map[uuid.UUID]*Ticket
	byToken map[string]uuid.UUID
	order   []uuid.UUID // creation order for stable listings
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		tickets: make(map[uuid.UUID]*Ticket),
		byToken: make(map[string]uuid.UUID),
	}
}

func (r *MemoryRepository) CreateBatch(ctx context.Context, batch []*Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, ticket := range batch {
		if ticket.ID == uuid.Nil {
			ticket.ID = uuid.New()
		}
		if _, exists := r.tickets[ticket.ID]; exists {
			return fmt.Errorf("ticket %s already exists", ticket.ID)
		}
		if _, exists := r.byToken[ticket.Token]; exists {
			return fmt.Errorf("token %s already exists", ticket.Token)
		}
	}

	now := time.Now().UTC()
	for _, ticket := range batch {
		if ticket.CreatedAt.IsZero() {
			ticket.CreatedAt = now
		}
		ticket.UpdatedAt = now

		stored := *ticket
		r.tickets[ticket.ID] = &stored
		r.byToken[ticket.Token] = ticket.ID
		r.order = append(r.order, ticket.ID)
	}
	return nil
}

func (r *MemoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ticket, ok := r.tickets[id]
	if !ok {
		return nil, ErrNotFound
	}
	snapshot := *ticket
	return &snapshot, nil
}

func (r *MemoryRepository) GetByToken(ctx context.Context, token string) (*Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byToken[token]
	if !ok {
		return nil, ErrUnknownToken
	}
	snapshot := *r.tickets[id]
	return &snapshot, nil
}

func (r *MemoryRepository) GetByOwner(ctx context.Context, ownerID string) ([]Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []Ticket
	for _, id := range r.order {
		if ticket := r.tickets[id]; ticket.OwnerID == ownerID {
			result = append(result, *ticket)
		}
	}
	return result, nil
}

func (r *MemoryRepository) GetByEvent(ctx context.Context, eventID uuid.UUID) ([]Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []Ticket
	for _, id := range r.order {
		if ticket := r.tickets[id]; ticket.EventID == eventID {
			result = append(result, *ticket)
		}
	}
	return result, nil
}

func (r *MemoryRepository) GetByEventAndStatuses(ctx context.Context, eventID uuid.UUID, statuses []Status) ([]Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []Ticket
	for _, id := range r.order {
		ticket := r.tickets[id]
		if ticket.EventID != eventID {
			continue
		}
		for _, s := range statuses {
			if ticket.Status == s {
				result = append(result, *ticket)
				break
			}
		}
	}
	return result, nil
}

func (r *MemoryRepository) GetListed(ctx context.Context) ([]Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []Ticket
	for _, id := range r.order {
		if ticket := r.tickets[id]; ticket.Status == StatusListed {
			result = append(result, *ticket)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].UpdatedAt.Before(result[j].UpdatedAt)
	})
	return result, nil
}

func (r *MemoryRepository) UpdateStatusIf(ctx context.Context, id uuid.UUID, from []Status, to Status, owner string, set map[string]interface{}) (*Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ticket, ok := r.tickets[id]
	if !ok {
		return nil, ErrNotFound
	}

	if owner != "" && ticket.OwnerID != owner {
		return nil, ErrNotOwner
	}

	matched := false
	for _, s := range from {
		if ticket.Status == s {
			matched = true
			break
		}
	}
	if !matched {
		return nil, fmt.Errorf("cannot transition ticket %s from %s to %s: %w",
			id, ticket.Status, to, ErrInvalidState)
	}

	ticket.Status = to
	if err := applyColumnSet(ticket, set); err != nil {
		return nil, err
	}
	ticket.UpdatedAt = time.Now().UTC()
	snapshot := *ticket
	return &snapshot, nil
}

func (r *MemoryRepository) DeleteByOrderRef(ctx context.Context, orderRef string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.order[:0]
	for _, id := range r.order {
		ticket := r.tickets[id]
		if ticket.OrderRef == orderRef {
			delete(r.byToken, ticket.Token)
			delete(r.tickets, id)
			continue
		}
		kept = append(kept, id)
	}
	r.order = kept
	return nil
}

func (r *MemoryRepository) TallyForEvent(ctx context.Context, eventID uuid.UUID) (events.TicketTally, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tally := events.TicketTally{Revenue: decimal.Zero}
	for _, ticket := range r.tickets {
		if ticket.EventID != eventID {
			continue
		}
		switch ticket.Status {
		case StatusValid:
			tally.Valid++
			tally.Revenue = tally.Revenue.Add(ticket.PurchasePrice)
		case StatusListed:
			tally.Listed++
			tally.Revenue = tally.Revenue.Add(ticket.PurchasePrice)
		case StatusUsed:
			tally.Used++
			tally.Revenue = tally.Revenue.Add(ticket.PurchasePrice)
		case StatusRefunded:
			tally.Refunded++
		}
	}
	return tally, nil
}

// applyColumnSet mirrors the column updates the SQL driver applies through
// gorm. Only columns the service layer actually sets are supported.
func applyColumnSet(ticket *Ticket, set map[string]interface{}) error {
	for column, value := range set {
		switch column {
		case "owner_id":
			ticket.OwnerID = value.(string)
		case "purchase_price":
			ticket.PurchasePrice = value.(decimal.Decimal)
		case "resale_price":
			if value == nil {
				ticket.ResalePrice = nil
			} else {
				price := value.(decimal.Decimal)
				ticket.ResalePrice = &price
			}
		case "used_at":
			at := value.(time.Time)
			ticket.UsedAt = &at
		case "resold_at":
			at := value.(time.Time)
			ticket.ResoldAt = &at
		case "refunded_at":
			at := value.(time.Time)
			ticket.RefundedAt = &at
		default:
			return fmt.Errorf("unsupported column update: %s", column)
		}
	}
	return nil
}
