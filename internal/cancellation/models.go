package cancellation

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EventCancellation records the outcome of cancelling an event. One record
// per event; it is the audit trail for the batch refund run.
type EventCancellation struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	EventID     uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"event_id"`
	RequestedBy string    `gorm:"size:128;not null" json:"requested_by"`
	Reason      string    `gorm:"type:text" json:"reason"`

	TicketsRefunded int             `gorm:"not null" json:"tickets_refunded"`
	TicketsFailed   int             `gorm:"not null" json:"tickets_failed"`
	TotalRefunded   decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"total_refunded"`

	RequestedAt time.Time  `json:"requested_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TableName sets the table name for EventCancellation
func (EventCancellation) TableName() string {
	return "event_cancellations"
}

// RefundFailure names one ticket whose refund attempt failed during a
// cancellation run.
type RefundFailure struct {
	TicketID string `json:"ticket_id"`
	Reason   string `json:"reason"`
}

// RefundReport aggregates the result of a batch refund. Failures never
// abort the run; each one is recorded here and the run continues.
type RefundReport struct {
	EventID       string          `json:"event_id"`
	Refunded      int             `json:"refunded"`
	Failed        []RefundFailure `json:"failed"`
	TotalRefunded decimal.Decimal `json:"total_refunded"`
	CompletedAt   time.Time       `json:"completed_at"`
}
