package tickets

import (
	"time"

	"github.com/shopspring/decimal"
)

// TicketResponse defines the full ticket representation returned to its owner
type TicketResponse struct {
	ID            string           `json:"id"`
	EventID       string           `json:"event_id"`
	OwnerID       string           `json:"owner_id"`
	Token         string           `json:"token"`
	PurchasePrice decimal.Decimal  `json:"purchase_price"`
	FacePrice     decimal.Decimal  `json:"face_price"`
	ResalePrice   *decimal.Decimal `json:"resale_price,omitempty"`
	Status        Status           `json:"status"`
	OrderRef      string           `json:"order_ref"`
	CreatedAt     time.Time        `json:"created_at"`
	UsedAt        *time.Time       `json:"used_at,omitempty"`
	ResoldAt      *time.Time       `json:"resold_at,omitempty"`
	RefundedAt    *time.Time       `json:"refunded_at,omitempty"`
}

// ListingResponse is the public view of an open resale listing. It carries
// no token and no owner identity.
type ListingResponse struct {
	TicketID    string          `json:"ticket_id"`
	EventID     string          `json:"event_id"`
	FacePrice   decimal.Decimal `json:"face_price"`
	ResalePrice decimal.Decimal `json:"resale_price"`
	ListedAt    time.Time       `json:"listed_at"`
}

// PresentationResponse is the gate payload the owner renders as a QR code
type PresentationResponse struct {
	TicketID   string    `json:"ticket_id"`
	EventID    string    `json:"event_id"`
	Token      string    `json:"token"`
	EventTitle string    `json:"event_title"`
	Venue      string    `json:"venue"`
	DateTime   time.Time `json:"date_time"`
}
