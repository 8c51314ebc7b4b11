package tickets

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Ticket defines the main ticket structure
type Ticket struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	EventID uuid.UUID `gorm:"type:uuid;index;not null" json:"event_id"`
	OwnerID string    `gorm:"size:128;index;not null" json:"owner_id"`

	// Token is the opaque credential presented at the gate. Unique across
	// all tickets ever minted.
	Token string `gorm:"size:64;uniqueIndex;not null" json:"token"`

	// PurchasePrice is the face price the current owner paid. Resale
	// updates it to the sale price.
	PurchasePrice decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"purchase_price"`

	// FacePrice is the original price at mint time. The resale band is
	// always computed against this value.
	FacePrice decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"face_price"`

	// ResalePrice holds the asking price while the ticket is listed.
	ResalePrice *decimal.Decimal `gorm:"type:numeric(12,2)" json:"resale_price,omitempty"`

	Status Status `gorm:"type:varchar(20);default:'VALID';index" json:"status"`

	OrderRef string `gorm:"size:32;index;not null" json:"order_ref"`

	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	UsedAt     *time.Time `json:"used_at,omitempty"`
	ResoldAt   *time.Time `json:"resold_at,omitempty"`
	RefundedAt *time.Time `json:"refunded_at,omitempty"`
}

// ToResponse converts a Ticket to its API representation
func (t *Ticket) ToResponse() TicketResponse {
	return TicketResponse{
		ID:            t.ID.String(),
		EventID:       t.EventID.String(),
		OwnerID:       t.OwnerID,
		Token:         t.Token,
		PurchasePrice: t.PurchasePrice,
		FacePrice:     t.FacePrice,
		ResalePrice:   t.ResalePrice,
		Status:        t.Status,
		OrderRef:      t.OrderRef,
		CreatedAt:     t.CreatedAt,
		UsedAt:        t.UsedAt,
		ResoldAt:      t.ResoldAt,
		RefundedAt:    t.RefundedAt,
	}
}

// ToListing converts a listed Ticket to its public resale representation.
// The token never leaves the owner's view.
func (t *Ticket) ToListing() ListingResponse {
	var price decimal.Decimal
	if t.ResalePrice != nil {
		price = *t.ResalePrice
	}
	return ListingResponse{
		TicketID:    t.ID.String(),
		EventID:     t.EventID.String(),
		FacePrice:   t.FacePrice,
		ResalePrice: price,
		ListedAt:    t.UpdatedAt,
	}
}

// TableName specifies the table name for GORM
func (Ticket) TableName() string {
	return "tickets"
}
