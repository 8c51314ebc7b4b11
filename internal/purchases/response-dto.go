package purchases

import (
	"time"

	"eventx/internal/tickets"

	"github.com/shopspring/decimal"
)

// PurchaseResponse defines the confirmation returned for a completed order
type PurchaseResponse struct {
	OrderRef   string                   `json:"order_ref"`
	EventID    string                   `json:"event_id"`
	EventTitle string                   `json:"event_title"`
	BuyerID    string                   `json:"buyer_id"`
	Quantity   int                      `json:"quantity"`
	UnitPrice  decimal.Decimal          `json:"unit_price"`
	TotalPrice decimal.Decimal          `json:"total_price"`
	Tickets    []tickets.TicketResponse `json:"tickets"`
	CreatedAt  time.Time                `json:"created_at"`
}
