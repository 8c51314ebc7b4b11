package events

import (
	"time"

	"github.com/shopspring/decimal"
)

type EventResponse struct {
	ID               string          `json:"id"`
	Title            string          `json:"title"`
	Description      string          `json:"description"`
	Venue            string          `json:"venue"`
	DateTime         time.Time       `json:"date_time"`
	TicketPrice      decimal.Decimal `json:"ticket_price"`
	TotalTickets     int             `json:"total_tickets"`
	AvailableTickets int             `json:"available_tickets"`
	OrganizerID      string          `json:"organizer_id"`
	Category         string          `json:"category"`
	ImageURL         string          `json:"image_url"`
	Status           Status          `json:"status"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}
