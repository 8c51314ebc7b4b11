package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Event struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Title       string    `json:"title" gorm:"not null;size:255"`
	Description string    `json:"description" gorm:"type:text"`
	Venue       string    `json:"venue" gorm:"not null;size:255"`
	DateTime    time.Time `json:"date_time" gorm:"not null"`

	TicketPrice      decimal.Decimal `json:"ticket_price" gorm:"type:numeric(12,2);not null"`
	TotalTickets     int             `json:"total_tickets" gorm:"not null;check:total_tickets > 0"`
	AvailableTickets int             `json:"available_tickets" gorm:"not null;check:available_tickets >= 0"`

	OrganizerID string `json:"organizer_id" gorm:"size:128;not null;index"`
	Category    string `json:"category" gorm:"size:100"`
	ImageURL    string `json:"image_url" gorm:"size:500"`
	Status      Status `json:"status" gorm:"type:varchar(20);default:'ACTIVE'"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TicketTally aggregates per-status ticket counts for an event. Populated by
// the ticket store; defined here so the stats endpoint can consume it without
// a package cycle.
type TicketTally struct {
	Valid    int             `json:"valid"`
	Listed   int             `json:"listed"`
	Used     int             `json:"used"`
	Refunded int             `json:"refunded"`
	Revenue  decimal.Decimal `json:"revenue"`
}

type EventStats struct {
	EventID          string          `json:"event_id"`
	Title            string          `json:"title"`
	TotalTickets     int             `json:"total_tickets"`
	AvailableTickets int             `json:"available_tickets"`
	Sold             int             `json:"sold"`
	CheckedIn        int             `json:"checked_in"`
	Refunded         int             `json:"refunded"`
	GrossRevenue     decimal.Decimal `json:"gross_revenue"`
	Utilization      float64         `json:"utilization"`
}

type PaginatedEvents struct {
	Events     []EventResponse `json:"events"`
	TotalCount int64           `json:"total_count"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"total_pages"`
}

// ToResponse converts an Event to its API representation
func (e *Event) ToResponse() EventResponse {
	return EventResponse{
		ID:               e.ID.String(),
		Title:            e.Title,
		Description:      e.Description,
		Venue:            e.Venue,
		DateTime:         e.DateTime,
		TicketPrice:      e.TicketPrice,
		TotalTickets:     e.TotalTickets,
		AvailableTickets: e.AvailableTickets,
		OrganizerID:      e.OrganizerID,
		Category:         e.Category,
		ImageURL:         e.ImageURL,
		Status:           e.Status,
		CreatedAt:        e.CreatedAt,
		UpdatedAt:        e.UpdatedAt,
	}
}

// TableName specifies the table name for GORM
func (Event) TableName() string {
	return "events"
}
