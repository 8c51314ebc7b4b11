package events

import (
	"time"

	"github.com/shopspring/decimal"
)

type CreateEventRequest struct {
	Title        string          `json:"title" binding:"required,min=3,max=255"`
	Description  string          `json:"description" binding:"max=2000"`
	Venue        string          `json:"venue" binding:"required,min=3,max=255"`
	DateTime     time.Time       `json:"date_time" binding:"required"`
	TicketPrice  decimal.Decimal `json:"ticket_price" binding:"required"`
	TotalTickets int             `json:"total_tickets" binding:"required,min=1,max=100000"`
	Category     string          `json:"category" binding:"max=100"`
	ImageURL     string          `json:"image_url" binding:"omitempty,url"`
}

type EventListQuery struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	Limit    int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Search   string `form:"search"`
	Venue    string `form:"venue"`
	Category string `form:"category"`
	DateFrom string `form:"date_from"`
	DateTo   string `form:"date_to"`
	Status   string `form:"status" binding:"omitempty,oneof=ACTIVE CANCELLED COMPLETED"`
}
