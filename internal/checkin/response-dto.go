package checkin

import (
	"time"

	"eventx/internal/events"
	"eventx/internal/tickets"
)

// CheckInResponse carries the admitted ticket and its event for the gate
// display. The event snapshot is best-effort and may be zero if the lookup
// failed after admission.
type CheckInResponse struct {
	Ticket    tickets.TicketResponse `json:"ticket"`
	Event     events.EventResponse   `json:"event"`
	CheckedIn time.Time              `json:"checked_in"`
}
