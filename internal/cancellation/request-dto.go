package cancellation

// CancelEventRequest defines the request structure for cancelling an event
type CancelEventRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}
