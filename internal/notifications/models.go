package notifications

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MessageType identifies the kind of lifecycle message
type MessageType string

const (
	MessagePurchaseConfirmed MessageType = "PURCHASE_CONFIRMED"
	MessageTicketTransferred MessageType = "TICKET_TRANSFERRED"
	MessageTicketResold      MessageType = "TICKET_RESOLD"
	MessageCheckInRecorded   MessageType = "CHECKIN_RECORDED"
	MessageEventCancelled    MessageType = "EVENT_CANCELLED"
)

// LifecycleMessage is the envelope published to the lifecycle topic for
// every ticket state change downstream consumers care about.
type LifecycleMessage struct {
	ID        uuid.UUID              `json:"id"`
	Type      MessageType            `json:"type"`
	EventID   uuid.UUID              `json:"event_id"`
	OwnerID   string                 `json:"owner_id,omitempty"`
	TicketIDs []string               `json:"ticket_ids,omitempty"`
	OrderRef  string                 `json:"order_ref,omitempty"`
	Data      map[string]interface{} `json:"data,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

// NewLifecycleMessage builds a message with identity and timestamp filled in
func NewLifecycleMessage(msgType MessageType, eventID uuid.UUID) *LifecycleMessage {
	return &LifecycleMessage{
		ID:        uuid.New(),
		Type:      msgType,
		EventID:   eventID,
		CreatedAt: time.Now().UTC(),
	}
}

// ToJSON serializes the message for the wire
func (m *LifecycleMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// GetPartitionKey routes all messages for one event to the same partition
// so consumers see that event's changes in order.
func (m *LifecycleMessage) GetPartitionKey() string {
	return m.EventID.String()
}

// RefundInstruction is published to the refund topic. The payment provider
// consumes it and moves the money; this service never touches funds.
type RefundInstruction struct {
	ID       uuid.UUID       `json:"id"`
	TicketID uuid.UUID       `json:"ticket_id"`
	EventID  uuid.UUID       `json:"event_id"`
	OwnerID  string          `json:"owner_id"`
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
	Reason   string          `json:"reason"`

	CreatedAt time.Time `json:"created_at"`
}

// NewRefundInstruction builds a refund instruction for one ticket
func NewRefundInstruction(ticketID, eventID uuid.UUID, ownerID string, amount decimal.Decimal, reason string) *RefundInstruction {
	return &RefundInstruction{
		ID:        uuid.New(),
		TicketID:  ticketID,
		EventID:   eventID,
		OwnerID:   ownerID,
		Amount:    amount,
		Currency:  "USD",
		Reason:    reason,
		CreatedAt: time.Now().UTC(),
	}
}

// ToJSON serializes the instruction for the wire
func (r *RefundInstruction) ToJSON() ([]byte, error) {
	return json.Marshal(r)
}

// GetPartitionKey keys refunds by owner so one owner's refunds stay ordered
func (r *RefundInstruction) GetPartitionKey() string {
	return r.OwnerID
}

// Refund reasons carried on instructions
const (
	RefundReasonOwnerRequest   = "owner_request"
	RefundReasonEventCancelled = "event_cancelled"
)
