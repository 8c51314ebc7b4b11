package purchases

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"eventx/internal/events"
	"eventx/internal/inventory"
	"eventx/internal/notifications"
	"eventx/internal/tickets"
	"eventx/pkg/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Service interface {
	// Purchase reserves inventory for the order and mints the tickets.
	// Either the whole order succeeds or nothing is taken.
	Purchase(ctx context.Context, buyerID string, req PurchaseRequest) (*PurchaseResponse, error)
}

type service struct {
	eventService  events.Service
	ticketService tickets.Service
	allocator     inventory.Allocator
	producer      notifications.Producer
	log           *logger.Logger
}

func NewService(eventService events.Service, ticketService tickets.Service, allocator inventory.Allocator, producer notifications.Producer) Service {
	return &service{
		eventService:  eventService,
		ticketService: ticketService,
		allocator:     allocator,
		producer:      producer,
		log:           logger.GetDefault(),
	}
}

func (s *service) Purchase(ctx context.Context, buyerID string, req PurchaseRequest) (*PurchaseResponse, error) {
	if buyerID == "" {
		return nil, fmt.Errorf("buyer identity is required")
	}

	eventID, err := uuid.Parse(req.EventID)
	if err != nil {
		return nil, fmt.Errorf("invalid event ID: %w", err)
	}

	// The reserve is the gate: it either takes the full quantity
	// atomically or rejects the order.
	event, err := s.allocator.Reserve(ctx, eventID, req.Quantity)
	if err != nil {
		return nil, err
	}

	orderRef, err := s.generateOrderReference()
	if err != nil {
		s.releaseAfterFailure(ctx, eventID, req.Quantity)
		return nil, err
	}

	minted, err := s.ticketService.Mint(ctx, event, buyerID, orderRef, req.Quantity)
	if err != nil {
		// Minting failed after the reserve: unwind any partial batch and
		// give the seats back.
		if unwindErr := s.ticketService.UnwindOrder(ctx, orderRef); unwindErr != nil {
			s.log.WithError(unwindErr).Error("failed to unwind order after mint failure", "order_ref", orderRef)
		}
		s.releaseAfterFailure(ctx, eventID, req.Quantity)
		return nil, err
	}

	response := &PurchaseResponse{
		OrderRef:   orderRef,
		EventID:    event.ID.String(),
		EventTitle: event.Title,
		BuyerID:    buyerID,
		Quantity:   req.Quantity,
		UnitPrice:  event.TicketPrice,
		TotalPrice: event.TicketPrice.Mul(decimal.NewFromInt(int64(req.Quantity))),
		Tickets:    make([]tickets.TicketResponse, len(minted)),
		CreatedAt:  time.Now().UTC(),
	}

	ticketIDs := make([]string, len(minted))
	for i, ticket := range minted {
		response.Tickets[i] = ticket.ToResponse()
		ticketIDs[i] = ticket.ID.String()
	}

	message := notifications.NewLifecycleMessage(notifications.MessagePurchaseConfirmed, event.ID)
	message.OwnerID = buyerID
	message.TicketIDs = ticketIDs
	message.OrderRef = orderRef
	message.Data = map[string]interface{}{
		"quantity":    req.Quantity,
		"total_price": response.TotalPrice.String(),
	}
	if err := s.producer.PublishLifecycle(ctx, message); err != nil {
		s.log.WithError(err).Warn("failed to publish purchase confirmation", "order_ref", orderRef)
	}

	return response, nil
}

func (s *service) releaseAfterFailure(ctx context.Context, eventID uuid.UUID, quantity int) {
	if _, err := s.allocator.Release(ctx, eventID, quantity); err != nil {
		s.log.WithError(err).Error("failed to release inventory after purchase failure",
			"event_id", eventID.String(), "quantity", quantity)
	}
}

// generateOrderReference generates a unique order reference
func (s *service) generateOrderReference() (string, error) {
	timestamp := time.Now().Format("20060102")

	// Generate 6 random uppercase letters
	const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	randomPart := make([]byte, 6)

	for i := range randomPart {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(letters))))
		if err != nil {
			return "", err
		}
		randomPart[i] = letters[num.Int64()]
	}

	return fmt.Sprintf("ORD-%s-%s", timestamp, string(randomPart)), nil
}
