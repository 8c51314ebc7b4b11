package checkin

import (
	"context"
	"errors"
	"fmt"
	"time"

	"eventx/internal/events"
	"eventx/internal/notifications"
	"eventx/internal/tickets"
	"eventx/pkg/logger"
)

type Service interface {
	// CheckIn admits the ticket behind the presented token exactly once.
	// Concurrent presentations of the same token race on the status
	// compare-and-set; one wins, the rest get ErrAlreadyUsed.
	CheckIn(ctx context.Context, token string) (*CheckInResponse, error)
}

type service struct {
	ticketRepo   tickets.Repository
	eventService events.Service
	producer     notifications.Producer
	log          *logger.Logger
}

func NewService(ticketRepo tickets.Repository, eventService events.Service, producer notifications.Producer) Service {
	return &service{
		ticketRepo:   ticketRepo,
		eventService: eventService,
		producer:     producer,
		log:          logger.GetDefault(),
	}
}

func (s *service) CheckIn(ctx context.Context, token string) (*CheckInResponse, error) {
	if token == "" {
		return nil, fmt.Errorf("token is required: %w", tickets.ErrUnknownToken)
	}

	ticket, err := s.ticketRepo.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	admitted, err := s.ticketRepo.UpdateStatusIf(ctx, ticket.ID, []tickets.Status{tickets.StatusValid}, tickets.StatusUsed, "", map[string]interface{}{
		"used_at": now,
	})
	if err != nil {
		if errors.Is(err, tickets.ErrInvalidState) {
			return nil, s.classifyRejection(ctx, ticket)
		}
		return nil, err
	}

	s.log.LogCheckIn(ctx, admitted.ID.String(), admitted.EventID.String())

	message := notifications.NewLifecycleMessage(notifications.MessageCheckInRecorded, admitted.EventID)
	message.OwnerID = admitted.OwnerID
	message.TicketIDs = []string{admitted.ID.String()}
	if err := s.producer.PublishLifecycle(ctx, message); err != nil {
		s.log.WithError(err).Warn("failed to publish check-in message", "ticket_id", admitted.ID.String())
	}

	resp := &CheckInResponse{
		Ticket:    admitted.ToResponse(),
		CheckedIn: *admitted.UsedAt,
	}

	// The ticket is admitted either way; the event snapshot is display
	// data for the gate screen.
	event, err := s.eventService.GetEventRecord(ctx, admitted.EventID)
	if err != nil {
		s.log.WithError(err).Warn("failed to load event for admitted ticket",
			"ticket_id", admitted.ID.String(), "event_id", admitted.EventID.String())
		return resp, nil
	}
	resp.Event = event.ToResponse()
	return resp, nil
}

// classifyRejection re-reads the ticket after a lost compare-and-set to
// report the precise rejection: a token that just lost the race to another
// gate reads as already used, not as a vague conflict.
func (s *service) classifyRejection(ctx context.Context, stale *tickets.Ticket) error {
	current, err := s.ticketRepo.GetByID(ctx, stale.ID)
	if err != nil {
		return err
	}

	switch current.Status {
	case tickets.StatusUsed:
		if current.UsedAt != nil {
			return fmt.Errorf("ticket %s was admitted at %s: %w",
				current.ID, current.UsedAt.Format(time.RFC3339), tickets.ErrAlreadyUsed)
		}
		return fmt.Errorf("ticket %s: %w", current.ID, tickets.ErrAlreadyUsed)
	default:
		return fmt.Errorf("ticket %s has status %s: %w", current.ID, current.Status, tickets.ErrNotValid)
	}
}
