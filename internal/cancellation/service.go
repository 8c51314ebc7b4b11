package cancellation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"eventx/internal/events"
	"eventx/internal/notifications"
	"eventx/internal/tickets"
	"eventx/pkg/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Service interface {
	// CancelEvent cancels the event and refunds every valid and listed
	// ticket. Individual refund failures are recorded in the report and
	// never abort the run; used tickets are left untouched.
	CancelEvent(ctx context.Context, eventID uuid.UUID, requestedBy, reason string) (*RefundReport, error)

	GetCancellation(ctx context.Context, eventID uuid.UUID) (*EventCancellation, error)
	GetAllCancellations(ctx context.Context) ([]EventCancellation, error)
}

type service struct {
	repo          Repository
	eventService  events.Service
	ticketService tickets.Service
	ticketRepo    tickets.Repository
	producer      notifications.Producer
	log           *logger.Logger
}

func NewService(repo Repository, eventService events.Service, ticketService tickets.Service, ticketRepo tickets.Repository, producer notifications.Producer) Service {
	return &service{
		repo:          repo,
		eventService:  eventService,
		ticketService: ticketService,
		ticketRepo:    ticketRepo,
		producer:      producer,
		log:           logger.GetDefault(),
	}
}

func (s *service) CancelEvent(ctx context.Context, eventID uuid.UUID, requestedBy, reason string) (*RefundReport, error) {
	// The status transition is the gate: only one cancellation run can
	// move the event out of ACTIVE.
	event, err := s.eventService.MarkCancelled(ctx, eventID)
	if err != nil {
		if errors.Is(err, events.ErrInvalidState) {
			return nil, fmt.Errorf("event %s: %w", eventID, ErrAlreadyCancelled)
		}
		return nil, err
	}

	outstanding, err := s.ticketRepo.GetByEventAndStatuses(ctx, eventID,
		[]tickets.Status{tickets.StatusValid, tickets.StatusListed})
	if err != nil {
		return nil, err
	}

	report := &RefundReport{
		EventID:       eventID.String(),
		Failed:        []RefundFailure{},
		TotalRefunded: decimal.Zero,
	}

	for _, ticket := range outstanding {
		refunded, instruction, err := s.ticketService.RefundForCancellation(ctx, ticket.ID)
		if err != nil {
			report.Failed = append(report.Failed, RefundFailure{
				TicketID: ticket.ID.String(),
				Reason:   err.Error(),
			})
			continue
		}

		if err := s.producer.PublishRefund(ctx, instruction); err != nil {
			// The ticket is voided but the payment provider never heard
			// about it. Record the failure so operators can replay it.
			report.Failed = append(report.Failed, RefundFailure{
				TicketID: ticket.ID.String(),
				Reason:   fmt.Sprintf("refund instruction not delivered: %v", err),
			})
			continue
		}

		report.Refunded++
		report.TotalRefunded = report.TotalRefunded.Add(refunded.PurchasePrice)
	}

	report.CompletedAt = time.Now().UTC()

	completedAt := report.CompletedAt
	record := &EventCancellation{
		ID:              uuid.New(),
		EventID:         eventID,
		RequestedBy:     requestedBy,
		Reason:          reason,
		TicketsRefunded: report.Refunded,
		TicketsFailed:   len(report.Failed),
		TotalRefunded:   report.TotalRefunded,
		RequestedAt:     completedAt,
		CompletedAt:     &completedAt,
	}
	if err := s.repo.Create(ctx, record); err != nil {
		s.log.WithError(err).Error("failed to persist cancellation record", "event_id", eventID.String())
	}

	message := notifications.NewLifecycleMessage(notifications.MessageEventCancelled, eventID)
	message.Data = map[string]interface{}{
		"event_title":    event.Title,
		"refunded":       report.Refunded,
		"failed":         len(report.Failed),
		"total_refunded": report.TotalRefunded.String(),
	}
	if err := s.producer.PublishLifecycle(ctx, message); err != nil {
		s.log.WithError(err).Warn("failed to publish cancellation message", "event_id", eventID.String())
	}

	s.log.LogEventCancelled(ctx, eventID.String(), report.Refunded, len(report.Failed))
	return report, nil
}

func (s *service) GetCancellation(ctx context.Context, eventID uuid.UUID) (*EventCancellation, error) {
	return s.repo.GetByEventID(ctx, eventID)
}

func (s *service) GetAllCancellations(ctx context.Context) ([]EventCancellation, error) {
	return s.repo.GetAll(ctx)
}
