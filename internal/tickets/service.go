package tickets

import (
	"context"
	"errors"
	"fmt"
	"time"

	"eventx/internal/events"
	"eventx/internal/inventory"
	"eventx/internal/notifications"
	"eventx/internal/shared/config"
	"eventx/internal/shared/constants"
	"eventx/pkg/cache"
	"eventx/pkg/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Service interface {
	// Service dependency injection
	SetCacheService(cacheService cache.Service)

	// Minting is driven by the purchase flow, which has already reserved
	// inventory for the order.
	Mint(ctx context.Context, event *events.Event, ownerID, orderRef string, quantity int) ([]Ticket, error)
	UnwindOrder(ctx context.Context, orderRef string) error

	GetTicket(ctx context.Context, id uuid.UUID, callerID string) (*TicketResponse, error)
	GetOwnerTickets(ctx context.Context, ownerID string) ([]TicketResponse, error)
	GetPresentation(ctx context.Context, id uuid.UUID, callerID string) (*PresentationResponse, error)

	// Resale
	ListForResale(ctx context.Context, id uuid.UUID, callerID string, price decimal.Decimal) (*TicketResponse, error)
	WithdrawListing(ctx context.Context, id uuid.UUID, callerID string) (*TicketResponse, error)
	GetOpenListings(ctx context.Context) ([]ListingResponse, error)
	BuyListing(ctx context.Context, id uuid.UUID, buyerID string) (*TicketResponse, error)

	// Transfer moves a valid ticket to a new owner without money changing
	// hands.
	Transfer(ctx context.Context, id uuid.UUID, callerID, newOwnerID string) (*TicketResponse, error)

	// Refund voids a valid or listed ticket, returns its seat to the pool
	// and instructs the payment provider to repay the owner.
	Refund(ctx context.Context, id uuid.UUID, callerID string) (*TicketResponse, error)

	// RefundForCancellation is the batch-refund building block used when an
	// event is cancelled. It skips the ownership check and hands the refund
	// instruction back to the caller for publishing.
	RefundForCancellation(ctx context.Context, ticketID uuid.UUID) (*Ticket, *notifications.RefundInstruction, error)

	// TallyForEvent feeds the event stats endpoint.
	TallyForEvent(ctx context.Context, eventID uuid.UUID) (events.TicketTally, error)
}

type service struct {
	repo         Repository
	eventService events.Service
	allocator    inventory.Allocator
	producer     notifications.Producer
	resale       config.ResaleConfig
	cacheService cache.Service
	log          *logger.Logger
}

func NewService(repo Repository, eventService events.Service, allocator inventory.Allocator, producer notifications.Producer, resale config.ResaleConfig) Service {
	return &service{
		repo:         repo,
		eventService: eventService,
		allocator:    allocator,
		producer:     producer,
		resale:       resale,
		log:          logger.GetDefault(),
	}
}

// SetCacheService injects the cache service dependency
func (s *service) SetCacheService(cacheService cache.Service) {
	s.cacheService = cacheService
}

func (s *service) Mint(ctx context.Context, event *events.Event, ownerID, orderRef string, quantity int) ([]Ticket, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("mint quantity must be positive, got %d", quantity)
	}

	batch := make([]*Ticket, 0, quantity)
	now := time.Now().UTC()
	for i := 0; i < quantity; i++ {
		token, err := uniqueToken(ctx, s.repo)
		if err != nil {
			return nil, err
		}
		batch = append(batch, &Ticket{
			ID:            uuid.New(),
			EventID:       event.ID,
			OwnerID:       ownerID,
			Token:         token,
			PurchasePrice: event.TicketPrice,
			FacePrice:     event.TicketPrice,
			Status:        StatusValid,
			OrderRef:      orderRef,
			CreatedAt:     now,
		})
	}

	if err := s.repo.CreateBatch(ctx, batch); err != nil {
		return nil, fmt.Errorf("failed to mint tickets: %w", err)
	}

	minted := make([]Ticket, len(batch))
	for i, t := range batch {
		minted[i] = *t
	}
	s.log.LogTicketsMinted(ctx, event.ID.String(), ownerID, quantity)
	return minted, nil
}

func (s *service) UnwindOrder(ctx context.Context, orderRef string) error {
	return s.repo.DeleteByOrderRef(ctx, orderRef)
}

func (s *service) GetTicket(ctx context.Context, id uuid.UUID, callerID string) (*TicketResponse, error) {
	ticket, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ticket.OwnerID != callerID {
		return nil, ErrNotOwner
	}
	resp := ticket.ToResponse()
	return &resp, nil
}

func (s *service) GetOwnerTickets(ctx context.Context, ownerID string) ([]TicketResponse, error) {
	list, err := s.repo.GetByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	responses := make([]TicketResponse, len(list))
	for i, t := range list {
		responses[i] = t.ToResponse()
	}
	return responses, nil
}

func (s *service) GetPresentation(ctx context.Context, id uuid.UUID, callerID string) (*PresentationResponse, error) {
	ticket, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ticket.OwnerID != callerID {
		return nil, ErrNotOwner
	}
	if ticket.Status != StatusValid {
		return nil, fmt.Errorf("ticket %s has status %s: %w", id, ticket.Status, ErrNotValid)
	}

	event, err := s.eventService.GetEventRecord(ctx, ticket.EventID)
	if err != nil {
		return nil, err
	}

	return &PresentationResponse{
		TicketID:   ticket.ID.String(),
		EventID:    event.ID.String(),
		Token:      ticket.Token,
		EventTitle: event.Title,
		Venue:      event.Venue,
		DateTime:   event.DateTime,
	}, nil
}

func (s *service) ListForResale(ctx context.Context, id uuid.UUID, callerID string, price decimal.Decimal) (*TicketResponse, error) {
	ticket, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.checkEventSellable(ctx, ticket.EventID); err != nil {
		return nil, err
	}

	if err := s.checkResaleBand(ticket.FacePrice, price); err != nil {
		return nil, err
	}

	updated, err := s.repo.UpdateStatusIf(ctx, id, []Status{StatusValid}, StatusListed, callerID, map[string]interface{}{
		"resale_price": price,
	})
	if err != nil {
		return nil, err
	}

	s.invalidateListingCache(ctx)
	resp := updated.ToResponse()
	return &resp, nil
}

func (s *service) WithdrawListing(ctx context.Context, id uuid.UUID, callerID string) (*TicketResponse, error) {
	updated, err := s.repo.UpdateStatusIf(ctx, id, []Status{StatusListed}, StatusValid, callerID, map[string]interface{}{
		"resale_price": nil,
	})
	if err != nil {
		if errors.Is(err, ErrInvalidState) {
			return nil, fmt.Errorf("ticket %s: %w", id, ErrNotListed)
		}
		return nil, err
	}

	s.invalidateListingCache(ctx)
	resp := updated.ToResponse()
	return &resp, nil
}

func (s *service) GetOpenListings(ctx context.Context) ([]ListingResponse, error) {
	var cached []ListingResponse
	if s.getCache(ctx, constants.CACHE_KEY_RESALE_LISTINGS, &cached) == nil {
		return cached, nil
	}

	list, err := s.repo.GetListed(ctx)
	if err != nil {
		return nil, err
	}

	listings := make([]ListingResponse, len(list))
	for i, t := range list {
		listings[i] = t.ToListing()
	}

	s.setCache(ctx, constants.CACHE_KEY_RESALE_LISTINGS, listings, constants.TTL_RESALE_LISTINGS)
	return listings, nil
}

func (s *service) BuyListing(ctx context.Context, id uuid.UUID, buyerID string) (*TicketResponse, error) {
	ticket, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ticket.Status != StatusListed || ticket.ResalePrice == nil {
		return nil, fmt.Errorf("ticket %s: %w", id, ErrNotListed)
	}
	if ticket.OwnerID == buyerID {
		return nil, ErrSelfPurchase
	}

	// A cancelled event's listings are about to be refunded by the
	// coordinator; never sell them in the meantime.
	if err := s.checkEventSellable(ctx, ticket.EventID); err != nil {
		return nil, err
	}

	salePrice := *ticket.ResalePrice
	now := time.Now().UTC()

	// The seller read above is the CAS precondition: if the listing was
	// withdrawn, sold or relisted since, the owner or status no longer
	// match and the update loses.
	updated, err := s.repo.UpdateStatusIf(ctx, id, []Status{StatusListed}, StatusValid, ticket.OwnerID, map[string]interface{}{
		"owner_id":       buyerID,
		"purchase_price": salePrice,
		"resale_price":   nil,
		"resold_at":      now,
	})
	if err != nil {
		if errors.Is(err, ErrInvalidState) || errors.Is(err, ErrNotOwner) {
			return nil, fmt.Errorf("ticket %s: %w", id, ErrNotListed)
		}
		return nil, err
	}

	s.invalidateListingCache(ctx)

	message := notifications.NewLifecycleMessage(notifications.MessageTicketResold, updated.EventID)
	message.OwnerID = buyerID
	message.TicketIDs = []string{updated.ID.String()}
	message.Data = map[string]interface{}{
		"seller_id":  ticket.OwnerID,
		"sale_price": salePrice.String(),
	}
	if err := s.producer.PublishLifecycle(ctx, message); err != nil {
		s.log.WithError(err).Warn("failed to publish resale message", "ticket_id", updated.ID.String())
	}

	resp := updated.ToResponse()
	return &resp, nil
}

func (s *service) Transfer(ctx context.Context, id uuid.UUID, callerID, newOwnerID string) (*TicketResponse, error) {
	if newOwnerID == "" {
		return nil, fmt.Errorf("new owner identity is required")
	}
	if newOwnerID == callerID {
		return nil, fmt.Errorf("ticket %s already belongs to %s: %w", id, callerID, ErrInvalidState)
	}

	updated, err := s.repo.UpdateStatusIf(ctx, id, []Status{StatusValid}, StatusValid, callerID, map[string]interface{}{
		"owner_id": newOwnerID,
	})
	if err != nil {
		return nil, err
	}

	message := notifications.NewLifecycleMessage(notifications.MessageTicketTransferred, updated.EventID)
	message.OwnerID = newOwnerID
	message.TicketIDs = []string{updated.ID.String()}
	message.Data = map[string]interface{}{"previous_owner_id": callerID}
	if err := s.producer.PublishLifecycle(ctx, message); err != nil {
		s.log.WithError(err).Warn("failed to publish transfer message", "ticket_id", updated.ID.String())
	}

	resp := updated.ToResponse()
	return &resp, nil
}

func (s *service) Refund(ctx context.Context, id uuid.UUID, callerID string) (*TicketResponse, error) {
	// A refunded ticket carries no owner; the caller's identity survives
	// only as the payee on the refund instruction.
	updated, err := s.repo.UpdateStatusIf(ctx, id, []Status{StatusValid, StatusListed}, StatusRefunded, callerID, map[string]interface{}{
		"owner_id":     "",
		"resale_price": nil,
		"refunded_at":  time.Now().UTC(),
	})
	if err != nil {
		if errors.Is(err, ErrInvalidState) {
			return nil, fmt.Errorf("ticket %s: %w", id, ErrNotRefundable)
		}
		// The cleared owner makes a repeat refund read as an ownership
		// mismatch; report it as the terminal state it is.
		if errors.Is(err, ErrNotOwner) {
			if current, readErr := s.repo.GetByID(ctx, id); readErr == nil && current.Status == StatusRefunded {
				return nil, fmt.Errorf("ticket %s: %w", id, ErrNotRefundable)
			}
		}
		return nil, err
	}

	s.settleRefund(ctx, updated, callerID, notifications.RefundReasonOwnerRequest)

	resp := updated.ToResponse()
	return &resp, nil
}

func (s *service) RefundForCancellation(ctx context.Context, ticketID uuid.UUID) (*Ticket, *notifications.RefundInstruction, error) {
	// The read pins the payee: the update only wins while that identity
	// still owns the ticket, so the instruction always repays the holder
	// at the moment of the refund.
	ticket, err := s.repo.GetByID(ctx, ticketID)
	if err != nil {
		return nil, nil, err
	}
	payee := ticket.OwnerID

	updated, err := s.repo.UpdateStatusIf(ctx, ticketID, []Status{StatusValid, StatusListed}, StatusRefunded, payee, map[string]interface{}{
		"owner_id":     "",
		"resale_price": nil,
		"refunded_at":  time.Now().UTC(),
	})
	if err != nil {
		if errors.Is(err, ErrInvalidState) {
			return nil, nil, fmt.Errorf("ticket %s: %w", ticketID, ErrNotRefundable)
		}
		return nil, nil, err
	}

	if _, err := s.allocator.Release(ctx, updated.EventID, 1); err != nil && !errors.Is(err, inventory.ErrConsistency) {
		s.log.WithError(err).Error("failed to release inventory for refunded ticket",
			"ticket_id", updated.ID.String(), "event_id", updated.EventID.String())
	}

	s.invalidateAfterRefund(ctx, updated.EventID)

	instruction := notifications.NewRefundInstruction(
		updated.ID, updated.EventID, payee, updated.PurchasePrice,
		notifications.RefundReasonEventCancelled)
	return updated, instruction, nil
}

func (s *service) TallyForEvent(ctx context.Context, eventID uuid.UUID) (events.TicketTally, error) {
	return s.repo.TallyForEvent(ctx, eventID)
}

// settleRefund releases the refunded ticket's seat back to the pool and
// instructs the payment provider to repay the given payee. State already
// changed; failures here are logged for the reconciliation job, not returned.
func (s *service) settleRefund(ctx context.Context, ticket *Ticket, payee, reason string) {
	if _, err := s.allocator.Release(ctx, ticket.EventID, 1); err != nil && !errors.Is(err, inventory.ErrConsistency) {
		s.log.WithError(err).Error("failed to release inventory for refunded ticket",
			"ticket_id", ticket.ID.String(), "event_id", ticket.EventID.String())
	}

	s.invalidateAfterRefund(ctx, ticket.EventID)

	instruction := notifications.NewRefundInstruction(
		ticket.ID, ticket.EventID, payee, ticket.PurchasePrice, reason)
	if err := s.producer.PublishRefund(ctx, instruction); err != nil {
		s.log.WithError(err).Error("failed to publish refund instruction",
			"ticket_id", ticket.ID.String(), "owner_id", payee)
		return
	}
	s.log.LogRefundIssued(ctx, ticket.ID.String(), payee, ticket.PurchasePrice.String())
}

// checkEventSellable rejects resale operations once the ticket's event has
// left ACTIVE. A listing only makes sense while the event still admits.
func (s *service) checkEventSellable(ctx context.Context, eventID uuid.UUID) error {
	event, err := s.eventService.GetEventRecord(ctx, eventID)
	if err != nil {
		return err
	}
	if !event.Status.IsSellable() {
		return fmt.Errorf("event %s has status %s: %w", eventID, event.Status, ErrEventNotSellable)
	}
	return nil
}

// checkResaleBand enforces the listing price policy: the asking price must
// fall within [MinRatio, MaxRatio] of the face price, both ends inclusive.
func (s *service) checkResaleBand(facePrice, price decimal.Decimal) error {
	if price.IsNegative() {
		return fmt.Errorf("price %s is negative: %w", price, ErrPriceOutOfBand)
	}

	min := facePrice.Mul(s.resale.MinRatio)
	max := facePrice.Mul(s.resale.MaxRatio)
	if price.LessThan(min) || price.GreaterThan(max) {
		return fmt.Errorf("price %s outside band [%s, %s]: %w", price, min, max, ErrPriceOutOfBand)
	}
	return nil
}

// Cache helper methods

func (s *service) setCache(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if s.cacheService == nil {
		return
	}
	if err := s.cacheService.Set(ctx, key, value, ttl); err != nil {
		s.log.WithError(err).Debug("cache set failed", "key", key)
	}
}

func (s *service) getCache(ctx context.Context, key string, dest interface{}) error {
	if s.cacheService == nil {
		return cache.ErrCacheMiss
	}
	return s.cacheService.Get(ctx, key, dest)
}

func (s *service) invalidateListingCache(ctx context.Context) {
	if s.cacheService == nil {
		return
	}
	if err := s.cacheService.DeletePattern(ctx, constants.PATTERN_INVALIDATE_TICKETS_ALL); err != nil {
		s.log.WithError(err).Debug("cache invalidation failed", "pattern", constants.PATTERN_INVALIDATE_TICKETS_ALL)
	}
}

// invalidateAfterRefund drops listing caches and event caches, since a
// refund changes both the open listings and the event's available count.
func (s *service) invalidateAfterRefund(ctx context.Context, eventID uuid.UUID) {
	s.invalidateListingCache(ctx)
	if s.cacheService == nil {
		return
	}
	patterns := []string{
		constants.PATTERN_INVALIDATE_EVENT_ALL,
		constants.PATTERN_INVALIDATE_EVENT_DETAIL + eventID.String() + "*",
	}
	for _, pattern := range patterns {
		if err := s.cacheService.DeletePattern(ctx, pattern); err != nil {
			s.log.WithError(err).Debug("cache invalidation failed", "pattern", pattern)
		}
	}
}
