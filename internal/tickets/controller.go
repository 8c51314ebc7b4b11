package tickets

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"eventx/internal/shared/utils/response"
)

type Controller interface {
	GetMyTickets(c *gin.Context)
	GetTicket(c *gin.Context)
	GetPresentation(c *gin.Context)
	ListForResale(c *gin.Context)
	WithdrawListing(c *gin.Context)
	GetOpenListings(c *gin.Context)
	BuyListing(c *gin.Context)
	Transfer(c *gin.Context)
	Refund(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

func (ctrl *controller) GetMyTickets(c *gin.Context) {
	callerID, ok := callerIdentity(c)
	if !ok {
		return
	}

	tickets, err := ctrl.service.GetOwnerTickets(c.Request.Context(), callerID)
	if err != nil {
		response.RespondJSON(c, "error", http.StatusInternalServerError, err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Tickets retrieved successfully", tickets, nil)
}

func (ctrl *controller) GetTicket(c *gin.Context) {
	ticketID, callerID, ok := ticketRequest(c)
	if !ok {
		return
	}

	ticket, err := ctrl.service.GetTicket(c.Request.Context(), ticketID, callerID)
	if err != nil {
		respondTicketError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Ticket retrieved successfully", ticket, nil)
}

func (ctrl *controller) GetPresentation(c *gin.Context) {
	ticketID, callerID, ok := ticketRequest(c)
	if !ok {
		return
	}

	payload, err := ctrl.service.GetPresentation(c.Request.Context(), ticketID, callerID)
	if err != nil {
		respondTicketError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Presentation payload generated", payload, nil)
}

func (ctrl *controller) ListForResale(c *gin.Context) {
	ticketID, callerID, ok := ticketRequest(c)
	if !ok {
		return
	}

	var req ListForResaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	ticket, err := ctrl.service.ListForResale(c.Request.Context(), ticketID, callerID, req.Price)
	if err != nil {
		respondTicketError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Ticket listed for resale", ticket, nil)
}

func (ctrl *controller) WithdrawListing(c *gin.Context) {
	ticketID, callerID, ok := ticketRequest(c)
	if !ok {
		return
	}

	ticket, err := ctrl.service.WithdrawListing(c.Request.Context(), ticketID, callerID)
	if err != nil {
		respondTicketError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Listing withdrawn", ticket, nil)
}

func (ctrl *controller) GetOpenListings(c *gin.Context) {
	listings, err := ctrl.service.GetOpenListings(c.Request.Context())
	if err != nil {
		response.RespondJSON(c, "error", http.StatusInternalServerError, err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Open listings retrieved successfully", listings, nil)
}

func (ctrl *controller) BuyListing(c *gin.Context) {
	ticketID, callerID, ok := ticketRequest(c)
	if !ok {
		return
	}

	ticket, err := ctrl.service.BuyListing(c.Request.Context(), ticketID, callerID)
	if err != nil {
		respondTicketError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Listing purchased successfully", ticket, nil)
}

func (ctrl *controller) Transfer(c *gin.Context) {
	ticketID, callerID, ok := ticketRequest(c)
	if !ok {
		return
	}

	var req TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	ticket, err := ctrl.service.Transfer(c.Request.Context(), ticketID, callerID, req.NewOwnerID)
	if err != nil {
		respondTicketError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Ticket transferred successfully", ticket, nil)
}

func (ctrl *controller) Refund(c *gin.Context) {
	ticketID, callerID, ok := ticketRequest(c)
	if !ok {
		return
	}

	ticket, err := ctrl.service.Refund(c.Request.Context(), ticketID, callerID)
	if err != nil {
		respondTicketError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Ticket refunded", ticket, nil)
}

func callerIdentity(c *gin.Context) (string, bool) {
	callerID, exists := c.Get("user_id")
	if !exists {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "Caller not authenticated", nil, nil)
		return "", false
	}
	return callerID.(string), true
}

func ticketRequest(c *gin.Context) (uuid.UUID, string, bool) {
	ticketID, err := uuid.Parse(c.Param("ticketId"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid ticket ID", nil, err.Error())
		return uuid.Nil, "", false
	}
	callerID, ok := callerIdentity(c)
	if !ok {
		return uuid.Nil, "", false
	}
	return ticketID, callerID, true
}

func respondTicketError(c *gin.Context, err error) {
	statusCode := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrUnknownToken):
		statusCode = http.StatusNotFound
	case errors.Is(err, ErrNotOwner):
		statusCode = http.StatusForbidden
	case errors.Is(err, ErrPriceOutOfBand):
		statusCode = http.StatusUnprocessableEntity
	case errors.Is(err, ErrAlreadyUsed),
		errors.Is(err, ErrNotValid),
		errors.Is(err, ErrNotRefundable),
		errors.Is(err, ErrNotListed),
		errors.Is(err, ErrSelfPurchase),
		errors.Is(err, ErrEventNotSellable),
		errors.Is(err, ErrInvalidState):
		statusCode = http.StatusConflict
	}
	response.RespondJSON(c, "error", statusCode, err.Error(), nil, nil)
}
