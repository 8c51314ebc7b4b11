package checkin

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"eventx/internal/shared/utils/response"
	"eventx/internal/tickets"
)

type Controller interface {
	CheckIn(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

func (ctrl *controller) CheckIn(c *gin.Context) {
	var req CheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	result, err := ctrl.service.CheckIn(c.Request.Context(), req.Token)
	if err != nil {
		statusCode := http.StatusInternalServerError
		switch {
		case errors.Is(err, tickets.ErrUnknownToken):
			statusCode = http.StatusNotFound
		case errors.Is(err, tickets.ErrAlreadyUsed), errors.Is(err, tickets.ErrNotValid):
			statusCode = http.StatusConflict
		}
		response.RespondJSON(c, "error", statusCode, err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Ticket admitted", result, nil)
}
