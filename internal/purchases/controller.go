package purchases

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"eventx/internal/inventory"
	"eventx/internal/shared/utils/response"
)

type Controller interface {
	Purchase(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

func (ctrl *controller) Purchase(c *gin.Context) {
	var req PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	buyerID, exists := c.Get("user_id")
	if !exists {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "Buyer not authenticated", nil, nil)
		return
	}

	purchase, err := ctrl.service.Purchase(c.Request.Context(), buyerID.(string), req)
	if err != nil {
		statusCode := http.StatusInternalServerError
		switch {
		case errors.Is(err, inventory.ErrEventNotFound):
			statusCode = http.StatusNotFound
		case errors.Is(err, inventory.ErrInsufficientInventory),
			errors.Is(err, inventory.ErrEventNotSellable):
			statusCode = http.StatusConflict
		case errors.Is(err, inventory.ErrInvalidQuantity):
			statusCode = http.StatusBadRequest
		}
		response.RespondJSON(c, "error", statusCode, err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusCreated, "Purchase completed successfully", purchase, nil)
}
