package tickets

import "github.com/shopspring/decimal"

// ListForResaleRequest defines the request structure for listing a ticket
type ListForResaleRequest struct {
	Price decimal.Decimal `json:"price" binding:"required"`
}

// TransferRequest defines the request structure for a direct transfer
type TransferRequest struct {
	NewOwnerID string `json:"new_owner_id" binding:"required,max=128"`
}
