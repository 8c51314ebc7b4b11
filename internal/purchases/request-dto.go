package purchases

// PurchaseRequest defines the request structure for buying tickets
type PurchaseRequest struct {
	EventID  string `json:"event_id" binding:"required,uuid"`
	Quantity int    `json:"quantity" binding:"required,min=1,max=10"`
}
