package checkin

// CheckInRequest defines the request structure for gate check-in
type CheckInRequest struct {
	Token string `json:"token" binding:"required,max=64"`
}
