package events

type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusCancelled Status = "CANCELLED"
	StatusCompleted Status = "COMPLETED"
)

// IsValid reports whether the value names a known event status. Used to
// reject unknown status filters on the listing endpoint.
func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsSellable reports whether tickets may still be sold for this status
func (s Status) IsSellable() bool {
	return s == StatusActive
}
