package tickets

// Status represents the lifecycle state of a ticket. Transition legality is
// enforced by the from-status lists each operation passes to UpdateStatusIf:
// VALID may be used, listed or refunded; LISTED may return to VALID or be
// refunded; USED and REFUNDED are terminal.
type Status string

const (
	StatusValid    Status = "VALID"
	StatusListed   Status = "LISTED"
	StatusUsed     Status = "USED"
	StatusRefunded Status = "REFUNDED"
)

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}
