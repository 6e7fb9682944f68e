package events

type TicketingStatus string

const (
	TicketingStatusActive    TicketingStatus = "active"
	TicketingStatusSuspended TicketingStatus = "suspended"
	TicketingStatusClosed    TicketingStatus = "closed"
)

// IsValid checks if the ticketing status is valid
func (s TicketingStatus) IsValid() bool {
	switch s {
	case TicketingStatusActive, TicketingStatusSuspended, TicketingStatusClosed:
		return true
	}
	return false
}

func (s TicketingStatus) String() string {
	return string(s)
}

// CanTransitionTo reports whether an admin may move ticketing from s to next.
// Closed is terminal.
func (s TicketingStatus) CanTransitionTo(next TicketingStatus) bool {
	switch s {
	case TicketingStatusActive:
		return next == TicketingStatusSuspended || next == TicketingStatusClosed
	case TicketingStatusSuspended:
		return next == TicketingStatusActive || next == TicketingStatusClosed
	}
	return false
}
