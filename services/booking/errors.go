package booking

import "fmt"

// InvalidTransitionError indicates the target status is not reachable
// from the booking's current status.
type InvalidTransitionError struct {
	From string
	To   string
}

func (e InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition from %s to %s", e.From, e.To)
}

// ForbiddenError indicates the actor's role is not permitted to drive
// the requested edge, or the actor is not a party to the booking.
type ForbiddenError struct {
	Role string
	From string
	To   string
}

func (e ForbiddenError) Error() string {
	if e.From == "" && e.To == "" {
		return fmt.Sprintf("role %s is not a party to this booking", e.Role)
	}
	return fmt.Sprintf("role %s may not transition %s to %s", e.Role, e.From, e.To)
}

// ConflictError indicates a concurrent mutation won the race; the caller
// should retry with fresh state.
type ConflictError struct {
	BookingID string
}

func (e ConflictError) Error() string {
	return fmt.Sprintf("booking %s was modified concurrently, retry with fresh state", e.BookingID)
}

// InvalidStateError indicates the booking is not in a state that permits
// the requested operation.
type InvalidStateError struct {
	BookingID string
	Status    string
	Reason    string
}

func (e InvalidStateError) Error() string {
	return fmt.Sprintf("booking %s in status %s: %s", e.BookingID, e.Status, e.Reason)
}
