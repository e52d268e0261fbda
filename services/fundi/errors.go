package fundi

import "fmt"

// DuplicateReviewError indicates the booking already carries a review;
// one review per booking, no edits.
type DuplicateReviewError struct {
	BookingID string
}

func (e DuplicateReviewError) Error() string {
	return fmt.Sprintf("booking %s already has a review", e.BookingID)
}

// InvalidStateError indicates the booking is not in a state that permits
// the requested account operation.
type InvalidStateError struct {
	BookingID string
	Status    string
	Reason    string
}

func (e InvalidStateError) Error() string {
	return fmt.Sprintf("booking %s in status %s: %s", e.BookingID, e.Status, e.Reason)
}

// ForbiddenError indicates the actor is not entitled to the operation.
type ForbiddenError struct {
	ActorID string
	Reason  string
}

func (e ForbiddenError) Error() string {
	return fmt.Sprintf("actor %s: %s", e.ActorID, e.Reason)
}

// ConflictError indicates a concurrent mutation of the fundi account won
// the race; the caller should retry.
type ConflictError struct {
	FundiID string
}

func (e ConflictError) Error() string {
	return fmt.Sprintf("fundi %s was modified concurrently, retry with fresh state", e.FundiID)
}

// InsufficientFundsError indicates a withdrawal larger than the pending
// earnings balance.
type InsufficientFundsError struct {
	FundiID   string
	Requested int64
	Pending   int64
}

func (e InsufficientFundsError) Error() string {
	return fmt.Sprintf("fundi %s: requested %d exceeds pending earnings %d", e.FundiID, e.Requested, e.Pending)
}
