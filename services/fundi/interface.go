package fundi

import (
	"fundilink/models"
)

// AddReviewRequest carries a client's review of a completed booking.
type AddReviewRequest struct {
	BookingID string `json:"-"`
	ClientID  string `json:"-"`
	Rating    int    `json:"rating" binding:"required,min=1,max=5"`
	Comment   string `json:"comment"`
}

// FundiService owns the provider account: rating aggregation, earnings
// bookkeeping, and subscription state.
type FundiService interface {
	GetFundi(id string) (*models.Fundi, error)
	GetFundiByUser(userID string) (*models.Fundi, error)
	RegisterFundi(f *models.Fundi) (*models.Fundi, error)

	// AddReview appends a review to the fundi's set and recomputes the
	// rating average over the full set. One review per booking; the
	// booking must be completed and owned by the reviewer.
	AddReview(req AddReviewRequest) (*models.Fundi, error)

	// WithdrawEarnings moves amount from pending to withdrawn, keeping
	// total == pending + withdrawn.
	WithdrawEarnings(fundiID string, amount int64) (*models.Fundi, error)

	// DeactivateLapsedSubscriptions flips isActive off for every fundi
	// whose subscription next-payment date has passed; returns how many
	// were deactivated.
	DeactivateLapsedSubscriptions() (int64, error)
}
