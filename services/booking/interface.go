package booking

import (
	"fundilink/models"
)

// CreateBookingRequest carries the client's input for a new booking.
type CreateBookingRequest struct {
	ClientID      string                    `json:"-"`
	FundiID       string                    `json:"fundi_id" binding:"required"`
	Service       models.Service            `json:"service" binding:"required"`
	BaseAmount    int64                     `json:"base_amount" binding:"required,gt=0"`
	Charges       []models.AdditionalCharge `json:"additional_charges"`
	Method        string                    `json:"payment_method"`
	Communication models.Communication      `json:"communication"`
	Note          string                    `json:"note"`
}

// CompletionDetails carries the fundi's job-completion evidence.
type CompletionDetails struct {
	Photos   []string `json:"photos"`
	Feedback string   `json:"feedback"`
}

// BookingService owns the booking lifecycle: creation, the status state
// machine, and the side effects coupled to specific edges.
type BookingService interface {
	CreateBooking(req CreateBookingRequest) (*models.Booking, error)
	GetBooking(id, actorID, actorRole string) (*models.Booking, error)
	ListBookings(filter ListQuery) ([]models.Booking, int64, error)
	Stats(actorID, actorRole string) (*models.StatsSummary, error)

	// Transition moves the booking along one edge of the state machine,
	// appending exactly one timeline entry. Losers of concurrent races
	// receive ConflictError.
	Transition(bookingID, target, note, actorID, actorRole string) (*models.Booking, error)

	// AddCharge appends an additional charge and reprices the booking.
	// Rejected once payment has settled.
	AddCharge(bookingID string, charge models.AdditionalCharge, actorID, actorRole string) (*models.Booking, error)

	// Complete records completion details and drives the booking to
	// completed when it is not there yet.
	Complete(bookingID string, details CompletionDetails, actorID, actorRole string) (*models.Booking, error)

	// ConfirmCompletion records the client's independent confirmation.
	ConfirmCompletion(bookingID, actorID string) (*models.Booking, error)

	// PaymentSettled applies a settled gateway outcome: marks the payment
	// paid and, when the booking is still pending, confirms it
	// (pending -> accepted) in the same version-checked write.
	PaymentSettled(bookingID string, outcome models.PaymentOutcome) (*models.Booking, error)

	// PaymentFailed marks the payment failed, leaving the booking status
	// untouched so the client may retry initiation.
	PaymentFailed(bookingID string, outcome models.PaymentOutcome) (*models.Booking, error)

	// CreditEarningsOnce moves the booking's fundi earnings into the
	// fundi's pending bucket at most once, guarded by a check-and-set on
	// the booking's credited flag.
	CreditEarningsOnce(bookingID string) error
}

// ListQuery narrows ListBookings by caller identity and status.
type ListQuery struct {
	ActorID   string
	ActorRole string
	Status    string
	Page      int64
	Limit     int64
}
