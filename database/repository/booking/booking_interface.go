package bookingRepo

import (
	"errors"

	"fundilink/models"
)

// Sentinel errors surfaced to services so they can map them onto the
// caller-facing taxonomy.
var (
	// ErrNotFound is returned when no booking matches the lookup key.
	ErrNotFound = errors.New("booking not found")
	// ErrVersionConflict is returned when a version-checked write loses a
	// race with a concurrent mutation of the same booking.
	ErrVersionConflict = errors.New("booking version conflict")
)

// ListFilter narrows booking listings.
type ListFilter struct {
	ClientID      string
	FundiID       string
	Status        string
	PaymentStatus string
	Page          int64
	Limit         int64
}

// BookingRepository defines methods for booking data access.
type BookingRepository interface {
	// GetByID retrieves a booking by its unique ID.
	GetByID(id string) (*models.Booking, error)
	// GetByTransactionID retrieves a booking by its gateway correlation id.
	GetByTransactionID(transactionID string) (*models.Booking, error)
	// Create inserts a new booking record.
	Create(booking *models.Booking) error
	// UpdateWithVersion replaces the booking document if and only if the
	// stored version matches booking.Version. On success the in-memory
	// booking carries the incremented version; on a lost race it returns
	// ErrVersionConflict and leaves the booking untouched.
	UpdateWithVersion(booking *models.Booking) error
	// List returns bookings matching the filter, newest first.
	List(filter ListFilter) ([]models.Booking, int64, error)
	// StatsSummary aggregates bookings by status for one participant.
	StatsSummary(filter ListFilter) (*models.StatsSummary, error)
}
