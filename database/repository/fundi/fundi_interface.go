package fundiRepo

import (
	"errors"
	"time"

	"fundilink/models"

	"go.mongodb.org/mongo-driver/bson"
)

var (
	// ErrNotFound is returned when no fundi matches the lookup key.
	ErrNotFound = errors.New("fundi not found")
	// ErrVersionConflict is returned when a version-checked write loses a
	// race with a concurrent mutation of the same fundi account.
	ErrVersionConflict = errors.New("fundi version conflict")
)

// FundiRepository defines methods for fundi account data access.
type FundiRepository interface {
	// GetByID retrieves a fundi by its unique ID.
	GetByID(id string) (*models.Fundi, error)
	// GetByUserID retrieves the fundi owned by the given identity.
	GetByUserID(userID string) (*models.Fundi, error)
	// GetBySubscriptionRef retrieves the fundi whose pending subscription
	// payment carries the given gateway correlation id.
	GetBySubscriptionRef(transactionID string) (*models.Fundi, error)
	// Create inserts a new fundi record.
	Create(fundi *models.Fundi) error
	// UpdateWithVersion replaces the fundi document if and only if the
	// stored version matches fundi.Version; returns ErrVersionConflict on
	// a lost race.
	UpdateWithVersion(fundi *models.Fundi) error
	// UpdateWithDocument patches a fundi document with the specified
	// update document.
	UpdateWithDocument(id string, updateDoc bson.M) error
	// CreditPendingEarnings atomically adds amount to both the pending
	// and total earnings buckets, preserving total == pending + withdrawn.
	CreditPendingEarnings(id string, amount int64) error
	// IncrementCompletedJobs atomically bumps the completed-job counter.
	IncrementCompletedJobs(id string) error
	// DeactivateLapsedSubscriptions flips off every active subscription
	// whose next-payment date is before now; returns the count.
	DeactivateLapsedSubscriptions(now time.Time) (int64, error)
}
