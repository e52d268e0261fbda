package models

import "time"

// Fundi is a service provider's account record. It is the single source
// of truth for derived financial state; earnings are never recomputed
// from booking history at read time.
type Fundi struct {
	ID     string `bson:"id" json:"id"`
	UserID string `bson:"user_id" json:"user_id"` // owning identity in the auth collaborator
	Phone  string `bson:"phone" json:"phone"`

	Earnings      Earnings     `bson:"earnings" json:"earnings"`
	Rating        Rating       `bson:"rating" json:"rating"`
	Reviews       []Review     `bson:"reviews" json:"reviews"`
	CompletedJobs int64        `bson:"completed_jobs" json:"completed_jobs"`
	Subscription  Subscription `bson:"subscription" json:"subscription"`

	IsActive bool `bson:"is_active" json:"is_active"`

	// Version is the optimistic-concurrency token for read-modify-write
	// updates (review append + rating recompute).
	Version int64 `bson:"version" json:"-"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Earnings buckets. Invariant: Total == Pending + Withdrawn.
type Earnings struct {
	Total     int64 `bson:"total" json:"total"`
	Pending   int64 `bson:"pending" json:"pending"`
	Withdrawn int64 `bson:"withdrawn" json:"withdrawn"`
}

// Rating is the aggregate over the full review set.
type Rating struct {
	Average float64 `bson:"average" json:"average"` // 0-5
	Count   int64   `bson:"count" json:"count"`
}

// Review is one client review of a completed booking. At most one review
// exists per booking.
type Review struct {
	ID        string    `bson:"id" json:"id"`
	BookingID string    `bson:"booking_id" json:"booking_id"`
	ClientID  string    `bson:"client_id" json:"client_id"`
	Rating    int       `bson:"rating" json:"rating"` // 1-5
	Comment   string    `bson:"comment,omitempty" json:"comment,omitempty"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// Subscription is the fundi's platform billing state. It settles through
// the same gateway protocol as booking payments, keyed by fundi id.
type Subscription struct {
	IsActive      bool       `bson:"is_active" json:"is_active"`
	Plan          string     `bson:"plan" json:"plan"` // basic, premium
	Amount        int64      `bson:"amount" json:"amount"`
	TransactionID string     `bson:"transaction_id,omitempty" json:"transaction_id,omitempty"` // pending gateway correlation id
	LastPayment   *time.Time `bson:"last_payment,omitempty" json:"last_payment,omitempty"`
	NextPayment   *time.Time `bson:"next_payment,omitempty" json:"next_payment,omitempty"`
}
