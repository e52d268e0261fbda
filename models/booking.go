package models

import "time"

// Booking represents one service engagement between a client and a fundi.
// All monetary amounts are in the smallest currency unit.
type Booking struct {
	ID       string  `bson:"id" json:"id"`               // Unique booking identifier (UUID)
	ClientID string  `bson:"client_id" json:"client_id"` // User who requested the service
	FundiID  string  `bson:"fundi_id" json:"fundi_id"`   // Provider assigned to the job
	Service  Service `bson:"service" json:"service"`

	Pricing       Pricing         `bson:"pricing" json:"pricing"`
	Payment       Payment         `bson:"payment" json:"payment"`
	Communication Communication   `bson:"communication" json:"communication"`
	Status        string          `bson:"status" json:"status"` // pending, accepted, in_progress, completed, cancelled, disputed
	Timeline      []TimelineEntry `bson:"timeline" json:"timeline"`
	Completion    Completion      `bson:"completion" json:"completion"`

	// EarningsCredited guards the one-shot credit of fundi earnings.
	// Flipped via a version-checked write before the fundi account is touched.
	EarningsCredited bool `bson:"earnings_credited" json:"-"`

	// Version is the optimistic-concurrency token; every successful
	// mutation increments it.
	Version int64 `bson:"version" json:"-"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Service describes what was booked.
type Service struct {
	Category    string `bson:"category" json:"category"`
	Description string `bson:"description" json:"description"`
}

// Communication carries the contact details used by the notification
// side channel. It never influences state-machine behaviour.
type Communication struct {
	ClientPhone     string `bson:"client_phone,omitempty" json:"client_phone,omitempty"`
	FundiPhone      string `bson:"fundi_phone,omitempty" json:"fundi_phone,omitempty"`
	PreferredMethod string `bson:"preferred_method,omitempty" json:"preferred_method,omitempty"` // whatsapp, sms
}

// Pricing holds the financial breakdown of a booking.
type Pricing struct {
	BaseAmount         int64              `bson:"base_amount" json:"base_amount"`
	AdditionalCharges  []AdditionalCharge `bson:"additional_charges" json:"additional_charges"`
	TotalAmount        int64              `bson:"total_amount" json:"total_amount"`
	PlatformCommission int64              `bson:"platform_commission" json:"platform_commission"`
	FundiEarnings      int64              `bson:"fundi_earnings" json:"fundi_earnings"`
}

// AdditionalCharge is one extra line item agreed after booking creation.
type AdditionalCharge struct {
	Description string `bson:"description" json:"description"`
	Amount      int64  `bson:"amount" json:"amount"`
}

// Payment tracks the settlement of a booking with the gateway.
type Payment struct {
	Method        string     `bson:"method" json:"method"`                                     // mpesa, card, cash
	Status        string     `bson:"status" json:"status"`                                     // pending, paid, failed, refunded
	TransactionID string     `bson:"transaction_id,omitempty" json:"transaction_id,omitempty"` // gateway correlation id
	ReceiptNumber string     `bson:"receipt_number,omitempty" json:"receipt_number,omitempty"`
	PaidAt        *time.Time `bson:"paid_at,omitempty" json:"paid_at,omitempty"`
}

// TimelineEntry is one append-only audit record of a status transition.
type TimelineEntry struct {
	Status    string    `bson:"status" json:"status"`
	Note      string    `bson:"note" json:"note"`
	ActorID   string    `bson:"actor_id,omitempty" json:"actor_id,omitempty"`
	ActorRole string    `bson:"actor_role,omitempty" json:"actor_role,omitempty"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
}

// Completion holds the independent finish confirmations and job evidence.
type Completion struct {
	ClientConfirmed bool       `bson:"client_confirmed" json:"client_confirmed"`
	FundiConfirmed  bool       `bson:"fundi_confirmed" json:"fundi_confirmed"`
	CompletedAt     *time.Time `bson:"completed_at,omitempty" json:"completed_at,omitempty"`
	Feedback        string     `bson:"feedback,omitempty" json:"feedback,omitempty"`
	Photos          []string   `bson:"photos,omitempty" json:"photos,omitempty"`
}

// IsTerminal reports whether no further transition is permitted out of
// the given status (disputed can only be re-entered, not left).
func IsTerminal(status string) bool {
	switch status {
	case StatusCompleted, StatusCancelled, StatusDisputed:
		return true
	}
	return false
}
