package models

// Actor roles recognised by the core. The auth middleware resolves the
// caller to one of these before a request reaches a service.
const (
	RoleClient = "client"
	RoleFundi  = "fundi"
	RoleAdmin  = "admin"
	// RoleSystem is used for transitions triggered internally, e.g. the
	// "payment settled" event fired by the payment reconciler.
	RoleSystem = "system"
)

// Booking statuses.
const (
	StatusPending    = "pending"
	StatusAccepted   = "accepted"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
	StatusDisputed   = "disputed"
)

// Payment statuses.
const (
	PaymentPending  = "pending"
	PaymentPaid     = "paid"
	PaymentFailed   = "failed"
	PaymentRefunded = "refunded"
)

// Payment methods.
const (
	MethodMpesa = "mpesa"
	MethodCard  = "card"
	MethodCash  = "cash"
)
