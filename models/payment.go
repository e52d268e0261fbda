package models

import "time"

// PaymentOutcome is the strongly-typed result of one gateway callback,
// validated at the gateway-adapter boundary before it reaches the
// reconciler. CorrelationID is the join key between the initiate call
// and its asynchronous callback; call order is never assumed.
type PaymentOutcome struct {
	CorrelationID string
	Success       bool
	ResultCode    int
	ResultDesc    string
	ReceiptNumber string
	Amount        int64
	PaidAt        time.Time
}

// StatsSummary aggregates a caller's bookings by status.
type StatsSummary struct {
	Total         int64 `json:"total"`
	Pending       int64 `json:"pending"`
	Accepted      int64 `json:"accepted"`
	InProgress    int64 `json:"in_progress"`
	Completed     int64 `json:"completed"`
	Cancelled     int64 `json:"cancelled"`
	Disputed      int64 `json:"disputed"`
	TotalEarnings int64 `json:"total_earnings"` // sum of totals over completed bookings
}
