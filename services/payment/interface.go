package payment

import (
	"context"

	"fundilink/models"
)

// Gateway abstracts the mobile-money push API. The concrete Daraja
// client lives in services/payment/mpesa.
type Gateway interface {
	// STKPush asks the gateway to prompt the payer's phone for amount.
	// It returns the gateway-issued correlation id (the join key for the
	// later asynchronous callback) and the merchant request id.
	STKPush(ctx context.Context, amount int64, payerPhone, accountRef, callbackPath, description string) (correlationID, merchantRequestID string, err error)
}

// InitiateResult is returned from a successful payment initiation.
type InitiateResult struct {
	CorrelationID     string `json:"checkout_request_id"`
	MerchantRequestID string `json:"merchant_request_id,omitempty"`
}

// CardPaymentResult carries the Stripe client secret for a card payment.
type CardPaymentResult struct {
	CorrelationID string `json:"payment_intent_id"`
	ClientSecret  string `json:"client_secret"`
}

// StatusResult is the client-facing view of a booking's payment.
type StatusResult struct {
	PaymentStatus string `json:"payment_status"`
	TransactionID string `json:"transaction_id,omitempty"`
	ReceiptNumber string `json:"receipt_number,omitempty"`
	Amount        int64  `json:"amount"`
	PaidAt        string `json:"paid_at,omitempty"`
}

// PaymentService drives the two-phase settlement protocol for bookings
// and fundi subscriptions.
type PaymentService interface {
	InitiateBookingPayment(ctx context.Context, bookingID, payerPhone, actorID string) (*InitiateResult, error)
	InitiateCardPayment(ctx context.Context, bookingID, actorID string) (*CardPaymentResult, error)
	ReconcileBooking(ctx context.Context, outcome models.PaymentOutcome) error
	PaymentStatus(bookingID, actorID, actorRole string) (*StatusResult, error)
	PaymentHistory(actorID, actorRole string, page, limit int64) ([]models.Booking, int64, error)

	InitiateSubscription(ctx context.Context, fundiID, payerPhone, plan string) (*InitiateResult, error)
	ReconcileSubscription(ctx context.Context, outcome models.PaymentOutcome) error
}
