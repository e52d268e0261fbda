package payment

import (
	"context"
	"errors"
	"fmt"

	bookingRepo "fundilink/database/repository/booking"
	"fundilink/models"
	"fundilink/services/booking"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"go.uber.org/zap"
)

// InitiateCardPayment opens a Stripe PaymentIntent for the booking
// total. The intent id becomes the payment correlation id, so card
// webhooks reconcile through the same path as mobile-money callbacks.
func (s *DefaultPaymentService) InitiateCardPayment(ctx context.Context, bookingID, actorID string) (*CardPaymentResult, error) {
	b, err := s.Repo.GetByID(bookingID)
	if err != nil {
		return nil, err
	}
	if b.ClientID != actorID {
		return nil, ErrAccessDenied
	}
	if b.Payment.Status == models.PaymentPaid {
		return nil, AlreadyPaidError{BookingID: b.ID}
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(b.Pricing.TotalAmount),
		Currency: stripe.String(string(stripe.CurrencyKES)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
		Description: stripe.String(fmt.Sprintf("Payment for %s service", b.Service.Category)),
	}
	params.AddMetadata("booking_id", b.ID)

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, s.wrapGatewayError("card intent", err)
	}

	for attempt := 0; attempt < initiateRetries; attempt++ {
		b.Payment.TransactionID = pi.ID
		b.Payment.Method = models.MethodCard
		b.Payment.Status = models.PaymentPending
		err = s.Repo.UpdateWithVersion(b)
		if err == nil {
			break
		}
		if !errors.Is(err, bookingRepo.ErrVersionConflict) {
			return nil, err
		}
		if b, err = s.Repo.GetByID(bookingID); err != nil {
			return nil, err
		}
		if b.Payment.Status == models.PaymentPaid {
			return nil, AlreadyPaidError{BookingID: b.ID}
		}
	}
	if err != nil {
		return nil, booking.ConflictError{BookingID: bookingID}
	}

	s.Logger.Info("card payment intent created",
		zap.String("bookingID", b.ID),
		zap.String("intentID", pi.ID))
	return &CardPaymentResult{CorrelationID: pi.ID, ClientSecret: pi.ClientSecret}, nil
}
