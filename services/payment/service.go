package payment

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	bookingRepo "fundilink/database/repository/booking"
	fundiRepo "fundilink/database/repository/fundi"
	"fundilink/models"
	"fundilink/services/booking"
	"fundilink/services/notification"
	"fundilink/utils"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// DefaultPaymentService implements PaymentService.
type DefaultPaymentService struct {
	Repo      bookingRepo.BookingRepository
	FundiRepo fundiRepo.FundiRepository
	Bookings  booking.BookingService
	Gateway   Gateway
	Notifier  notification.NotificationService
	// Cache is an optional fast path for spotting already-processed
	// callbacks; the authoritative duplicate guard is the payment status
	// on the record itself.
	Cache  *redis.Client
	Logger *zap.Logger
}

const initiateRetries = 3

// InitiateBookingPayment runs the synchronous half of the protocol: an
// STK push for the booking total. On acceptance the gateway correlation
// id is stored on the booking's payment record; the status stays pending
// until the asynchronous callback resolves it.
func (s *DefaultPaymentService) InitiateBookingPayment(ctx context.Context, bookingID, payerPhone, actorID string) (*InitiateResult, error) {
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

	accountRef := "FundiLink-" + b.ID
	description := fmt.Sprintf("Payment for %s service", b.Service.Category)
	correlationID, merchantRequestID, err := s.Gateway.STKPush(ctx, b.Pricing.TotalAmount, payerPhone, accountRef, "/api/payments/callback", description)
	if err != nil {
		return nil, s.wrapGatewayError("stk push", err)
	}

	// Record the correlation id; the callback may land before this write
	// completes, in which case its UnknownCorrelation outcome is absorbed
	// and the gateway redelivers. The status goes back to pending so a
	// retry after a failed payment can still settle.
	for attempt := 0; attempt < initiateRetries; attempt++ {
		b.Payment.TransactionID = correlationID
		b.Payment.Method = models.MethodMpesa
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

	s.Logger.Info("stk push initiated",
		zap.String("bookingID", b.ID),
		zap.String("correlationID", correlationID))
	return &InitiateResult{CorrelationID: correlationID, MerchantRequestID: merchantRequestID}, nil
}

// ReconcileBooking resolves an asynchronous gateway outcome against its
// booking. At-least-once delivery means duplicates and unknown ids are
// normal: a settled or failed payment absorbs repeats, and an unknown
// correlation id surfaces as UnknownCorrelationError for the handler to
// log and acknowledge.
func (s *DefaultPaymentService) ReconcileBooking(ctx context.Context, outcome models.PaymentOutcome) error {
	if s.seenCallback(ctx, outcome.CorrelationID) {
		s.Logger.Info("duplicate callback ignored", zap.String("correlationID", outcome.CorrelationID))
		return nil
	}

	b, err := s.Repo.GetByTransactionID(outcome.CorrelationID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrNotFound) {
			return UnknownCorrelationError{CorrelationID: outcome.CorrelationID}
		}
		return err
	}

	if b.Payment.Status == models.PaymentPaid || b.Payment.Status == models.PaymentFailed {
		s.markCallbackSeen(ctx, outcome.CorrelationID)
		return nil
	}

	if outcome.Success {
		updated, err := s.Bookings.PaymentSettled(b.ID, outcome)
		if err != nil {
			return err
		}
		if s.Notifier != nil {
			if err := s.Notifier.NotifyPaymentReceived(updated); err != nil {
				s.Logger.Warn("failed to queue payment notification", zap.Error(err))
			}
		}
		if err := s.Bookings.CreditEarningsOnce(b.ID); err != nil {
			// The credit guard is idempotent; a later completed
			// transition re-drives it.
			s.Logger.Error("failed to credit earnings after settlement",
				zap.String("bookingID", b.ID), zap.Error(err))
		}
	} else {
		if _, err := s.Bookings.PaymentFailed(b.ID, outcome); err != nil {
			return err
		}
	}

	s.markCallbackSeen(ctx, outcome.CorrelationID)
	return nil
}

// PaymentStatus reports the settlement state of a booking to its parties.
func (s *DefaultPaymentService) PaymentStatus(bookingID, actorID, actorRole string) (*StatusResult, error) {
	b, err := s.Repo.GetByID(bookingID)
	if err != nil {
		return nil, err
	}
	if actorRole != models.RoleAdmin && b.ClientID != actorID && b.FundiID != actorID {
		return nil, ErrAccessDenied
	}

	res := &StatusResult{
		PaymentStatus: b.Payment.Status,
		TransactionID: b.Payment.TransactionID,
		ReceiptNumber: b.Payment.ReceiptNumber,
		Amount:        b.Pricing.TotalAmount,
	}
	if b.Payment.PaidAt != nil {
		res.PaidAt = b.Payment.PaidAt.Format(time.RFC3339)
	}
	return res, nil
}

// PaymentHistory lists the caller's settled bookings, newest first.
func (s *DefaultPaymentService) PaymentHistory(actorID, actorRole string, page, limit int64) ([]models.Booking, int64, error) {
	filter := bookingRepo.ListFilter{PaymentStatus: models.PaymentPaid, Page: page, Limit: limit}
	switch actorRole {
	case models.RoleClient:
		filter.ClientID = actorID
	case models.RoleFundi:
		filter.FundiID = actorID
	}
	return s.Repo.List(filter)
}

func (s *DefaultPaymentService) wrapGatewayError(op string, err error) error {
	timeout := errors.Is(err, context.DeadlineExceeded)
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		timeout = true
	}
	return GatewayError{Op: op, Timeout: timeout, Err: err}
}

func (s *DefaultPaymentService) seenCallback(ctx context.Context, correlationID string) bool {
	if s.Cache == nil || correlationID == "" {
		return false
	}
	n, err := s.Cache.Exists(ctx, utils.CallbackSeenPrefix+correlationID).Result()
	return err == nil && n > 0
}

func (s *DefaultPaymentService) markCallbackSeen(ctx context.Context, correlationID string) {
	if s.Cache == nil || correlationID == "" {
		return
	}
	if err := s.Cache.Set(ctx, utils.CallbackSeenPrefix+correlationID, 1, utils.CallbackSeenTTL).Err(); err != nil {
		s.Logger.Warn("failed to mark callback seen", zap.Error(err))
	}
}
