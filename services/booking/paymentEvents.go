package booking

import (
	"errors"

	bookingRepo "fundilink/database/repository/booking"
	"fundilink/models"

	"go.uber.org/zap"
)

// casRetries bounds the re-read loop for writes that are safe to retry
// against fresh state (payment settlement, the credit flag flip).
const casRetries = 3

// PaymentSettled applies a settled gateway outcome: payment fields and,
// when the booking is still pending, the pending -> accepted transition
// land in one version-checked write. Already-settled bookings make the
// call a no-op, which is what gives the reconciler its idempotency.
func (s *DefaultBookingService) PaymentSettled(bookingID string, outcome models.PaymentOutcome) (*models.Booking, error) {
	for attempt := 0; attempt < casRetries; attempt++ {
		b, err := s.Repo.GetByID(bookingID)
		if err != nil {
			return nil, err
		}
		if b.Payment.Status == models.PaymentPaid {
			return b, nil
		}

		prior := b.Status
		paidAt := outcome.PaidAt
		b.Payment.Status = models.PaymentPaid
		b.Payment.ReceiptNumber = outcome.ReceiptNumber
		b.Payment.PaidAt = &paidAt
		if b.Status == models.StatusPending {
			s.applyTransition(b, models.StatusAccepted, "Payment received", "", models.RoleSystem)
		}

		if err := s.Repo.UpdateWithVersion(b); err != nil {
			if errors.Is(err, bookingRepo.ErrVersionConflict) {
				continue
			}
			return nil, err
		}

		if b.Status != prior {
			s.notify(b, "Payment received")
		}
		return b, nil
	}
	return nil, ConflictError{BookingID: bookingID}
}

// PaymentFailed marks the payment failed. The booking status is left
// untouched so the client may initiate a fresh payment.
func (s *DefaultBookingService) PaymentFailed(bookingID string, outcome models.PaymentOutcome) (*models.Booking, error) {
	for attempt := 0; attempt < casRetries; attempt++ {
		b, err := s.Repo.GetByID(bookingID)
		if err != nil {
			return nil, err
		}
		// A settled or already-failed payment absorbs repeated callbacks.
		if b.Payment.Status == models.PaymentPaid || b.Payment.Status == models.PaymentFailed {
			return b, nil
		}

		b.Payment.Status = models.PaymentFailed
		if err := s.Repo.UpdateWithVersion(b); err != nil {
			if errors.Is(err, bookingRepo.ErrVersionConflict) {
				continue
			}
			return nil, err
		}

		s.Logger.Info("payment failed for booking",
			zap.String("bookingID", b.ID),
			zap.Int("resultCode", outcome.ResultCode),
			zap.String("resultDesc", outcome.ResultDesc))
		return b, nil
	}
	return nil, ConflictError{BookingID: bookingID}
}

// CreditEarningsOnce moves the booking's fundi earnings into the fundi's
// pending bucket at most once. The guard is a check-and-set on the
// booking's credited flag under the version token, so the credit cannot
// double-fire even when the completed transition and a reconciled
// payment race or are retried.
func (s *DefaultBookingService) CreditEarningsOnce(bookingID string) error {
	for attempt := 0; attempt < casRetries; attempt++ {
		b, err := s.Repo.GetByID(bookingID)
		if err != nil {
			return err
		}
		if b.EarningsCredited {
			return nil
		}

		b.EarningsCredited = true
		if err := s.Repo.UpdateWithVersion(b); err != nil {
			if errors.Is(err, bookingRepo.ErrVersionConflict) {
				continue
			}
			return err
		}

		// A failed credit reverts the flag so a later drive can retry;
		// otherwise the earnings would be dropped for good.
		if err := s.FundiRepo.CreditPendingEarnings(b.FundiID, b.Pricing.FundiEarnings); err != nil {
			s.revertCreditFlag(bookingID)
			return err
		}
		return nil
	}
	return ConflictError{BookingID: bookingID}
}

func (s *DefaultBookingService) revertCreditFlag(bookingID string) {
	for attempt := 0; attempt < casRetries; attempt++ {
		b, err := s.Repo.GetByID(bookingID)
		if err != nil {
			s.Logger.Error("failed to reload booking for credit flag revert",
				zap.String("bookingID", bookingID), zap.Error(err))
			return
		}
		if !b.EarningsCredited {
			return
		}

		b.EarningsCredited = false
		err = s.Repo.UpdateWithVersion(b)
		if err == nil {
			return
		}
		if !errors.Is(err, bookingRepo.ErrVersionConflict) {
			s.Logger.Error("failed to revert earnings credit flag",
				zap.String("bookingID", bookingID), zap.Error(err))
			return
		}
	}
	s.Logger.Error("failed to revert earnings credit flag",
		zap.String("bookingID", bookingID))
}
