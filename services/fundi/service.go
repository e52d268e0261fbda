package fundi

import (
	"errors"
	"fmt"
	"time"

	bookingRepo "fundilink/database/repository/booking"
	fundiRepo "fundilink/database/repository/fundi"
	"fundilink/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultFundiService implements FundiService.
type DefaultFundiService struct {
	Repo        fundiRepo.FundiRepository
	BookingRepo bookingRepo.BookingRepository
	Logger      *zap.Logger
}

func (s *DefaultFundiService) GetFundi(id string) (*models.Fundi, error) {
	return s.Repo.GetByID(id)
}

func (s *DefaultFundiService) GetFundiByUser(userID string) (*models.Fundi, error) {
	return s.Repo.GetByUserID(userID)
}

// RegisterFundi creates a fresh provider account with zeroed derived
// state.
func (s *DefaultFundiService) RegisterFundi(f *models.Fundi) (*models.Fundi, error) {
	if f.UserID == "" {
		return nil, fmt.Errorf("fundi must reference an owning user")
	}
	f.ID = uuid.New().String()
	f.Earnings = models.Earnings{}
	f.Rating = models.Rating{}
	f.Reviews = nil
	f.CompletedJobs = 0
	f.IsActive = true
	f.Version = 0
	now := time.Now()
	f.CreatedAt = now
	f.UpdatedAt = now

	if err := s.Repo.Create(f); err != nil {
		return nil, err
	}
	s.Logger.Info("fundi registered", zap.String("fundiID", f.ID), zap.String("userID", f.UserID))
	return f, nil
}

// WithdrawEarnings moves amount out of the pending bucket. The update is
// version-checked so concurrent credits from settling bookings cannot be
// lost, and the earnings invariant holds throughout.
func (s *DefaultFundiService) WithdrawEarnings(fundiID string, amount int64) (*models.Fundi, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("withdrawal amount must be positive")
	}
	for attempt := 0; attempt < casRetries; attempt++ {
		f, err := s.Repo.GetByID(fundiID)
		if err != nil {
			return nil, err
		}
		if amount > f.Earnings.Pending {
			return nil, InsufficientFundsError{FundiID: fundiID, Requested: amount, Pending: f.Earnings.Pending}
		}
		f.Earnings.Pending -= amount
		f.Earnings.Withdrawn += amount
		f.UpdatedAt = time.Now()

		err = s.Repo.UpdateWithVersion(f)
		if err == nil {
			s.Logger.Info("earnings withdrawn",
				zap.String("fundiID", fundiID),
				zap.Int64("amount", amount))
			return f, nil
		}
		if !errors.Is(err, fundiRepo.ErrVersionConflict) {
			return nil, err
		}
	}
	return nil, ConflictError{FundiID: fundiID}
}

// DeactivateLapsedSubscriptions is driven by the periodic sweep in cron/.
func (s *DefaultFundiService) DeactivateLapsedSubscriptions() (int64, error) {
	n, err := s.Repo.DeactivateLapsedSubscriptions(time.Now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.Logger.Info("deactivated lapsed subscriptions", zap.Int64("count", n))
	}
	return n, nil
}
