package booking

import (
	"errors"
	"fmt"
	"time"

	bookingRepo "fundilink/database/repository/booking"
	fundiRepo "fundilink/database/repository/fundi"
	"fundilink/models"
	"fundilink/services/notification"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultBookingService implements BookingService.
type DefaultBookingService struct {
	Repo           bookingRepo.BookingRepository
	FundiRepo      fundiRepo.FundiRepository
	Notifier       notification.NotificationService
	Logger         *zap.Logger
	CommissionRate float64
}

// CreateBooking validates the assigned fundi, computes the commission
// split, and persists the booking in the pending state with its first
// timeline entry.
func (s *DefaultBookingService) CreateBooking(req CreateBookingRequest) (*models.Booking, error) {
	fundi, err := s.FundiRepo.GetByID(req.FundiID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve fundi: %w", err)
	}
	if !fundi.IsActive {
		return nil, InvalidStateError{BookingID: "", Status: "", Reason: "fundi is not available"}
	}

	method := req.Method
	if method == "" {
		method = models.MethodMpesa
	}

	now := time.Now()
	note := req.Note
	if note == "" {
		note = "Booking created"
	}

	b := &models.Booking{
		ID:       uuid.New().String(),
		ClientID: req.ClientID,
		FundiID:  req.FundiID,
		Service:  req.Service,
		Pricing: models.Pricing{
			BaseAmount:        req.BaseAmount,
			AdditionalCharges: req.Charges,
		},
		Payment: models.Payment{
			Method: method,
			Status: models.PaymentPending,
		},
		Communication: req.Communication,
		Status:        models.StatusPending,
		Timeline: []models.TimelineEntry{{
			Status:    models.StatusPending,
			Note:      note,
			ActorID:   req.ClientID,
			ActorRole: models.RoleClient,
			Timestamp: now,
		}},
		CreatedAt: now,
		UpdatedAt: now,
	}
	Reprice(&b.Pricing, s.CommissionRate)

	if err := s.Repo.Create(b); err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	s.notify(b, "New booking request")
	return b, nil
}

// GetBooking returns the booking after verifying the actor is a party to
// it (or an admin).
func (s *DefaultBookingService) GetBooking(id, actorID, actorRole string) (*models.Booking, error) {
	b, err := s.Repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if err := s.checkAccess(b, actorID, actorRole); err != nil {
		return nil, err
	}
	return b, nil
}

// ListBookings lists the caller's bookings, newest first.
func (s *DefaultBookingService) ListBookings(q ListQuery) ([]models.Booking, int64, error) {
	filter := bookingRepo.ListFilter{Status: q.Status, Page: q.Page, Limit: q.Limit}
	switch q.ActorRole {
	case models.RoleClient:
		filter.ClientID = q.ActorID
	case models.RoleFundi:
		filter.FundiID = q.ActorID
	case models.RoleAdmin:
		// admins see everything
	default:
		return nil, 0, ForbiddenError{Role: q.ActorRole}
	}
	return s.Repo.List(filter)
}

// Stats aggregates the caller's bookings by status.
func (s *DefaultBookingService) Stats(actorID, actorRole string) (*models.StatsSummary, error) {
	filter := bookingRepo.ListFilter{}
	switch actorRole {
	case models.RoleClient:
		filter.ClientID = actorID
	case models.RoleFundi:
		filter.FundiID = actorID
	case models.RoleAdmin:
	default:
		return nil, ForbiddenError{Role: actorRole}
	}
	return s.Repo.StatsSummary(filter)
}

// Transition moves the booking along one edge of the state machine. The
// write is version-checked: of two racing transitions exactly one wins
// and the loser surfaces ConflictError.
func (s *DefaultBookingService) Transition(bookingID, target, note, actorID, actorRole string) (*models.Booking, error) {
	b, err := s.Repo.GetByID(bookingID)
	if err != nil {
		return nil, err
	}

	if !validTransition(b.Status, target) {
		return nil, InvalidTransitionError{From: b.Status, To: target}
	}
	if !roleAllowed(b.Status, target, actorRole) {
		return nil, ForbiddenError{Role: actorRole, From: b.Status, To: target}
	}
	if err := s.checkParty(b, actorID, actorRole); err != nil {
		return nil, err
	}

	prior := b.Status
	s.applyTransition(b, target, note, actorID, actorRole)

	if err := s.Repo.UpdateWithVersion(b); err != nil {
		if errors.Is(err, bookingRepo.ErrVersionConflict) {
			return nil, ConflictError{BookingID: bookingID}
		}
		return nil, err
	}

	s.afterTransition(b, prior, note)
	return b, nil
}

// AddCharge appends an additional charge and reprices the booking.
// Financial figures freeze at settlement, so paid bookings reject it.
func (s *DefaultBookingService) AddCharge(bookingID string, charge models.AdditionalCharge, actorID, actorRole string) (*models.Booking, error) {
	if charge.Amount <= 0 {
		return nil, fmt.Errorf("charge amount must be positive")
	}
	b, err := s.Repo.GetByID(bookingID)
	if err != nil {
		return nil, err
	}
	if actorRole != models.RoleAdmin && (actorRole != models.RoleFundi || b.FundiID != actorID) {
		return nil, ForbiddenError{Role: actorRole}
	}
	if b.Payment.Status == models.PaymentPaid {
		return nil, InvalidStateError{BookingID: b.ID, Status: b.Status, Reason: "pricing is frozen after settlement"}
	}
	if models.IsTerminal(b.Status) {
		return nil, InvalidStateError{BookingID: b.ID, Status: b.Status, Reason: "cannot reprice a terminal booking"}
	}

	b.Pricing.AdditionalCharges = append(b.Pricing.AdditionalCharges, charge)
	Reprice(&b.Pricing, s.CommissionRate)

	if err := s.Repo.UpdateWithVersion(b); err != nil {
		if errors.Is(err, bookingRepo.ErrVersionConflict) {
			return nil, ConflictError{BookingID: bookingID}
		}
		return nil, err
	}
	return b, nil
}

// Complete records the fundi's completion details, driving the booking
// to completed first when it is not there yet. Details and the status
// change land in one version-checked write.
func (s *DefaultBookingService) Complete(bookingID string, details CompletionDetails, actorID, actorRole string) (*models.Booking, error) {
	b, err := s.Repo.GetByID(bookingID)
	if err != nil {
		return nil, err
	}
	if actorRole != models.RoleAdmin && (actorRole != models.RoleFundi || b.FundiID != actorID) {
		return nil, ForbiddenError{Role: actorRole}
	}

	prior := b.Status
	if b.Status != models.StatusCompleted {
		if !validTransition(b.Status, models.StatusCompleted) {
			return nil, InvalidTransitionError{From: b.Status, To: models.StatusCompleted}
		}
		s.applyTransition(b, models.StatusCompleted, "Job marked as completed", actorID, actorRole)
	}

	now := time.Now()
	b.Completion.FundiConfirmed = true
	b.Completion.CompletedAt = &now
	b.Completion.Photos = details.Photos
	b.Completion.Feedback = details.Feedback

	if err := s.Repo.UpdateWithVersion(b); err != nil {
		if errors.Is(err, bookingRepo.ErrVersionConflict) {
			return nil, ConflictError{BookingID: bookingID}
		}
		return nil, err
	}

	s.afterTransition(b, prior, "Job marked as completed")
	return b, nil
}

// ConfirmCompletion records the client's independent confirmation.
func (s *DefaultBookingService) ConfirmCompletion(bookingID, actorID string) (*models.Booking, error) {
	b, err := s.Repo.GetByID(bookingID)
	if err != nil {
		return nil, err
	}
	if b.ClientID != actorID {
		return nil, ForbiddenError{Role: models.RoleClient}
	}
	if b.Status != models.StatusCompleted {
		return nil, InvalidStateError{BookingID: b.ID, Status: b.Status, Reason: "only completed bookings can be confirmed"}
	}
	if b.Completion.ClientConfirmed {
		return b, nil
	}

	b.Completion.ClientConfirmed = true
	if err := s.Repo.UpdateWithVersion(b); err != nil {
		if errors.Is(err, bookingRepo.ErrVersionConflict) {
			return nil, ConflictError{BookingID: bookingID}
		}
		return nil, err
	}
	return b, nil
}

// applyTransition mutates the in-memory booking for one edge: status
// plus exactly one appended timeline entry. Existing entries are never
// edited or removed.
func (s *DefaultBookingService) applyTransition(b *models.Booking, target, note, actorID, actorRole string) {
	b.Status = target
	b.Timeline = append(b.Timeline, models.TimelineEntry{
		Status:    target,
		Note:      note,
		ActorID:   actorID,
		ActorRole: actorRole,
		Timestamp: time.Now(),
	})
}

// afterTransition runs the side effects coupled to specific edges once
// the write has been accepted. Failures here are logged, never allowed
// to roll back the already-persisted transition: the earnings credit is
// idempotent and safe to re-drive, notifications are best-effort.
func (s *DefaultBookingService) afterTransition(b *models.Booking, prior, note string) {
	if b.Status == models.StatusCompleted && prior != models.StatusCompleted {
		if err := s.FundiRepo.IncrementCompletedJobs(b.FundiID); err != nil {
			s.Logger.Error("failed to increment completed jobs",
				zap.String("bookingID", b.ID), zap.String("fundiID", b.FundiID), zap.Error(err))
		}
		if err := s.CreditEarningsOnce(b.ID); err != nil {
			s.Logger.Error("failed to credit fundi earnings on completion",
				zap.String("bookingID", b.ID), zap.Error(err))
		}
	}
	s.notify(b, note)
}

// checkParty verifies the actor is the booking party its role claims.
func (s *DefaultBookingService) checkParty(b *models.Booking, actorID, actorRole string) error {
	switch actorRole {
	case models.RoleClient:
		if b.ClientID != actorID {
			return ForbiddenError{Role: actorRole}
		}
	case models.RoleFundi:
		if b.FundiID != actorID {
			return ForbiddenError{Role: actorRole}
		}
	case models.RoleAdmin, models.RoleSystem:
		// unrestricted
	default:
		return ForbiddenError{Role: actorRole}
	}
	return nil
}

// checkAccess is checkParty plus read access for either party.
func (s *DefaultBookingService) checkAccess(b *models.Booking, actorID, actorRole string) error {
	if actorRole == models.RoleAdmin || actorRole == models.RoleSystem {
		return nil
	}
	if b.ClientID == actorID || b.FundiID == actorID {
		return nil
	}
	return ForbiddenError{Role: actorRole}
}

func (s *DefaultBookingService) notify(b *models.Booking, note string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.NotifyBookingStatus(b, note); err != nil {
		s.Logger.Warn("failed to enqueue booking notification",
			zap.String("bookingID", b.ID), zap.Error(err))
	}
}
