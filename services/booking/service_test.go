package booking

import (
	"errors"
	"sync"
	"testing"
	"time"

	bookingRepo "fundilink/database/repository/booking"
	"fundilink/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testRate = 0.05

func newTestService() (*DefaultBookingService, *fakeBookingRepo, *fakeFundiRepo) {
	repo := newFakeBookingRepo()
	fundis := newFakeFundiRepo()
	svc := &DefaultBookingService{
		Repo:           repo,
		FundiRepo:      fundis,
		Logger:         zap.NewNop(),
		CommissionRate: testRate,
	}
	return svc, repo, fundis
}

func seedFundi(t *testing.T, fundis *fakeFundiRepo) *models.Fundi {
	t.Helper()
	f := &models.Fundi{
		ID:       "fundi-1",
		UserID:   "user-fundi-1",
		Phone:    "+254700000001",
		IsActive: true,
	}
	require.NoError(t, fundis.Create(f))
	return f
}

func seedBooking(t *testing.T, svc *DefaultBookingService, fundis *fakeFundiRepo) *models.Booking {
	t.Helper()
	seedFundi(t, fundis)
	b, err := svc.CreateBooking(CreateBookingRequest{
		ClientID:   "client-1",
		FundiID:    "fundi-1",
		Service:    models.Service{Category: "plumbing", Description: "fix sink"},
		BaseAmount: 1000,
	})
	require.NoError(t, err)
	return b
}

func TestCreateBookingComputesSplitAndTimeline(t *testing.T) {
	svc, _, fundis := newTestService()
	b := seedBooking(t, svc, fundis)

	assert.Equal(t, models.StatusPending, b.Status)
	assert.Equal(t, int64(1000), b.Pricing.TotalAmount)
	assert.Equal(t, int64(50), b.Pricing.PlatformCommission)
	assert.Equal(t, int64(950), b.Pricing.FundiEarnings)
	assert.Equal(t, models.PaymentPending, b.Payment.Status)
	require.Len(t, b.Timeline, 1)
	assert.Equal(t, models.StatusPending, b.Timeline[0].Status)
	assert.Equal(t, models.RoleClient, b.Timeline[0].ActorRole)
}

func TestCreateBookingRejectsInactiveFundi(t *testing.T) {
	svc, _, fundis := newTestService()
	require.NoError(t, fundis.Create(&models.Fundi{ID: "fundi-1", IsActive: false}))

	_, err := svc.CreateBooking(CreateBookingRequest{
		ClientID:   "client-1",
		FundiID:    "fundi-1",
		BaseAmount: 1000,
	})
	assert.ErrorAs(t, err, &InvalidStateError{})
}

func TestTransitionAppendsExactlyOneTimelineEntry(t *testing.T) {
	svc, _, fundis := newTestService()
	b := seedBooking(t, svc, fundis)

	updated, err := svc.Transition(b.ID, models.StatusAccepted, "on my way", "fundi-1", models.RoleFundi)
	require.NoError(t, err)

	assert.Equal(t, models.StatusAccepted, updated.Status)
	require.Len(t, updated.Timeline, 2)
	last := updated.Timeline[len(updated.Timeline)-1]
	assert.Equal(t, models.StatusAccepted, last.Status)
	assert.Equal(t, "fundi-1", last.ActorID)
	assert.Equal(t, models.RoleFundi, last.ActorRole)
	assert.Equal(t, "on my way", last.Note)
}

func TestTransitionRejectsSkippedEdge(t *testing.T) {
	svc, _, fundis := newTestService()
	b := seedBooking(t, svc, fundis)

	_, err := svc.Transition(b.ID, models.StatusInProgress, "", "fundi-1", models.RoleFundi)
	var invalid InvalidTransitionError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, models.StatusPending, invalid.From)
	assert.Equal(t, models.StatusInProgress, invalid.To)
}

func TestTransitionRejectsWrongRole(t *testing.T) {
	svc, _, fundis := newTestService()
	b := seedBooking(t, svc, fundis)

	// Clients cannot accept their own booking.
	_, err := svc.Transition(b.ID, models.StatusAccepted, "", "client-1", models.RoleClient)
	assert.ErrorAs(t, err, &ForbiddenError{})

	// A different fundi is not a party to the booking.
	_, err = svc.Transition(b.ID, models.StatusAccepted, "", "fundi-2", models.RoleFundi)
	assert.ErrorAs(t, err, &ForbiddenError{})
}

func TestTerminalStatesHaveNoExits(t *testing.T) {
	svc, _, fundis := newTestService()
	b := seedBooking(t, svc, fundis)

	_, err := svc.Transition(b.ID, models.StatusCancelled, "changed my mind", "client-1", models.RoleClient)
	require.NoError(t, err)

	for _, target := range []string{
		models.StatusPending, models.StatusAccepted, models.StatusInProgress,
		models.StatusCompleted, models.StatusDisputed,
	} {
		_, err := svc.Transition(b.ID, target, "", "admin-1", models.RoleAdmin)
		assert.ErrorAs(t, err, &InvalidTransitionError{}, "edge out of cancelled to %s", target)
	}
}

func TestAdminMayDriveAnyEdge(t *testing.T) {
	svc, _, fundis := newTestService()
	b := seedBooking(t, svc, fundis)

	_, err := svc.Transition(b.ID, models.StatusAccepted, "resolved on call", "admin-1", models.RoleAdmin)
	require.NoError(t, err)
	_, err = svc.Transition(b.ID, models.StatusInProgress, "", "admin-1", models.RoleAdmin)
	require.NoError(t, err)
}

func TestTransitionLostRaceSurfacesConflict(t *testing.T) {
	svc, repo, fundis := newTestService()
	b := seedBooking(t, svc, fundis)

	repo.failNextUpdate = bookingRepo.ErrVersionConflict
	_, err := svc.Transition(b.ID, models.StatusAccepted, "", "fundi-1", models.RoleFundi)
	var conflict ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, b.ID, conflict.BookingID)

	// The stored booking is untouched by the losing write.
	stored, err := repo.GetByID(b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, stored.Status)
	assert.Len(t, stored.Timeline, 1)
}

func TestSimultaneousTransitionsHaveExactlyOneWinner(t *testing.T) {
	svc, repo, fundis := newTestService()
	b := seedBooking(t, svc, fundis)
	_, err := svc.Transition(b.ID, models.StatusAccepted, "", "fundi-1", models.RoleFundi)
	require.NoError(t, err)

	// From accepted, in_progress and cancelled are both open, but each
	// closes the other once it lands.
	type attempt struct {
		target  string
		actorID string
		role    string
	}
	attempts := []attempt{
		{models.StatusInProgress, "fundi-1", models.RoleFundi},
		{models.StatusCancelled, "client-1", models.RoleClient},
	}

	errs := make([]error, len(attempts))
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i, a := range attempts {
		wg.Add(1)
		go func(i int, a attempt) {
			defer wg.Done()
			<-start
			_, errs[i] = svc.Transition(b.ID, a.target, "", a.actorID, a.role)
		}(i, a)
	}
	close(start)
	wg.Wait()

	var winners []string
	for i, err := range errs {
		if err == nil {
			winners = append(winners, attempts[i].target)
			continue
		}
		// The loser surfaces through the lifecycle taxonomy, never a raw
		// repository error.
		var conflict ConflictError
		var invalid InvalidTransitionError
		assert.True(t, errors.As(err, &conflict) || errors.As(err, &invalid),
			"unexpected loser error: %v", err)
	}
	require.Len(t, winners, 1)

	stored, err := repo.GetByID(b.ID)
	require.NoError(t, err)
	assert.Equal(t, winners[0], stored.Status)
	assert.Len(t, stored.Timeline, 3)
}

func TestCompleteCreditsEarningsExactlyOnce(t *testing.T) {
	svc, repo, fundis := newTestService()
	b := seedBooking(t, svc, fundis)

	_, err := svc.Transition(b.ID, models.StatusAccepted, "", "fundi-1", models.RoleFundi)
	require.NoError(t, err)
	_, err = svc.Transition(b.ID, models.StatusInProgress, "", "fundi-1", models.RoleFundi)
	require.NoError(t, err)

	completed, err := svc.Complete(b.ID, CompletionDetails{Feedback: "done"}, "fundi-1", models.RoleFundi)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, completed.Status)
	assert.True(t, completed.Completion.FundiConfirmed)

	f, err := fundis.GetByID("fundi-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), f.CompletedJobs)
	assert.Equal(t, int64(950), f.Earnings.Pending)
	assert.Equal(t, int64(950), f.Earnings.Total)

	// Re-driving the credit is a no-op.
	require.NoError(t, svc.CreditEarningsOnce(b.ID))
	require.NoError(t, svc.CreditEarningsOnce(b.ID))

	f, err = fundis.GetByID("fundi-1")
	require.NoError(t, err)
	assert.Equal(t, int64(950), f.Earnings.Pending)
	assert.Equal(t, int64(950), f.Earnings.Total)
	assert.Equal(t, f.Earnings.Total, f.Earnings.Pending+f.Earnings.Withdrawn)

	stored, err := repo.GetByID(b.ID)
	require.NoError(t, err)
	assert.True(t, stored.EarningsCredited)
}

func TestCreditEarningsRetriesAfterTransientFailure(t *testing.T) {
	svc, repo, fundis := newTestService()
	b := seedBooking(t, svc, fundis)

	fundis.failNextCredit = errors.New("write timeout")
	require.Error(t, svc.CreditEarningsOnce(b.ID))

	// The failed drive must not leave the credited flag set, or the
	// earnings could never be delivered.
	stored, err := repo.GetByID(b.ID)
	require.NoError(t, err)
	assert.False(t, stored.EarningsCredited)

	f, err := fundis.GetByID("fundi-1")
	require.NoError(t, err)
	assert.Zero(t, f.Earnings.Pending)

	// A later drive delivers the credit, still exactly once.
	require.NoError(t, svc.CreditEarningsOnce(b.ID))
	require.NoError(t, svc.CreditEarningsOnce(b.ID))

	f, err = fundis.GetByID("fundi-1")
	require.NoError(t, err)
	assert.Equal(t, int64(950), f.Earnings.Pending)
	assert.Equal(t, int64(950), f.Earnings.Total)

	stored, err = repo.GetByID(b.ID)
	require.NoError(t, err)
	assert.True(t, stored.EarningsCredited)
}

func TestPaymentSettledConfirmsPendingBooking(t *testing.T) {
	svc, repo, fundis := newTestService()
	b := seedBooking(t, svc, fundis)

	paidAt := time.Now()
	outcome := models.PaymentOutcome{
		CorrelationID: "CHK-1",
		Success:       true,
		ReceiptNumber: "RCPT001",
		Amount:        1000,
		PaidAt:        paidAt,
	}

	updated, err := svc.PaymentSettled(b.ID, outcome)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, updated.Payment.Status)
	assert.Equal(t, "RCPT001", updated.Payment.ReceiptNumber)
	assert.Equal(t, models.StatusAccepted, updated.Status)
	require.Len(t, updated.Timeline, 2)
	assert.Equal(t, models.RoleSystem, updated.Timeline[1].ActorRole)

	// A redelivered settlement is absorbed without another transition.
	again, err := svc.PaymentSettled(b.ID, outcome)
	require.NoError(t, err)
	assert.Len(t, again.Timeline, 2)

	stored, err := repo.GetByID(b.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Timeline, 2)
}

func TestPaymentSettledLeavesAcceptedStatusAlone(t *testing.T) {
	svc, _, fundis := newTestService()
	b := seedBooking(t, svc, fundis)

	_, err := svc.Transition(b.ID, models.StatusAccepted, "", "fundi-1", models.RoleFundi)
	require.NoError(t, err)

	updated, err := svc.PaymentSettled(b.ID, models.PaymentOutcome{
		CorrelationID: "CHK-1", Success: true, PaidAt: time.Now(),
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusAccepted, updated.Status)
	assert.Equal(t, models.PaymentPaid, updated.Payment.Status)
	assert.Len(t, updated.Timeline, 2)
}

func TestPaymentFailedLeavesBookingStatusUntouched(t *testing.T) {
	svc, _, fundis := newTestService()
	b := seedBooking(t, svc, fundis)

	updated, err := svc.PaymentFailed(b.ID, models.PaymentOutcome{
		CorrelationID: "CHK-1", ResultCode: 1032, ResultDesc: "Request cancelled by user",
	})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentFailed, updated.Payment.Status)
	assert.Equal(t, models.StatusPending, updated.Status)
	assert.Len(t, updated.Timeline, 1)
}

func TestAddChargeReprices(t *testing.T) {
	svc, _, fundis := newTestService()
	b := seedBooking(t, svc, fundis)

	updated, err := svc.AddCharge(b.ID, models.AdditionalCharge{Description: "materials", Amount: 500}, "fundi-1", models.RoleFundi)
	require.NoError(t, err)
	assert.Equal(t, int64(1500), updated.Pricing.TotalAmount)
	assert.Equal(t, int64(75), updated.Pricing.PlatformCommission)
	assert.Equal(t, int64(1425), updated.Pricing.FundiEarnings)
}

func TestAddChargeRejectedAfterSettlement(t *testing.T) {
	svc, _, fundis := newTestService()
	b := seedBooking(t, svc, fundis)

	_, err := svc.PaymentSettled(b.ID, models.PaymentOutcome{Success: true, PaidAt: time.Now()})
	require.NoError(t, err)

	_, err = svc.AddCharge(b.ID, models.AdditionalCharge{Description: "late extra", Amount: 500}, "fundi-1", models.RoleFundi)
	var invalid InvalidStateError
	require.ErrorAs(t, err, &invalid)

	stored, err := svc.Repo.GetByID(b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), stored.Pricing.TotalAmount)
}

func TestConfirmCompletion(t *testing.T) {
	svc, _, fundis := newTestService()
	b := seedBooking(t, svc, fundis)

	_, err := svc.ConfirmCompletion(b.ID, "client-1")
	assert.ErrorAs(t, err, &InvalidStateError{})

	_, err = svc.Transition(b.ID, models.StatusAccepted, "", "fundi-1", models.RoleFundi)
	require.NoError(t, err)
	_, err = svc.Transition(b.ID, models.StatusInProgress, "", "fundi-1", models.RoleFundi)
	require.NoError(t, err)
	_, err = svc.Complete(b.ID, CompletionDetails{}, "fundi-1", models.RoleFundi)
	require.NoError(t, err)

	updated, err := svc.ConfirmCompletion(b.ID, "client-1")
	require.NoError(t, err)
	assert.True(t, updated.Completion.ClientConfirmed)
}
