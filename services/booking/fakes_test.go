package booking

import (
	"sync"
	"time"

	bookingRepo "fundilink/database/repository/booking"
	fundiRepo "fundilink/database/repository/fundi"
	"fundilink/models"

	"go.mongodb.org/mongo-driver/bson"
)

// fakeBookingRepo is an in-memory BookingRepository with the same
// version-CAS semantics as the Mongo implementation.
type fakeBookingRepo struct {
	mu       sync.Mutex
	bookings map[string]models.Booking

	// failNextUpdate makes the next UpdateWithVersion fail with the given
	// error, simulating a lost race.
	failNextUpdate error
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{bookings: make(map[string]models.Booking)}
}

func (r *fakeBookingRepo) GetByID(id string) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, bookingRepo.ErrNotFound
	}
	return &b, nil
}

func (r *fakeBookingRepo) GetByTransactionID(transactionID string) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bookings {
		if b.Payment.TransactionID == transactionID {
			out := b
			return &out, nil
		}
	}
	return nil, bookingRepo.ErrNotFound
}

func (r *fakeBookingRepo) Create(b *models.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bookings[b.ID] = *b
	return nil
}

func (r *fakeBookingRepo) UpdateWithVersion(b *models.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failNextUpdate != nil {
		err := r.failNextUpdate
		r.failNextUpdate = nil
		return err
	}
	stored, ok := r.bookings[b.ID]
	if !ok || stored.Version != b.Version {
		return bookingRepo.ErrVersionConflict
	}
	updated := *b
	updated.Version = b.Version + 1
	updated.UpdatedAt = time.Now()
	r.bookings[b.ID] = updated
	*b = updated
	return nil
}

func (r *fakeBookingRepo) List(filter bookingRepo.ListFilter) ([]models.Booking, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Booking
	for _, b := range r.bookings {
		if filter.ClientID != "" && b.ClientID != filter.ClientID {
			continue
		}
		if filter.FundiID != "" && b.FundiID != filter.FundiID {
			continue
		}
		if filter.Status != "" && b.Status != filter.Status {
			continue
		}
		out = append(out, b)
	}
	return out, int64(len(out)), nil
}

func (r *fakeBookingRepo) StatsSummary(filter bookingRepo.ListFilter) (*models.StatsSummary, error) {
	items, _, err := r.List(filter)
	if err != nil {
		return nil, err
	}
	summary := &models.StatsSummary{Total: int64(len(items))}
	for _, b := range items {
		switch b.Status {
		case models.StatusPending:
			summary.Pending++
		case models.StatusAccepted:
			summary.Accepted++
		case models.StatusInProgress:
			summary.InProgress++
		case models.StatusCompleted:
			summary.Completed++
			summary.TotalEarnings += b.Pricing.TotalAmount
		case models.StatusCancelled:
			summary.Cancelled++
		case models.StatusDisputed:
			summary.Disputed++
		}
	}
	return summary, nil
}

// fakeFundiRepo is an in-memory FundiRepository.
type fakeFundiRepo struct {
	mu     sync.Mutex
	fundis map[string]models.Fundi

	// failNextCredit makes the next CreditPendingEarnings fail with the
	// given error, simulating a transient write failure.
	failNextCredit error
}

func newFakeFundiRepo() *fakeFundiRepo {
	return &fakeFundiRepo{fundis: make(map[string]models.Fundi)}
}

func (r *fakeFundiRepo) GetByID(id string) (*models.Fundi, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.fundis[id]
	if !ok {
		return nil, fundiRepo.ErrNotFound
	}
	return &f, nil
}

func (r *fakeFundiRepo) GetByUserID(userID string) (*models.Fundi, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range r.fundis {
		if f.UserID == userID {
			out := f
			return &out, nil
		}
	}
	return nil, fundiRepo.ErrNotFound
}

func (r *fakeFundiRepo) GetBySubscriptionRef(transactionID string) (*models.Fundi, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range r.fundis {
		if f.Subscription.TransactionID == transactionID {
			out := f
			return &out, nil
		}
	}
	return nil, fundiRepo.ErrNotFound
}

func (r *fakeFundiRepo) Create(f *models.Fundi) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fundis[f.ID] = *f
	return nil
}

func (r *fakeFundiRepo) UpdateWithVersion(f *models.Fundi) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.fundis[f.ID]
	if !ok || stored.Version != f.Version {
		return fundiRepo.ErrVersionConflict
	}
	updated := *f
	updated.Version = f.Version + 1
	updated.UpdatedAt = time.Now()
	r.fundis[f.ID] = updated
	*f = updated
	return nil
}

// UpdateWithDocument applies the subscription keys the services use.
func (r *fakeFundiRepo) UpdateWithDocument(id string, updateDoc bson.M) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.fundis[id]
	if !ok {
		return fundiRepo.ErrNotFound
	}
	if set, ok := updateDoc["$set"].(bson.M); ok {
		for key, value := range set {
			switch key {
			case "subscription.transaction_id":
				f.Subscription.TransactionID = value.(string)
			case "subscription.plan":
				f.Subscription.Plan = value.(string)
			case "subscription.is_active":
				f.Subscription.IsActive = value.(bool)
			case "subscription.amount":
				f.Subscription.Amount = value.(int64)
			case "subscription.last_payment":
				t := value.(time.Time)
				f.Subscription.LastPayment = &t
			case "subscription.next_payment":
				t := value.(time.Time)
				f.Subscription.NextPayment = &t
			case "updated_at":
				f.UpdatedAt = value.(time.Time)
			}
		}
	}
	if unset, ok := updateDoc["$unset"].(bson.M); ok {
		if _, ok := unset["subscription.transaction_id"]; ok {
			f.Subscription.TransactionID = ""
		}
	}
	r.fundis[id] = f
	return nil
}

func (r *fakeFundiRepo) CreditPendingEarnings(id string, amount int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failNextCredit != nil {
		err := r.failNextCredit
		r.failNextCredit = nil
		return err
	}
	f, ok := r.fundis[id]
	if !ok {
		return fundiRepo.ErrNotFound
	}
	f.Earnings.Pending += amount
	f.Earnings.Total += amount
	r.fundis[id] = f
	return nil
}

func (r *fakeFundiRepo) IncrementCompletedJobs(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.fundis[id]
	if !ok {
		return fundiRepo.ErrNotFound
	}
	f.CompletedJobs++
	r.fundis[id] = f
	return nil
}

func (r *fakeFundiRepo) DeactivateLapsedSubscriptions(now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, f := range r.fundis {
		if f.Subscription.IsActive && f.Subscription.NextPayment != nil && f.Subscription.NextPayment.Before(now) {
			f.Subscription.IsActive = false
			r.fundis[id] = f
			n++
		}
	}
	return n, nil
}
