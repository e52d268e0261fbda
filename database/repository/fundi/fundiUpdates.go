package fundiRepo

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

// CreditPendingEarnings adds amount to both the pending and total buckets
// in a single atomic update, so total == pending + withdrawn holds at
// every point in time.
func (r *MongoFundiRepo) CreditPendingEarnings(id string, amount int64) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	filter := bson.M{"id": id}
	update := bson.M{
		"$inc": bson.M{
			"earnings.pending": amount,
			"earnings.total":   amount,
		},
		"$set": bson.M{"updated_at": time.Now()},
	}
	result, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to credit earnings for fundi %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeactivateLapsedSubscriptions flips off every active subscription whose
// next-payment date is before now. Returns how many were deactivated.
func (r *MongoFundiRepo) DeactivateLapsedSubscriptions(now time.Time) (int64, error) {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	filter := bson.M{
		"subscription.is_active":    true,
		"subscription.next_payment": bson.M{"$lt": now},
	}
	update := bson.M{"$set": bson.M{
		"subscription.is_active": false,
		"updated_at":             now,
	}}
	result, err := r.coll.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, fmt.Errorf("failed to deactivate lapsed subscriptions: %w", err)
	}
	return result.ModifiedCount, nil
}

// IncrementCompletedJobs bumps the monotonic completed-job counter.
func (r *MongoFundiRepo) IncrementCompletedJobs(id string) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	filter := bson.M{"id": id}
	update := bson.M{
		"$inc": bson.M{"completed_jobs": 1},
		"$set": bson.M{"updated_at": time.Now()},
	}
	result, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to increment completed jobs for fundi %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
