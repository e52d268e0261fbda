package bookingRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates indexes for frequently used booking lookups.
func (r *MongoBookingRepo) EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// The callback handler joins on the correlation id, so it must be
	// unique among bookings that have one.
	txnOpts := options.Index().
		SetUnique(true).
		SetPartialFilterExpression(bson.M{
			"payment.transaction_id": bson.M{"$exists": true, "$type": "string"},
		})

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "payment.transaction_id", Value: 1}}, Options: txnOpts},
		{Keys: bson.D{{Key: "client_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "fundi_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	}

	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create booking indexes: %w", err)
	}
	return nil
}
