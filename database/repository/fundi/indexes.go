package fundiRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates indexes for frequently used fundi lookups.
func (r *MongoFundiRepo) EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	subRefOpts := options.Index().
		SetPartialFilterExpression(bson.M{
			"subscription.transaction_id": bson.M{"$exists": true, "$type": "string"},
		})

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "user_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "subscription.transaction_id", Value: 1}}, Options: subRefOpts},
		{Keys: bson.D{{Key: "subscription.next_payment", Value: 1}}},
	}

	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create fundi indexes: %w", err)
	}
	return nil
}
