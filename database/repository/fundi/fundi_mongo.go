package fundiRepo

import (
	"context"
	"fmt"
	"time"

	"fundilink/database"
	"fundilink/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoFundiRepo implements FundiRepository using MongoDB.
type MongoFundiRepo struct {
	coll *mongo.Collection
}

// NewMongoFundiRepo creates a new instance of FundiRepository using MongoDB.
func NewMongoFundiRepo() *MongoFundiRepo {
	coll := database.MongoClient.Database("fundilink").Collection("fundis")
	return &MongoFundiRepo{coll: coll}
}

func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

func (r *MongoFundiRepo) findOne(filter bson.M) (*models.Fundi, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var fundi models.Fundi
	if err := r.coll.FindOne(ctx, filter).Decode(&fundi); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch fundi: %w", err)
	}
	return &fundi, nil
}

func (r *MongoFundiRepo) GetByID(id string) (*models.Fundi, error) {
	return r.findOne(bson.M{"id": id})
}

func (r *MongoFundiRepo) GetByUserID(userID string) (*models.Fundi, error) {
	return r.findOne(bson.M{"user_id": userID})
}

func (r *MongoFundiRepo) GetBySubscriptionRef(transactionID string) (*models.Fundi, error) {
	return r.findOne(bson.M{"subscription.transaction_id": transactionID})
}

// Create inserts a new fundi document.
func (r *MongoFundiRepo) Create(fundi *models.Fundi) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	_, err := r.coll.InsertOne(ctx, fundi)
	if err != nil {
		return fmt.Errorf("failed to create fundi: %w", err)
	}
	return nil
}

// UpdateWithVersion replaces the fundi document guarded by the stored
// version token.
func (r *MongoFundiRepo) UpdateWithVersion(fundi *models.Fundi) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	updated := *fundi
	updated.Version = fundi.Version + 1
	updated.UpdatedAt = time.Now()

	filter := bson.M{"id": fundi.ID, "version": fundi.Version}
	result, err := r.coll.ReplaceOne(ctx, filter, &updated)
	if err != nil {
		return fmt.Errorf("failed to update fundi with id %s: %w", fundi.ID, err)
	}
	if result.MatchedCount == 0 {
		return ErrVersionConflict
	}
	*fundi = updated
	return nil
}

// UpdateWithDocument updates a fundi using a custom update document.
func (r *MongoFundiRepo) UpdateWithDocument(id string, updateDoc bson.M) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	filter := bson.M{"id": id}
	result, err := r.coll.UpdateOne(ctx, filter, updateDoc)
	if err != nil {
		return fmt.Errorf("failed to update fundi with id %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
