package bookingRepo

import (
	"context"
	"fmt"
	"time"

	"fundilink/database"
	"fundilink/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoBookingRepo implements BookingRepository using MongoDB.
type MongoBookingRepo struct {
	coll *mongo.Collection
}

// NewMongoBookingRepo creates a new instance of BookingRepository using MongoDB.
func NewMongoBookingRepo() *MongoBookingRepo {
	coll := database.MongoClient.Database("fundilink").Collection("bookings")
	return &MongoBookingRepo{coll: coll}
}

func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

func (r *MongoBookingRepo) GetByID(id string) (*models.Booking, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var booking models.Booking
	filter := bson.M{"id": id}
	if err := r.coll.FindOne(ctx, filter).Decode(&booking); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch booking with id %s: %w", id, err)
	}
	return &booking, nil
}

func (r *MongoBookingRepo) GetByTransactionID(transactionID string) (*models.Booking, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var booking models.Booking
	filter := bson.M{"payment.transaction_id": transactionID}
	if err := r.coll.FindOne(ctx, filter).Decode(&booking); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch booking for transaction %s: %w", transactionID, err)
	}
	return &booking, nil
}

// Create inserts a new booking document.
func (r *MongoBookingRepo) Create(booking *models.Booking) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	_, err := r.coll.InsertOne(ctx, booking)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}
	return nil
}

// UpdateWithVersion replaces the booking document guarded by the stored
// version. MatchedCount == 0 means either the booking vanished or a
// concurrent writer won the race; both surface as ErrVersionConflict and
// the caller retries against fresh state.
func (r *MongoBookingRepo) UpdateWithVersion(booking *models.Booking) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	updated := *booking
	updated.Version = booking.Version + 1
	updated.UpdatedAt = time.Now()

	filter := bson.M{"id": booking.ID, "version": booking.Version}
	result, err := r.coll.ReplaceOne(ctx, filter, &updated)
	if err != nil {
		return fmt.Errorf("failed to update booking with id %s: %w", booking.ID, err)
	}
	if result.MatchedCount == 0 {
		return ErrVersionConflict
	}
	*booking = updated
	return nil
}
