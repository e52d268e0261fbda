package bookingRepo

import (
	"fmt"
	"time"

	"fundilink/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (f ListFilter) toBson() bson.M {
	filter := bson.M{}
	if f.ClientID != "" {
		filter["client_id"] = f.ClientID
	}
	if f.FundiID != "" {
		filter["fundi_id"] = f.FundiID
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.PaymentStatus != "" {
		filter["payment.status"] = f.PaymentStatus
	}
	return filter
}

// List returns bookings matching the filter, newest first, with the total
// count for pagination.
func (r *MongoBookingRepo) List(filter ListFilter) ([]models.Booking, int64, error) {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	query := filter.toBson()
	total, err := r.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip((page - 1) * limit).
		SetLimit(limit)

	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to retrieve bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	for cursor.Next(ctx) {
		var b models.Booking
		if err := cursor.Decode(&b); err != nil {
			return nil, 0, fmt.Errorf("failed to decode booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := cursor.Err(); err != nil {
		return nil, 0, fmt.Errorf("cursor error: %w", err)
	}
	return bookings, total, nil
}

// StatsSummary groups a participant's bookings by status and sums the
// total amount of completed ones.
func (r *MongoBookingRepo) StatsSummary(filter ListFilter) (*models.StatsSummary, error) {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	pipeline := []bson.M{
		{"$match": filter.toBson()},
		{"$group": bson.M{
			"_id":         "$status",
			"count":       bson.M{"$sum": 1},
			"totalAmount": bson.M{"$sum": "$pricing.total_amount"},
		}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("stats aggregation failed: %w", err)
	}
	defer cursor.Close(ctx)

	summary := &models.StatsSummary{}
	for cursor.Next(ctx) {
		var row struct {
			Status      string `bson:"_id"`
			Count       int64  `bson:"count"`
			TotalAmount int64  `bson:"totalAmount"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, fmt.Errorf("failed to decode stats row: %w", err)
		}
		summary.Total += row.Count
		switch row.Status {
		case models.StatusPending:
			summary.Pending = row.Count
		case models.StatusAccepted:
			summary.Accepted = row.Count
		case models.StatusInProgress:
			summary.InProgress = row.Count
		case models.StatusCompleted:
			summary.Completed = row.Count
			summary.TotalEarnings = row.TotalAmount
		case models.StatusCancelled:
			summary.Cancelled = row.Count
		case models.StatusDisputed:
			summary.Disputed = row.Count
		}
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return summary, nil
}
