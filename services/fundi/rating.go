package fundi

import (
	"errors"
	"time"

	fundiRepo "fundilink/database/repository/fundi"
	"fundilink/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const casRetries = 3

// AddReview validates the review against its booking, appends it, and
// recomputes the rating average over the full review set. The append and
// recompute land in one version-checked write, so concurrent reviews for
// the same fundi serialize and the aggregate never drifts from its set.
func (s *DefaultFundiService) AddReview(req AddReviewRequest) (*models.Fundi, error) {
	b, err := s.BookingRepo.GetByID(req.BookingID)
	if err != nil {
		return nil, err
	}
	if b.ClientID != req.ClientID {
		return nil, ForbiddenError{ActorID: req.ClientID, Reason: "only the booking's client may review it"}
	}
	if b.Status != models.StatusCompleted {
		return nil, InvalidStateError{BookingID: b.ID, Status: b.Status, Reason: "only completed bookings can be reviewed"}
	}

	review := models.Review{
		ID:        uuid.New().String(),
		BookingID: b.ID,
		ClientID:  req.ClientID,
		Rating:    req.Rating,
		Comment:   req.Comment,
		CreatedAt: time.Now(),
	}

	for attempt := 0; attempt < casRetries; attempt++ {
		f, err := s.Repo.GetByID(b.FundiID)
		if err != nil {
			return nil, err
		}
		for _, r := range f.Reviews {
			if r.BookingID == b.ID {
				return nil, DuplicateReviewError{BookingID: b.ID}
			}
		}

		f.Reviews = append(f.Reviews, review)
		f.Rating = recomputeRating(f.Reviews)
		f.UpdatedAt = time.Now()

		err = s.Repo.UpdateWithVersion(f)
		if err == nil {
			s.Logger.Info("review added",
				zap.String("fundiID", f.ID),
				zap.String("bookingID", b.ID),
				zap.Int("rating", req.Rating),
				zap.Float64("average", f.Rating.Average))
			return f, nil
		}
		if !errors.Is(err, fundiRepo.ErrVersionConflict) {
			return nil, err
		}
	}
	return nil, ConflictError{FundiID: b.FundiID}
}

// recomputeRating derives the aggregate from the full review set rather
// than folding the new value into the old average.
func recomputeRating(reviews []models.Review) models.Rating {
	if len(reviews) == 0 {
		return models.Rating{}
	}
	var sum int64
	for _, r := range reviews {
		sum += int64(r.Rating)
	}
	return models.Rating{
		Average: float64(sum) / float64(len(reviews)),
		Count:   int64(len(reviews)),
	}
}
