package handlers

import (
	"errors"
	"net/http"

	bookingRepo "fundilink/database/repository/booking"
	fundiRepo "fundilink/database/repository/fundi"
	"fundilink/services/booking"
	"fundilink/services/fundi"
	"fundilink/services/payment"
	"fundilink/utils"

	"github.com/gin-gonic/gin"
)

// respondError maps service-layer errors onto HTTP status codes.
func respondError(c *gin.Context, err error) {
	var (
		invalidTransition booking.InvalidTransitionError
		forbidden         booking.ForbiddenError
		conflict          booking.ConflictError
		invalidState      booking.InvalidStateError
		alreadyPaid       payment.AlreadyPaidError
		gateway           payment.GatewayError
		duplicateReview   fundi.DuplicateReviewError
		fundiForbidden    fundi.ForbiddenError
		fundiConflict     fundi.ConflictError
		fundiState        fundi.InvalidStateError
		insufficient      fundi.InsufficientFundsError
	)

	switch {
	case errors.Is(err, bookingRepo.ErrNotFound), errors.Is(err, fundiRepo.ErrNotFound):
		utils.JSONError(c, http.StatusNotFound, "Not found", err.Error())
	case errors.Is(err, payment.ErrAccessDenied):
		utils.JSONError(c, http.StatusForbidden, "Access denied", err.Error())
	case errors.As(err, &invalidTransition):
		utils.JSONError(c, http.StatusUnprocessableEntity, "Invalid transition", err.Error())
	case errors.As(err, &forbidden), errors.As(err, &fundiForbidden):
		utils.JSONError(c, http.StatusForbidden, "Forbidden", err.Error())
	case errors.As(err, &conflict), errors.As(err, &fundiConflict):
		utils.JSONError(c, http.StatusConflict, "Conflict", err.Error())
	case errors.As(err, &invalidState), errors.As(err, &fundiState), errors.As(err, &insufficient):
		utils.JSONError(c, http.StatusUnprocessableEntity, "Invalid state", err.Error())
	case errors.As(err, &alreadyPaid):
		utils.JSONError(c, http.StatusConflict, "Already paid", err.Error())
	case errors.As(err, &duplicateReview):
		utils.JSONError(c, http.StatusConflict, "Duplicate review", err.Error())
	case errors.As(err, &gateway):
		if gateway.Timeout {
			utils.JSONError(c, http.StatusGatewayTimeout, "Payment gateway timeout", err.Error())
		} else {
			utils.JSONError(c, http.StatusBadGateway, "Payment gateway unavailable", err.Error())
		}
	default:
		utils.JSONError(c, http.StatusInternalServerError, "Internal error", err.Error())
	}
}
