package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"fundilink/services/payment"
	"fundilink/services/payment/mpesa"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PaymentHandler exposes payment initiation, gateway callbacks, and
// status checks.
type PaymentHandler struct {
	Svc    payment.PaymentService
	Logger *zap.Logger
}

func NewPaymentHandler(svc payment.PaymentService, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{Svc: svc, Logger: logger}
}

// InitiateSTKPush starts a mobile-money payment for a booking.
func (h *PaymentHandler) InitiateSTKPush(c *gin.Context) {
	var input struct {
		Phone string `json:"phone" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	res, err := h.Svc.InitiateBookingPayment(c.Request.Context(), c.Param("id"), input.Phone, c.GetString("actorID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":             "STK push sent, confirm on your phone",
		"checkout_request_id": res.CorrelationID,
	})
}

// InitiateCardPayment opens a card payment intent for a booking.
func (h *PaymentHandler) InitiateCardPayment(c *gin.Context) {
	res, err := h.Svc.InitiateCardPayment(c.Request.Context(), c.Param("id"), c.GetString("actorID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Callback receives the asynchronous gateway outcome for a booking
// payment. The gateway retries anything that is not a 200, so every
// recognizable request is acknowledged; unknown correlation ids are
// logged and absorbed rather than bounced back into the retry loop.
func (h *PaymentHandler) Callback(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
		return
	}

	outcome, err := mpesa.ParseCallback(body)
	if err != nil {
		h.Logger.Warn("malformed payment callback", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed callback"})
		return
	}

	if err := h.Svc.ReconcileBooking(c.Request.Context(), *outcome); err != nil {
		var unknown payment.UnknownCorrelationError
		if errors.As(err, &unknown) {
			h.Logger.Warn("callback for unknown correlation id",
				zap.String("correlationID", unknown.CorrelationID))
			c.JSON(http.StatusOK, gin.H{"ResultCode": 0, "ResultDesc": "Accepted"})
			return
		}
		h.Logger.Error("failed to reconcile payment callback", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "reconciliation failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ResultCode": 0, "ResultDesc": "Accepted"})
}

// SubscriptionCallback receives the gateway outcome for a fundi
// subscription payment.
func (h *PaymentHandler) SubscriptionCallback(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
		return
	}

	outcome, err := mpesa.ParseCallback(body)
	if err != nil {
		h.Logger.Warn("malformed subscription callback", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed callback"})
		return
	}

	if err := h.Svc.ReconcileSubscription(c.Request.Context(), *outcome); err != nil {
		var unknown payment.UnknownCorrelationError
		if errors.As(err, &unknown) {
			h.Logger.Warn("subscription callback for unknown correlation id",
				zap.String("correlationID", unknown.CorrelationID))
			c.JSON(http.StatusOK, gin.H{"ResultCode": 0, "ResultDesc": "Accepted"})
			return
		}
		h.Logger.Error("failed to reconcile subscription callback", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "reconciliation failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ResultCode": 0, "ResultDesc": "Accepted"})
}

// PaymentStatus reports the settlement state of a booking.
func (h *PaymentHandler) PaymentStatus(c *gin.Context) {
	res, err := h.Svc.PaymentStatus(c.Param("id"), c.GetString("actorID"), c.GetString("actorRole"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// PaymentHistory pages through the caller's settled bookings.
func (h *PaymentHandler) PaymentHistory(c *gin.Context) {
	page, _ := strconv.ParseInt(c.DefaultQuery("page", "1"), 10, 64)
	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "20"), 10, 64)

	items, total, err := h.Svc.PaymentHistory(c.GetString("actorID"), c.GetString("actorRole"), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payments": items, "total": total, "page": page})
}

// InitiateSubscription starts a subscription payment for the calling
// fundi.
func (h *PaymentHandler) InitiateSubscription(c *gin.Context) {
	var input struct {
		FundiID string `json:"fundi_id" binding:"required"`
		Phone   string `json:"phone" binding:"required"`
		Plan    string `json:"plan"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	res, err := h.Svc.InitiateSubscription(c.Request.Context(), input.FundiID, input.Phone, input.Plan)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":             "STK push sent, confirm on your phone",
		"checkout_request_id": res.CorrelationID,
	})
}
