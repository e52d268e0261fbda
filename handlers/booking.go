package handlers

import (
	"net/http"
	"strconv"

	"fundilink/models"
	"fundilink/services/booking"
	"fundilink/services/fundi"

	"github.com/gin-gonic/gin"
)

// BookingHandler exposes the booking lifecycle over HTTP.
type BookingHandler struct {
	Svc      booking.BookingService
	FundiSvc fundi.FundiService
}

func NewBookingHandler(svc booking.BookingService, fundiSvc fundi.FundiService) *BookingHandler {
	return &BookingHandler{Svc: svc, FundiSvc: fundiSvc}
}

// CreateBooking creates a new pending booking for the calling client.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var req booking.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	req.ClientID = c.GetString("actorID")

	b, err := h.Svc.CreateBooking(req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

// GetBooking returns one booking to its parties (or an admin).
func (h *BookingHandler) GetBooking(c *gin.Context) {
	b, err := h.Svc.GetBooking(c.Param("id"), c.GetString("actorID"), c.GetString("actorRole"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// ListBookings pages through the caller's bookings, optionally filtered
// by status.
func (h *BookingHandler) ListBookings(c *gin.Context) {
	page, _ := strconv.ParseInt(c.DefaultQuery("page", "1"), 10, 64)
	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "20"), 10, 64)

	items, total, err := h.Svc.ListBookings(booking.ListQuery{
		ActorID:   c.GetString("actorID"),
		ActorRole: c.GetString("actorRole"),
		Status:    c.Query("status"),
		Page:      page,
		Limit:     limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"bookings": items,
		"total":    total,
		"page":     page,
		"limit":    limit,
	})
}

// Stats summarizes the caller's bookings by status.
func (h *BookingHandler) Stats(c *gin.Context) {
	summary, err := h.Svc.Stats(c.GetString("actorID"), c.GetString("actorRole"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// UpdateStatus drives the booking along one edge of the state machine.
func (h *BookingHandler) UpdateStatus(c *gin.Context) {
	var input struct {
		Status string `json:"status" binding:"required"`
		Note   string `json:"note"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	b, err := h.Svc.Transition(c.Param("id"), input.Status, input.Note, c.GetString("actorID"), c.GetString("actorRole"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// AddCharge appends an agreed extra line item and reprices the booking.
func (h *BookingHandler) AddCharge(c *gin.Context) {
	var charge models.AdditionalCharge
	if err := c.ShouldBindJSON(&charge); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	if charge.Amount <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "charge amount must be positive"})
		return
	}

	b, err := h.Svc.AddCharge(c.Param("id"), charge, c.GetString("actorID"), c.GetString("actorRole"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// Complete records the fundi's completion evidence and drives the
// booking to completed.
func (h *BookingHandler) Complete(c *gin.Context) {
	var details booking.CompletionDetails
	if err := c.ShouldBindJSON(&details); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	b, err := h.Svc.Complete(c.Param("id"), details, c.GetString("actorID"), c.GetString("actorRole"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// ConfirmCompletion records the client's confirmation of a completed job.
func (h *BookingHandler) ConfirmCompletion(c *gin.Context) {
	b, err := h.Svc.ConfirmCompletion(c.Param("id"), c.GetString("actorID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// AddReview lets the booking's client review the fundi after completion.
func (h *BookingHandler) AddReview(c *gin.Context) {
	var req fundi.AddReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	req.BookingID = c.Param("id")
	req.ClientID = c.GetString("actorID")

	f, err := h.FundiSvc.AddReview(req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"rating":  f.Rating,
		"reviews": len(f.Reviews),
	})
}
