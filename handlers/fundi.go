package handlers

import (
	"net/http"

	"fundilink/models"
	"fundilink/services/fundi"

	"github.com/gin-gonic/gin"
)

// FundiHandler exposes the provider account over HTTP.
type FundiHandler struct {
	Svc fundi.FundiService
}

func NewFundiHandler(svc fundi.FundiService) *FundiHandler {
	return &FundiHandler{Svc: svc}
}

// Register creates a provider account for the calling user.
func (h *FundiHandler) Register(c *gin.Context) {
	var input struct {
		Phone string `json:"phone" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	f, err := h.Svc.RegisterFundi(&models.Fundi{
		UserID: c.GetString("actorID"),
		Phone:  input.Phone,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, f)
}

// GetFundi returns a provider's public profile.
func (h *FundiHandler) GetFundi(c *gin.Context) {
	f, err := h.Svc.GetFundi(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, f)
}

// GetOwnProfile returns the account owned by the calling user.
func (h *FundiHandler) GetOwnProfile(c *gin.Context) {
	f, err := h.Svc.GetFundiByUser(c.GetString("actorID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, f)
}

// Withdraw moves pending earnings into the withdrawn bucket.
func (h *FundiHandler) Withdraw(c *gin.Context) {
	var input struct {
		Amount int64 `json:"amount" binding:"required,gt=0"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	f, err := h.Svc.GetFundiByUser(c.GetString("actorID"))
	if err != nil {
		respondError(c, err)
		return
	}

	updated, err := h.Svc.WithdrawEarnings(f.ID, input.Amount)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"earnings": updated.Earnings})
}
