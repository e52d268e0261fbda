package routes

import (
	"net/http"
	"time"

	"fundilink/handlers"
	"fundilink/middleware"
	"fundilink/models"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterBookingRoutes sets up the booking lifecycle endpoints.
func RegisterBookingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/bookings")
	{
		api.Use(middleware.JWTAuthMiddleware())
		api.POST("", middleware.RequireRole(models.RoleClient), hb.Booking.CreateBooking)
		api.GET("", hb.Booking.ListBookings)
		api.GET("/stats", hb.Booking.Stats)
		api.GET("/:id", hb.Booking.GetBooking)
		api.PUT("/:id/status", hb.Booking.UpdateStatus)
		api.POST("/:id/charges", hb.Booking.AddCharge)
		api.POST("/:id/complete", middleware.RequireRole(models.RoleFundi), hb.Booking.Complete)
		api.POST("/:id/confirm", middleware.RequireRole(models.RoleClient), hb.Booking.ConfirmCompletion)
		api.POST("/:id/review", middleware.RequireRole(models.RoleClient), hb.Booking.AddReview)
		api.POST("/:id/photos", middleware.RequireRole(models.RoleFundi), hb.Storage.UploadCompletionPhoto)
	}
}

// RegisterPaymentRoutes sets up payment initiation, status, and the
// public gateway callbacks. Callbacks carry no bearer token; the
// correlation id lookup is their authentication.
func RegisterPaymentRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/payments")
	{
		api.POST("/callback", hb.Payment.Callback)
		api.POST("/subscription-callback", hb.Payment.SubscriptionCallback)

		protected := api.Group("")
		protected.Use(middleware.JWTAuthMiddleware())
		protected.POST("/bookings/:id/stk-push", middleware.RequireRole(models.RoleClient), hb.Payment.InitiateSTKPush)
		protected.POST("/bookings/:id/card", middleware.RequireRole(models.RoleClient), hb.Payment.InitiateCardPayment)
		protected.GET("/bookings/:id/status", hb.Payment.PaymentStatus)
		protected.GET("/history", hb.Payment.PaymentHistory)
		protected.POST("/subscription", middleware.RequireRole(models.RoleFundi), hb.Payment.InitiateSubscription)
	}
}

// RegisterFundiRoutes sets up provider account endpoints.
func RegisterFundiRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/fundis")
	{
		api.Use(middleware.JWTAuthMiddleware())
		api.POST("/register", hb.Fundi.Register)
		api.GET("/me", middleware.RequireRole(models.RoleFundi), hb.Fundi.GetOwnProfile)
		api.POST("/withdraw", middleware.RequireRole(models.RoleFundi), hb.Fundi.Withdraw)
		api.GET("/:id", hb.Fundi.GetFundi)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Hi, I'm FundiLink"})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.RateLimitMiddleware())

	RegisterHealthRoute(r)
	RegisterBookingRoutes(r, hb)
	RegisterPaymentRoutes(r, hb)
	RegisterFundiRoutes(r, hb)
}
