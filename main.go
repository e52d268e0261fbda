package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fundilink/config"
	"fundilink/cron"
	"fundilink/database"
	bookingRepo "fundilink/database/repository/booking"
	fundiRepo "fundilink/database/repository/fundi"
	"fundilink/handlers"
	"fundilink/routes"
	"fundilink/services/booking"
	"fundilink/services/fundi"
	"fundilink/services/notification"
	"fundilink/services/payment"
	"fundilink/services/payment/mpesa"
	"fundilink/services/storage"
	"fundilink/utils"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/stripe/stripe-go/v76"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitRedis()
	stripe.Key = config.AppConfig.StripeKey

	storageService, err := storage.NewCloudinaryStorage()
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize storage service: %v", err)
	}

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())

	// repositories.
	bkRepo := bookingRepo.NewMongoBookingRepo()
	fdRepo := fundiRepo.NewMongoFundiRepo()
	if err := bkRepo.EnsureIndexes(); err != nil {
		logger.Sugar().Fatalf("main: failed to ensure booking indexes: %v", err)
	}
	if err := fdRepo.EnsureIndexes(); err != nil {
		logger.Sugar().Fatalf("main: failed to ensure fundi indexes: %v", err)
	}

	// Task queue client for the notification worker.
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisTaskqueueDB,
	})
	defer asynqClient.Close()

	// services.
	notificationService := notification.NewDefaultNotificationService(asynqClient, logger)

	bookingService := &booking.DefaultBookingService{
		Repo:           bkRepo,
		FundiRepo:      fdRepo,
		Notifier:       notificationService,
		Logger:         logger,
		CommissionRate: config.CommissionRate(),
	}

	fundiService := &fundi.DefaultFundiService{
		Repo:        fdRepo,
		BookingRepo: bkRepo,
		Logger:      logger,
	}

	paymentService := &payment.DefaultPaymentService{
		Repo:      bkRepo,
		FundiRepo: fdRepo,
		Bookings:  bookingService,
		Gateway:   mpesa.NewClient(),
		Notifier:  notificationService,
		Cache:     utils.GetCacheClient(),
		Logger:    logger,
	}

	// Assemble the handler bundle.
	handlerBundle := &handlers.HandlerBundle{
		Booking: handlers.NewBookingHandler(bookingService, fundiService),
		Payment: handlers.NewPaymentHandler(paymentService, logger),
		Fundi:   handlers.NewFundiHandler(fundiService),
		Storage: handlers.NewStorageHandler(storageService),
	}
	routes.RegisterRoutes(router, handlerBundle)

	// Background workers.
	cron.InitNotificationWorker(notification.NewWhatsAppSender(logger))
	cron.InitSubscriptionSweep(fundiService)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
