package cron

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"fundilink/config"
	"fundilink/services/fundi"
	"fundilink/services/notification"

	"github.com/hibiken/asynq"
)

// subscriptionSweepInterval is how often lapsed subscriptions are
// deactivated.
const subscriptionSweepInterval = 1 * time.Hour

// InitNotificationWorker runs the async notification worker in background.
func InitNotificationWorker(sender *notification.WhatsAppSender) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisTaskqueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(notification.TypeNotificationSend, handleNotificationTask(sender))

	go func() {
		log.Println("[NotificationWorker] starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[NotificationWorker] attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[NotificationWorker] max retry attempts reached, exiting")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second)
			} else {
				break
			}
		}
	}()
}

func handleNotificationTask(sender *notification.WhatsAppSender) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p notification.SendPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Printf("[NotificationWorker] invalid payload: %v", err)
			return err
		}

		// Delivery is best-effort; a failed send is logged, not retried
		// forever, so the error is swallowed after the log line.
		if err := sender.Send(ctx, p.To, p.Body); err != nil {
			log.Printf("[NotificationWorker] failed to send to %s: %v", p.To, err)
		}
		return nil
	}
}

// InitSubscriptionSweep periodically deactivates fundis whose
// subscription payment is overdue.
func InitSubscriptionSweep(fundiSvc fundi.FundiService) {
	go func() {
		ticker := time.NewTicker(subscriptionSweepInterval)
		defer ticker.Stop()

		for range ticker.C {
			if _, err := fundiSvc.DeactivateLapsedSubscriptions(); err != nil {
				log.Printf("[SubscriptionSweep] sweep failed: %v", err)
			}
		}
	}()
}
