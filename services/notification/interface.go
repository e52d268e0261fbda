package notification

import (
	"encoding/json"
	"fmt"

	"fundilink/models"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// TypeNotificationSend is the asynq task type for outbound messages.
const TypeNotificationSend = "notification:send"

// SendPayload is the queued task body.
type SendPayload struct {
	To   string `json:"to"`
	Body string `json:"body"`
}

// NotificationService enqueues fire-and-forget messages on booking and
// payment events. Delivery is best-effort: failures are logged by the
// worker and never block or roll back core state.
type NotificationService interface {
	NotifyBookingStatus(b *models.Booking, note string) error
	NotifyPaymentReceived(b *models.Booking) error
	NotifySubscriptionRenewed(f *models.Fundi) error
}

// DefaultNotificationService is the production implementation backed by
// an asynq queue drained by the worker in cron/.
type DefaultNotificationService struct {
	Client *asynq.Client
	Logger *zap.Logger
}

func NewDefaultNotificationService(client *asynq.Client, logger *zap.Logger) *DefaultNotificationService {
	return &DefaultNotificationService{Client: client, Logger: logger}
}

func (s *DefaultNotificationService) enqueue(to, body string) error {
	if to == "" {
		return nil
	}
	payload, err := json.Marshal(SendPayload{To: to, Body: body})
	if err != nil {
		return fmt.Errorf("failed to marshal notification payload: %w", err)
	}
	task := asynq.NewTask(TypeNotificationSend, payload)
	if _, err := s.Client.Enqueue(task); err != nil {
		return fmt.Errorf("failed to enqueue notification: %w", err)
	}
	return nil
}

// NotifyBookingStatus tells both parties about a status change.
func (s *DefaultNotificationService) NotifyBookingStatus(b *models.Booking, note string) error {
	msg := fmt.Sprintf("FundiLink: booking %s is now %s. %s", b.ID, b.Status, note)
	if err := s.enqueue(b.Communication.ClientPhone, msg); err != nil {
		return err
	}
	return s.enqueue(b.Communication.FundiPhone, msg)
}

// NotifyPaymentReceived confirms settlement to the client.
func (s *DefaultNotificationService) NotifyPaymentReceived(b *models.Booking) error {
	msg := fmt.Sprintf("FundiLink: payment for booking %s received, receipt %s.", b.ID, b.Payment.ReceiptNumber)
	return s.enqueue(b.Communication.ClientPhone, msg)
}

// NotifySubscriptionRenewed confirms the weekly renewal to the fundi.
func (s *DefaultNotificationService) NotifySubscriptionRenewed(f *models.Fundi) error {
	next := ""
	if f.Subscription.NextPayment != nil {
		next = f.Subscription.NextPayment.Format("2006-01-02")
	}
	msg := fmt.Sprintf("FundiLink: your %s subscription is active. Next payment due %s.", f.Subscription.Plan, next)
	return s.enqueue(f.Phone, msg)
}
