package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fundilink/config"
	fundiRepo "fundilink/database/repository/fundi"
	"fundilink/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// subscriptionPeriod is how long one settled payment keeps a fundi
// subscription active.
const subscriptionPeriod = 7 * 24 * time.Hour

func planAmount(plan string) (int64, error) {
	switch plan {
	case "basic", "":
		return config.AppConfig.SubscriptionBasicAmount, nil
	case "premium":
		return config.AppConfig.SubscriptionPremiumAmount, nil
	}
	return 0, fmt.Errorf("unknown subscription plan %q", plan)
}

// InitiateSubscription pushes the fixed weekly plan amount to the
// fundi's phone. The protocol is the booking one with a different
// resource key: the correlation id is stored on the fundi record.
func (s *DefaultPaymentService) InitiateSubscription(ctx context.Context, fundiID, payerPhone, plan string) (*InitiateResult, error) {
	if plan == "" {
		plan = "basic"
	}
	amount, err := planAmount(plan)
	if err != nil {
		return nil, err
	}

	f, err := s.FundiRepo.GetByID(fundiID)
	if err != nil {
		return nil, err
	}

	accountRef := "Sub-" + f.ID
	description := fmt.Sprintf("FundiLink %s subscription", plan)
	correlationID, merchantRequestID, err := s.Gateway.STKPush(ctx, amount, payerPhone, accountRef, "/api/payments/subscription-callback", description)
	if err != nil {
		return nil, s.wrapGatewayError("subscription stk push", err)
	}

	update := bson.M{"$set": bson.M{
		"subscription.transaction_id": correlationID,
		"subscription.plan":           plan,
		"updated_at":                  time.Now(),
	}}
	if err := s.FundiRepo.UpdateWithDocument(f.ID, update); err != nil {
		return nil, err
	}

	s.Logger.Info("subscription stk push initiated",
		zap.String("fundiID", f.ID),
		zap.String("plan", plan),
		zap.String("correlationID", correlationID))
	return &InitiateResult{CorrelationID: correlationID, MerchantRequestID: merchantRequestID}, nil
}

// ReconcileSubscription resolves a subscription callback. On success the
// subscription activates for one period and the correlation id is
// cleared, so a redelivered callback no longer resolves and is absorbed
// as UnknownCorrelation by the handler.
func (s *DefaultPaymentService) ReconcileSubscription(ctx context.Context, outcome models.PaymentOutcome) error {
	f, err := s.FundiRepo.GetBySubscriptionRef(outcome.CorrelationID)
	if err != nil {
		if errors.Is(err, fundiRepo.ErrNotFound) {
			return UnknownCorrelationError{CorrelationID: outcome.CorrelationID}
		}
		return err
	}

	if !outcome.Success {
		update := bson.M{"$unset": bson.M{"subscription.transaction_id": ""}}
		if err := s.FundiRepo.UpdateWithDocument(f.ID, update); err != nil {
			return err
		}
		s.Logger.Info("subscription payment failed",
			zap.String("fundiID", f.ID),
			zap.Int("resultCode", outcome.ResultCode))
		return nil
	}

	now := time.Now()
	next := now.Add(subscriptionPeriod)
	amount := outcome.Amount
	if amount == 0 {
		amount, _ = planAmount(f.Subscription.Plan)
	}
	update := bson.M{
		"$set": bson.M{
			"subscription.is_active":    true,
			"subscription.amount":       amount,
			"subscription.last_payment": now,
			"subscription.next_payment": next,
			"updated_at":                now,
		},
		"$unset": bson.M{"subscription.transaction_id": ""},
	}
	if err := s.FundiRepo.UpdateWithDocument(f.ID, update); err != nil {
		return err
	}

	if s.Notifier != nil {
		f.Subscription.IsActive = true
		f.Subscription.NextPayment = &next
		if err := s.Notifier.NotifySubscriptionRenewed(f); err != nil {
			s.Logger.Warn("failed to queue subscription notification", zap.Error(err))
		}
	}

	s.Logger.Info("subscription renewed",
		zap.String("fundiID", f.ID),
		zap.String("plan", f.Subscription.Plan),
		zap.Time("nextPayment", next))
	return nil
}
