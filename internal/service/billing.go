package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gltch/gltch-cloud/internal/billing"
	"github.com/gltch/gltch-cloud/internal/model"
)

// BillingService reacts to billing webhook events by flipping user tiers.
type BillingService struct {
	store  Store
	secret string
	logger *slog.Logger

	// now is injectable for tests.
	now func() time.Time
}

// NewBillingService creates a BillingService.
func NewBillingService(store Store, secret string, logger *slog.Logger) *BillingService {
	return &BillingService{
		store:  store,
		secret: secret,
		logger: logger,
		now:    time.Now,
	}
}

// ProcessWebhook verifies a webhook request and applies any tier change.
// Unrecognized event types are acknowledged without effect, as are events
// for customers we have no record of; the sender retries on anything else.
func (s *BillingService) ProcessWebhook(ctx context.Context, payload []byte, sigHeader string) error {
	evt, err := billing.VerifyAndParse(payload, sigHeader, s.secret, s.now())
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidWebhook, err)
	}

	switch evt.Type {
	case billing.EventSubscriptionCreated:
		return s.setTier(ctx, evt.Data.Object.Customer, model.TierPro, &evt.Data.Object.ID)
	case billing.EventSubscriptionDeleted:
		return s.setTier(ctx, evt.Data.Object.Customer, model.TierFree, nil)
	default:
		s.logger.Debug("ignoring webhook event", slog.String("type", evt.Type))
		return nil
	}
}

func (s *BillingService) setTier(ctx context.Context, customerID, tier string, subscriptionID *string) error {
	if customerID == "" {
		s.logger.Warn("webhook event missing customer", slog.String("tier", tier))
		return nil
	}

	updated, err := s.store.SetTierByCustomer(ctx, customerID, tier, subscriptionID)
	if err != nil {
		return fmt.Errorf("set tier by customer: %w", err)
	}
	if !updated {
		s.logger.Warn("webhook for unknown customer", slog.String("customer_id", customerID))
		return nil
	}

	s.logger.Info("tier updated from webhook",
		slog.String("customer_id", customerID),
		slog.String("tier", tier),
	)
	return nil
}
