package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/gltch/gltch-cloud/internal/billing"
	"github.com/gltch/gltch-cloud/internal/model"
)

const webhookSecret = "whsec_test"

func newBillingFixture() (*fakeStore, *BillingService) {
	store := newFakeStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewBillingService(store, webhookSecret, logger)
	svc.now = func() time.Time { return time.Unix(1700000000, 0) }
	return store, svc
}

func seedCustomer(store *fakeStore, userID, customerID string) {
	user, _ := store.GetOrCreateUser(context.Background(), defaultUser(userID, ""))
	store.users[user.ID].StripeCustomerID = &customerID
}

func signedPayload(t *testing.T, payload string) ([]byte, string) {
	t.Helper()
	body := []byte(payload)
	return body, billing.SignatureHeader(webhookSecret, 1700000000, body)
}

func TestProcessWebhook_SubscriptionCreatedUpgrades(t *testing.T) {
	store, svc := newBillingFixture()
	seedCustomer(store, "u1", "cus_123")

	body, header := signedPayload(t, `{"type":"customer.subscription.created","data":{"object":{"id":"sub_9","customer":"cus_123"}}}`)

	if err := svc.ProcessWebhook(context.Background(), body, header); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	user := store.user("u1")
	if user.Tier != model.TierPro {
		t.Errorf("expected pro tier, got %q", user.Tier)
	}
	if user.StripeSubscriptionID == nil || *user.StripeSubscriptionID != "sub_9" {
		t.Errorf("subscription ID not stored: %v", user.StripeSubscriptionID)
	}
}

func TestProcessWebhook_SubscriptionDeletedDowngrades(t *testing.T) {
	store, svc := newBillingFixture()
	seedCustomer(store, "u1", "cus_123")
	store.users["u1"].Tier = model.TierPro
	sub := "sub_9"
	store.users["u1"].StripeSubscriptionID = &sub

	body, header := signedPayload(t, `{"type":"customer.subscription.deleted","data":{"object":{"id":"sub_9","customer":"cus_123"}}}`)

	if err := svc.ProcessWebhook(context.Background(), body, header); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	user := store.user("u1")
	if user.Tier != model.TierFree {
		t.Errorf("expected free tier after cancellation, got %q", user.Tier)
	}
	if user.StripeSubscriptionID != nil {
		t.Errorf("expected subscription cleared, got %v", *user.StripeSubscriptionID)
	}
}

func TestProcessWebhook_BadSignatureRejected(t *testing.T) {
	store, svc := newBillingFixture()
	seedCustomer(store, "u1", "cus_123")

	body := []byte(`{"type":"customer.subscription.created","data":{"object":{"id":"sub_9","customer":"cus_123"}}}`)
	header := billing.SignatureHeader("whsec_wrong", 1700000000, body)

	err := svc.ProcessWebhook(context.Background(), body, header)
	if !errors.Is(err, ErrInvalidWebhook) {
		t.Fatalf("expected ErrInvalidWebhook, got %v", err)
	}
	if store.user("u1").Tier != model.TierFree {
		t.Error("tier must not change on a rejected webhook")
	}
}

func TestProcessWebhook_UnknownEventAcknowledged(t *testing.T) {
	_, svc := newBillingFixture()

	body, header := signedPayload(t, `{"type":"invoice.paid","data":{"object":{"id":"in_1","customer":"cus_123"}}}`)

	if err := svc.ProcessWebhook(context.Background(), body, header); err != nil {
		t.Errorf("unknown events must be acknowledged, got %v", err)
	}
}

func TestProcessWebhook_UnknownCustomerAcknowledged(t *testing.T) {
	_, svc := newBillingFixture()

	body, header := signedPayload(t, `{"type":"customer.subscription.created","data":{"object":{"id":"sub_9","customer":"cus_nobody"}}}`)

	if err := svc.ProcessWebhook(context.Background(), body, header); err != nil {
		t.Errorf("unknown customers must be acknowledged, got %v", err)
	}
}
