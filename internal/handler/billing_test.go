package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gltch/gltch-cloud/internal/billing"
	"github.com/gltch/gltch-cloud/internal/handler/dto"
	"github.com/gltch/gltch-cloud/internal/model"
	"github.com/gltch/gltch-cloud/internal/service"
)

type stubUsageReporter struct {
	stats *service.UsageStats
	err   error
}

func (s *stubUsageReporter) Usage(ctx context.Context, identity *model.AuthContext) (*service.UsageStats, error) {
	return s.stats, s.err
}

type stubWebhookProcessor struct {
	payload []byte
	header  string
	err     error
}

func (s *stubWebhookProcessor) ProcessWebhook(ctx context.Context, payload []byte, sigHeader string) error {
	s.payload = payload
	s.header = sigHeader
	return s.err
}

func TestBillingHandler_Usage(t *testing.T) {
	stub := &stubUsageReporter{stats: &service.UsageStats{
		Tier:            model.TierFree,
		MessagesToday:   7,
		TokensThisMonth: 4242,
		Limits:          billing.LimitsFor(model.TierFree),
	}}
	h := NewBillingHandler(stub, &stubWebhookProcessor{}, testLogger())

	req := authedRequest(http.MethodGet, "/api/v1/usage", "")
	rec := httptest.NewRecorder()
	h.Usage(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp dto.UsageResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.MessagesToday != 7 || resp.TokensThisMonth != 4242 {
		t.Errorf("unexpected counters: %+v", resp)
	}
	if resp.Limits.MessagesPerDay != billing.FreeMessagesPerDay {
		t.Errorf("unexpected limits: %+v", resp.Limits)
	}
}

func TestBillingHandler_WebhookAck(t *testing.T) {
	stub := &stubWebhookProcessor{}
	h := NewBillingHandler(&stubUsageReporter{}, stub, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/billing",
		strings.NewReader(`{"type":"customer.subscription.created"}`))
	req.Header.Set("Billing-Signature", "t=1,v1=abc")
	rec := httptest.NewRecorder()
	h.Webhook(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp dto.WebhookAckResponse
	_ = json.NewDecoder(rec.Body).Decode(&resp)
	if !resp.Received {
		t.Error("expected received ack")
	}
	if stub.header != "t=1,v1=abc" {
		t.Errorf("signature header not forwarded: %q", stub.header)
	}
}

func TestBillingHandler_WebhookMissingSignature(t *testing.T) {
	h := NewBillingHandler(&stubUsageReporter{}, &stubWebhookProcessor{}, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/billing", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	h.Webhook(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestBillingHandler_WebhookRejected(t *testing.T) {
	h := NewBillingHandler(&stubUsageReporter{}, &stubWebhookProcessor{err: service.ErrInvalidWebhook}, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/billing", strings.NewReader(`{}`))
	req.Header.Set("Billing-Signature", "t=1,v1=bad")
	rec := httptest.NewRecorder()
	h.Webhook(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if resp := decodeError(t, rec); resp.Code != "INVALID_WEBHOOK" {
		t.Errorf("unexpected code %q", resp.Code)
	}
}
