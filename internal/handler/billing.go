package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gltch/gltch-cloud/internal/handler/dto"
	"github.com/gltch/gltch-cloud/internal/model"
	"github.com/gltch/gltch-cloud/internal/service"
)

// UsageReporter reports usage stats. Implemented by service.UserService.
type UsageReporter interface {
	Usage(ctx context.Context, identity *model.AuthContext) (*service.UsageStats, error)
}

// WebhookProcessor applies billing webhook events. Implemented by
// service.BillingService.
type WebhookProcessor interface {
	ProcessWebhook(ctx context.Context, payload []byte, sigHeader string) error
}

// BillingHandler handles usage reporting and billing webhooks.
type BillingHandler struct {
	usage    UsageReporter
	webhooks WebhookProcessor
	logger   *slog.Logger
}

// NewBillingHandler creates a new BillingHandler.
func NewBillingHandler(usage UsageReporter, webhooks WebhookProcessor, logger *slog.Logger) *BillingHandler {
	return &BillingHandler{
		usage:    usage,
		webhooks: webhooks,
		logger:   logger,
	}
}

// Usage handles GET /api/v1/usage.
func (h *BillingHandler) Usage(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	stats, err := h.usage.Usage(r.Context(), identity)
	if err != nil {
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}

	writeJSON(w, http.StatusOK, dto.UsageResponse{
		Tier:            stats.Tier,
		MessagesToday:   stats.MessagesToday,
		TokensThisMonth: stats.TokensThisMonth,
		Limits:          stats.Limits,
	})
}

// Webhook handles POST /api/v1/webhooks/billing. The route is mounted
// without auth middleware; the signature header is the credential.
func (h *BillingHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "Failed to read request body")
		return
	}

	sigHeader := r.Header.Get("Billing-Signature")
	if sigHeader == "" {
		writeError(w, http.StatusBadRequest, "MISSING_SIGNATURE", "Signature header is required")
		return
	}

	if err := h.webhooks.ProcessWebhook(r.Context(), payload, sigHeader); err != nil {
		if errors.Is(err, service.ErrInvalidWebhook) {
			h.logger.Warn("webhook_rejected", "error", err)
			writeError(w, http.StatusBadRequest, "INVALID_WEBHOOK", "Webhook verification failed")
			return
		}
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}

	writeJSON(w, http.StatusOK, dto.WebhookAckResponse{Received: true})
}
