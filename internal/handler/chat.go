package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gltch/gltch-cloud/internal/handler/dto"
	"github.com/gltch/gltch-cloud/internal/provider"
	"github.com/gltch/gltch-cloud/internal/service"
)

// ChatRunner runs one chat turn. Implemented by service.ChatService.
type ChatRunner interface {
	Chat(ctx context.Context, input service.ChatInput) (*service.ChatResult, error)
}

// ChatHandler handles HTTP requests for chat turns.
type ChatHandler struct {
	svc    ChatRunner
	logger *slog.Logger
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(svc ChatRunner, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{
		svc:    svc,
		logger: logger,
	}
}

// Chat handles POST /api/v1/chat.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var req dto.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	result, err := h.svc.Chat(r.Context(), service.ChatInput{
		UserID:    identity.UserID,
		Email:     identity.Email,
		Content:   req.Content,
		SessionID: req.SessionID,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("chat_turn",
		"user_id", identity.UserID,
		"session_id", result.SessionID,
		"input_tokens", result.InputTokens,
		"output_tokens", result.OutputTokens,
	)

	writeJSON(w, http.StatusOK, dto.ChatResponse{
		Content:      result.Content,
		SessionID:    result.SessionID,
		InputTokens:  result.InputTokens,
		OutputTokens: result.OutputTokens,
		CostUSD:      result.CostUSD,
	})
}

// handleServiceError maps chat service errors to HTTP responses. Vendor
// failures pass through with the vendor's status and body intact.
func (h *ChatHandler) handleServiceError(w http.ResponseWriter, err error) {
	var quotaErr *service.QuotaExceededError
	var statusErr *provider.StatusError

	switch {
	case errors.Is(err, service.ErrContentRequired):
		writeError(w, http.StatusBadRequest, "CONTENT_REQUIRED", "Message content is required")
	case errors.Is(err, service.ErrContentTooLong):
		writeError(w, http.StatusBadRequest, "CONTENT_TOO_LONG", "Message content exceeds maximum length")
	case errors.As(err, &quotaErr):
		msg := fmt.Sprintf("Daily message limit reached (%d). Upgrade to Pro for unlimited.", quotaErr.Cap)
		writeError(w, http.StatusTooManyRequests, "QUOTA_EXCEEDED", msg)
	case errors.Is(err, service.ErrAccessDenied):
		writeError(w, http.StatusForbidden, "FORBIDDEN", "Session belongs to another user")
	case errors.As(err, &statusErr):
		msg := fmt.Sprintf("Provider returned status %d: %s", statusErr.Status, statusErr.Body)
		writeError(w, http.StatusBadGateway, "PROVIDER_ERROR", msg)
	default:
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}
