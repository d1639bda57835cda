package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gltch/gltch-cloud/internal/handler/dto"
	"github.com/gltch/gltch-cloud/internal/model"
	"github.com/gltch/gltch-cloud/internal/service"
)

// SessionReader serves conversation history. Implemented by
// service.SessionService.
type SessionReader interface {
	ListSessions(ctx context.Context, userID string) ([]*model.ChatSession, error)
	GetMessages(ctx context.Context, sessionID, requesterID string) ([]*model.Message, error)
}

// SessionHandler handles HTTP requests for session history.
type SessionHandler struct {
	svc    SessionReader
	logger *slog.Logger
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(svc SessionReader, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{
		svc:    svc,
		logger: logger,
	}
}

// List handles GET /api/v1/sessions.
func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	sessions, err := h.svc.ListSessions(r.Context(), identity.UserID)
	if err != nil {
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}

	writeJSON(w, http.StatusOK, dto.ToSessionListResponse(sessions))
}

// Messages handles GET /api/v1/sessions/{id}/messages.
func (h *SessionHandler) Messages(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	sessionID := chi.URLParam(r, "id")
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "MISSING_ID", "Session ID is required")
		return
	}

	messages, err := h.svc.GetMessages(r.Context(), sessionID, identity.UserID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSessionNotFound):
			writeError(w, http.StatusNotFound, "SESSION_NOT_FOUND", "Session not found")
		case errors.Is(err, service.ErrAccessDenied):
			writeError(w, http.StatusForbidden, "FORBIDDEN", "Session belongs to another user")
		default:
			h.logger.Error("internal_error", "error", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		}
		return
	}

	writeJSON(w, http.StatusOK, dto.ToMessageListResponse(messages))
}
