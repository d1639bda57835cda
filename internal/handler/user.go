package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gltch/gltch-cloud/internal/handler/dto"
	"github.com/gltch/gltch-cloud/internal/model"
	"github.com/gltch/gltch-cloud/internal/personality"
	"github.com/gltch/gltch-cloud/internal/service"
)

// UserManager manages accounts and settings. Implemented by
// service.UserService.
type UserManager interface {
	Register(ctx context.Context, input service.RegisterInput) (*model.User, bool, error)
	Provision(ctx context.Context, identity *model.AuthContext) (*model.User, error)
	UpdateSettings(ctx context.Context, userID string, input service.SettingsInput) (*model.User, error)
	SetPersonalityMode(ctx context.Context, userID, mode string) error
}

// UserHandler handles HTTP requests for accounts and settings.
type UserHandler struct {
	svc    UserManager
	logger *slog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(svc UserManager, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		svc:    svc,
		logger: logger,
	}
}

// Register handles POST /api/v1/auth/register.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var req dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	user, created, err := h.svc.Register(r.Context(), service.RegisterInput{
		UserID:   identity.UserID,
		Email:    identity.Email,
		Callsign: req.Callsign,
		Provider: req.Provider,
		KeyMode:  req.KeyMode,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	message := "User registered"
	status := http.StatusCreated
	if !created {
		message = "User already exists"
		status = http.StatusOK
	}

	h.logger.Info("user_registered", "user_id", user.ID, "created", created)

	writeJSON(w, status, dto.RegisterResponse{
		Message: message,
		User:    dto.ToUserResponse(user),
	})
}

// Me handles GET /api/v1/auth/me. Unseen users are provisioned with
// defaults on first call.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	user, err := h.svc.Provision(r.Context(), identity)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToUserResponse(user))
}

// UpdateSettings handles PATCH /api/v1/auth/settings.
func (h *UserHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var req dto.SettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	user, err := h.svc.UpdateSettings(r.Context(), identity.UserID, service.SettingsInput{
		Provider:        req.Provider,
		KeyMode:         req.KeyMode,
		OpenAIKey:       req.OpenAIKey,
		AnthropicKey:    req.AnthropicKey,
		GoogleKey:       req.GoogleKey,
		XAIKey:          req.XAIKey,
		PersonalityMode: req.PersonalityMode,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("settings_updated", "user_id", user.ID)

	writeJSON(w, http.StatusOK, dto.SettingsResponse{
		Message: "Settings updated",
		User:    dto.ToUserResponse(user),
	})
}

// SetPersonalityMode handles PATCH /api/v1/personality-mode.
func (h *UserHandler) SetPersonalityMode(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var req dto.PersonalityModeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if err := h.svc.SetPersonalityMode(r.Context(), identity.UserID, req.Mode); err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Personality mode updated",
		"mode":    req.Mode,
	})
}

// ListPersonalityModes handles GET /api/v1/personality-modes.
func (h *UserHandler) ListPersonalityModes(w http.ResponseWriter, r *http.Request) {
	infos := personality.Modes()
	response := dto.PersonalityModesResponse{
		Modes: make([]dto.PersonalityModeInfo, 0, len(infos)),
	}
	for _, info := range infos {
		response.Modes = append(response.Modes, dto.PersonalityModeInfo{
			Mode:        string(info.Mode),
			Name:        info.Name,
			Description: info.Description,
		})
	}
	writeJSON(w, http.StatusOK, response)
}

// handleServiceError maps user service errors to HTTP responses.
func (h *UserHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidProvider):
		writeError(w, http.StatusBadRequest, "INVALID_PROVIDER", "Unknown provider")
	case errors.Is(err, service.ErrInvalidKeyMode):
		writeError(w, http.StatusBadRequest, "INVALID_KEY_MODE", "Unknown key mode")
	case errors.Is(err, service.ErrInvalidMode):
		writeError(w, http.StatusBadRequest, "INVALID_MODE", "Unknown personality mode")
	case errors.Is(err, service.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
	default:
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}
