// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"time"

	"github.com/gltch/gltch-cloud/internal/billing"
	"github.com/gltch/gltch-cloud/internal/model"
)

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// ChatRequest is the request body for a chat turn.
type ChatRequest struct {
	Content   string `json:"content"`
	SessionID string `json:"session_id,omitempty"`
}

// ChatResponse is the completed turn.
type ChatResponse struct {
	Content      string  `json:"content"`
	SessionID    string  `json:"session_id"`
	InputTokens  int     `json:"input_tokens"`
	OutputTokens int     `json:"output_tokens"`
	CostUSD      float64 `json:"cost_usd"`
}

// RegisterRequest is the request body for explicit registration.
type RegisterRequest struct {
	Callsign string `json:"callsign,omitempty"`
	Provider string `json:"provider,omitempty"`
	KeyMode  string `json:"key_mode,omitempty"`
}

// SettingsRequest is the request body for a partial settings update.
// Vendor keys are plaintext on the wire and sealed at rest.
type SettingsRequest struct {
	Provider        *string `json:"provider,omitempty"`
	KeyMode         *string `json:"key_mode,omitempty"`
	OpenAIKey       *string `json:"openai_key,omitempty"`
	AnthropicKey    *string `json:"anthropic_key,omitempty"`
	GoogleKey       *string `json:"google_key,omitempty"`
	XAIKey          *string `json:"xai_key,omitempty"`
	PersonalityMode *string `json:"personality_mode,omitempty"`
}

// PersonalityModeRequest selects the active personality mode.
type PersonalityModeRequest struct {
	Mode string `json:"mode"`
}

// UserResponse is a user profile in API responses. Sealed vendor keys are
// never serialized; HasKey flags report which providers have one stored.
type UserResponse struct {
	ID              string          `json:"id"`
	Email           string          `json:"email"`
	Callsign        string          `json:"callsign"`
	Tier            string          `json:"tier"`
	Provider        string          `json:"provider"`
	KeyMode         string          `json:"key_mode"`
	PersonalityMode string          `json:"personality_mode"`
	HasKey          map[string]bool `json:"has_key"`
	MessagesToday   int             `json:"messages_today"`
	TokensThisMonth int64           `json:"tokens_this_month"`
	CreatedAt       time.Time       `json:"created_at"`
}

// ToUserResponse converts a model user to its API shape.
func ToUserResponse(u *model.User) UserResponse {
	hasKey := make(map[string]bool, len(model.ValidProviders))
	for _, p := range model.ValidProviders {
		hasKey[p] = u.SealedKeyFor(p) != ""
	}
	return UserResponse{
		ID:              u.ID,
		Email:           u.Email,
		Callsign:        u.Callsign,
		Tier:            u.Tier,
		Provider:        u.Provider,
		KeyMode:         u.KeyMode,
		PersonalityMode: u.PersonalityMode,
		HasKey:          hasKey,
		MessagesToday:   u.MessagesToday,
		TokensThisMonth: u.TokensThisMonth,
		CreatedAt:       u.CreatedAt,
	}
}

// RegisterResponse wraps registration output.
type RegisterResponse struct {
	Message string       `json:"message"`
	User    UserResponse `json:"user"`
}

// SettingsResponse wraps a settings update.
type SettingsResponse struct {
	Message string       `json:"message"`
	User    UserResponse `json:"user"`
}

// SessionResponse is a chat session in API responses.
type SessionResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SessionListResponse wraps the caller's sessions.
type SessionListResponse struct {
	Sessions []SessionResponse `json:"sessions"`
}

// ToSessionListResponse converts sessions to their API shape.
func ToSessionListResponse(sessions []*model.ChatSession) SessionListResponse {
	out := SessionListResponse{Sessions: make([]SessionResponse, 0, len(sessions))}
	for _, s := range sessions {
		out.Sessions = append(out.Sessions, SessionResponse{
			ID:        s.ID,
			Title:     s.Title,
			CreatedAt: s.CreatedAt,
			UpdatedAt: s.UpdatedAt,
		})
	}
	return out
}

// MessageResponse is one stored message.
type MessageResponse struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// MessageListResponse wraps a session's history.
type MessageListResponse struct {
	Messages []MessageResponse `json:"messages"`
}

// ToMessageListResponse converts messages to their API shape.
func ToMessageListResponse(messages []*model.Message) MessageListResponse {
	out := MessageListResponse{Messages: make([]MessageResponse, 0, len(messages))}
	for _, m := range messages {
		out.Messages = append(out.Messages, MessageResponse{
			ID:        m.ID,
			Role:      m.Role,
			Content:   m.Content,
			CreatedAt: m.CreatedAt,
		})
	}
	return out
}

// UsageResponse reports the caller's counters and limits.
type UsageResponse struct {
	Tier            string             `json:"tier"`
	MessagesToday   int                `json:"messages_today"`
	TokensThisMonth int64              `json:"tokens_this_month"`
	Limits          billing.TierLimits `json:"limits"`
}

// PersonalityModeInfo describes one selectable mode.
type PersonalityModeInfo struct {
	Mode        string `json:"mode"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// PersonalityModesResponse lists the selectable modes.
type PersonalityModesResponse struct {
	Modes []PersonalityModeInfo `json:"modes"`
}

// WebhookAckResponse acknowledges a processed webhook.
type WebhookAckResponse struct {
	Received bool `json:"received"`
}
