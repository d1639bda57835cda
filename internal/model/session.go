package model

import "time"

// Message role constants.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatSession represents a conversation owned by a single user.
// Sessions are created lazily on the first chat turn that does not
// reference an existing session.
type ChatSession struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Message is a single chat turn entry. Messages are immutable once
// appended and ordered by creation; the assistant message of a turn
// carries the token counts reported for that turn.
type Message struct {
	ID           string    `json:"id"`
	SessionID    string    `json:"session_id"`
	Role         string    `json:"role"`
	Content      string    `json:"content"`
	InputTokens  int       `json:"input_tokens"`
	OutputTokens int       `json:"output_tokens"`
	CreatedAt    time.Time `json:"created_at"`
}
