// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/gltch/gltch-cloud/internal/model"
	"github.com/gltch/gltch-cloud/internal/personality"
	"github.com/gltch/gltch-cloud/internal/repository"
)

// Service errors.
var (
	ErrContentRequired = errors.New("content is required")
	ErrContentTooLong  = errors.New("content exceeds maximum length")
	ErrUserNotFound    = errors.New("user not found")
	ErrSessionNotFound = errors.New("session not found")
	ErrAccessDenied    = errors.New("access denied")
	ErrInvalidProvider = errors.New("invalid provider")
	ErrInvalidKeyMode  = errors.New("invalid key mode")
	ErrInvalidMode     = errors.New("invalid personality mode")
	ErrInvalidWebhook  = errors.New("invalid webhook")
)

// QuotaExceededError rejects a chat turn before any vendor call is made.
// Policy, not a fault.
type QuotaExceededError struct {
	Cap int
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("daily message limit reached (%d)", e.Cap)
}

// Store is the repository contract the services depend on. Implemented
// by repository.Repository; tests substitute an in-memory fake.
type Store interface {
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetOrCreateUser(ctx context.Context, user *model.User) (*model.User, error)
	UpdateUserSettings(ctx context.Context, id string, update repository.UserSettingsUpdate) error
	BeginDailyWindow(ctx context.Context, id string, today time.Time) (int, error)
	IncrementUsage(ctx context.Context, id string, tokens int) error
	SetTierByCustomer(ctx context.Context, customerID, tier string, subscriptionID *string) (bool, error)

	CreateSession(ctx context.Context, session *model.ChatSession) error
	GetSession(ctx context.Context, id string) (*model.ChatSession, error)
	ListSessionsByUser(ctx context.Context, userID string) ([]*model.ChatSession, error)

	CreateMessage(ctx context.Context, msg *model.Message) error
	ListMessages(ctx context.Context, sessionID string) ([]*model.Message, error)
	ListRecentMessages(ctx context.Context, sessionID string, limit int) ([]*model.Message, error)

	InsertUsageLog(ctx context.Context, log *model.UsageLog) error
}

// newULID returns a lexicographically sortable unique ID. The default
// entropy source is monotonic within the process, so IDs minted in the
// same millisecond still sort in mint order.
func newULID() string {
	return ulid.Make().String()
}

// defaultUser builds the record auto-provisioned on first authenticated
// contact.
func defaultUser(id, email string) *model.User {
	if email == "" {
		email = "user@gltch.app"
	}
	return &model.User{
		ID:              id,
		Email:           email,
		Callsign:        "Operator",
		Tier:            model.TierFree,
		Provider:        model.ProviderOpenAI,
		KeyMode:         model.KeyModeManaged,
		PersonalityMode: string(personality.DefaultMode),
	}
}

// utcToday returns the current UTC date at midnight.
func utcToday(now time.Time) time.Time {
	y, m, d := now.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
