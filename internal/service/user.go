package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/gltch/gltch-cloud/internal/auth"
	"github.com/gltch/gltch-cloud/internal/billing"
	"github.com/gltch/gltch-cloud/internal/model"
	"github.com/gltch/gltch-cloud/internal/personality"
	"github.com/gltch/gltch-cloud/internal/repository"
)

// UserService manages accounts, settings and usage stats.
type UserService struct {
	store  Store
	sealer *auth.Sealer
}

// NewUserService creates a UserService.
func NewUserService(store Store, sealer *auth.Sealer) *UserService {
	return &UserService{store: store, sealer: sealer}
}

// RegisterInput describes an explicit registration after identity signup.
type RegisterInput struct {
	UserID   string
	Email    string
	Callsign string
	Provider string
	KeyMode  string
}

// Register creates the account record for a verified identity. Returns
// the user and whether it was newly created; registering an existing
// account is not an error.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (*model.User, bool, error) {
	if input.Provider != "" && !model.IsValidProvider(input.Provider) {
		return nil, false, ErrInvalidProvider
	}
	if input.KeyMode != "" && !model.IsValidKeyMode(input.KeyMode) {
		return nil, false, ErrInvalidKeyMode
	}

	existing, err := s.store.GetUserByID(ctx, input.UserID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, false, fmt.Errorf("load user: %w", err)
	}

	user := defaultUser(input.UserID, input.Email)
	if input.Callsign != "" {
		user.Callsign = input.Callsign
	}
	if input.Provider != "" {
		user.Provider = input.Provider
	}
	if input.KeyMode != "" {
		user.KeyMode = input.KeyMode
	}

	created, err := s.store.GetOrCreateUser(ctx, user)
	if err != nil {
		return nil, false, fmt.Errorf("create user: %w", err)
	}
	return created, true, nil
}

// Provision returns the account for an identity, creating it with
// defaults on first contact.
func (s *UserService) Provision(ctx context.Context, identity *model.AuthContext) (*model.User, error) {
	user, err := s.store.GetOrCreateUser(ctx, defaultUser(identity.UserID, identity.Email))
	if err != nil {
		return nil, fmt.Errorf("provision user: %w", err)
	}
	return user, nil
}

// SettingsInput carries optional settings changes; nil fields are left
// untouched. Vendor keys arrive in plaintext and are sealed before they
// reach the store.
type SettingsInput struct {
	Provider        *string
	KeyMode         *string
	OpenAIKey       *string
	AnthropicKey    *string
	GoogleKey       *string
	XAIKey          *string
	PersonalityMode *string
}

// UpdateSettings validates and applies a partial settings update,
// returning the updated user.
func (s *UserService) UpdateSettings(ctx context.Context, userID string, input SettingsInput) (*model.User, error) {
	if input.Provider != nil && !model.IsValidProvider(*input.Provider) {
		return nil, ErrInvalidProvider
	}
	if input.KeyMode != nil && !model.IsValidKeyMode(*input.KeyMode) {
		return nil, ErrInvalidKeyMode
	}
	if input.PersonalityMode != nil && !personality.IsValid(*input.PersonalityMode) {
		return nil, ErrInvalidMode
	}

	update := repository.UserSettingsUpdate{
		Provider:        input.Provider,
		KeyMode:         input.KeyMode,
		PersonalityMode: input.PersonalityMode,
	}

	var err error
	if update.OpenAIKey, err = s.sealKey(input.OpenAIKey); err != nil {
		return nil, err
	}
	if update.AnthropicKey, err = s.sealKey(input.AnthropicKey); err != nil {
		return nil, err
	}
	if update.GoogleKey, err = s.sealKey(input.GoogleKey); err != nil {
		return nil, err
	}
	if update.XAIKey, err = s.sealKey(input.XAIKey); err != nil {
		return nil, err
	}

	if err := s.store.UpdateUserSettings(ctx, userID, update); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("update settings: %w", err)
	}

	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("reload user: %w", err)
	}
	return user, nil
}

// SetPersonalityMode validates and stores the user's personality mode.
func (s *UserService) SetPersonalityMode(ctx context.Context, userID, mode string) error {
	if !personality.IsValid(mode) {
		return ErrInvalidMode
	}

	err := s.store.UpdateUserSettings(ctx, userID, repository.UserSettingsUpdate{PersonalityMode: &mode})
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("set personality mode: %w", err)
	}
	return nil
}

// UsageStats reports the caller's counters and tier limits.
type UsageStats struct {
	Tier            string             `json:"tier"`
	MessagesToday   int                `json:"messages_today"`
	TokensThisMonth int64              `json:"tokens_this_month"`
	Limits          billing.TierLimits `json:"limits"`
}

// Usage returns current usage stats, provisioning the account if unseen.
// Counters are reported as stored; a stale daily counter resets on the
// next chat turn, not here.
func (s *UserService) Usage(ctx context.Context, identity *model.AuthContext) (*UsageStats, error) {
	user, err := s.Provision(ctx, identity)
	if err != nil {
		return nil, err
	}

	return &UsageStats{
		Tier:            user.Tier,
		MessagesToday:   user.MessagesToday,
		TokensThisMonth: user.TokensThisMonth,
		Limits:          billing.LimitsFor(user.Tier),
	}, nil
}

func (s *UserService) sealKey(plaintext *string) (*string, error) {
	if plaintext == nil {
		return nil, nil
	}
	sealed, err := s.sealer.Seal(*plaintext)
	if err != nil {
		return nil, fmt.Errorf("seal vendor key: %w", err)
	}
	return &sealed, nil
}
