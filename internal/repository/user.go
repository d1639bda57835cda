package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/gltch/gltch-cloud/internal/model"
)

// Common errors for user repository operations.
var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("user already exists")
)

const userColumns = `
	id, email, callsign, tier, stripe_customer_id, stripe_subscription_id,
	provider, key_mode, personality_mode,
	openai_key, anthropic_key, google_key, xai_key,
	messages_today, tokens_this_month, last_message_date,
	created_at, updated_at
`

func scanUser(row pgx.Row) (*model.User, error) {
	var user model.User
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Callsign,
		&user.Tier,
		&user.StripeCustomerID,
		&user.StripeSubscriptionID,
		&user.Provider,
		&user.KeyMode,
		&user.PersonalityMode,
		&user.OpenAIKey,
		&user.AnthropicKey,
		&user.GoogleKey,
		&user.XAIKey,
		&user.MessagesToday,
		&user.TokensThisMonth,
		&user.LastMessageDate,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return &user, nil
}

// CreateUser inserts a new user.
func (r *Repository) CreateUser(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (
			id, email, callsign, tier, provider, key_mode, personality_mode,
			openai_key, anthropic_key, google_key, xai_key,
			messages_today, tokens_this_month, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := r.pool.Exec(ctx, query,
		user.ID,
		user.Email,
		user.Callsign,
		user.Tier,
		user.Provider,
		user.KeyMode,
		user.PersonalityMode,
		user.OpenAIKey,
		user.AnthropicKey,
		user.GoogleKey,
		user.XAIKey,
		user.MessagesToday,
		user.TokensThisMonth,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrUserExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetUserByID retrieves a user by their ID.
func (r *Repository) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.pool.QueryRow(ctx, query, id))
}

// GetOrCreateUser gets a user by ID or creates one if not found.
// Used to auto-provision accounts on first authenticated contact.
func (r *Repository) GetOrCreateUser(ctx context.Context, user *model.User) (*model.User, error) {
	existing, err := r.GetUserByID(ctx, user.ID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	if err := r.CreateUser(ctx, user); err != nil {
		// Handle race condition - another request may have created it
		if errors.Is(err, ErrUserExists) {
			return r.GetUserByID(ctx, user.ID)
		}
		return nil, err
	}

	return user, nil
}

// UserSettingsUpdate carries optional settings changes; nil fields are
// left untouched. Key fields hold sealed ciphertext.
type UserSettingsUpdate struct {
	Provider        *string
	KeyMode         *string
	OpenAIKey       *string
	AnthropicKey    *string
	GoogleKey       *string
	XAIKey          *string
	PersonalityMode *string
}

// UpdateUserSettings applies a partial settings update.
func (r *Repository) UpdateUserSettings(ctx context.Context, id string, update UserSettingsUpdate) error {
	query := `
		UPDATE users SET
			provider = COALESCE($2, provider),
			key_mode = COALESCE($3, key_mode),
			openai_key = COALESCE($4, openai_key),
			anthropic_key = COALESCE($5, anthropic_key),
			google_key = COALESCE($6, google_key),
			xai_key = COALESCE($7, xai_key),
			personality_mode = COALESCE($8, personality_mode),
			updated_at = now()
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, id,
		update.Provider,
		update.KeyMode,
		update.OpenAIKey,
		update.AnthropicKey,
		update.GoogleKey,
		update.XAIKey,
		update.PersonalityMode,
	)
	if err != nil {
		return fmt.Errorf("failed to update user settings: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// BeginDailyWindow resets the daily message counter when the stored day
// differs from today, stamps today, and returns the post-reset counter.
// A single statement so concurrent turns for the same user cannot
// interleave a read-modify-write.
func (r *Repository) BeginDailyWindow(ctx context.Context, id string, today time.Time) (int, error) {
	query := `
		UPDATE users SET
			messages_today = CASE
				WHEN last_message_date IS DISTINCT FROM $2::date THEN 0
				ELSE messages_today
			END,
			last_message_date = $2::date
		WHERE id = $1
		RETURNING messages_today
	`

	var messagesToday int
	err := r.pool.QueryRow(ctx, query, id, today).Scan(&messagesToday)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrUserNotFound
		}
		return 0, fmt.Errorf("failed to begin daily window: %w", err)
	}
	return messagesToday, nil
}

// IncrementUsage atomically bumps the daily message counter by one and
// adds the turn's tokens to the monthly total.
func (r *Repository) IncrementUsage(ctx context.Context, id string, tokens int) error {
	query := `
		UPDATE users SET
			messages_today = messages_today + 1,
			tokens_this_month = tokens_this_month + $2,
			updated_at = now()
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, id, tokens)
	if err != nil {
		return fmt.Errorf("failed to increment usage: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// SetStripeCustomer records the billing customer ID for a user.
func (r *Repository) SetStripeCustomer(ctx context.Context, id, customerID string) error {
	query := `UPDATE users SET stripe_customer_id = $2, updated_at = now() WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id, customerID)
	if err != nil {
		return fmt.Errorf("failed to set stripe customer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// SetTierByCustomer flips the tier of the user owning a billing customer
// ID. subscriptionID is stored as-is; pass nil on downgrade. Returns
// false when no user matches the customer.
func (r *Repository) SetTierByCustomer(ctx context.Context, customerID, tier string, subscriptionID *string) (bool, error) {
	query := `
		UPDATE users SET
			tier = $2,
			stripe_subscription_id = $3,
			updated_at = now()
		WHERE stripe_customer_id = $1
	`

	tag, err := r.pool.Exec(ctx, query, customerID, tier, subscriptionID)
	if err != nil {
		return false, fmt.Errorf("failed to set tier by customer: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
