// Package model defines domain entities for the application.
package model

import (
	"slices"
	"time"
)

// Subscription tier constants.
const (
	TierFree = "free"
	TierPro  = "pro"
)

// LLM provider constants.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
	ProviderGrok      = "grok"
)

// Key mode constants. Managed means requests run on the platform's vendor
// credentials; BYOK means the user supplies their own.
const (
	KeyModeManaged = "managed"
	KeyModeBYOK    = "byok"
)

// ValidProviders contains all supported provider values.
var ValidProviders = []string{ProviderOpenAI, ProviderAnthropic, ProviderGemini, ProviderGrok}

// ValidTiers contains all supported tier values.
var ValidTiers = []string{TierFree, TierPro}

// ValidKeyModes contains all supported key mode values.
var ValidKeyModes = []string{KeyModeManaged, KeyModeBYOK}

// IsValidProvider reports whether the given provider value is recognized.
func IsValidProvider(p string) bool {
	return slices.Contains(ValidProviders, p)
}

// IsValidTier reports whether the given tier value is recognized.
func IsValidTier(t string) bool {
	return slices.Contains(ValidTiers, t)
}

// IsValidKeyMode reports whether the given key mode value is recognized.
func IsValidKeyMode(m string) bool {
	return slices.Contains(ValidKeyModes, m)
}

// User represents a user account with subscription, LLM settings and
// usage counters. BYOK vendor keys are stored sealed and never serialized.
type User struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Callsign string `json:"callsign"`

	Tier                 string  `json:"tier"`
	StripeCustomerID     *string `json:"stripe_customer_id,omitempty"`
	StripeSubscriptionID *string `json:"stripe_subscription_id,omitempty"`

	Provider        string `json:"provider"`
	KeyMode         string `json:"key_mode"`
	PersonalityMode string `json:"personality_mode"`

	// Sealed BYOK keys (secretbox ciphertext, base64). Never serialize.
	OpenAIKey    string `json:"-"`
	AnthropicKey string `json:"-"`
	GoogleKey    string `json:"-"`
	XAIKey       string `json:"-"`

	MessagesToday   int        `json:"messages_today"`
	TokensThisMonth int64      `json:"tokens_this_month"`
	LastMessageDate *time.Time `json:"last_message_date,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SealedKeyFor returns the sealed BYOK key stored for a provider,
// or empty string when none is stored.
func (u *User) SealedKeyFor(provider string) string {
	switch provider {
	case ProviderOpenAI:
		return u.OpenAIKey
	case ProviderAnthropic:
		return u.AnthropicKey
	case ProviderGemini:
		return u.GoogleKey
	case ProviderGrok:
		return u.XAIKey
	default:
		return ""
	}
}

// AuthContext carries the authenticated identity through a request.
type AuthContext struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}
