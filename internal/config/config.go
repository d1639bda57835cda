// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor principles.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds all application configuration.
// All fields are populated from environment variables.
type Config struct {
	// Application settings
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort int    `env:"APP_PORT" envDefault:"8080"`

	// Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// Cache (Redis)
	RedisURL string `env:"REDIS_URL,required"`

	// Frontend origin, used for CORS defaults
	FrontendURL string `env:"FRONTEND_URL" envDefault:"http://localhost:3000"`

	// Auth
	// AuthSecret verifies HMAC-signed bearer tokens. When AuthInsecure is
	// set (development only) token signatures are not verified.
	AuthSecret   string `env:"AUTH_SECRET" envDefault:""`
	AuthInsecure bool   `env:"AUTH_INSECURE" envDefault:"false"`

	// KeySealSecret seals BYOK vendor keys at rest.
	KeySealSecret string `env:"KEY_SEAL_SECRET" envDefault:"change-me-in-production"`

	// Managed LLM vendor credentials (users on BYOK supply their own)
	OpenAIAPIKey    string `env:"OPENAI_API_KEY" envDefault:""`
	AnthropicAPIKey string `env:"ANTHROPIC_API_KEY" envDefault:""`
	GoogleAPIKey    string `env:"GOOGLE_API_KEY" envDefault:""`
	XAIAPIKey       string `env:"XAI_API_KEY" envDefault:""`

	// Billing webhook signature secret
	StripeWebhookSecret string `env:"STRIPE_WEBHOOK_SECRET" envDefault:""`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Server timeouts
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"90s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Per-IP rate limiting on the chat endpoint
	RateLimitChatEnabled bool `env:"RATE_LIMIT_CHAT_ENABLED" envDefault:"true"`
	RateLimitChatRPS     int  `env:"RATE_LIMIT_CHAT_RPS" envDefault:"5"`
	RateLimitChatBurst   int  `env:"RATE_LIMIT_CHAT_BURST" envDefault:"10"`

	// CORS configuration
	// Comma-separated list of allowed origins, in addition to FrontendURL.
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:""`

	// Request body size limit in bytes (default 64KB; chat bodies are small)
	MaxRequestBodySize int64 `env:"MAX_REQUEST_BODY_SIZE" envDefault:"65536"`
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// GetCORSAllowedOrigins returns the allowed origins: the frontend URL plus
// any extra comma-separated entries.
func (c *Config) GetCORSAllowedOrigins() []string {
	result := make([]string, 0, 4)
	if c.FrontendURL != "" {
		result = append(result, c.FrontendURL)
	}

	for _, origin := range strings.Split(c.CORSAllowedOrigins, ",") {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" && trimmed != c.FrontendURL {
			result = append(result, trimmed)
		}
	}

	return result
}

// Load parses environment variables and returns a Config.
// Returns an error if required variables are missing.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}
