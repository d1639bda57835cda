// Package main is the entrypoint for the GLTCH Cloud API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/gltch/gltch-cloud/internal/auth"
	"github.com/gltch/gltch-cloud/internal/cache"
	"github.com/gltch/gltch-cloud/internal/config"
	"github.com/gltch/gltch-cloud/internal/handler"
	"github.com/gltch/gltch-cloud/internal/metrics"
	"github.com/gltch/gltch-cloud/internal/middleware"
	"github.com/gltch/gltch-cloud/internal/provider"
	"github.com/gltch/gltch-cloud/internal/repository"
	"github.com/gltch/gltch-cloud/internal/server"
	"github.com/gltch/gltch-cloud/internal/service"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	defer repo.Close()
	logger.Info("connected to database")

	cacheClient, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		os.Exit(1)
	}
	defer cacheClient.Close()
	logger.Info("connected to Redis")

	// Auth collaborators
	verifier := auth.NewVerifier(cfg.AuthSecret, cfg.AuthInsecure)
	sealer := auth.NewSealer(cfg.KeySealSecret)
	if cfg.AuthInsecure {
		logger.Warn("token signature verification disabled, development only")
	}

	// Provider routing with managed vendor credentials
	router := provider.NewRouter(provider.Credentials{
		OpenAI:    cfg.OpenAIAPIKey,
		Anthropic: cfg.AnthropicAPIKey,
		Google:    cfg.GoogleAPIKey,
		XAI:       cfg.XAIAPIKey,
	})

	// Services
	recorder := metrics.NewInMemory()
	chatService := service.NewChatService(repo, router, sealer, logger, recorder)
	sessionService := service.NewSessionService(repo)
	userService := service.NewUserService(repo, sealer)
	billingService := service.NewBillingService(repo, cfg.StripeWebhookSecret, logger)
	searchService := service.NewSearchService(logger)

	// Handlers
	healthHandler := handler.NewHealthHandler(repo, cacheClient)
	chatHandler := handler.NewChatHandler(chatService, logger)
	sessionHandler := handler.NewSessionHandler(sessionService, logger)
	userHandler := handler.NewUserHandler(userService, logger)
	billingHandler := handler.NewBillingHandler(userService, billingService, logger)
	searchHandler := handler.NewSearchHandler(searchService, logger)

	r := setupRouter(
		healthHandler,
		chatHandler,
		sessionHandler,
		userHandler,
		billingHandler,
		searchHandler,
		verifier,
		cacheClient,
		cfg,
		logger,
	)

	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(
	healthHandler *handler.HealthHandler,
	chatHandler *handler.ChatHandler,
	sessionHandler *handler.SessionHandler,
	userHandler *handler.UserHandler,
	billingHandler *handler.BillingHandler,
	searchHandler *handler.SearchHandler,
	verifier *auth.Verifier,
	cacheClient *cache.Cache,
	cfg *config.Config,
	logger *slog.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins:   cfg.GetCORSAllowedOrigins(),
		AllowCredentials: true,
	}))
	r.Use(middleware.MaxBodySize(cfg.MaxRequestBodySize))

	// Health endpoints (no auth required)
	r.Get("/healthz", healthHandler.Healthz)
	r.Get("/readyz", healthHandler.Readyz)

	// Root info endpoint
	r.Get("/", handler.Root)

	authCfg := middleware.AuthConfig{
		Logger:   logger,
		Verifier: verifier,
		Cache:    cacheClient,
	}

	rateLimitCfg := middleware.RateLimitConfig{
		Logger:  logger,
		Cache:   cacheClient,
		Enabled: cfg.RateLimitChatEnabled,
		RPS:     cfg.RateLimitChatRPS,
		Burst:   cfg.RateLimitChatBurst,
	}

	r.Route("/api/v1", func(r chi.Router) {
		// Billing webhooks authenticate via signature, not bearer token.
		r.Post("/webhooks/billing", billingHandler.Webhook)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(authCfg))

			r.With(middleware.RateLimitChat(rateLimitCfg)).Post("/chat", chatHandler.Chat)

			r.Get("/sessions", sessionHandler.List)
			r.Get("/sessions/{id}/messages", sessionHandler.Messages)

			r.Post("/auth/register", userHandler.Register)
			r.Get("/auth/me", userHandler.Me)
			r.Patch("/auth/settings", userHandler.UpdateSettings)

			r.Patch("/personality-mode", userHandler.SetPersonalityMode)
			r.Get("/personality-modes", userHandler.ListPersonalityModes)

			r.Get("/usage", billingHandler.Usage)
			r.Get("/search", searchHandler.Search)
		})
	})

	// 404 and 405 handlers
	r.NotFound(handler.NotFound)
	r.MethodNotAllowed(handler.MethodNotAllowed)

	return r
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
