package middleware

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/gltch/gltch-cloud/internal/cache"
)

// RateLimitConfig holds configuration for the chat rate limit middleware.
type RateLimitConfig struct {
	Logger  *slog.Logger
	Cache   *cache.Cache
	Enabled bool
	RPS     int
	Burst   int
}

// RateLimitChat returns a middleware applying a per-IP token bucket to
// the chat endpoint. The quota system is the billing-level gate; this is
// purely burst protection in front of it.
func RateLimitChat(cfg RateLimitConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.Enabled {
				next.ServeHTTP(w, r)
				return
			}

			ip := clientIP(r)
			result, err := cfg.Cache.CheckChatRateLimit(r.Context(), ip, cfg.RPS, cfg.Burst)
			if err != nil || result.Allowed {
				next.ServeHTTP(w, r)
				return
			}

			cfg.Logger.Warn("chat rate limit exceeded",
				slog.String("request_id", GetRequestID(r.Context())),
			)

			w.Header().Set("Retry-After", fmt.Sprintf("%.0f", result.RetryAfter.Seconds()))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":"Too many requests","code":"RATE_LIMITED"}`))
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
