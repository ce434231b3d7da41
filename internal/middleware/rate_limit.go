package middleware

import (
	"net/http"
	"time"

	pkghttp "github.com/BradenHooton/lumina/pkg/http"
	pkglogger "github.com/BradenHooton/lumina/pkg/logger"
	"github.com/go-chi/httprate"
)

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	RequestsPerMinute int
}

// DefaultAuthRateLimit returns default rate limit config for the login endpoint (10 requests per minute)
func DefaultAuthRateLimit() RateLimitConfig {
	return RateLimitConfig{RequestsPerMinute: 10}
}

// RateLimitByIP limits requests per client address. It sits in front of the
// attempt counter, so a single caller cannot burn through the lockout budget
// faster than the configured rate.
func RateLimitByIP(config RateLimitConfig) func(next http.Handler) http.Handler {
	if config.RequestsPerMinute <= 0 {
		config = DefaultAuthRateLimit()
	}
	return httprate.Limit(
		config.RequestsPerMinute,
		time.Minute,
		httprate.WithKeyFuncs(keyByClientIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			pkghttp.WriteTooManyRequests(w, "Rate limit exceeded")
		}),
	)
}

// keyByClientIP prefers the address resolved by ClientIP and falls back to the peer address
func keyByClientIP(r *http.Request) (string, error) {
	if ip := pkglogger.ClientIPFromContext(r.Context()); ip != "" {
		return ip, nil
	}
	return httprate.KeyByIP(r)
}
