package middleware

import (
	"net/http"

	pkghttp "github.com/BradenHooton/lumina/pkg/http"
	pkglogger "github.com/BradenHooton/lumina/pkg/logger"
)

// ClientIP resolves the caller's address once per request and stores it on the
// context for the rate limiter, request log and audit records.
func ClientIP(config *pkghttp.IPConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := pkghttp.ExtractClientIP(r, config)
			next.ServeHTTP(w, r.WithContext(pkglogger.ContextWithClientIP(r.Context(), ip)))
		})
	}
}
