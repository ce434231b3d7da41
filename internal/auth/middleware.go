package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/BradenHooton/lumina/internal/models"
	pkghttp "github.com/BradenHooton/lumina/pkg/http"
)

// contextKey is a custom type for context keys
type contextKey string

const (
	// SessionContextKey is the key for storing the session principal in context
	SessionContextKey contextKey = "session"
)

// SessionSource exposes the process-wide session
type SessionSource interface {
	CurrentSession() *models.SessionProjection
}

// SessionMiddleware validates the bearer token and requires it to belong to the
// principal currently signed in. A token outlives neither logout nor a reset.
func SessionMiddleware(tm *TokenManager, sessions SessionSource) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			current, reason := resolveSession(r, tm, sessions)
			if current == nil {
				pkghttp.WriteUnauthorized(w, reason)
				return
			}

			ctx := ContextWithSession(r.Context(), current)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalSession attaches the session principal when the request carries a
// valid bearer token for it, and otherwise passes the request through anonymously.
func OptionalSession(tm *TokenManager, sessions SessionSource) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if current, _ := resolveSession(r, tm, sessions); current != nil {
				r = r.WithContext(ContextWithSession(r.Context(), current))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// resolveSession returns the live session the request's token belongs to, or
// nil and the reason it could not be matched.
func resolveSession(r *http.Request, tm *TokenManager, sessions SessionSource) (*models.SessionProjection, string) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, "missing authorization header"
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, "invalid authorization header format"
	}

	claims, err := tm.ValidateToken(parts[1])
	if err != nil {
		return nil, "invalid or expired token"
	}

	current := sessions.CurrentSession()
	if current == nil || current.Identifier != claims.Identifier {
		return nil, "session is no longer active"
	}
	return current, ""
}

// RequireRole creates a middleware that enforces role-based access control.
// Must be used after SessionMiddleware.
func RequireRole(role models.Role) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session := GetSessionFromContext(r.Context())
			if session == nil {
				pkghttp.WriteUnauthorized(w, "unauthorized")
				return
			}

			if session.Role != role {
				pkghttp.WriteForbidden(w, "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// GetSessionFromContext extracts the session principal from context
func GetSessionFromContext(ctx context.Context) *models.SessionProjection {
	session, ok := ctx.Value(SessionContextKey).(*models.SessionProjection)
	if !ok {
		return nil
	}
	return session
}

// ContextWithSession stores a session principal in ctx
func ContextWithSession(ctx context.Context, p *models.SessionProjection) context.Context {
	return context.WithValue(ctx, SessionContextKey, p)
}
