package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/BradenHooton/lumina/internal/auth"
	"github.com/BradenHooton/lumina/internal/models"
	"github.com/BradenHooton/lumina/internal/services"
	pkghttp "github.com/BradenHooton/lumina/pkg/http"
)

// AuthServiceInterface defines the interface for the session manager
type AuthServiceInterface interface {
	Login(ctx context.Context, identifier, secret string) (*services.LoginResponse, error)
	Logout(ctx context.Context)
	Session() models.Session
	LockoutStatus(ctx context.Context) models.LockoutStatus
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	service AuthServiceInterface
	now     func() time.Time
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(service AuthServiceInterface) *AuthHandler {
	return &AuthHandler{
		service: service,
		now:     time.Now,
	}
}

// LoginRequest represents the request body for login
type LoginRequest struct {
	Identifier string `json:"identifier" validate:"required,max=128"`
	Secret     string `json:"secret" validate:"required,max=256"`
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := pkghttp.DecodeJSON(w, r, &req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	resp, err := h.service.Login(r.Context(), req.Identifier, req.Secret)
	if err != nil {
		var invalid *models.InvalidCredentialsError
		var locked *models.LockedOutError
		switch {
		case errors.As(err, &locked):
			pkghttp.WriteLocked(w, locked.Remaining(h.now()))
		case errors.As(err, &invalid):
			pkghttp.WriteInvalidCredentials(w, invalid.AttemptsRemaining)
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			pkghttp.WriteServiceUnavailable(w, "Login was interrupted")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, resp)
}

// Logout handles POST /auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.service.Logout(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

// Session handles GET /auth/session. The principal is only disclosed to a
// caller holding the live session's token; anyone else just learns whether
// someone is signed in.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	session := h.service.Session()
	if caller := auth.GetSessionFromContext(r.Context()); caller == nil || session.Principal == nil ||
		caller.Identifier != session.Principal.Identifier {
		session.Principal = nil
	}
	pkghttp.WriteJSON(w, http.StatusOK, session)
}

// Lockout handles GET /auth/lockout
func (h *AuthHandler) Lockout(w http.ResponseWriter, r *http.Request) {
	pkghttp.WriteJSON(w, http.StatusOK, h.service.LockoutStatus(r.Context()))
}
