package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/BradenHooton/lumina/internal/auth"
	"github.com/BradenHooton/lumina/internal/credentials"
	"github.com/BradenHooton/lumina/internal/models"
	"github.com/BradenHooton/lumina/internal/store"
	pkglogger "github.com/BradenHooton/lumina/pkg/logger"
)

// AuthConfig holds the Session Manager's tunables
type AuthConfig struct {
	LoginLatency           auth.Latency
	ResetLatency           auth.Latency
	DistinguishedPrincipal string
}

// AuthService is the Session Manager: it owns the single process-wide session
type AuthService struct {
	registry    credentials.Registry
	lockout     *LockoutService
	firewall    *FirewallService
	history     *HistoryService
	store       store.Store
	tm          *auth.TokenManager
	config      AuthConfig
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger

	mu      sync.RWMutex
	session *models.SessionProjection
}

// NewAuthService creates a new AuthService
func NewAuthService(
	registry credentials.Registry,
	lockout *LockoutService,
	firewall *FirewallService,
	history *HistoryService,
	st store.Store,
	tm *auth.TokenManager,
	config AuthConfig,
	logger *slog.Logger,
	auditLogger *pkglogger.AuditLogger,
) *AuthService {
	return &AuthService{
		registry:    registry,
		lockout:     lockout,
		firewall:    firewall,
		history:     history,
		store:       st,
		tm:          tm,
		config:      config,
		logger:      logger,
		auditLogger: auditLogger,
	}
}

// LoginResponse is returned from a successful login
type LoginResponse struct {
	Token     string                    `json:"token"`
	ExpiresAt time.Time                 `json:"expires_at"`
	Session   *models.SessionProjection `json:"session"`
}

// Login authenticates identifier/secret and opens the session.
//
// While locked out it fails with *models.LockedOutError before any credential
// work. A mismatch fails with *models.InvalidCredentialsError.
func (s *AuthService) Login(ctx context.Context, identifier, secret string) (*LoginResponse, error) {
	if err := s.checkLocked(ctx); err != nil {
		return nil, err
	}

	if err := s.config.LoginLatency.Wait(ctx); err != nil {
		return nil, err
	}

	// A concurrent attempt may have armed the lockout while this one waited
	if err := s.checkLocked(ctx); err != nil {
		return nil, err
	}

	principal, err := s.registry.FindByIdentifier(ctx, identifier)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		s.logger.Error("credential lookup failed", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if principal == nil || subtle.ConstantTimeCompare([]byte(principal.Secret), []byte(secret)) != 1 {
		count := s.lockout.RecordFailure(ctx)
		remaining := max(0, MaxLoginAttempts-count)

		s.logger.Info("login failed: invalid credentials", slog.Int("attempts_remaining", remaining))
		s.auditLogger.LogAuthAttempt(ctx, pkglogger.AuditEvent{
			EventType:     pkglogger.EventLogin,
			Principal:     identifier,
			FailureReason: "invalid_credentials",
			Success:       false,
		})
		return nil, &models.InvalidCredentialsError{AttemptsRemaining: remaining}
	}

	s.lockout.RecordSuccess(ctx)

	projection := principal.Projection()
	token, expiresAt, err := s.tm.GenerateSessionToken(projection)
	if err != nil {
		s.logger.Error("failed to generate session token", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.mu.Lock()
	s.session = projection
	s.mu.Unlock()

	if err := store.SetJSON(ctx, s.store, store.KeySessionProjection, projection); err != nil {
		s.logger.Error("failed to persist session", slog.Any("error", err))
	}

	s.logger.Info("login succeeded", slog.String("principal", pkglogger.MaskIdentifier(projection.Identifier)))
	s.auditLogger.LogAuthAttempt(ctx, pkglogger.AuditEvent{
		EventType: pkglogger.EventLogin,
		Principal: projection.Identifier,
		Success:   true,
	})

	return &LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		Session:   copyProjection(projection),
	}, nil
}

func (s *AuthService) checkLocked(ctx context.Context) error {
	until, locked := s.lockout.LockedUntil(ctx, s.lockout.now())
	if !locked {
		return nil
	}
	s.auditLogger.LogAuthAttempt(ctx, pkglogger.AuditEvent{
		EventType:     pkglogger.EventLogin,
		FailureReason: "locked_out",
		Success:       false,
	})
	return &models.LockedOutError{Until: until}
}

// Logout closes the session. It always succeeds.
func (s *AuthService) Logout(ctx context.Context) {
	s.mu.Lock()
	previous := s.session
	s.session = nil
	s.mu.Unlock()

	if err := s.store.Delete(ctx, store.KeySessionProjection); err != nil {
		s.logger.Error("failed to delete persisted session", slog.Any("error", err))
	}

	if previous != nil {
		s.auditLogger.LogAuthAttempt(ctx, pkglogger.AuditEvent{
			EventType: pkglogger.EventLogout,
			Principal: previous.Identifier,
			Success:   true,
		})
	}
}

// RestoreSession rehydrates the persisted session and lockout state at startup.
// The persisted projection is trusted without re-checking the secret.
func (s *AuthService) RestoreSession(ctx context.Context) {
	var projection models.SessionProjection
	err := store.GetJSON(ctx, s.store, store.KeySessionProjection, &projection)
	switch {
	case err == nil && projection.Identifier != "":
		s.mu.Lock()
		s.session = &projection
		s.mu.Unlock()
		s.auditLogger.LogAuthAttempt(ctx, pkglogger.AuditEvent{
			EventType: pkglogger.EventSessionRestored,
			Principal: projection.Identifier,
			Success:   true,
		})
	case err == nil, errors.Is(err, models.ErrPersistenceCorrupt):
		s.logger.Warn("discarding corrupt persisted session", slog.Any("error", err))
		if err := s.store.Delete(ctx, store.KeySessionProjection); err != nil {
			s.logger.Error("failed to delete persisted session", slog.Any("error", err))
		}
	case store.IsNotFound(err):
	default:
		s.logger.Error("failed to load persisted session", slog.Any("error", err))
	}

	s.lockout.Restore(ctx)
}

// CurrentSession returns the signed-in principal, or nil
func (s *AuthService) CurrentSession() *models.SessionProjection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyProjection(s.session)
}

// IsAuthenticated reports whether a principal is signed in
func (s *AuthService) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session != nil
}

// Session returns the session as served to clients
func (s *AuthService) Session() models.Session {
	p := s.CurrentSession()
	return models.Session{Principal: p, Authenticated: p != nil}
}

// LockoutStatus returns the attempt state for the lock screen
func (s *AuthService) LockoutStatus(ctx context.Context) models.LockoutStatus {
	return s.lockout.Status(ctx)
}

// ResetSystem restores the firewall defaults, clears history and unlocks the
// system. Only the distinguished principal may call it; anyone else gets
// models.ErrUnauthorized and nothing changes. Safe to repeat.
func (s *AuthService) ResetSystem(ctx context.Context, actor *models.SessionProjection) error {
	if actor == nil || s.config.DistinguishedPrincipal == "" || actor.Identifier != s.config.DistinguishedPrincipal {
		identifier := ""
		if actor != nil {
			identifier = actor.Identifier
		}
		s.auditLogger.LogSystemReset(ctx, identifier, false)
		return models.ErrUnauthorized
	}

	if err := s.config.ResetLatency.Wait(ctx); err != nil {
		return err
	}

	if err := s.firewall.resetDefaults(ctx); err != nil {
		s.logger.Error("system reset failed", slog.Any("error", err))
		return fmt.Errorf("system reset: %w", err)
	}
	s.history.Clear(ctx)
	s.lockout.Reset(ctx)

	s.logger.Info("system reset completed")
	s.auditLogger.LogSystemReset(ctx, actor.Identifier, true)
	return nil
}

func copyProjection(p *models.SessionProjection) *models.SessionProjection {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}
