package services

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/BradenHooton/lumina/internal/models"
	"github.com/BradenHooton/lumina/internal/store"
	pkglogger "github.com/BradenHooton/lumina/pkg/logger"
)

const (
	// MaxLoginAttempts is the failure count that arms the lockout
	MaxLoginAttempts = 3
	// LockoutDuration is how long logins are rejected once the lockout arms
	LockoutDuration = 5 * time.Minute
)

// Clock returns the current time
type Clock func() time.Time

// afterFunc schedules f after d; swapped in tests
type afterFunc func(d time.Duration, f func()) *time.Timer

// LockoutService tracks failed logins and the timed lockout.
//
// The stored end time is the only authority on whether the system is locked.
// The one-shot timer just makes the unlock observable without a caller polling;
// it re-checks the end time when it fires.
type LockoutService struct {
	mu          sync.Mutex
	store       store.Store
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
	now         Clock
	after       afterFunc

	failedCount int
	endTime     *time.Time
	timer       *time.Timer
	onUnlock    []func()
}

// NewLockoutService creates a LockoutService. Call Restore before use.
func NewLockoutService(st store.Store, now Clock, logger *slog.Logger, auditLogger *pkglogger.AuditLogger) *LockoutService {
	if now == nil {
		now = time.Now
	}
	return &LockoutService{
		store:       st,
		logger:      logger,
		auditLogger: auditLogger,
		now:         now,
		after:       time.AfterFunc,
	}
}

// OnUnlock registers fn to run after every Locked to Open transition
func (s *LockoutService) OnUnlock(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onUnlock = append(s.onUnlock, fn)
}

// Restore loads the persisted counters. An outstanding lockout gets a fresh
// timer; one that elapsed while the process was down is cleared immediately.
func (s *LockoutService) Restore(ctx context.Context) {
	s.mu.Lock()

	var count int
	switch err := store.GetJSON(ctx, s.store, store.KeyLockoutFailedCount, &count); {
	case err == nil && count >= 0:
		s.failedCount = count
	case err == nil:
		s.discard(ctx, store.KeyLockoutFailedCount, errors.New("negative failed count"))
	default:
		s.handleLoadError(ctx, store.KeyLockoutFailedCount, err)
	}

	var end time.Time
	if err := store.GetJSON(ctx, s.store, store.KeyLockoutEndTime, &end); err == nil {
		s.endTime = &end
	} else {
		s.handleLoadError(ctx, store.KeyLockoutEndTime, err)
	}

	s.mu.Unlock()

	if s.IsLocked(ctx, s.now()) {
		s.mu.Lock()
		if s.endTime != nil {
			s.armLocked()
		}
		s.mu.Unlock()
		s.logger.Info("lockout restored",
			slog.Time("lockout_end_time", end),
			slog.Int("failed_count", count))
	}
}

// RecordFailure counts a failed login and arms the lockout once the count
// reaches MaxLoginAttempts. Returns the new count.
func (s *LockoutService) RecordFailure(ctx context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.failedCount++
	s.persist(ctx, store.KeyLockoutFailedCount, s.failedCount)

	if s.failedCount >= MaxLoginAttempts && s.endTime == nil {
		end := s.now().Add(LockoutDuration)
		s.endTime = &end
		s.persist(ctx, store.KeyLockoutEndTime, end)
		s.armLocked()

		s.logger.Warn("lockout armed",
			slog.Int("failed_count", s.failedCount),
			slog.Time("lockout_end_time", end))
		s.auditLogger.LogLockoutArmed(ctx, end, s.failedCount)
	}

	return s.failedCount
}

// RecordSuccess clears the failure count. The lock state is untouched.
func (s *LockoutService) RecordSuccess(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failedCount == 0 {
		return
	}
	s.failedCount = 0
	s.persist(ctx, store.KeyLockoutFailedCount, 0)
}

// IsLocked reports whether logins are rejected at now. An elapsed lockout is
// cleared as a side effect.
func (s *LockoutService) IsLocked(ctx context.Context, now time.Time) bool {
	_, locked := s.LockedUntil(ctx, now)
	return locked
}

// LockedUntil is IsLocked that also returns the end of the lockout window
func (s *LockoutService) LockedUntil(ctx context.Context, now time.Time) (time.Time, bool) {
	s.mu.Lock()

	if s.endTime == nil {
		s.mu.Unlock()
		return time.Time{}, false
	}
	if now.Before(*s.endTime) {
		end := *s.endTime
		s.mu.Unlock()
		return end, true
	}

	s.clearLocked(ctx)
	hooks := s.hooks()
	s.mu.Unlock()

	s.logger.Info("lockout expired")
	s.auditLogger.LogLockoutExpired(ctx)
	notify(hooks)
	return time.Time{}, false
}

// Status describes the attempt state for the lock screen
func (s *LockoutService) Status(ctx context.Context) models.LockoutStatus {
	now := s.now()
	end, locked := s.LockedUntil(ctx, now)

	s.mu.Lock()
	count := s.failedCount
	s.mu.Unlock()

	status := models.LockoutStatus{
		AttemptState:      models.AttemptState{FailedCount: count, Locked: locked},
		AttemptsRemaining: max(0, MaxLoginAttempts-count),
	}
	if locked {
		status.LockoutEndTime = &end
		status.AttemptsRemaining = 0
		status.RemainingSeconds = int(math.Ceil(end.Sub(now).Seconds()))
	}
	return status
}

// Reset forces the Open state and clears every counter
func (s *LockoutService) Reset(ctx context.Context) {
	s.mu.Lock()

	wasLocked := s.endTime != nil
	s.failedCount = 0
	if err := s.store.Delete(ctx, store.KeyLockoutFailedCount); err != nil {
		s.logger.Error("failed to clear failed count", slog.Any("error", err))
	}
	s.clearLocked(ctx)
	hooks := s.hooks()
	s.mu.Unlock()

	if wasLocked {
		s.logger.Info("lockout cleared by reset")
		notify(hooks)
	}
}

// Close stops the pending unlock timer
func (s *LockoutService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopTimer()
}

// armLocked schedules the unlock check at the stored end time. Caller holds mu.
func (s *LockoutService) armLocked() {
	s.stopTimer()
	d := s.endTime.Sub(s.now())
	s.timer = s.after(d, s.fire)
}

func (s *LockoutService) fire() {
	ctx := context.Background()
	if !s.IsLocked(ctx, s.now()) {
		return
	}
	// Woke before the wall clock reached the end time
	s.mu.Lock()
	if s.endTime != nil {
		s.armLocked()
	}
	s.mu.Unlock()
}

// clearLocked drops the end time. Caller holds mu.
func (s *LockoutService) clearLocked(ctx context.Context) {
	s.stopTimer()
	s.endTime = nil
	if err := s.store.Delete(ctx, store.KeyLockoutEndTime); err != nil {
		s.logger.Error("failed to clear lockout end time", slog.Any("error", err))
	}
}

func (s *LockoutService) stopTimer() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *LockoutService) hooks() []func() {
	return append([]func(){}, s.onUnlock...)
}

func notify(hooks []func()) {
	for _, fn := range hooks {
		fn()
	}
}

func (s *LockoutService) persist(ctx context.Context, key string, v any) {
	if err := store.SetJSON(ctx, s.store, key, v); err != nil {
		s.logger.Error("failed to persist lockout state",
			slog.String("key", key),
			slog.Any("error", err))
	}
}

func (s *LockoutService) handleLoadError(ctx context.Context, key string, err error) {
	switch {
	case store.IsNotFound(err):
	case errors.Is(err, models.ErrPersistenceCorrupt):
		s.discard(ctx, key, err)
	default:
		s.logger.Error("failed to load lockout state",
			slog.String("key", key),
			slog.Any("error", err))
	}
}

// discard removes a corrupt entry so the default applies
func (s *LockoutService) discard(ctx context.Context, key string, cause error) {
	s.logger.Warn("discarding corrupt persisted value",
		slog.String("key", key),
		slog.Any("error", cause))
	if err := s.store.Delete(ctx, key); err != nil {
		s.logger.Error("failed to delete corrupt value",
			slog.String("key", key),
			slog.Any("error", err))
	}
}
