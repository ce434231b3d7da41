package services

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/BradenHooton/lumina/internal/models"
	"github.com/BradenHooton/lumina/internal/store"
	pkglogger "github.com/BradenHooton/lumina/pkg/logger"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestAuditLogger() *pkglogger.AuditLogger {
	return pkglogger.NewAuditLogger(newTestLogger())
}

// fakeClock is a manually advanced Clock
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// fakeTimers records scheduled callbacks instead of running them
type fakeTimers struct {
	mu     sync.Mutex
	funcs  []func()
	delays []time.Duration
}

func (f *fakeTimers) after(d time.Duration, fn func()) *time.Timer {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.funcs = append(f.funcs, fn)
	f.delays = append(f.delays, d)
	return time.NewTimer(time.Hour)
}

func (f *fakeTimers) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.funcs)
}

func (f *fakeTimers) fireLast() {
	f.mu.Lock()
	fn := f.funcs[len(f.funcs)-1]
	f.mu.Unlock()
	fn()
}

// MockStore implements store.Store for testing. Unset funcs fall back to an in-memory store.
type MockStore struct {
	GetFunc    func(ctx context.Context, key string) ([]byte, error)
	SetFunc    func(ctx context.Context, key string, value []byte) error
	DeleteFunc func(ctx context.Context, key string) error

	mem *store.MemoryStore
}

func newMockStore() *MockStore {
	return &MockStore{mem: store.NewMemoryStore()}
}

func (m *MockStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}
	return m.mem.Get(ctx, key)
}

func (m *MockStore) Set(ctx context.Context, key string, value []byte) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, key, value)
	}
	return m.mem.Set(ctx, key, value)
}

func (m *MockStore) Delete(ctx context.Context, key string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, key)
	}
	return m.mem.Delete(ctx, key)
}

func (m *MockStore) Ping(ctx context.Context) error {
	return nil
}

func (m *MockStore) Close() error {
	return nil
}

// MockRegistry implements credentials.Registry for testing
type MockRegistry struct {
	FindByIdentifierFunc func(ctx context.Context, identifier string) (*models.Principal, error)
}

func (m *MockRegistry) FindByIdentifier(ctx context.Context, identifier string) (*models.Principal, error) {
	if m.FindByIdentifierFunc != nil {
		return m.FindByIdentifierFunc(ctx, identifier)
	}
	return nil, models.ErrNotFound
}

func newTestLockout(st store.Store, clock *fakeClock) (*LockoutService, *fakeTimers) {
	timers := &fakeTimers{}
	svc := NewLockoutService(st, clock.Now, newTestLogger(), newTestAuditLogger())
	svc.after = timers.after
	return svc, timers
}

var (
	adminActor = &models.SessionProjection{Identifier: "MWTINC", Role: models.RoleAdmin}
	userActor  = &models.SessionProjection{Identifier: "guest", Role: models.RoleUser}
)
