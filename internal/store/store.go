// Package store is the key-value persistence port the services write through.
// Values are opaque bytes; callers encode records as JSON.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/BradenHooton/lumina/internal/models"
)

// Persisted keys. Absence of a key means "use the default".
const (
	KeySessionProjection  = "session.principalProjection"
	KeyLockoutFailedCount = "lockout.failedCount"
	KeyLockoutEndTime     = "lockout.endTime"
	KeyFirewallPolicy     = "firewall.policy"
	KeySearchHistory      = "search.history"
)

// Store reads and writes values by key. Writes are atomic per key.
// Get returns models.ErrNotFound when the key is absent.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}

// GetJSON loads key into v. A value that cannot be decoded is reported as
// models.ErrPersistenceCorrupt so the caller can discard it.
func GetJSON(ctx context.Context, s Store, key string, v any) error {
	raw, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %s: %v", models.ErrPersistenceCorrupt, key, err)
	}
	return nil
}

// SetJSON encodes v and stores it under key
func SetJSON(ctx context.Context, s Store, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return s.Set(ctx, key, raw)
}

// IsNotFound reports whether err means the key is absent
func IsNotFound(err error) bool {
	return errors.Is(err, models.ErrNotFound)
}
