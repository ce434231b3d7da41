package store

import (
	"context"
	"errors"
	"testing"

	"github.com/BradenHooton/lumina/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runStoreContract checks the behavior every backend must share
func runStoreContract(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("missing key reports not found", func(t *testing.T) {
		_, err := s.Get(ctx, "absent")
		assert.True(t, IsNotFound(err))
	})

	t.Run("set then get round-trips bytes", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, KeyLockoutFailedCount, []byte("2")))

		got, err := s.Get(ctx, KeyLockoutFailedCount)
		require.NoError(t, err)
		assert.Equal(t, []byte("2"), got)
	})

	t.Run("set overwrites", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, KeySearchHistory, []byte(`["a"]`)))
		require.NoError(t, s.Set(ctx, KeySearchHistory, []byte(`["b","a"]`)))

		var history []string
		require.NoError(t, GetJSON(ctx, s, KeySearchHistory, &history))
		assert.Equal(t, []string{"b", "a"}, history)
	})

	t.Run("delete removes and is idempotent", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, KeySessionProjection, []byte(`{}`)))
		require.NoError(t, s.Delete(ctx, KeySessionProjection))
		require.NoError(t, s.Delete(ctx, KeySessionProjection))

		_, err := s.Get(ctx, KeySessionProjection)
		assert.True(t, IsNotFound(err))
	})

	t.Run("undecodable value is corrupt", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, KeyFirewallPolicy, []byte("{not json")))

		var policy models.FirewallPolicy
		err := GetJSON(ctx, s, KeyFirewallPolicy, &policy)
		assert.True(t, errors.Is(err, models.ErrPersistenceCorrupt))
	})

	t.Run("ping", func(t *testing.T) {
		assert.NoError(t, s.Ping(ctx))
	})
}
