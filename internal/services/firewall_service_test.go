package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/BradenHooton/lumina/internal/models"
	"github.com/BradenHooton/lumina/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFirewall(st store.Store, clock *fakeClock) *FirewallService {
	svc := NewFirewallService(st, clock.Now, newTestLogger(), newTestAuditLogger())
	svc.Load(context.Background())
	return svc
}

func boolPtr(b bool) *bool { return &b }

func TestFirewallService_LoadSeedsDefaults(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	mem := store.NewMemoryStore()

	svc := newTestFirewall(mem, clock)

	assert.Equal(t, models.DefaultFirewallPolicy(clock.Now()), svc.Policy())

	var persisted models.FirewallPolicy
	require.NoError(t, store.GetJSON(ctx, mem, store.KeyFirewallPolicy, &persisted))
	assert.Equal(t, []string{"malware", "phishing", "exploit"}, persisted.BlockWords)
}

func TestFirewallService_LoadReplacesCorruptPolicy(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	mem := store.NewMemoryStore()
	require.NoError(t, mem.Set(ctx, store.KeyFirewallPolicy, []byte(`{"enabled": "yes"`)))

	svc := newTestFirewall(mem, clock)

	assert.Equal(t, models.SecurityLevelMedium, svc.Policy().SecurityLevel)
	var persisted models.FirewallPolicy
	assert.NoError(t, store.GetJSON(ctx, mem, store.KeyFirewallPolicy, &persisted))
}

func TestFirewallService_LoadNormalizesPersistedPolicy(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	mem := store.NewMemoryStore()
	stored := models.DefaultFirewallPolicy(clock.Now())
	stored.MalwareProtection = false
	stored.SecurityLevel = "extreme"
	require.NoError(t, store.SetJSON(ctx, mem, store.KeyFirewallPolicy, stored))

	policy := newTestFirewall(mem, clock).Policy()

	assert.False(t, policy.IntrusionDetection)
	assert.False(t, policy.AutoUpdateDefinitions)
	assert.Equal(t, models.SecurityLevelMedium, policy.SecurityLevel)
}

func TestFirewallService_UpdateNormalizesAndStamps(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	mem := store.NewMemoryStore()
	svc := newTestFirewall(mem, clock)
	clock.Advance(time.Hour)

	high := models.SecurityLevelHigh
	updated, err := svc.Update(ctx, adminActor, &models.FirewallPolicyPatch{
		MalwareProtection: boolPtr(false),
		SecurityLevel:     &high,
	})
	require.NoError(t, err)

	assert.False(t, updated.IntrusionDetection)
	assert.False(t, updated.AutoUpdateDefinitions)
	assert.Equal(t, models.SecurityLevelHigh, updated.SecurityLevel)
	assert.Equal(t, clock.Now(), updated.LastUpdated)

	var persisted models.FirewallPolicy
	require.NoError(t, store.GetJSON(ctx, mem, store.KeyFirewallPolicy, &persisted))
	assert.Equal(t, models.SecurityLevelHigh, persisted.SecurityLevel)
	assert.False(t, persisted.MalwareProtection)
}

func TestFirewallService_UpdateStoresListsAsLowercaseSets(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore()
	svc := newTestFirewall(mem, newFakeClock())

	updated, err := svc.Update(ctx, adminActor, &models.FirewallPolicyPatch{
		BlockWords:     []string{"Phishing", "phishing", "Ransomware"},
		AllowedDomains: []string{"*.Wikipedia.org", "*.wikipedia.org"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"phishing", "ransomware"}, updated.BlockWords)
	assert.Equal(t, []string{"*.wikipedia.org"}, updated.AllowedDomains)

	var persisted models.FirewallPolicy
	require.NoError(t, store.GetJSON(ctx, mem, store.KeyFirewallPolicy, &persisted))
	assert.Equal(t, []string{"phishing", "ransomware"}, persisted.BlockWords)
}

func TestFirewallService_NonAdminIsUnauthorized(t *testing.T) {
	ctx := context.Background()
	svc := newTestFirewall(store.NewMemoryStore(), newFakeClock())
	before := svc.Policy()

	tests := []struct {
		name string
		call func() error
	}{
		{"update", func() error {
			_, err := svc.Update(ctx, userActor, &models.FirewallPolicyPatch{Enabled: boolPtr(false)})
			return err
		}},
		{"add block word", func() error {
			_, err := svc.AddBlockWord(ctx, userActor, "spam")
			return err
		}},
		{"reset without session", func() error {
			_, err := svc.Reset(ctx, nil)
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.call(), models.ErrUnauthorized)
			assert.Equal(t, before, svc.Policy())
		})
	}
}

func TestFirewallService_BlockWords(t *testing.T) {
	ctx := context.Background()
	svc := newTestFirewall(store.NewMemoryStore(), newFakeClock())

	p, err := svc.AddBlockWord(ctx, adminActor, "  Ransomware ")
	require.NoError(t, err)
	assert.Equal(t, []string{"malware", "phishing", "exploit", "ransomware"}, p.BlockWords)

	p, err = svc.AddBlockWord(ctx, adminActor, "PHISHING")
	require.NoError(t, err)
	assert.Len(t, p.BlockWords, 4)

	p, err = svc.RemoveBlockWord(ctx, adminActor, "malware")
	require.NoError(t, err)
	assert.Equal(t, []string{"phishing", "exploit", "ransomware"}, p.BlockWords)

	_, err = svc.RemoveBlockWord(ctx, adminActor, "malware")
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = svc.AddBlockWord(ctx, adminActor, "   ")
	assert.ErrorIs(t, err, models.ErrBadRequest)
}

func TestFirewallService_AllowedDomains(t *testing.T) {
	ctx := context.Background()
	svc := newTestFirewall(store.NewMemoryStore(), newFakeClock())

	p, err := svc.AddAllowedDomain(ctx, adminActor, "*.Wikipedia.org")
	require.NoError(t, err)
	assert.Contains(t, p.AllowedDomains, "*.wikipedia.org")

	p, err = svc.RemoveAllowedDomain(ctx, adminActor, "*.bing.com")
	require.NoError(t, err)
	assert.Equal(t, []string{"*.google.com", "*.duckduckgo.com", "*.wikipedia.org"}, p.AllowedDomains)

	_, err = svc.AddAllowedDomain(ctx, adminActor, "*.")
	assert.ErrorIs(t, err, models.ErrBadRequest)

	_, err = svc.RemoveAllowedDomain(ctx, adminActor, "*.example.com")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestFirewallService_UpdateDefinitions(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	svc := newTestFirewall(store.NewMemoryStore(), clock)
	clock.Advance(time.Minute)

	p, err := svc.UpdateDefinitions(ctx, adminActor)
	require.NoError(t, err)
	assert.Equal(t, clock.Now(), p.LastUpdated)

	_, err = svc.Update(ctx, adminActor, &models.FirewallPolicyPatch{MalwareProtection: boolPtr(false)})
	require.NoError(t, err)

	_, err = svc.UpdateDefinitions(ctx, adminActor)
	assert.ErrorIs(t, err, models.ErrBadRequest)
}

func TestFirewallService_SaveFailureKeepsPreviousPolicy(t *testing.T) {
	ctx := context.Background()
	st := newMockStore()
	svc := newTestFirewall(st, newFakeClock())
	before := svc.Policy()

	st.SetFunc = func(ctx context.Context, key string, value []byte) error {
		return errors.New("connection reset")
	}

	_, err := svc.Update(ctx, adminActor, &models.FirewallPolicyPatch{Enabled: boolPtr(false)})

	assert.Error(t, err)
	assert.Equal(t, before, svc.Policy())
}

func TestFirewallService_Reset(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	svc := newTestFirewall(store.NewMemoryStore(), clock)

	_, err := svc.Update(ctx, adminActor, &models.FirewallPolicyPatch{Enabled: boolPtr(false), BlockWords: []string{}})
	require.NoError(t, err)

	p, err := svc.Reset(ctx, adminActor)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultFirewallPolicy(clock.Now()), p)
}

func TestFirewallService_PolicyIsACopy(t *testing.T) {
	svc := newTestFirewall(store.NewMemoryStore(), newFakeClock())

	p := svc.Policy()
	p.BlockWords[0] = "changed"
	p.Enabled = false

	assert.Equal(t, "malware", svc.Policy().BlockWords[0])
	assert.True(t, svc.Policy().Enabled)
}
