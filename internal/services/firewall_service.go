package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/BradenHooton/lumina/internal/models"
	"github.com/BradenHooton/lumina/internal/store"
	pkglogger "github.com/BradenHooton/lumina/pkg/logger"
)

// FirewallService owns the firewall policy. Every mutation is normalized,
// stamped and persisted before it becomes visible to readers.
type FirewallService struct {
	mu          sync.RWMutex
	store       store.Store
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
	now         Clock

	policy *models.FirewallPolicy
}

// NewFirewallService creates a FirewallService holding the default policy until Load runs
func NewFirewallService(st store.Store, now Clock, logger *slog.Logger, auditLogger *pkglogger.AuditLogger) *FirewallService {
	if now == nil {
		now = time.Now
	}
	return &FirewallService{
		store:       st,
		logger:      logger,
		auditLogger: auditLogger,
		now:         now,
		policy:      models.DefaultFirewallPolicy(now()),
	}
}

// Load reads the persisted policy, seeding the defaults when it is absent or corrupt
func (s *FirewallService) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var policy models.FirewallPolicy
	err := store.GetJSON(ctx, s.store, store.KeyFirewallPolicy, &policy)
	switch {
	case err == nil:
		policy.Normalize()
		s.policy = &policy
		return
	case store.IsNotFound(err):
		s.logger.Info("seeding default firewall policy")
	case errors.Is(err, models.ErrPersistenceCorrupt):
		s.logger.Warn("discarding corrupt firewall policy", slog.Any("error", err))
	default:
		s.logger.Error("failed to load firewall policy, using defaults", slog.Any("error", err))
		s.policy = models.DefaultFirewallPolicy(s.now())
		return
	}

	s.policy = models.DefaultFirewallPolicy(s.now())
	if err := store.SetJSON(ctx, s.store, store.KeyFirewallPolicy, s.policy); err != nil {
		s.logger.Error("failed to persist default firewall policy", slog.Any("error", err))
	}
}

// Policy returns a copy of the current policy
func (s *FirewallService) Policy() *models.FirewallPolicy {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.policy.Clone()
}

// Update merges a partial policy
func (s *FirewallService) Update(ctx context.Context, actor *models.SessionProjection, patch *models.FirewallPolicyPatch) (*models.FirewallPolicy, error) {
	return s.mutate(ctx, actor, "update", func(p *models.FirewallPolicy) error {
		patch.Apply(p)
		return nil
	})
}

// AddAllowedDomain appends a domain pattern such as "*.example.com"
func (s *FirewallService) AddAllowedDomain(ctx context.Context, actor *models.SessionProjection, pattern string) (*models.FirewallPolicy, error) {
	pattern = strings.ToLower(strings.TrimSpace(pattern))
	if strings.TrimPrefix(pattern, "*.") == "" {
		return nil, fmt.Errorf("%w: domain pattern is required", models.ErrBadRequest)
	}
	return s.mutate(ctx, actor, "add_allowed_domain", func(p *models.FirewallPolicy) error {
		if !slices.Contains(p.AllowedDomains, pattern) {
			p.AllowedDomains = append(p.AllowedDomains, pattern)
		}
		return nil
	})
}

// RemoveAllowedDomain deletes a domain pattern
func (s *FirewallService) RemoveAllowedDomain(ctx context.Context, actor *models.SessionProjection, pattern string) (*models.FirewallPolicy, error) {
	pattern = strings.ToLower(strings.TrimSpace(pattern))
	return s.mutate(ctx, actor, "remove_allowed_domain", func(p *models.FirewallPolicy) error {
		i := slices.Index(p.AllowedDomains, pattern)
		if i < 0 {
			return fmt.Errorf("%w: allowed domain %q", models.ErrNotFound, pattern)
		}
		p.AllowedDomains = slices.Delete(p.AllowedDomains, i, i+1)
		return nil
	})
}

// AddBlockWord adds a lower-cased keyword
func (s *FirewallService) AddBlockWord(ctx context.Context, actor *models.SessionProjection, word string) (*models.FirewallPolicy, error) {
	word = strings.ToLower(strings.TrimSpace(word))
	if word == "" {
		return nil, fmt.Errorf("%w: block word is required", models.ErrBadRequest)
	}
	return s.mutate(ctx, actor, "add_block_word", func(p *models.FirewallPolicy) error {
		if !slices.Contains(p.BlockWords, word) {
			p.BlockWords = append(p.BlockWords, word)
		}
		return nil
	})
}

// RemoveBlockWord deletes a keyword
func (s *FirewallService) RemoveBlockWord(ctx context.Context, actor *models.SessionProjection, word string) (*models.FirewallPolicy, error) {
	word = strings.ToLower(strings.TrimSpace(word))
	return s.mutate(ctx, actor, "remove_block_word", func(p *models.FirewallPolicy) error {
		i := slices.Index(p.BlockWords, word)
		if i < 0 {
			return fmt.Errorf("%w: block word %q", models.ErrNotFound, word)
		}
		p.BlockWords = slices.Delete(p.BlockWords, i, i+1)
		return nil
	})
}

// UpdateDefinitions records a malware definitions refresh
func (s *FirewallService) UpdateDefinitions(ctx context.Context, actor *models.SessionProjection) (*models.FirewallPolicy, error) {
	return s.mutate(ctx, actor, "update_definitions", func(p *models.FirewallPolicy) error {
		if !p.MalwareProtection {
			return fmt.Errorf("%w: malware protection is disabled", models.ErrBadRequest)
		}
		return nil
	})
}

// Reset restores the default policy
func (s *FirewallService) Reset(ctx context.Context, actor *models.SessionProjection) (*models.FirewallPolicy, error) {
	if !actor.IsAdmin() {
		return nil, models.ErrUnauthorized
	}
	if err := s.resetDefaults(ctx); err != nil {
		return nil, err
	}
	s.auditLogger.LogPolicyChange(ctx, actor.Identifier, "reset", nil)
	return s.Policy(), nil
}

// resetDefaults replaces the policy with the defaults without an authorization check
func (s *FirewallService) resetDefaults(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	policy := models.DefaultFirewallPolicy(s.now())
	if err := store.SetJSON(ctx, s.store, store.KeyFirewallPolicy, policy); err != nil {
		return fmt.Errorf("failed to save firewall policy: %w", err)
	}
	s.policy = policy
	return nil
}

func (s *FirewallService) mutate(ctx context.Context, actor *models.SessionProjection, action string, fn func(p *models.FirewallPolicy) error) (*models.FirewallPolicy, error) {
	if !actor.IsAdmin() {
		return nil, models.ErrUnauthorized
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.policy.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	next.Normalize()
	next.LastUpdated = s.now().UTC()

	if err := store.SetJSON(ctx, s.store, store.KeyFirewallPolicy, next); err != nil {
		s.logger.Error("failed to save firewall policy", slog.Any("error", err))
		return nil, fmt.Errorf("failed to save firewall policy: %w", err)
	}
	s.policy = next

	s.auditLogger.LogPolicyChange(ctx, actor.Identifier, action, map[string]string{
		"enabled":        fmt.Sprint(next.Enabled),
		"security_level": string(next.SecurityLevel),
	})
	return next.Clone(), nil
}
