package models

import (
	"slices"
	"strings"
	"time"
)

// SecurityLevel controls how aggressively search results are filtered
type SecurityLevel string

const (
	SecurityLevelLow    SecurityLevel = "low"
	SecurityLevelMedium SecurityLevel = "medium"
	SecurityLevelHigh   SecurityLevel = "high"
)

// Valid reports whether the level is one of the known tiers
func (l SecurityLevel) Valid() bool {
	switch l {
	case SecurityLevelLow, SecurityLevelMedium, SecurityLevelHigh:
		return true
	}
	return false
}

// FirewallPolicy is the mutable security configuration consulted by the search pipeline.
//
// IntrusionDetection and AutoUpdateDefinitions only apply when MalwareProtection is on.
// BlockUnauthorizedIPs and SecurityLevel only apply when Enabled is on.
type FirewallPolicy struct {
	Enabled               bool          `json:"enabled"`
	BlockUnauthorizedIPs  bool          `json:"blockUnauthorizedIps"`
	AllowedDomains        []string      `json:"allowedDomains"`
	BlockWords            []string      `json:"blockWords"`
	SecurityLevel         SecurityLevel `json:"securityLevel"`
	MalwareProtection     bool          `json:"malwareProtection"`
	IntrusionDetection    bool          `json:"intrusionDetection"`
	AutoUpdateDefinitions bool          `json:"autoUpdateDefinitions"`
	LastUpdated           time.Time     `json:"lastUpdated"`
}

// DefaultFirewallPolicy returns the seed policy stamped with now
func DefaultFirewallPolicy(now time.Time) *FirewallPolicy {
	return &FirewallPolicy{
		Enabled:               true,
		BlockUnauthorizedIPs:  true,
		AllowedDomains:        []string{"*.google.com", "*.bing.com", "*.duckduckgo.com"},
		BlockWords:            []string{"malware", "phishing", "exploit"},
		SecurityLevel:         SecurityLevelMedium,
		MalwareProtection:     true,
		IntrusionDetection:    true,
		AutoUpdateDefinitions: true,
		LastUpdated:           now.UTC(),
	}
}

// Clone returns a deep copy
func (p *FirewallPolicy) Clone() *FirewallPolicy {
	c := *p
	c.AllowedDomains = slices.Clone(p.AllowedDomains)
	c.BlockWords = slices.Clone(p.BlockWords)
	return &c
}

// Normalize clears dependent flags whose prerequisite is off, replaces an
// unknown security level with medium, and reduces both lists to trimmed,
// lower-cased sets in first-seen order.
func (p *FirewallPolicy) Normalize() {
	if !p.MalwareProtection {
		p.IntrusionDetection = false
		p.AutoUpdateDefinitions = false
	}
	if !p.Enabled {
		p.BlockUnauthorizedIPs = false
	}
	if !p.SecurityLevel.Valid() {
		p.SecurityLevel = SecurityLevelMedium
	}
	p.AllowedDomains = normalizeSet(p.AllowedDomains)
	p.BlockWords = normalizeSet(p.BlockWords)
}

func normalizeSet(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v != "" && !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	return out
}

// FirewallPolicyPatch is a partial update; nil fields are left unchanged
type FirewallPolicyPatch struct {
	Enabled               *bool          `json:"enabled,omitempty"`
	BlockUnauthorizedIPs  *bool          `json:"blockUnauthorizedIps,omitempty"`
	AllowedDomains        []string       `json:"allowedDomains,omitempty" validate:"omitempty,dive,required"`
	BlockWords            []string       `json:"blockWords,omitempty" validate:"omitempty,dive,required"`
	SecurityLevel         *SecurityLevel `json:"securityLevel,omitempty" validate:"omitempty,oneof=low medium high"`
	MalwareProtection     *bool          `json:"malwareProtection,omitempty"`
	IntrusionDetection    *bool          `json:"intrusionDetection,omitempty"`
	AutoUpdateDefinitions *bool          `json:"autoUpdateDefinitions,omitempty"`
}

// Apply merges the patch into p. Normalization is left to the caller.
func (patch *FirewallPolicyPatch) Apply(p *FirewallPolicy) {
	if patch.Enabled != nil {
		p.Enabled = *patch.Enabled
	}
	if patch.BlockUnauthorizedIPs != nil {
		p.BlockUnauthorizedIPs = *patch.BlockUnauthorizedIPs
	}
	if patch.AllowedDomains != nil {
		p.AllowedDomains = slices.Clone(patch.AllowedDomains)
	}
	if patch.BlockWords != nil {
		p.BlockWords = slices.Clone(patch.BlockWords)
	}
	if patch.SecurityLevel != nil {
		p.SecurityLevel = *patch.SecurityLevel
	}
	if patch.MalwareProtection != nil {
		p.MalwareProtection = *patch.MalwareProtection
	}
	if patch.IntrusionDetection != nil {
		p.IntrusionDetection = *patch.IntrusionDetection
	}
	if patch.AutoUpdateDefinitions != nil {
		p.AutoUpdateDefinitions = *patch.AutoUpdateDefinitions
	}
}
