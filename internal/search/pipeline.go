// Package search synthesizes candidate results for a query and filters them
// through the firewall policy. It has no I/O and no persisted state.
//
// Trusted-domain substitution draws from a random source, so identical queries
// can return different domains in slots 0, 3, 6 and 9. Inject a seeded Picker
// when reproducible output is needed.
package search

import (
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/BradenHooton/lumina/internal/models"
)

const (
	// HighSecurityCap bounds the result count at the high security level
	HighSecurityCap = 7
	// MediumSecurityCap bounds the result count at the medium security level
	MediumSecurityCap = 9
	// substitutionStride selects which candidates get a trusted domain
	substitutionStride = 3
)

// Picker returns a uniform integer in [0, n). *rand.Rand from math/rand/v2 satisfies it.
type Picker interface {
	IntN(n int) int
}

// Outcome is the result of running a query through the pipeline
type Outcome struct {
	Results   []models.SearchResult
	Blocked   bool
	BlockedBy string
}

// Pipeline runs the firewall and synthesis stages. Safe for concurrent use.
type Pipeline struct {
	mu     sync.Mutex
	picker Picker
}

// NewPipeline creates a Pipeline drawing substitutions from picker
func NewPipeline(picker Picker) *Pipeline {
	return &Pipeline{picker: picker}
}

// Run executes every stage for query under policy. It never fails; a blocked
// query yields an empty, non-nil result slice.
func (p *Pipeline) Run(query string, policy *models.FirewallPolicy) Outcome {
	if policy.Enabled {
		if word, blocked := MatchBlockWord(query, policy.BlockWords); blocked {
			return Outcome{Results: []models.SearchResult{}, Blocked: true, BlockedBy: word}
		}
	}

	results := Synthesize(query)
	p.substituteTrusted(results)

	if policy.Enabled {
		results = ApplySecurityLevel(results, policy)
	}
	return Outcome{Results: results}
}

// MatchBlockWord reports the first block word contained in query, ignoring case
func MatchBlockWord(query string, words []string) (string, bool) {
	q := strings.ToLower(query)
	for _, w := range words {
		w = strings.ToLower(w)
		if w == "" {
			continue
		}
		if strings.Contains(q, w) {
			return w, true
		}
	}
	return "", false
}

// Synthesize renders the canonical candidates for query in template order
func Synthesize(query string) []models.SearchResult {
	tmpls := templates(query)
	results := make([]models.SearchResult, 0, len(tmpls))
	for i, t := range tmpls {
		domain := t.domain
		if domain == "" {
			domain = ExtractDomain(t.url)
		}
		results = append(results, models.SearchResult{
			ID:             strconv.Itoa(i + 1),
			Title:          t.title,
			URL:            t.url,
			Description:    t.description,
			Domain:         domain,
			Favicon:        t.favicon,
			PublishedDate:  t.date,
			ContentType:    t.contentType,
			RelevanceScore: t.relevance,
		})
	}
	return results
}

// substituteTrusted rewrites every third candidate onto a random trusted domain,
// keeping the URL path
func (p *Pipeline) substituteTrusted(results []models.SearchResult) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i := 0; i < len(results); i += substitutionStride {
		d := TrustedDomains[p.picker.IntN(len(TrustedDomains))]
		r := &results[i]
		r.URL = "https://" + d.Domain + "/" + urlPath(r.URL)
		r.Domain = d.Domain
		r.Favicon = d.Favicon
		r.RelevanceScore = d.Relevance
	}
}

// urlPath returns everything after the host of an absolute URL, without the leading slash
func urlPath(raw string) string {
	parts := strings.Split(raw, "/")
	if len(parts) <= 3 {
		return ""
	}
	return strings.Join(parts[3:], "/")
}

// ApplySecurityLevel filters and caps results for the policy's security level.
// The input order is preserved.
func ApplySecurityLevel(results []models.SearchResult, policy *models.FirewallPolicy) []models.SearchResult {
	switch policy.SecurityLevel {
	case models.SecurityLevelHigh:
		patterns := allowedSuffixes(policy.AllowedDomains)
		kept := make([]models.SearchResult, 0, HighSecurityCap)
		for _, r := range results {
			if len(kept) == HighSecurityCap {
				break
			}
			if matchesAny(r.Domain, patterns) {
				kept = append(kept, r)
			}
		}
		return kept
	case models.SecurityLevelMedium:
		if len(results) > MediumSecurityCap {
			return results[:MediumSecurityCap]
		}
		return results
	default:
		return results
	}
}

// allowedSuffixes strips the leading "*." from each pattern and drops empty ones
func allowedSuffixes(patterns []string) []string {
	out := make([]string, 0, len(patterns))
	for _, p := range patterns {
		p = strings.ToLower(strings.TrimSpace(p))
		p = strings.TrimPrefix(p, "*.")
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func matchesAny(domain string, suffixes []string) bool {
	domain = strings.ToLower(domain)
	for _, s := range suffixes {
		if strings.Contains(domain, s) {
			return true
		}
	}
	return false
}

// ExtractDomain returns the display host of rawURL without a "www." prefix.
// An unparseable URL falls back to the text before the first path separator.
func ExtractDomain(rawURL string) string {
	host := ""
	if u, err := url.Parse(rawURL); err == nil {
		host = u.Hostname()
	}
	if host == "" {
		rest := rawURL
		if i := strings.Index(rest, "://"); i >= 0 {
			rest = rest[i+3:]
		}
		host, _, _ = strings.Cut(rest, "/")
	}
	return strings.TrimPrefix(host, "www.")
}
