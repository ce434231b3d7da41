package search_test

import (
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"github.com/BradenHooton/lumina/internal/models"
	"github.com/BradenHooton/lumina/internal/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedPicker always selects the same index (modulo n)
type fixedPicker int

func (f fixedPicker) IntN(n int) int {
	return int(f) % n
}

const googleIndex = 19

func policyWithLevel(level models.SecurityLevel) *models.FirewallPolicy {
	p := models.DefaultFirewallPolicy(time.Now())
	p.SecurityLevel = level
	return p
}

func TestSynthesize_CanonicalTemplates(t *testing.T) {
	results := search.Synthesize("Machine Learning")

	require.Len(t, results, search.CandidateCount)
	for i, r := range results {
		assert.NotEmpty(t, r.ID)
		assert.Equal(t, i+1, mustAtoi(t, r.ID))
		assert.Contains(t, r.Title, "Machine Learning")
		assert.NotEmpty(t, r.Domain)
		assert.NotEmpty(t, r.ContentType)
	}

	assert.Equal(t, "https://www.machine-learning.org/resources", results[0].URL)
	assert.Equal(t, "machine-learning.org", results[0].Domain)
	assert.Equal(t, "https://en.wikipedia.org/wiki/machine_learning", results[1].URL)
	assert.Equal(t, "wikipedia.org", results[1].Domain)
	assert.Equal(t, "nature.com", results[4].Domain)
	assert.Equal(t, "https://developer.mozilla.org/en-US/docs/machine/learning", results[5].URL)
	assert.Equal(t, models.ContentTypeVideo, results[7].ContentType)
	assert.Equal(t, 97, results[11].RelevanceScore)
}

func TestRun_TrustedSubstitutionEveryThirdSlot(t *testing.T) {
	p := search.NewPipeline(fixedPicker(googleIndex))

	out := p.Run("rust async", policyWithLevel(models.SecurityLevelLow))

	require.Len(t, out.Results, search.CandidateCount)
	for i, r := range out.Results {
		if i%3 == 0 {
			assert.Equal(t, "google.com", r.Domain, "slot %d", i)
			assert.Equal(t, "https://www.google.com/favicon.ico", r.Favicon)
			assert.Equal(t, 90, r.RelevanceScore)
		} else {
			assert.NotEqual(t, "google.com", r.Domain, "slot %d", i)
		}
	}
	assert.Equal(t, "https://google.com/resources", out.Results[0].URL)
	assert.Equal(t, "https://google.com/topics/rust-async", out.Results[3].URL)
	assert.Equal(t, "https://google.com/topics/rust-async", out.Results[9].URL)
}

func TestRun_BlockWordVetoesAtEveryLevel(t *testing.T) {
	levels := []models.SecurityLevel{models.SecurityLevelLow, models.SecurityLevelMedium, models.SecurityLevelHigh}

	for _, level := range levels {
		t.Run(string(level), func(t *testing.T) {
			p := search.NewPipeline(rand.New(rand.NewPCG(1, 2)))

			out := p.Run("buy cheap phishing kit", policyWithLevel(level))

			assert.True(t, out.Blocked)
			assert.Equal(t, "phishing", out.BlockedBy)
			assert.NotNil(t, out.Results)
			assert.Empty(t, out.Results)
		})
	}
}

func TestRun_BlockWordIgnoresCase(t *testing.T) {
	p := search.NewPipeline(fixedPicker(0))
	policy := policyWithLevel(models.SecurityLevelLow)
	policy.BlockWords = []string{"Exploit"}

	out := p.Run("zero-day EXPLOITS list", policy)

	assert.True(t, out.Blocked)
	assert.Equal(t, "exploit", out.BlockedBy)
}

func TestRun_DisabledFirewallSkipsEveryFilter(t *testing.T) {
	p := search.NewPipeline(fixedPicker(0))
	policy := policyWithLevel(models.SecurityLevelHigh)
	policy.Enabled = false

	out := p.Run("phishing awareness", policy)

	assert.False(t, out.Blocked)
	assert.Len(t, out.Results, search.CandidateCount)
}

func TestRun_HighLevelKeepsOnlyAllowedDomains(t *testing.T) {
	for seed := uint64(0); seed < 50; seed++ {
		p := search.NewPipeline(rand.New(rand.NewPCG(seed, seed*7+1)))

		out := p.Run("climate data", policyWithLevel(models.SecurityLevelHigh))

		assert.LessOrEqual(t, len(out.Results), search.HighSecurityCap)
		for _, r := range out.Results {
			ok := strings.Contains(r.Domain, "google.com") ||
				strings.Contains(r.Domain, "bing.com") ||
				strings.Contains(r.Domain, "duckduckgo.com")
			assert.True(t, ok, "unexpected domain %q", r.Domain)
		}
	}
}

func TestRun_HighLevelCapsAtSeven(t *testing.T) {
	p := search.NewPipeline(fixedPicker(googleIndex))
	policy := policyWithLevel(models.SecurityLevelHigh)
	policy.AllowedDomains = []string{"*.com", "*.org", "*.edu"}

	out := p.Run("graph theory", policy)

	require.Len(t, out.Results, search.HighSecurityCap)
	assert.Equal(t, "1", out.Results[0].ID)
	for i := 1; i < len(out.Results); i++ {
		assert.Less(t, mustAtoi(t, out.Results[i-1].ID), mustAtoi(t, out.Results[i].ID))
	}
}

func TestRun_HighLevelSubstitutedGoogleSlots(t *testing.T) {
	p := search.NewPipeline(fixedPicker(googleIndex))

	out := p.Run("graph theory", policyWithLevel(models.SecurityLevelHigh))

	require.Len(t, out.Results, 4)
	for _, r := range out.Results {
		assert.Equal(t, "google.com", r.Domain)
	}
}

func TestRun_MediumLevelKeepsFirstNine(t *testing.T) {
	p := search.NewPipeline(fixedPicker(0))

	out := p.Run("graph theory", policyWithLevel(models.SecurityLevelMedium))

	require.Len(t, out.Results, search.MediumSecurityCap)
	for i, r := range out.Results {
		assert.Equal(t, i+1, mustAtoi(t, r.ID))
	}
}

func TestRun_LowLevelReturnsAllCandidates(t *testing.T) {
	p := search.NewPipeline(fixedPicker(0))

	out := p.Run("graph theory", policyWithLevel(models.SecurityLevelLow))

	assert.Len(t, out.Results, search.CandidateCount)
}

func TestRun_SeededPickerIsReproducible(t *testing.T) {
	a := search.NewPipeline(rand.New(rand.NewPCG(42, 7)))
	b := search.NewPipeline(rand.New(rand.NewPCG(42, 7)))
	policy := policyWithLevel(models.SecurityLevelLow)

	assert.Equal(t, a.Run("golang", policy).Results, b.Run("golang", policy).Results)
}

func TestRun_UnparseableQueryURLsNeverFail(t *testing.T) {
	p := search.NewPipeline(fixedPicker(3))

	out := p.Run("100%zz off", policyWithLevel(models.SecurityLevelLow))

	require.Len(t, out.Results, search.CandidateCount)
	for _, r := range out.Results {
		assert.NotEmpty(t, r.Domain)
	}
	assert.Equal(t, "mitpress.mit.edu", out.Results[2].Domain)
}

func TestMatchBlockWord_SkipsEmptyWords(t *testing.T) {
	_, blocked := search.MatchBlockWord("anything", []string{"", "nope"})
	assert.False(t, blocked)
}

func TestApplySecurityLevel_EmptyPatternMatchesNothing(t *testing.T) {
	policy := policyWithLevel(models.SecurityLevelHigh)
	policy.AllowedDomains = []string{"*.", "  "}

	out := search.ApplySecurityLevel(search.Synthesize("x"), policy)

	assert.Empty(t, out)
}

func TestExtractDomain(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://www.nature.com/subjects/x", "nature.com"},
		{"https://en.wikipedia.org/wiki/x", "en.wikipedia.org"},
		{"https://mitpress.mit.edu/topics/100%zz", "mitpress.mit.edu"},
		{"www.example.com/path", "example.com"},
		{"https://www.a b.org/resources", "a b.org"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, search.ExtractDomain(tt.in))
		})
	}
}
