package validate

import (
	"testing"

	"github.com/ppiankov/plagcheck/internal/model"
)

func TestAuthorityClassifier_Defaults(t *testing.T) {
	classifier := NewAuthorityClassifier(nil)

	tests := []struct {
		url      string
		expected model.AuthorityTier
		desc     string
	}{
		{
			url:      "https://scholar.google.com/example-paper-1",
			expected: model.TierPrimary,
			desc:     "Scholarly index is primary",
		},
		{
			url:      "https://en.wikipedia.org/wiki/Example_Topic",
			expected: model.TierSecondary,
			desc:     "Encyclopedia subdomain is secondary",
		},
		{
			url:      "https://education.example.com/resource-123",
			expected: model.TierTertiary,
			desc:     "Unknown resource site is tertiary",
		},
		{
			url:      "https://journal.example.org/article/456",
			expected: model.TierSecondary,
			desc:     "Article path pattern is secondary",
		},
		{
			url:      "https://research.example.edu/entry/789",
			expected: model.TierPrimary,
			desc:     ".edu host is primary",
		},
		{
			url:      "https://oxford.ac.uk/research",
			expected: model.TierPrimary,
			desc:     ".ac.uk host is primary",
		},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			result := classifier.Classify(tt.url)
			if result != tt.expected {
				t.Errorf("Expected %v for %s, got %v", tt.expected, tt.url, result)
			}
		})
	}
}

func TestAuthorityClassifier_ConfigPrecedence(t *testing.T) {
	config := &model.AuthorityConfig{
		PrimaryDomains:   []string{"Example.GOV "},
		SecondaryDomains: []string{"britannica.com"},
		DomainMap: map[string]string{
			"blog.britannica.com": "tertiary",
		},
		PathPatterns: []model.PathPattern{
			{Pattern: "^/papers/", Tier: "primary"},
			{Pattern: "([", Tier: "primary"}, // invalid, skipped
		},
	}

	classifier := NewAuthorityClassifier(config)

	tests := []struct {
		url      string
		expected model.AuthorityTier
		desc     string
	}{
		{url: "https://example.gov:8443/page", expected: model.TierPrimary, desc: "Port and case ignored"},
		{url: "https://www.britannica.com/topic", expected: model.TierSecondary, desc: "Subdomain of secondary"},
		{url: "https://blog.britannica.com/post", expected: model.TierTertiary, desc: "Explicit map wins"},
		{url: "https://example.net/papers/1", expected: model.TierPrimary, desc: "Path pattern"},
		{url: "https://example.net/blog/1", expected: model.TierTertiary, desc: "No match"},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			result := classifier.Classify(tt.url)
			if result != tt.expected {
				t.Errorf("Expected %v for %s, got %v", tt.expected, tt.url, result)
			}
		})
	}
}

func TestAuthorityClassifier_InvalidURLs(t *testing.T) {
	classifier := NewAuthorityClassifier(nil)

	for _, raw := range []string{"not-a-url", "://missing-scheme", ""} {
		if got := classifier.Classify(raw); got != model.TierTertiary {
			t.Errorf("Expected tertiary for %q, got %v", raw, got)
		}
	}
}

func TestAuthorityClassifier_ClassifySources(t *testing.T) {
	classifier := NewAuthorityClassifier(nil)

	sources := []model.SourceMatch{
		{Title: "a", URL: "https://scholar.google.com/x", Similarity: 60},
		{Title: "b", URL: "https://example.com/y", Similarity: 40},
	}

	out := classifier.ClassifySources(sources)

	if out[0].Authority != model.TierPrimary || out[1].Authority != model.TierTertiary {
		t.Errorf("Unexpected tiers: %v, %v", out[0].Authority, out[1].Authority)
	}
	if sources[0].Authority != model.TierUnknown {
		t.Error("Expected input slice to be left untouched")
	}
	if out[0].Similarity != 60 || out[1].Title != "b" {
		t.Error("Expected other fields to be copied")
	}
}

func TestParseTierString(t *testing.T) {
	tests := []struct {
		input    string
		expected model.AuthorityTier
	}{
		{input: "primary", expected: model.TierPrimary},
		{input: "PRIMARY", expected: model.TierPrimary},
		{input: "1", expected: model.TierPrimary},
		{input: "secondary", expected: model.TierSecondary},
		{input: "2", expected: model.TierSecondary},
		{input: "tertiary", expected: model.TierTertiary},
		{input: "unknown", expected: model.TierTertiary},
		{input: "", expected: model.TierTertiary},
	}

	for _, tt := range tests {
		if result := parseTierString(tt.input); result != tt.expected {
			t.Errorf("Expected %v for %q, got %v", tt.expected, tt.input, result)
		}
	}
}
