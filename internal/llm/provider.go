// Package llm generates an optional narrative summary of a report. The
// summary is produced after scoring and never changes it.
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/ppiankov/plagcheck/internal/model"
)

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Summarize generates a summary of the report citing only allowed URLs
	Summarize(ctx context.Context, req SummarizeRequest) (*SummarizeResponse, error)

	// IsAvailable checks if the provider is configured and reachable
	IsAvailable(ctx context.Context) bool
}

// SummarizeRequest contains the input for LLM summarization
type SummarizeRequest struct {
	Report model.Report

	// SourceURLs is the allowlist of URLs the summary may cite
	SourceURLs []string

	// Prompt overrides the default prompt when set
	Prompt string

	Model     string
	MaxTokens int
}

// SummarizeResponse contains the LLM's summary output
type SummarizeResponse struct {
	Summary    string
	CitedURLs  []string // for verification against the allowlist
	Model      string
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "ollama" or "" (disabled)
	Provider string
	Model    string
	APIKey   string
	BaseURL  string
	Timeout  int // seconds

	// StrictCitations rejects summaries citing URLs outside the report
	StrictCitations bool

	MaxTokens int

	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns the disabled default
func DefaultConfig() Config {
	return Config{
		Timeout:         30,
		StrictCitations: true,
		MaxTokens:       400,
	}
}

// SourceURLs returns the report's source URLs in rank order
func SourceURLs(report model.Report) []string {
	urls := make([]string, 0, len(report.Result.Sources))
	for _, s := range report.Result.Sources {
		if s.URL != "" {
			urls = append(urls, s.URL)
		}
	}
	return urls
}

// BuildPrompt constructs the default summarization prompt
func BuildPrompt(report model.Report, sourceURLs []string) string {
	var b strings.Builder

	fmt.Fprintf(&b, `You are summarizing a plagiarism-check report. The similarity figures come from a demonstration engine; describe them, do not judge the author.

RULES:
1. You MUST ONLY cite URLs from this allowed list:
%s

2. Do not cite or invent any other source.
3. Do not change or reinterpret the similarity score.
4. Keep it to 2-3 sentences.

Report:
- Overall similarity: %d%%
- Risk: %s
- Words analyzed: %d
- Highlighted passages: %d

Matched sources:
`, joinURLs(sourceURLs), report.Result.TotalSimilarity, report.Assessment.Risk.Label(),
		report.Words, len(report.Result.HighlightedSections))

	if len(report.Result.Sources) == 0 {
		b.WriteString("- none above threshold\n")
	}
	for _, s := range report.Result.Sources {
		fmt.Fprintf(&b, "- %s (%s): %d%%\n", s.Title, s.URL, s.Similarity)
	}

	if len(report.Assessment.Signals) > 0 {
		b.WriteString("\nSignals:\n")
		for i, signal := range report.Assessment.Signals {
			if i >= 3 {
				break
			}
			fmt.Fprintf(&b, "- %s: %s\n", signal.Type, signal.Description)
		}
	}

	b.WriteString("\nSummarize what the report shows and which sources overlap most.")

	return b.String()
}

func joinURLs(urls []string) string {
	if len(urls) == 0 {
		return "(No source URLs available)"
	}
	var b strings.Builder
	for i, u := range urls {
		if i >= 20 {
			fmt.Fprintf(&b, "\n... and %d more URLs", len(urls)-20)
			break
		}
		fmt.Fprintf(&b, "\n- %s", u)
	}
	return b.String()
}
