package llm

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ppiankov/plagcheck/internal/model"
)

// Summarizer wraps a provider and degrades to warnings on failure
type Summarizer struct {
	provider Provider
	config   Config
	warnOut  io.Writer // nil keeps warnings on the summary only
}

// NewSummarizer creates a summarizer; an empty provider disables it
func NewSummarizer(config Config) (*Summarizer, error) {
	provider, err := NewProvider(config)
	if err != nil {
		return nil, err
	}
	return &Summarizer{provider: provider, config: config, warnOut: os.Stderr}, nil
}

// IsEnabled reports whether a provider is configured
func (s *Summarizer) IsEnabled() bool {
	return s != nil && s.provider != nil
}

// ProviderName returns the configured provider name or ""
func (s *Summarizer) ProviderName() string {
	if !s.IsEnabled() {
		return ""
	}
	return s.provider.Name()
}

// GenerateSummary returns nil when disabled. Provider failures are reported
// as warnings on the returned summary, not as errors.
func (s *Summarizer) GenerateSummary(ctx context.Context, report model.Report) (*model.LLMSummary, error) {
	if !s.IsEnabled() {
		return nil, nil
	}

	summary := &model.LLMSummary{
		Provider: s.ProviderName(),
		Model:    s.config.Model,
	}

	if !s.provider.IsAvailable(ctx) {
		s.warn(summary, "LLM provider %s is not available", s.provider.Name())
		return summary, nil
	}

	summary.Enabled = true
	urls := SourceURLs(report)

	resp, err := s.provider.Summarize(ctx, SummarizeRequest{
		Report:     report,
		SourceURLs: urls,
		Model:      s.config.Model,
		MaxTokens:  s.config.MaxTokens,
	})
	if err != nil {
		s.warn(summary, "Summary generation failed: %v", err)
		return summary, nil
	}

	summary.Model = resp.Model
	summary.SummaryMD = resp.Summary
	summary.TokensUsed = resp.TokensUsed
	summary.CitationsVerified = len(resp.CitedURLs)
	summary.ReportSources = len(urls)

	return summary, nil
}

// warn records a failure on the summary and reports it on warnOut
func (s *Summarizer) warn(summary *model.LLMSummary, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	summary.Warnings = append(summary.Warnings, msg)
	if s.warnOut != nil {
		fmt.Fprintf(s.warnOut, "Warning: %s\n", msg)
	}
}

// RenderSeparateMarkdown renders the summary as its own Markdown document
func RenderSeparateMarkdown(summary *model.LLMSummary) string {
	if summary == nil || !summary.Enabled {
		return ""
	}

	var b strings.Builder
	b.WriteString("# LLM Summary\n\n")
	b.WriteString("> GENERATED CONTENT. The similarity score and sources were determined independently of this text.\n\n")
	fmt.Fprintf(&b, "- **Provider:** %s\n", summary.Provider)
	if summary.Model != "" {
		fmt.Fprintf(&b, "- **Model:** %s\n", summary.Model)
	}
	b.WriteString("\n")

	if summary.SummaryMD == "" {
		b.WriteString("_No summary generated._\n")
	} else {
		b.WriteString(summary.SummaryMD)
		b.WriteString("\n")
	}

	b.WriteString("\n## Usage\n\n")
	if summary.TokensUsed > 0 {
		fmt.Fprintf(&b, "- Tokens used: %d\n", summary.TokensUsed)
	}
	fmt.Fprintf(&b, "- Verified %d citations against %d report sources\n", summary.CitationsVerified, summary.ReportSources)

	if len(summary.Warnings) > 0 {
		b.WriteString("\n## Notes\n\n")
		for _, w := range summary.Warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
	}

	return b.String()
}
