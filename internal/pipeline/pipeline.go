// Package pipeline runs an analysis end to end: acquire text, validate,
// synthesize a result, annotate, assess and render.
package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ppiankov/plagcheck/internal/annotate"
	"github.com/ppiankov/plagcheck/internal/extract"
	"github.com/ppiankov/plagcheck/internal/llm"
	"github.com/ppiankov/plagcheck/internal/model"
	"github.com/ppiankov/plagcheck/internal/score"
	"github.com/ppiankov/plagcheck/internal/synth"
	"github.com/ppiankov/plagcheck/internal/validate"
)

// Pipeline orchestrates one analysis
type Pipeline struct {
	fetcher     *Fetcher
	extractor   *extract.Extractor
	synthesizer *synth.Synthesizer
	annotator   annotate.Annotator
	classifier  *validate.AuthorityClassifier
	scorer      *score.Scorer
	renderer    *Renderer
	summarizer  *llm.Summarizer // nil when LLM summaries are disabled
	config      *model.Config
	now         func() time.Time
}

// Option customizes a Pipeline
type Option func(*Pipeline)

// WithSynthesizer replaces the synthesizer built from config
func WithSynthesizer(s *synth.Synthesizer) Option {
	return func(p *Pipeline) {
		p.synthesizer = s
	}
}

// WithSummarizer replaces the summarizer built from config
func WithSummarizer(s *llm.Summarizer) Option {
	return func(p *Pipeline) {
		p.summarizer = s
	}
}

// WithClock sets the time source for AnalyzedAt
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		p.now = now
	}
}

// NewPipeline creates a pipeline from cfg
func NewPipeline(cfg *model.Config, opts ...Option) (*Pipeline, error) {
	policy, err := annotate.ParsePolicy(cfg.Analysis.Policy)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		fetcher:    NewFetcher(cfg.HTTP),
		extractor:  extract.NewExtractor(cfg.Input.MaxBytes),
		annotator:  annotate.Annotator{Policy: policy},
		classifier: validate.NewAuthorityClassifier(&cfg.Authority),
		scorer:     score.NewScorer(),
		renderer:   NewRenderer(cfg.Output.IncludeFooter, cfg.Output.Color),
		config:     cfg,
		now:        time.Now,
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.synthesizer == nil {
		p.synthesizer = synth.NewSynthesizer(
			synth.WithRand(synth.NewRand(cfg.Analysis.Seed)),
			synth.WithDelay(cfg.Analysis.Delay),
		)
	}

	if p.summarizer == nil && cfg.LLM.Provider != "" {
		s, err := llm.NewSummarizer(llm.ConfigFromModel(cfg))
		if err != nil {
			return nil, fmt.Errorf("llm: %w", err)
		}
		p.summarizer = s
	}

	return p, nil
}

// AnalyzeText analyzes pasted text
func (p *Pipeline) AnalyzeText(ctx context.Context, text string) (*model.Report, error) {
	text = extract.Normalize(text)
	return p.analyze(ctx, text, model.InputMeta{
		Kind:        model.InputKindText,
		ContentType: extract.ContentTypeText,
		Bytes:       int64(len(text)),
	})
}

// AnalyzeFile extracts text from an uploaded document and analyzes it
func (p *Pipeline) AnalyzeFile(ctx context.Context, name, contentType string, r io.Reader) (*model.Report, error) {
	doc, err := p.extractor.Extract(name, contentType, r)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", name, err)
	}

	return p.analyze(ctx, doc.Text, model.InputMeta{
		Kind:        model.InputKindFile,
		Name:        name,
		ContentType: doc.ContentType,
		Bytes:       doc.Bytes,
	})
}

// AnalyzePath reads a local document and analyzes it
func (p *Pipeline) AnalyzePath(ctx context.Context, path string) (*model.Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer func() { _ = f.Close() }()

	return p.AnalyzeFile(ctx, filepath.Base(path), "", f)
}

// AnalyzeURL fetches a document and analyzes it
func (p *Pipeline) AnalyzeURL(ctx context.Context, rawURL string) (*model.Report, error) {
	fetched, err := p.fetcher.FetchWithRetry(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}

	// Only the URL path carries a usable file extension
	name := fetched.FinalURL
	if u, err := url.Parse(fetched.FinalURL); err == nil {
		name = u.Path
	}

	doc, err := p.extractor.Extract(name, fetched.ContentType, bytes.NewReader(fetched.Body))
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", fetched.FinalURL, err)
	}

	return p.analyze(ctx, doc.Text, model.InputMeta{
		Kind:        model.InputKindURL,
		Name:        fetched.FinalURL,
		ContentType: doc.ContentType,
		Bytes:       doc.Bytes,
	})
}

// AnalyzeSource analyzes a batch entry: an http(s) URL or a local path
func (p *Pipeline) AnalyzeSource(ctx context.Context, source string) (*model.Report, error) {
	if IsURL(source) {
		return p.AnalyzeURL(ctx, source)
	}
	return p.AnalyzePath(ctx, source)
}

// IsURL reports whether source should be fetched rather than opened
func IsURL(source string) bool {
	lower := strings.ToLower(source)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

func (p *Pipeline) analyze(ctx context.Context, text string, meta model.InputMeta) (*model.Report, error) {
	// 1. Reject blank or short input before paying for the delay
	if err := validate.ValidateText(text, p.config.Analysis.MinWords); err != nil {
		return nil, err
	}

	// 2. Synthesize
	result, err := p.synthesizer.Synthesize(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("synthesize: %w", err)
	}

	// 3. Tag source authority and attach the text
	result.Sources = p.classifier.ClassifySources(result.Sources)
	result.OriginalText = text

	// 4. Annotate and assess
	characters, words := synth.Stats(text)
	report := &model.Report{
		ID:         uuid.NewString(),
		Input:      meta,
		AnalyzedAt: p.now().UTC(),
		Words:      words,
		Characters: characters,
		Result:     *result,
		Segments:   p.annotator.Annotate(text, result.HighlightedSections),
		Assessment: p.scorer.Assess(*result),
	}

	// 5. Optional narrative, after scoring
	if p.summarizer.IsEnabled() {
		summary, err := p.summarizer.GenerateSummary(ctx, *report)
		if err == nil {
			report.LLM = summary
		}
	}

	return report, nil
}

// RenderReport writes the requested report files and prints the terminal
// summary to w
func (p *Pipeline) RenderReport(w io.Writer, report *model.Report, jsonPath, mdPath string, verbose bool) error {
	if jsonPath != "" {
		if err := p.renderer.RenderJSON(report, jsonPath); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote JSON: %s\n", jsonPath)
		}
	}

	if mdPath != "" {
		if err := p.renderer.RenderMarkdown(report, mdPath); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote Markdown: %s\n", mdPath)
		}
	}

	if report.LLM != nil && report.LLM.Enabled && mdPath != "" {
		llmPath := strings.TrimSuffix(mdPath, ".md") + ".llm.md"
		if err := p.renderer.RenderLLMMarkdown(llm.RenderSeparateMarkdown(report.LLM), llmPath); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to write LLM summary: %v\n", err)
		} else if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote LLM Summary: %s\n", llmPath)
		}
	}

	return p.renderer.RenderSummary(w, report)
}
