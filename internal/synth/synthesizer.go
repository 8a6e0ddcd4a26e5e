// Package synth fabricates plagiarism analysis results.
//
// There is no detection engine behind it: the similarity score, sources and
// highlight offsets are derived from the text length, the word count and a
// random source. Inject a deterministic Rand to make results reproducible.
package synth

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ppiankov/plagcheck/internal/model"
)

var (
	// ErrEmptyInput is returned when the text is blank
	ErrEmptyInput = errors.New("empty input")

	// ErrSynthesis wraps failures of the analysis backend (currently only cancellation)
	ErrSynthesis = errors.New("synthesis failed")
)

const (
	maxSources        = 4
	scoredSources     = 3
	minSourceScore    = 20 // Sources must score strictly above this
	highlightMinScore = 30 // Highlights require a total strictly above this
	highlightMinWords = 20 // ... and strictly more words than this
	maxHighlights     = 4
)

// template is a fixed placeholder source and the rule deriving its similarity
type template struct {
	title string
	url   string
	score func(base int, r Rand) int
}

var templates = []template{
	{
		title: "Academic Research Paper on Similar Topics",
		url:   "https://scholar.google.com/example-paper-1",
		score: func(base int, r Rand) int { return base + r.Intn(10) },
	},
	{
		title: "Wikipedia Article - Related Subject Matter",
		url:   "https://en.wikipedia.org/wiki/Example_Topic",
		score: func(base int, r Rand) int { return base - r.Intn(15) },
	},
	{
		title: "Educational Resource Database",
		url:   "https://education.example.com/resource-123",
		score: func(base int, r Rand) int { return base - r.Intn(20) },
	},
	{
		title: "Online Journal Publication",
		url:   "https://journal.example.org/article/456",
		score: func(base int, r Rand) int { return base - r.Intn(25) },
	},
	{
		title: "Research Database Entry",
		url:   "https://research.example.edu/entry/789",
		score: func(base int, r Rand) int { return max(base-r.Intn(30), 15) },
	},
}

// Synthesizer produces mock analysis results
type Synthesizer struct {
	rand  Rand
	delay time.Duration
}

// Option configures a Synthesizer
type Option func(*Synthesizer)

// WithRand sets the random source
func WithRand(r Rand) Option {
	return func(s *Synthesizer) {
		s.rand = r
	}
}

// WithDelay sets the simulated backend latency (0 disables it)
func WithDelay(d time.Duration) Option {
	return func(s *Synthesizer) {
		s.delay = d
	}
}

// NewSynthesizer creates a synthesizer with a time-seeded random source and no delay
func NewSynthesizer(opts ...Option) *Synthesizer {
	s := &Synthesizer{}
	for _, opt := range opts {
		opt(s)
	}
	if s.rand == nil {
		s.rand = NewRand(0)
	}
	return s
}

// Synthesize waits for the simulated latency and builds a result for text.
// The returned result has no OriginalText; the caller attaches it.
func (s *Synthesizer) Synthesize(ctx context.Context, text string) (*model.AnalysisResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}

	if err := s.wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSynthesis, err)
	}

	return s.build(text), nil
}

// wait blocks for the configured delay or until ctx is done
func (s *Synthesizer) wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.delay <= 0 {
		return nil
	}

	timer := time.NewTimer(s.delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (s *Synthesizer) build(text string) *model.AnalysisResult {
	textLength := utf8.RuneCountInString(text)
	wordCount := len(strings.Fields(text))

	base := min(s.rand.Intn(40)+20, 85)

	sources := s.rankSources(base)
	total := totalSimilarity(sources)

	highlights := []model.HighlightInterval{}
	if total > highlightMinScore && wordCount > highlightMinWords {
		highlights = s.highlights(textLength, total)
	}

	return &model.AnalysisResult{
		TotalSimilarity:     total,
		Sources:             sources,
		HighlightedSections: highlights,
	}
}

// rankSources scores every template, drops weak matches and keeps the strongest
func (s *Synthesizer) rankSources(base int) []model.SourceMatch {
	candidates := make([]model.SourceMatch, 0, len(templates))
	for _, t := range templates {
		candidates = append(candidates, model.SourceMatch{
			Title:      t.title,
			URL:        t.url,
			Similarity: t.score(base, s.rand),
		})
	}

	sources := candidates[:0]
	for _, c := range candidates {
		if c.Similarity > minSourceScore {
			sources = append(sources, c)
		}
	}

	sort.SliceStable(sources, func(i, j int) bool {
		return sources[i].Similarity > sources[j].Similarity
	})

	if len(sources) > maxSources {
		sources = sources[:maxSources]
	}
	return sources
}

// totalSimilarity is the half-up rounded mean of the top sources
func totalSimilarity(sources []model.SourceMatch) int {
	n := min(len(sources), scoredSources)
	if n == 0 {
		return 0
	}

	sum := 0
	for _, src := range sources[:n] {
		sum += src.Similarity
	}
	return (2*sum + n) / (2 * n)
}

// highlights spreads up to four jittered intervals evenly over the text
func (s *Synthesizer) highlights(textLength, total int) []model.HighlightInterval {
	count := min(maxHighlights, total/20)
	segmentSize := textLength / (count + 1)

	intervals := make([]model.HighlightInterval, 0, count)
	for i := 0; i < count; i++ {
		baseStart := segmentSize * (i + 1)
		start := max(0, baseStart-30-s.rand.Intn(20))
		end := min(textLength, start+80+s.rand.Intn(40))

		if start < end {
			intervals = append(intervals, model.HighlightInterval{Start: start, End: end})
		}
	}
	return intervals
}

// Stats returns the rune and word counts used by the synthesizer
func Stats(text string) (characters, words int) {
	return utf8.RuneCountInString(text), len(strings.Fields(text))
}
