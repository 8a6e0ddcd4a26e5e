package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/plagcheck/internal/model"
)

// Analyzer analyzes one batch entry: a file path or an http(s) URL
type Analyzer interface {
	AnalyzeSource(ctx context.Context, source string) (*model.Report, error)
}

// AnalysisJob analyzes a single batch entry
type AnalysisJob struct {
	Source   string
	Analyzer Analyzer
}

// Execute runs the analysis
func (j *AnalysisJob) Execute(ctx context.Context) Result {
	report, err := j.Analyzer.AnalyzeSource(ctx, j.Source)
	return &AnalysisResult{
		Source: j.Source,
		Report: report,
		Error:  err,
	}
}

// AnalysisResult is the outcome of one batch entry
type AnalysisResult struct {
	Source string
	Report *model.Report
	Error  error
}

// GetError returns the error from the analysis
func (r *AnalysisResult) GetError() error {
	return r.Error
}

// BatchProcessor analyzes many inputs on a worker pool
type BatchProcessor struct {
	analyzer Analyzer
	pool     *Pool
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(analyzer Analyzer, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		analyzer: analyzer,
		pool:     NewPool(concurrency),
	}
}

// Workers returns the effective number of workers
func (b *BatchProcessor) Workers() int {
	return b.pool.Workers()
}

// ProcessSources analyzes every source and returns results in input order
func (b *BatchProcessor) ProcessSources(ctx context.Context, sources []string) []*AnalysisResult {
	jobs := make([]Job, len(sources))
	for i, src := range sources {
		jobs[i] = &AnalysisJob{Source: src, Analyzer: b.analyzer}
	}

	results := b.pool.Run(ctx, jobs)

	out := make([]*AnalysisResult, len(results))
	for i, r := range results {
		if ar, ok := r.(*AnalysisResult); ok {
			out[i] = ar
			continue
		}
		out[i] = &AnalysisResult{Source: sources[i], Error: r.GetError()}
	}
	return out
}

// ProcessFile reads a source list and analyzes every entry
func (b *BatchProcessor) ProcessFile(ctx context.Context, listPath string) ([]*AnalysisResult, error) {
	sources, err := ReadSourcesFromFile(listPath)
	if err != nil {
		return nil, fmt.Errorf("read sources: %w", err)
	}

	return b.ProcessSources(ctx, sources), nil
}

// ReadSourcesFromFile reads one source per line, skipping blanks, #
// comments and duplicates
func ReadSourcesFromFile(listPath string) ([]string, error) {
	file, err := os.Open(listPath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var sources []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			sources = append(sources, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return sources, nil
}
