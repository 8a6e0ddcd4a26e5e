package worker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ppiankov/plagcheck/internal/model"
)

// mockAnalyzer implements Analyzer
type mockAnalyzer struct {
	failOn string
}

func (m *mockAnalyzer) AnalyzeSource(ctx context.Context, source string) (*model.Report, error) {
	time.Sleep(5 * time.Millisecond)
	if source == m.failOn {
		return nil, errors.New("analysis error")
	}
	return &model.Report{
		ID:    "id-" + source,
		Input: model.InputMeta{Kind: model.InputKindFile, Name: source},
	}, nil
}

func writeList(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "inputs.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestBatchProcessor_ProcessSources(t *testing.T) {
	processor := NewBatchProcessor(&mockAnalyzer{failOn: "b.txt"}, 2)

	sources := []string{"a.txt", "b.txt", "https://example.com/essay"}
	results := processor.ProcessSources(context.Background(), sources)

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}

	for i, res := range results {
		if res.Source != sources[i] {
			t.Errorf("result %d: expected source %s, got %s", i, sources[i], res.Source)
		}
	}

	if results[0].Error != nil || results[0].Report == nil {
		t.Errorf("expected success for a.txt, got %v", results[0].Error)
	}
	if results[1].Error == nil || results[1].Report != nil {
		t.Error("expected failure without report for b.txt")
	}
	if results[2].Report.Input.Name != "https://example.com/essay" {
		t.Errorf("unexpected report name: %s", results[2].Report.Input.Name)
	}
}

func TestBatchProcessor_ProcessSources_Empty(t *testing.T) {
	processor := NewBatchProcessor(&mockAnalyzer{}, 2)

	if results := processor.ProcessSources(context.Background(), nil); len(results) != 0 {
		t.Errorf("expected 0 results, got %d", len(results))
	}
}

func TestBatchProcessor_ProcessSources_Cancelled(t *testing.T) {
	processor := NewBatchProcessor(&mockAnalyzer{}, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := processor.ProcessSources(ctx, []string{"a.txt", "b.txt"})
	for _, res := range results {
		if res.Error == nil {
			continue
		}
		if !errors.Is(res.Error, context.Canceled) {
			t.Errorf("expected context.Canceled for %s, got %v", res.Source, res.Error)
		}
		if res.Source == "" {
			t.Error("skipped result lost its source")
		}
	}
}

func TestReadSourcesFromFile(t *testing.T) {
	path := writeList(t, "essay.txt\n# comment\nhttps://example.com/paper\n   \n thesis.docx   \nessay.txt\n")

	sources, err := ReadSourcesFromFile(path)
	if err != nil {
		t.Fatalf("ReadSourcesFromFile failed: %v", err)
	}

	expected := []string{"essay.txt", "https://example.com/paper", "thesis.docx"}
	if len(sources) != len(expected) {
		t.Fatalf("expected %d sources, got %d: %v", len(expected), len(sources), sources)
	}
	for i, src := range sources {
		if src != expected[i] {
			t.Errorf("expected %s at index %d, got %s", expected[i], i, src)
		}
	}
}

func TestReadSourcesFromFile_NonExistent(t *testing.T) {
	if _, err := ReadSourcesFromFile("non_existent_file.txt"); err == nil {
		t.Error("expected error for non-existent file, got nil")
	}
}

func TestBatchProcessor_ProcessFile(t *testing.T) {
	path := writeList(t, "a.txt\nb.txt\n# comment\n\nc.txt\n")
	processor := NewBatchProcessor(&mockAnalyzer{}, 2)

	results, err := processor.ProcessFile(context.Background(), path)
	if err != nil {
		t.Fatalf("ProcessFile failed: %v", err)
	}
	if len(results) != 3 {
		t.Errorf("expected 3 results, got %d", len(results))
	}

	if _, err := processor.ProcessFile(context.Background(), "no_such_file.txt"); err == nil {
		t.Error("expected error for non-existent file, got nil")
	}
}

func TestAnalysisResult_GetError(t *testing.T) {
	r1 := &AnalysisResult{Source: "a.txt"}
	if r1.GetError() != nil {
		t.Errorf("expected nil error, got %v", r1.GetError())
	}

	expected := errors.New("failed")
	r2 := &AnalysisResult{Source: "a.txt", Error: expected}
	if r2.GetError() != expected {
		t.Errorf("expected %v, got %v", expected, r2.GetError())
	}
}
