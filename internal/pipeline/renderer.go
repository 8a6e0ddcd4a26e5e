package pipeline

import (
	"encoding/json"
	"fmt"
	"html"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/ppiankov/plagcheck/internal/model"
	"github.com/ppiankov/plagcheck/internal/score"
)

const (
	ansiHighlight = "\x1b[30;43m"
	ansiBold      = "\x1b[1m"
	ansiReset     = "\x1b[0m"
)

// Renderer writes reports as JSON, Markdown and terminal text
type Renderer struct {
	includeFooter bool
	color         bool
}

// NewRenderer creates a new renderer
func NewRenderer(includeFooter, color bool) *Renderer {
	return &Renderer{
		includeFooter: includeFooter,
		color:         color,
	}
}

// RenderJSON writes report as indented JSON to path
func (r *Renderer) RenderJSON(report *model.Report, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// RenderMarkdown writes report as Markdown to path
func (r *Renderer) RenderMarkdown(report *model.Report, path string) error {
	return os.WriteFile(path, []byte(r.Markdown(report)), 0o644)
}

// RenderLLMMarkdown writes an already rendered LLM summary to path
func (r *Renderer) RenderLLMMarkdown(markdown, path string) error {
	if markdown == "" {
		return nil
	}
	return os.WriteFile(path, []byte(markdown), 0o644)
}

// Markdown renders report. Highlighted segments are wrapped in <mark>.
func (r *Renderer) Markdown(report *model.Report) string {
	var b strings.Builder

	b.WriteString("# Plagiarism Check Report\n\n")
	fmt.Fprintf(&b, "- **Analysis ID:** `%s`\n", report.ID)
	fmt.Fprintf(&b, "- **Input:** %s\n", inputLabel(report.Input))
	fmt.Fprintf(&b, "- **Analyzed:** %s\n", report.AnalyzedAt.Format("2006-01-02 15:04:05 UTC"))
	fmt.Fprintf(&b, "- **Length:** %s words, %s characters\n\n",
		humanize.Comma(int64(report.Words)), humanize.Comma(int64(report.Characters)))

	fmt.Fprintf(&b, "## Similarity: %d%% (%s)\n\n", report.Result.TotalSimilarity, report.Assessment.Risk.Label())

	b.WriteString("## Matched Sources\n\n")
	if len(report.Result.Sources) == 0 {
		b.WriteString("_No sources above the reporting threshold._\n\n")
	} else {
		b.WriteString("| # | Source | Similarity | Level | Authority |\n")
		b.WriteString("|---|---|---|---|---|\n")
		for i, s := range report.Result.Sources {
			fmt.Fprintf(&b, "| %d | [%s](%s) | %d%% | %s | %s |\n",
				i+1, escapeTable(s.Title), s.URL, s.Similarity, score.SourceLevel(s.Similarity), s.Authority)
		}
		b.WriteString("\n")
	}

	if len(report.Assessment.Signals) > 0 {
		b.WriteString("## Signals\n\n")
		for _, sig := range report.Assessment.Signals {
			fmt.Fprintf(&b, "- **%s** (%s): %s\n", sig.Type, sig.Severity, sig.Description)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Text\n\n")
	fmt.Fprintf(&b, "%d highlighted section(s).\n\n", len(report.Result.HighlightedSections))
	for _, seg := range report.Segments {
		text := html.EscapeString(seg.Text)
		if seg.Highlighted {
			fmt.Fprintf(&b, "<mark>%s</mark>", text)
		} else {
			b.WriteString(text)
		}
	}
	b.WriteString("\n")

	if r.includeFooter {
		b.WriteString("\n---\n\n")
		b.WriteString("_Generated by plagcheck. Scores, sources and highlights come from a demonstration engine and do not reflect real matches._\n")
	}

	return b.String()
}

// RenderSummary prints a short terminal summary of report to w
func (r *Renderer) RenderSummary(w io.Writer, report *model.Report) error {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n", r.bold(fmt.Sprintf("Similarity: %d%% (%s)", report.Result.TotalSimilarity, report.Assessment.Risk.Label())))
	fmt.Fprintf(&b, "Input: %s, %s words, analyzed %s\n",
		inputLabel(report.Input), humanize.Comma(int64(report.Words)), humanize.Time(report.AnalyzedAt))

	if len(report.Result.Sources) == 0 {
		b.WriteString("Sources: none above threshold\n")
	} else {
		b.WriteString("Sources:\n")
		for i, s := range report.Result.Sources {
			fmt.Fprintf(&b, "  %d. %3d%%  %-7s %s <%s>\n", i+1, s.Similarity, score.SourceLevel(s.Similarity), s.Title, s.URL)
		}
	}

	b.WriteString("\n")
	for _, seg := range report.Segments {
		b.WriteString(r.segment(seg))
	}
	b.WriteString("\n")

	if report.LLM != nil && report.LLM.Enabled && report.LLM.SummaryMD != "" {
		fmt.Fprintf(&b, "\nSummary (%s): %s\n", report.LLM.Provider, report.LLM.SummaryMD)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func (r *Renderer) segment(seg model.TextSegment) string {
	if !seg.Highlighted {
		return seg.Text
	}
	if r.color {
		return ansiHighlight + seg.Text + ansiReset
	}
	return "[" + seg.Text + "]"
}

func (r *Renderer) bold(s string) string {
	if r.color {
		return ansiBold + s + ansiReset
	}
	return s
}

func inputLabel(in model.InputMeta) string {
	size := humanize.IBytes(uint64(in.Bytes))
	if in.Name == "" {
		return fmt.Sprintf("%s (%s)", in.Kind, size)
	}
	return fmt.Sprintf("%s %s (%s)", in.Kind, in.Name, size)
}

func escapeTable(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
