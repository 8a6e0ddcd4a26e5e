package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ppiankov/plagcheck/internal/model"
	"github.com/ppiankov/plagcheck/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	textInput   string
	urlInput    string
	jsonOut     string
	mdOut       string
	delay       time.Duration
	seed        int64
	policy      string
	noColor     bool
	noFooter    bool
	llmEnabled  bool
	llmProvider string
	llmModel    string
	timeout     time.Duration
	httpProxy   string
	httpsProxy  string
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check [file|-]",
	Short: "Check text, a document or a URL for plagiarism",
	Long: `Check runs the plagiarism analysis on a single input:
- Pasted text (--text), a file argument, or stdin ("-")
- .txt, .html, .pdf and .docx documents
- A web page (--url), fetched with robots.txt and per-host rate limits

It prints the similarity score, matched sources and highlighted passages,
and optionally writes JSON and Markdown reports.

Example:
  plagcheck check essay.docx
  plagcheck check --text "..." --json report.json
  plagcheck check --url https://example.com/post --md report.md
  cat essay.txt | plagcheck check -`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringVar(&textInput, "text", "", "text to analyze")
	checkCmd.Flags().StringVar(&urlInput, "url", "", "URL of a page or document to analyze")
	checkCmd.Flags().StringVar(&jsonOut, "json", "", "write JSON report to file")
	checkCmd.Flags().StringVar(&mdOut, "md", "", "write Markdown report to file")
	checkCmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "HTTP timeout for URL input")
	checkCmd.Flags().StringVar(&httpProxy, "http-proxy", "", "HTTP proxy URL (overrides HTTP_PROXY env var)")
	checkCmd.Flags().StringVar(&httpsProxy, "https-proxy", "", "HTTPS proxy URL (overrides HTTPS_PROXY env var)")
	addAnalysisFlags(checkCmd)
}

// addAnalysisFlags registers the flags shared by check and batch
func addAnalysisFlags(cmd *cobra.Command) {
	cmd.Flags().DurationVar(&delay, "delay", 2*time.Second, "simulated analysis latency")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed for reproducible results (0 = time-seeded)")
	cmd.Flags().StringVar(&policy, "policy", "preserve", "highlight overlap policy (preserve, merge)")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "disable ANSI highlighting in terminal output")
	cmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")

	// LLM flags
	cmd.Flags().BoolVar(&llmEnabled, "llm", false, "enable LLM summary generation")
	cmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "LLM provider (openai, ollama)")
	cmd.Flags().StringVar(&llmModel, "llm-model", "gpt-4o-mini", "LLM model name")
}

// applyFlags overrides cfg with flags the user set explicitly
func applyFlags(cmd *cobra.Command, cfg *model.Config) error {
	flags := cmd.Flags()
	changed := func(name string) bool {
		f := flags.Lookup(name)
		return f != nil && f.Changed
	}

	if changed("delay") {
		cfg.Analysis.Delay = delay
	}
	if changed("seed") {
		cfg.Analysis.Seed = seed
	}
	if changed("policy") {
		cfg.Analysis.Policy = policy
	}
	if changed("no-color") {
		cfg.Output.Color = !noColor
	}
	if changed("no-footer") {
		cfg.Output.IncludeFooter = !noFooter
	}
	if changed("timeout") {
		cfg.HTTP.Timeout = timeout
	}
	if changed("http-proxy") {
		cfg.HTTP.HTTPProxy = httpProxy
	}
	if changed("https-proxy") {
		cfg.HTTP.HTTPSProxy = httpsProxy
	}
	cfg.Output.Verbose = cfg.Output.Verbose || verbose

	switch {
	case llmEnabled:
		cfg.LLM.Provider = llmProvider
		if changed("llm-model") || cfg.LLM.Model == "" {
			cfg.LLM.Model = llmModel
		}
		if cfg.LLM.Provider == "openai" && cfg.LLM.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	case changed("llm"):
		// --llm=false disables a provider enabled in the config file
		cfg.LLM.Provider = ""
	}

	return nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := applyFlags(cmd, cfg); err != nil {
		return err
	}

	inputs := 0
	for _, set := range []bool{textInput != "", urlInput != "", len(args) == 1} {
		if set {
			inputs++
		}
	}
	if inputs != 1 {
		return errors.New("provide exactly one input: --text, --url, or a file argument")
	}

	p, err := pipeline.NewPipeline(cfg)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if cfg.Output.Verbose {
		fmt.Fprintf(os.Stderr, "⚙️  Analyzing (simulated latency %v)...\n", cfg.Analysis.Delay)
	}

	var report *model.Report
	switch {
	case textInput != "":
		report, err = p.AnalyzeText(ctx, textInput)
	case urlInput != "":
		if cfg.Output.Verbose {
			fmt.Fprintf(os.Stderr, "⚙️  Fetching %s...\n", urlInput)
		}
		report, err = p.AnalyzeURL(ctx, urlInput)
	case args[0] == "-":
		report, err = analyzeStdin(ctx, p, cmd.InOrStdin())
	default:
		report, err = p.AnalyzePath(ctx, args[0])
	}
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	if cfg.Output.Verbose {
		fmt.Fprintf(os.Stderr, "✓ Analysis %s complete: %d%% similarity, %d sources\n",
			report.ID, report.Result.TotalSimilarity, len(report.Result.Sources))
	}

	return p.RenderReport(cmd.OutOrStdout(), report, jsonOut, mdOut, cfg.Output.Verbose)
}

// analyzeStdin reads piped input, detecting documents by content
func analyzeStdin(ctx context.Context, p *pipeline.Pipeline, r io.Reader) (*model.Report, error) {
	return p.AnalyzeFile(ctx, "stdin", "", r)
}
