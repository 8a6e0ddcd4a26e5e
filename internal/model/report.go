package model

import "time"

// Report is the complete output of one analysis run
type Report struct {
	ID         string         `json:"id"`          // Analysis identifier (UUID)
	Input      InputMeta      `json:"input"`       // Where the text came from
	AnalyzedAt time.Time      `json:"analyzed_at"` // When the analysis finished
	Words      int            `json:"words"`
	Characters int            `json:"characters"` // Rune count of the analyzed text

	Result   AnalysisResult `json:"result"`   // Score, sources, highlights and original text
	Segments []TextSegment  `json:"segments"` // Annotated text, ready for rendering

	Assessment Assessment `json:"assessment"` // Risk level and diagnostic signals

	LLM *LLMSummary `json:"llm,omitempty"` // Optional narrative (separate, never affects score)
}

// InputKind identifies how the text was acquired
type InputKind string

const (
	InputKindText InputKind = "text" // Pasted or piped text
	InputKindFile InputKind = "file" // Uploaded or local document
	InputKindURL  InputKind = "url"  // Fetched web page
)

// InputMeta describes the provenance of the analyzed text
type InputMeta struct {
	Kind        InputKind `json:"kind"`
	Name        string    `json:"name,omitempty"` // File name or URL
	ContentType string    `json:"content_type,omitempty"`
	Bytes       int64     `json:"bytes"`
}

// RiskLevel buckets the total similarity for display
type RiskLevel string

const (
	RiskHigh     RiskLevel = "high"
	RiskMedium   RiskLevel = "medium"
	RiskLow      RiskLevel = "low"
	RiskOriginal RiskLevel = "original"
)

// Label returns the human-readable name of the level
func (r RiskLevel) Label() string {
	switch r {
	case RiskHigh:
		return "High Risk"
	case RiskMedium:
		return "Medium Risk"
	case RiskLow:
		return "Low Risk"
	default:
		return "Original Content"
	}
}

// Assessment is the transparent interpretation of an AnalysisResult
type Assessment struct {
	Risk    RiskLevel `json:"risk"`
	Signals []Signal  `json:"signals"`
}

// Signal represents a diagnostic signal with transparent scoring data
type Signal struct {
	Type        SignalType             `json:"type"`
	Severity    SignalSeverity         `json:"severity"`
	Description string                 `json:"description"`
	Data        map[string]interface{} `json:"data,omitempty"` // Inputs and formula behind the signal
}

// SignalType classifies the type of diagnostic signal
type SignalType string

const (
	SignalSimilarity            SignalType = "similarity"             // Overall score bucket
	SignalSourceCoverage        SignalType = "source_coverage"        // Number and strength of sources
	SignalHighlightCoverage     SignalType = "highlight_coverage"     // Share of text flagged
	SignalAuthorityDistribution SignalType = "authority_distribution" // Tier mix of matched sources
)

// SignalSeverity indicates the importance of the signal
type SignalSeverity string

const (
	SeverityInfo     SignalSeverity = "info"
	SeverityWarning  SignalSeverity = "warning"
	SeverityCritical SignalSeverity = "critical"
)

// LLMSummary contains an optional LLM-generated narrative
// It never affects scoring and is rendered separately
type LLMSummary struct {
	Enabled   bool     `json:"enabled"`
	Provider  string   `json:"provider,omitempty"`
	Model     string   `json:"model,omitempty"`
	SummaryMD string   `json:"summary_md,omitempty"`
	Warnings  []string `json:"warnings,omitempty"` // Failures only

	TokensUsed        int `json:"tokens_used,omitempty"`
	CitationsVerified int `json:"citations_verified"` // Cited URLs, all drawn from the report's sources
	ReportSources     int `json:"report_sources"`
}
