package score

import (
	"fmt"

	"github.com/ppiankov/plagcheck/internal/annotate"
	"github.com/ppiankov/plagcheck/internal/model"
)

// Risk thresholds on the total similarity (inclusive lower bounds)
const (
	HighRiskThreshold   = 75
	MediumRiskThreshold = 50
	LowRiskThreshold    = 25
)

// Scorer interprets an analysis result. It never changes the similarity score.
type Scorer struct{}

// NewScorer creates a new scorer
func NewScorer() *Scorer {
	return &Scorer{}
}

// Assess derives the risk level and diagnostic signals for result
func (s *Scorer) Assess(result model.AnalysisResult) model.Assessment {
	textLength := len([]rune(result.OriginalText))

	signals := []model.Signal{
		s.similaritySignal(result.TotalSimilarity),
		s.sourceCoverage(result.Sources),
		s.highlightCoverage(result.HighlightedSections, textLength),
		s.authorityDistribution(result.Sources),
	}

	return model.Assessment{
		Risk:    RiskFor(result.TotalSimilarity),
		Signals: signals,
	}
}

// RiskFor buckets a total similarity into a risk level
func RiskFor(similarity int) model.RiskLevel {
	switch {
	case similarity >= HighRiskThreshold:
		return model.RiskHigh
	case similarity >= MediumRiskThreshold:
		return model.RiskMedium
	case similarity >= LowRiskThreshold:
		return model.RiskLow
	default:
		return model.RiskOriginal
	}
}

// SourceLevel buckets a single source's similarity for display (high, medium, low)
func SourceLevel(similarity int) model.RiskLevel {
	switch {
	case similarity >= HighRiskThreshold:
		return model.RiskHigh
	case similarity >= MediumRiskThreshold:
		return model.RiskMedium
	default:
		return model.RiskLow
	}
}

func (s *Scorer) similaritySignal(total int) model.Signal {
	risk := RiskFor(total)

	severity := model.SeverityInfo
	switch risk {
	case model.RiskHigh:
		severity = model.SeverityCritical
	case model.RiskMedium:
		severity = model.SeverityWarning
	}

	return model.Signal{
		Type:        model.SignalSimilarity,
		Severity:    severity,
		Description: fmt.Sprintf("Total similarity %d%% (%s)", total, risk.Label()),
		Data: map[string]interface{}{
			"total_similarity": total,
			"risk":             string(risk),
			"formula":          "round(mean(top 3 source similarities))",
			"thresholds": map[string]int{
				"high":   HighRiskThreshold,
				"medium": MediumRiskThreshold,
				"low":    LowRiskThreshold,
			},
		},
	}
}

// sourceCoverage summarizes how many sources matched and how strongly
func (s *Scorer) sourceCoverage(sources []model.SourceMatch) model.Signal {
	if len(sources) == 0 {
		return model.Signal{
			Type:        model.SignalSourceCoverage,
			Severity:    model.SeverityInfo,
			Description: "No matching sources found",
			Data:        map[string]interface{}{"sources": 0},
		}
	}

	top := sources[0]
	strong := 0
	for _, src := range sources {
		if src.Similarity >= MediumRiskThreshold {
			strong++
		}
	}

	severity := model.SeverityInfo
	if top.Similarity >= HighRiskThreshold {
		severity = model.SeverityCritical
	} else if strong > 0 {
		severity = model.SeverityWarning
	}

	return model.Signal{
		Type:        model.SignalSourceCoverage,
		Severity:    severity,
		Description: fmt.Sprintf("%d matching sources, strongest %d%% (%s)", len(sources), top.Similarity, top.Title),
		Data: map[string]interface{}{
			"sources":        len(sources),
			"strong_sources": strong,
			"top_similarity": top.Similarity,
			"top_url":        top.URL,
		},
	}
}

// highlightCoverage reports the share of characters inside flagged sections
func (s *Scorer) highlightCoverage(intervals []model.HighlightInterval, textLength int) model.Signal {
	covered := annotate.Coverage(intervals, textLength)

	ratio := 0.0
	if textLength > 0 {
		ratio = float64(covered) / float64(textLength)
	}

	severity := model.SeverityInfo
	if ratio >= 0.5 {
		severity = model.SeverityCritical
	} else if ratio >= 0.2 {
		severity = model.SeverityWarning
	}

	description := fmt.Sprintf("%d flagged sections covering %.0f%% of the text", len(intervals), ratio*100)
	if len(intervals) == 0 {
		description = "No sections flagged"
	}

	return model.Signal{
		Type:        model.SignalHighlightCoverage,
		Severity:    severity,
		Description: description,
		Data: map[string]interface{}{
			"sections":   len(intervals),
			"covered":    covered,
			"characters": textLength,
			"ratio":      ratio,
			"formula":    "len(merge(intervals)) / characters",
		},
	}
}

// authorityDistribution counts matched sources per authority tier
func (s *Scorer) authorityDistribution(sources []model.SourceMatch) model.Signal {
	primary, secondary, tertiary, unknown := 0, 0, 0, 0
	for _, src := range sources {
		switch src.Authority {
		case model.TierPrimary:
			primary++
		case model.TierSecondary:
			secondary++
		case model.TierTertiary:
			tertiary++
		default:
			unknown++
		}
	}

	severity := model.SeverityInfo
	if primary > 0 {
		severity = model.SeverityWarning
	}

	return model.Signal{
		Type:        model.SignalAuthorityDistribution,
		Severity:    severity,
		Description: fmt.Sprintf("Source authority: %d primary, %d secondary, %d tertiary", primary, secondary, tertiary),
		Data: map[string]interface{}{
			"primary":      primary,
			"secondary":    secondary,
			"tertiary":     tertiary,
			"unclassified": unknown,
			"total":        len(sources),
		},
	}
}
