package model

// SourceMatch is a document alleged to overlap with the analyzed text
type SourceMatch struct {
	Title      string        `json:"title"`
	URL        string        `json:"url"`
	Similarity int           `json:"similarity"`          // 0-100
	Authority  AuthorityTier `json:"authority,omitempty"` // Filled in by the pipeline
}

// HighlightInterval is a half-open range [Start, End) of rune offsets into the original text
type HighlightInterval struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the number of runes covered by the interval
func (h HighlightInterval) Len() int {
	if h.End <= h.Start {
		return 0
	}
	return h.End - h.Start
}

// AnalysisResult is the outcome of a single similarity analysis
type AnalysisResult struct {
	TotalSimilarity     int                 `json:"total_similarity"`     // 0-100
	Sources             []SourceMatch       `json:"sources"`              // At most 4, descending by similarity
	HighlightedSections []HighlightInterval `json:"highlighted_sections"` // Not guaranteed sorted or disjoint
	OriginalText        string              `json:"original_text,omitempty"`
}

// TextSegment is a contiguous run of the original text
type TextSegment struct {
	Text        string `json:"text"`
	Highlighted bool   `json:"highlighted"`
}
