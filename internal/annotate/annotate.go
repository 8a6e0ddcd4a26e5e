// Package annotate splits a text into plain and highlighted segments.
package annotate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ppiankov/plagcheck/internal/model"
)

// Policy decides how overlapping or out-of-range intervals are handled
type Policy string

const (
	// PolicyPreserve walks the sorted intervals as given. Overlapping
	// intervals re-emit characters already covered by an earlier segment.
	PolicyPreserve Policy = "preserve"

	// PolicyMerge clamps intervals to the text and merges overlapping or
	// touching ones before the walk, so segments always rebuild the text.
	PolicyMerge Policy = "merge"
)

// ParsePolicy converts a config string into a Policy
func ParsePolicy(s string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PolicyPreserve:
		return PolicyPreserve, nil
	case PolicyMerge:
		return PolicyMerge, nil
	default:
		return "", fmt.Errorf("unknown highlight policy: %s (supported: preserve, merge)", s)
	}
}

// Annotator turns highlight intervals into renderable segments
type Annotator struct {
	Policy Policy
}

// Annotate is shorthand for Annotator{Policy: PolicyPreserve}.Annotate
func Annotate(text string, intervals []model.HighlightInterval) []model.TextSegment {
	return Annotator{Policy: PolicyPreserve}.Annotate(text, intervals)
}

// Annotate partitions text according to intervals (rune offsets).
// The intervals slice is not modified.
func (a Annotator) Annotate(text string, intervals []model.HighlightInterval) []model.TextSegment {
	if len(intervals) == 0 {
		return []model.TextSegment{{Text: text, Highlighted: false}}
	}

	runes := []rune(text)

	var sorted []model.HighlightInterval
	if a.Policy == PolicyMerge {
		sorted = Merge(intervals, len(runes))
	} else {
		sorted = make([]model.HighlightInterval, len(intervals))
		copy(sorted, intervals)
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Start < sorted[j].Start
		})
	}

	segments := make([]model.TextSegment, 0, 2*len(sorted)+1)
	lastIndex := 0

	for _, h := range sorted {
		if h.Start > lastIndex {
			segments = append(segments, model.TextSegment{
				Text: substring(runes, lastIndex, h.Start),
			})
		}

		segments = append(segments, model.TextSegment{
			Text:        substring(runes, h.Start, h.End),
			Highlighted: true,
		})

		lastIndex = h.End
	}

	if lastIndex < len(runes) {
		segments = append(segments, model.TextSegment{
			Text: substring(runes, lastIndex, len(runes)),
		})
	}

	return segments
}

// substring clamps both indices to [0, len(runes)] and swaps them when reversed
func substring(runes []rune, start, end int) string {
	start = clamp(start, 0, len(runes))
	end = clamp(end, 0, len(runes))
	if start > end {
		start, end = end, start
	}
	return string(runes[start:end])
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Merge clamps intervals to [0, length], drops empty ones and merges
// overlapping or touching intervals. The result is sorted and disjoint.
func Merge(intervals []model.HighlightInterval, length int) []model.HighlightInterval {
	clamped := make([]model.HighlightInterval, 0, len(intervals))
	for _, h := range intervals {
		start := clamp(h.Start, 0, length)
		end := clamp(h.End, 0, length)
		if start < end {
			clamped = append(clamped, model.HighlightInterval{Start: start, End: end})
		}
	}

	sort.SliceStable(clamped, func(i, j int) bool {
		return clamped[i].Start < clamped[j].Start
	})

	merged := make([]model.HighlightInterval, 0, len(clamped))
	for _, h := range clamped {
		if n := len(merged); n > 0 && h.Start <= merged[n-1].End {
			if h.End > merged[n-1].End {
				merged[n-1].End = h.End
			}
			continue
		}
		merged = append(merged, h)
	}

	return merged
}

// Coverage returns the number of distinct runes inside intervals, for a text of the given length
func Coverage(intervals []model.HighlightInterval, length int) int {
	covered := 0
	for _, h := range Merge(intervals, length) {
		covered += h.Len()
	}
	return covered
}

// Join concatenates segment texts
func Join(segments []model.TextSegment) string {
	var b strings.Builder
	for _, s := range segments {
		b.WriteString(s.Text)
	}
	return b.String()
}
