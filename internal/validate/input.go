// Package validate checks analysis input and classifies matched sources.
package validate

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidInput is returned for text that cannot be analyzed
var ErrInvalidInput = errors.New("invalid input")

// DefaultMinWords is the minimum word count for a meaningful analysis
const DefaultMinWords = 10

// InputError describes why a text was rejected
type InputError struct {
	Reason   string
	Words    int
	MinWords int
}

func (e *InputError) Error() string {
	return e.Reason
}

// Unwrap lets errors.Is match ErrInvalidInput
func (e *InputError) Unwrap() error {
	return ErrInvalidInput
}

// ValidateText rejects blank text and text shorter than minWords words.
// A minWords <= 0 uses DefaultMinWords.
func ValidateText(text string, minWords int) error {
	if minWords <= 0 {
		minWords = DefaultMinWords
	}

	if strings.TrimSpace(text) == "" {
		return &InputError{Reason: "no text provided", MinWords: minWords}
	}

	words := len(strings.Fields(text))
	if words < minWords {
		return &InputError{
			Reason:   fmt.Sprintf("text too short: at least %d words required, got %d", minWords, words),
			Words:    words,
			MinWords: minWords,
		}
	}

	return nil
}
