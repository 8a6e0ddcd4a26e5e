package validate

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateText(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		min     int
		wantErr bool
		reason  string
	}{
		{name: "empty", text: "", wantErr: true, reason: "no text provided"},
		{name: "blank", text: " \n\t ", wantErr: true, reason: "no text provided"},
		{name: "nine words", text: "one two three four five six seven eight nine", wantErr: true,
			reason: "text too short: at least 10 words required, got 9"},
		{name: "ten words", text: "one two three four five six seven eight nine ten"},
		{name: "surrounding whitespace", text: "\n  one two three four five six seven eight nine ten  \n"},
		{name: "custom minimum", text: "one two three", min: 3},
		{name: "custom minimum missed", text: "one two", min: 3, wantErr: true,
			reason: "text too short: at least 3 words required, got 2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateText(tt.text, tt.min)
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("Expected no error, got %v", err)
				}
				return
			}

			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			if !errors.Is(err, ErrInvalidInput) {
				t.Errorf("Expected ErrInvalidInput, got %v", err)
			}
			if err.Error() != tt.reason {
				t.Errorf("Expected reason %q, got %q", tt.reason, err.Error())
			}
		})
	}
}

func TestValidateText_ReportsCounts(t *testing.T) {
	err := ValidateText(strings.Repeat("w ", 4), 0)

	var inputErr *InputError
	if !errors.As(err, &inputErr) {
		t.Fatalf("Expected *InputError, got %T", err)
	}
	if inputErr.Words != 4 || inputErr.MinWords != DefaultMinWords {
		t.Errorf("Unexpected counts: words=%d min=%d", inputErr.Words, inputErr.MinWords)
	}
}
