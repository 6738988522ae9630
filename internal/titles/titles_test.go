package titles

import "testing"

func TestClean(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"plain title", "Document - Editor", "Document - Editor"},
		{"control characters stripped", "Doc\x00ument\t\n", "Document"},
		{"replacement char stripped", "Song � Artist", "Song  Artist"},
		{"unicode preserved", "Zażółć gęślą jaźń — ♪", "Zażółć gęślą jaźń — ♪"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clean(tt.input); got != tt.expected {
				t.Errorf("Clean(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestClean_Idempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"",
		"plain",
		"with\x01control\x1fchars",
		"tabs\tand\nnewlines",
		"high ￿ plane",
	}

	for _, input := range inputs {
		once := Clean(input)
		if twice := Clean(once); twice != once {
			t.Errorf("Clean not idempotent for %q: first %q, second %q", input, once, twice)
		}
	}
}

func TestFormatTwitterTitle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"count after name", "Alice (3) / X", "Alice (@X)"},
		{"count before name", "(2) Alice / X", "Alice (@X)"},
		{"pipe separator", "Alice | X", "Alice (@X)"},
		{"on X noise", "Alice on X / X", "Alice (@X)"},
		{"on Twitter noise", "Alice on Twitter", "Alice (@X)"},
		{"polish noise", "Alice w serwisie X / X", "Alice (@X)"},
		{"no marker passes through", "Random App Window", "Random App Window"},
		{"empty", "", ""},
		{"whitespace only", "   ", "   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatTwitterTitle(tt.input); got != tt.expected {
				t.Errorf("FormatTwitterTitle(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
