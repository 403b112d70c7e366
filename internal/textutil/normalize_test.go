package textutil_test

import (
	"testing"

	"greensprint/internal/textutil"
)

func TestNormalizeSpecies(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain", "quercus robur", "Quercus Robur"},
		{"underscores and dots", "acer_platanoides.var", "Acer Platanoides Var"},
		{"extra whitespace", "  tilia   cordata  ", "Tilia Cordata"},
		{"punctuation dropped", "betula (pendula)!", "Betula Pendula"},
		{"already titled", "Pinus Sylvestris", "Pinus Sylvestris"},
		{"empty", "   ", ""},
		{"symbols only", "***", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := textutil.NormalizeSpecies(tc.input); got != tc.expected {
				t.Fatalf("NormalizeSpecies(%q) = %q, want %q", tc.input, got, tc.expected)
			}
		})
	}
}

func TestSanitizeToken(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Sam Plantér", "sam_plant_r"},
		{"rowan-42", "rowan-42"},
		{"  MIXED Case  ", "mixed_case"},
		{"", "unknown"},
		{"___", "unknown"},
	}

	for _, tc := range tests {
		if got := textutil.SanitizeToken(tc.input); got != tc.expected {
			t.Fatalf("SanitizeToken(%q) = %q, want %q", tc.input, got, tc.expected)
		}
	}
}

func TestTernary(t *testing.T) {
	if got := textutil.Ternary(true, "a", "b"); got != "a" {
		t.Fatalf("expected a, got %s", got)
	}
	if got := textutil.Ternary(false, 1, 2); got != 2 {
		t.Fatalf("expected 2, got %d", got)
	}
}
