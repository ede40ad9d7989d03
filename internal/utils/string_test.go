package utils

import "testing"

func TestCapitalTransfer(t *testing.T) {
	testCases := []struct {
		original    string
		word        string
		expected    string
		description string
	}{
		{"Cn", "can", "Can", "Leading capital"},
		{"cn", "can", "can", "No capitals"},
		{"CN", "can", "CAn", "Both positions capital"},
		{"Hel", "help", "Help", "Pattern shorter than word"},
		{"HELLO", "hi", "HI", "Pattern longer than word"},
		{"éTa", "état", "éTat", "Multibyte rune before a capital"},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			positions := CapitalPositions(tc.original)
			if got := ApplyCapitals(tc.word, positions); got != tc.expected {
				t.Errorf("ApplyCapitals(%q, caps of %q) = %q, want %q",
					tc.word, tc.original, got, tc.expected)
			}
		})
	}
}

func TestCapitalPositionsNil(t *testing.T) {
	if got := CapitalPositions("plain"); got != nil {
		t.Errorf("No capitals should yield nil, got %v", got)
	}
	if got := ApplyCapitals("word", nil); got != "word" {
		t.Errorf("Nil pattern should return word unchanged, got %q", got)
	}
}
