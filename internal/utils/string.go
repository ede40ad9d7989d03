// Package utils holds small helpers shared across the longhand packages:
// capitalization transfer for expanded words and TOML/file plumbing for
// the config layer.
package utils

// CapitalPositions records which rune positions of s carry an ASCII
// uppercase letter, so the pattern can be re-applied after expansion.
// Returns nil when s has no capitals.
func CapitalPositions(s string) []bool {
	runes := []rune(s)
	positions := make([]bool, len(runes))
	hasCapital := false
	for i, r := range runes {
		if r >= 'A' && r <= 'Z' {
			positions[i] = true
			hasCapital = true
		}
	}
	if !hasCapital {
		return nil
	}
	return positions
}

// ApplyCapitals uppercases word at the recorded positions. Positions
// past the end of word are ignored; a nil pattern returns word as is.
func ApplyCapitals(word string, positions []bool) string {
	if positions == nil {
		return word
	}
	runes := []rune(word)
	for i := 0; i < len(runes) && i < len(positions); i++ {
		if positions[i] && runes[i] >= 'a' && runes[i] <= 'z' {
			runes[i] = runes[i] - 'a' + 'A'
		}
	}
	return string(runes)
}
