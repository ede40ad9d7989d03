/*
Package learn persists user corrections so preferred expansions survive
restarts. A Store counts (abbreviation -> word) corrections; the most
corrected word per abbreviation becomes the preference, which callers
feed back into the engine as abbreviation overrides at startup.

The engine itself never touches a Store; it is an external mutator of
the mappings the engine consumes, so the engine can simply be rebuilt
with updated data.
*/
package learn

import "context"

// Store records user corrections and reports learned preferences.
type Store interface {
	// Record counts one correction of abbrev to word.
	Record(ctx context.Context, abbrev, word string) error
	// Preference returns the most corrected word for abbrev, or ""
	// when nothing is recorded.
	Preference(ctx context.Context, abbrev string) (string, error)
	// All returns every learned abbrev -> preferred word pair.
	All(ctx context.Context) (map[string]string, error)
	// Clear drops all recorded corrections.
	Clear(ctx context.Context) error
}

// preferred picks the highest count, ties broken by word ascending so
// the answer is stable across map iteration order.
func preferred(counts map[string]int) string {
	best := ""
	bestCount := 0
	for word, count := range counts {
		if count > bestCount || (count == bestCount && best != "" && word < best) {
			best = word
			bestCount = count
		}
	}
	return best
}
