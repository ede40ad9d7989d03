package expand

import "strings"

// rerank adds the bigram bonus for the previously resolved word to each
// candidate's score and re-sorts. Pure function of (candidates, prev):
// the input slice is not mutated, so resolving the same token twice
// with the same left context ranks identically.
func (e *Expander) rerank(cands []ScoredCandidate, prev string) []ScoredCandidate {
	if len(cands) == 0 || prev == "" {
		return cands
	}
	prev = strings.ToLower(prev)

	out := make([]ScoredCandidate, len(cands))
	copy(out, cands)
	changed := false
	for i := range out {
		bonus := e.normBigram(prev, out[i].Word)
		if bonus > 0 {
			out[i].ContextBonus = bonus
			out[i].Score += e.cfg.ContextBonusWeight * bonus
			changed = true
		}
	}
	if changed {
		sortCandidates(out)
	}
	return out
}
