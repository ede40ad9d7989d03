package expand

import "sort"

// combinedScore is the convex combination of the four candidate
// features. With every feature in [0,1] the result stays in [0,1].
func combinedScore(c Candidate, cfg Config) float64 {
	return cfg.WeightPrefix*c.PrefixScore +
		cfg.WeightEdit*c.EditSim +
		cfg.WeightFrequency*c.Frequency +
		cfg.WeightLength*c.LengthPenalty
}

func sortCandidates(cands []ScoredCandidate) {
	sort.Slice(cands, func(i, j int) bool { return cands[i].less(cands[j]) })
}

// selectBest picks the winner from a candidate list already sorted by
// the total order. Returns nil when no candidate clears MinConfidence.
// ambiguous is set when the runner-up is strictly within
// AmbiguityMargin of the winner; the winner still stands.
func selectBest(sorted []ScoredCandidate, cfg Config) (best *ScoredCandidate, ambiguous bool) {
	if len(sorted) == 0 {
		return nil, false
	}

	top := sorted[0]
	if top.Score < cfg.MinConfidence {
		return nil, false
	}

	if len(sorted) >= 2 && top.Score-sorted[1].Score < cfg.AmbiguityMargin {
		return &top, true
	}
	return &top, false
}

// lengthPenalty prefers candidates whose length makes the token a
// plausible abbreviation. The sweet spot is a token running 40-100% of
// the candidate's length ("hel" -> "help" beats "hel" -> "helicopter").
func lengthPenalty(token, word string) float64 {
	if len(word) == 0 {
		return 0
	}
	ratio := float64(len(token)) / float64(len(word))
	if ratio >= 0.4 && ratio <= 1.0 {
		return 1.0 - abs(0.6-ratio)*0.5
	}
	return max(0, 1.0-abs(0.6-ratio))
}

// prefixOverlap is the shared-prefix length relative to the candidate
// word, the graded prefix feature for fuzzy-tier candidates.
func prefixOverlap(token, word string) float64 {
	tr, wr := []rune(token), []rune(word)
	if len(wr) == 0 {
		return 0
	}
	common := 0
	for common < len(tr) && common < len(wr) && tr[common] == wr[common] {
		common++
	}
	return float64(common) / float64(len(wr))
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
