package expand

import "strings"

// matchToken runs the three matching tiers for a single lowercased
// token and returns deduplicated candidates sorted by the total order.
// Exact corpus hits are the caller's passthrough concern; this only
// fires for tokens that are not known words (or when passthrough is
// disabled and the caller wants a ranked list anyway).
func (e *Expander) matchToken(token string) []ScoredCandidate {
	token = strings.ToLower(token)

	// Abbreviation overrides win outright.
	if target, ok := e.abbrevs[token]; ok {
		freq := e.normFreq(target)
		return []ScoredCandidate{{
			Candidate: Candidate{
				Word:          target,
				PrefixScore:   1,
				EditSim:       1,
				Frequency:     freq,
				LengthPenalty: 1,
				Tier:          TierExact,
			},
			Score: 1,
		}}
	}

	if _, ok := e.words[token]; ok {
		return []ScoredCandidate{{
			Candidate: Candidate{
				Word:          token,
				PrefixScore:   1,
				EditSim:       1,
				Frequency:     e.normFreq(token),
				LengthPenalty: 1,
				Tier:          TierExact,
			},
			Score: 1,
		}}
	}

	var cands []ScoredCandidate

	for _, wf := range e.prefixes.prefixCandidates(token, e.cfg.MinPrefixLen, e.cfg.TopKPrefix) {
		c := Candidate{
			Word:          wf.word,
			PrefixScore:   float64(len(token)) / float64(len(wf.word)),
			EditSim:       1, // the token is a perfect start of the word
			Frequency:     wf.freq / e.maxFreq,
			LengthPenalty: lengthPenalty(token, wf.word),
			Tier:          TierPrefix,
		}
		cands = append(cands, ScoredCandidate{Candidate: c, Score: combinedScore(c, e.cfg)})
	}

	if len(token) >= e.cfg.MinFuzzyLen {
		cands = append(cands, e.fuzzyCandidates(token)...)
	}

	// Deduplicate by word, keeping the higher-scoring feature set.
	seen := make(map[string]ScoredCandidate, len(cands))
	for _, c := range cands {
		if prev, ok := seen[c.Word]; !ok || c.Score > prev.Score {
			seen[c.Word] = c
		}
	}
	out := make([]ScoredCandidate, 0, len(seen))
	for _, c := range seen {
		out = append(out, c)
	}
	sortCandidates(out)
	return out
}

// fuzzyCandidates scores the bounded edit-distance tier. The bound
// scales with token length and is capped by MaxEditDistance.
func (e *Expander) fuzzyCandidates(token string) []ScoredCandidate {
	bound := int(float64(len(token)) * e.cfg.MaxEditDistanceRatio)
	if bound < 1 {
		bound = 1
	}
	if bound > e.cfg.MaxEditDistance {
		bound = e.cfg.MaxEditDistance
	}

	var cands []ScoredCandidate
	for _, m := range e.fuzzy.search(token, bound) {
		if m.word == token {
			continue
		}
		maxLen := max(len(token), len(m.word))
		c := Candidate{
			Word:          m.word,
			PrefixScore:   prefixOverlap(token, m.word),
			EditSim:       clamp01(1 - float64(m.dist)/float64(maxLen)),
			Frequency:     m.freq / e.maxFreq,
			LengthPenalty: lengthPenalty(token, m.word),
			Tier:          TierFuzzy,
		}
		cands = append(cands, ScoredCandidate{Candidate: c, Score: combinedScore(c, e.cfg)})
	}

	sortCandidates(cands)
	if len(cands) > e.cfg.TopKFuzzy {
		cands = cands[:e.cfg.TopKFuzzy]
	}
	return cands
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
