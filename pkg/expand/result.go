package expand

import "time"

// Tier records which matching tier produced a candidate.
type Tier int

const (
	TierExact Tier = iota
	TierPrefix
	TierFuzzy
)

func (t Tier) String() string {
	switch t {
	case TierExact:
		return "exact"
	case TierPrefix:
		return "prefix"
	case TierFuzzy:
		return "fuzzy"
	}
	return "unknown"
}

// Candidate carries the four raw features feeding the scoring formula,
// each normalized to [0,1].
type Candidate struct {
	Word          string
	PrefixScore   float64
	EditSim       float64
	Frequency     float64
	LengthPenalty float64
	Tier          Tier
}

// ScoredCandidate is a Candidate with its combined score. Ordering is
// Score descending, ties broken by Frequency descending, then Word
// ascending, so candidate lists are fully deterministic.
type ScoredCandidate struct {
	Candidate
	Score        float64
	ContextBonus float64
}

// less reports whether a sorts before b in the candidate total order.
func (a ScoredCandidate) less(b ScoredCandidate) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if a.Frequency != b.Frequency {
		return a.Frequency > b.Frequency
	}
	return a.Word < b.Word
}

// Outcome classifies how a single token was resolved.
type Outcome int

const (
	// OutcomePassThrough: token was already a known word, or not
	// expandable at all (punctuation, number, URL, code span).
	OutcomePassThrough Outcome = iota
	// OutcomeMatched: the top candidate cleared MinConfidence with margin.
	OutcomeMatched
	// OutcomeAmbiguous: the top candidate cleared MinConfidence but the
	// runner-up was within AmbiguityMargin; the top candidate stands
	// unless the fallback resolver overrides it.
	OutcomeAmbiguous
	// OutcomeUnresolved: no candidate cleared MinConfidence; the token
	// is emitted verbatim.
	OutcomeUnresolved
)

func (o Outcome) String() string {
	switch o {
	case OutcomePassThrough:
		return "passthrough"
	case OutcomeMatched:
		return "matched"
	case OutcomeAmbiguous:
		return "ambiguous"
	case OutcomeUnresolved:
		return "unresolved"
	}
	return "unknown"
}

// TokenResult is the per-token outcome inside a Report.
type TokenResult struct {
	Original    string
	Expanded    string
	Confidence  float64
	Outcome     Outcome
	Candidates  []ScoredCandidate
	LLMResolved bool
}

// Report is the detailed result of one expansion run.
//
// Confidence is the arithmetic mean of per-token confidence across all
// tokens (1.0 when every token passed through clean, 0 for empty input).
type Report struct {
	Input      string
	Expanded   string
	Tokens     []TokenResult
	Confidence float64

	// Spaceless reports whether the segmenter ran; Segments then holds
	// the raw word boundaries it found.
	Spaceless bool
	Segments  []string

	// LLMUsed is set when the fallback resolver overrode at least one
	// token. LLMErr records a fallback failure; the local guesses stand.
	LLMUsed bool
	LLMErr  string

	Elapsed          time.Duration
	AmbiguousIndexes []int
}
