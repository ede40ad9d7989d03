/*
Package expand implements the shorthand-to-longhand resolution pipeline.

A raw token stream is tokenized (or segmented, when the input carries no
word boundaries), and each token is resolved against a static frequency
corpus through three matching tiers: exact, prefix (patricia trie) and
fuzzy (bounded edit distance over a trie walk). Candidates are re-ranked
with bigram context from the previously resolved word, scored with a
weighted feature combination, and either accepted, flagged ambiguous, or
left verbatim. Ambiguous tokens can optionally be deferred to a batched
LLM resolver with a hard deadline.

The corpus, trie and fuzzy index are built once at construction and are
read-only afterwards, so a single Expander is safe for concurrent
Expand calls.
*/
package expand

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode"

	"github.com/charmbracelet/log"

	"github.com/bastiangx/longhand/internal/utils"
	"github.com/bastiangx/longhand/pkg/corpus"
	"github.com/bastiangx/longhand/pkg/llm"
)

// topKReport caps how many candidates a TokenResult carries.
const topKReport = 5

// Expander is the expansion engine. Construct with New; safe for
// concurrent use once built.
type Expander struct {
	cfg Config

	words     map[string]float64
	bigrams   map[corpus.Bigram]float64
	abbrevs   map[string]string
	maxFreq   float64
	maxBigram float64

	prefixes *prefixIndex
	fuzzy    *fuzzyIndex

	resolver llm.Resolver
}

// Option adjusts an Expander at construction time.
type Option func(*Expander)

// WithResolver attaches the fallback resolver consulted for ambiguous
// tokens when Config.LLMEnabled is set.
func WithResolver(r llm.Resolver) Option {
	return func(e *Expander) { e.resolver = r }
}

// WithWords adds custom words on top of the corpus.
func WithWords(words map[string]float64) Option {
	return func(e *Expander) { e.AddWords(words) }
}

// WithAbbreviations adds custom abbreviation overrides.
func WithAbbreviations(abbrevs map[string]string) Option {
	return func(e *Expander) { e.AddAbbreviations(abbrevs) }
}

// New validates the config, copies the corpus frequency maps and builds
// the prefix and fuzzy indexes. No partial Expander is ever returned.
func New(c *corpus.Corpus, cfg Config, opts ...Option) (*Expander, error) {
	if c == nil {
		return nil, errors.New("expand: nil corpus")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	words := make(map[string]float64, len(c.Words))
	for w, f := range c.Words {
		words[w] = f
	}
	bigrams := make(map[corpus.Bigram]float64, len(c.Bigrams))
	for b, f := range c.Bigrams {
		bigrams[b] = f
	}

	e := &Expander{
		cfg:       cfg,
		words:     words,
		bigrams:   bigrams,
		abbrevs:   make(map[string]string),
		maxFreq:   c.MaxWordFreq,
		maxBigram: c.MaxBigramFreq,
		prefixes:  newPrefixIndex(words),
		fuzzy:     newFuzzyIndex(words),
	}
	for _, opt := range opts {
		opt(e)
	}
	log.Debugf("Expander ready: %d words, %d bigrams", len(e.words), len(e.bigrams))
	return e, nil
}

// AddWords extends the private corpus copy and both indexes. A setup
// phase operation: not synchronized with in-flight Expand calls.
func (e *Expander) AddWords(words map[string]float64) {
	for w, f := range words {
		w = strings.ToLower(w)
		e.words[w] = f
		if f > e.maxFreq {
			e.maxFreq = f
		}
		e.prefixes.insert(w, f)
		e.fuzzy.insert(w, f)
	}
}

// AddAbbreviations registers abbreviation -> word overrides. Overrides
// beat both matching and known-word passthrough. Setup phase only.
func (e *Expander) AddAbbreviations(abbrevs map[string]string) {
	for a, w := range abbrevs {
		e.abbrevs[strings.ToLower(a)] = strings.ToLower(w)
	}
}

// Expand resolves text and returns the expanded string. Never fails on
// valid text; use ExpandDetailed to observe degraded confidence.
func (e *Expander) Expand(text string, spaceless bool) string {
	return e.ExpandDetailed(text, spaceless).Expanded
}

// ExpandDetailed resolves text and returns the full diagnostic report.
func (e *Expander) ExpandDetailed(text string, spaceless bool) *Report {
	start := time.Now()

	report := &Report{Input: text, Expanded: text, Spaceless: spaceless}
	if strings.TrimSpace(text) == "" {
		report.Elapsed = time.Since(start)
		return report
	}

	working := text
	if spaceless {
		report.Segments = e.segment(text)
		working = strings.Join(report.Segments, " ")
	}

	tokens := Tokenize(working)
	if len(tokens) == 0 {
		report.Elapsed = time.Since(start)
		return report
	}

	pieces := make([]string, len(tokens))
	prev := ""
	for i, tok := range tokens {
		tr, piece := e.resolveToken(tok, prev)
		report.Tokens = append(report.Tokens, tr)
		pieces[i] = piece

		switch tr.Outcome {
		case OutcomeAmbiguous, OutcomeUnresolved:
			report.AmbiguousIndexes = append(report.AmbiguousIndexes, i)
		}
		if isAlphaWord(tr.Expanded) {
			prev = strings.ToLower(tr.Expanded)
		}
	}

	e.resolveWithFallback(report, tokens, pieces)

	report.Expanded = strings.Join(pieces, " ")
	report.Confidence = meanConfidence(report.Tokens)
	report.Elapsed = time.Since(start)
	return report
}

// resolveToken runs the per-token pipeline stage and returns the
// result plus the assembled surface piece.
func (e *Expander) resolveToken(tok Token, prev string) (TokenResult, string) {
	if !tok.Expandable {
		return TokenResult{
			Original:   tok.Text,
			Expanded:   tok.Text,
			Confidence: 1,
			Outcome:    OutcomePassThrough,
		}, tok.WithExpansion(tok.Text)
	}

	lower := strings.ToLower(tok.Text)
	caps := utils.CapitalPositions(tok.Text)

	if _, ok := e.abbrevs[lower]; ok {
		cands := e.matchToken(lower)
		word := utils.ApplyCapitals(cands[0].Word, caps)
		return TokenResult{
			Original:   tok.Text,
			Expanded:   word,
			Confidence: 1,
			Outcome:    OutcomeMatched,
			Candidates: cands,
		}, tok.WithExpansion(word)
	}

	if _, known := e.words[lower]; known && e.cfg.PassthroughKnownWords {
		return TokenResult{
			Original:   tok.Text,
			Expanded:   tok.Text,
			Confidence: 1,
			Outcome:    OutcomePassThrough,
		}, tok.WithExpansion(tok.Text)
	}

	cands := e.rerank(e.matchToken(lower), prev)
	best, ambiguous := selectBest(cands, e.cfg)
	if best == nil {
		return TokenResult{
			Original:   tok.Text,
			Expanded:   tok.Text,
			Confidence: 0,
			Outcome:    OutcomeUnresolved,
			Candidates: truncCandidates(cands),
		}, tok.WithExpansion(tok.Text)
	}

	word := utils.ApplyCapitals(best.Word, caps)
	outcome := OutcomeMatched
	if ambiguous {
		outcome = OutcomeAmbiguous
	}
	// Context bonuses can push a score past 1; confidence stays in [0,1].
	conf := best.Score
	if conf > 1 {
		conf = 1
	}
	return TokenResult{
		Original:   tok.Text,
		Expanded:   word,
		Confidence: conf,
		Outcome:    outcome,
		Candidates: truncCandidates(cands),
	}, tok.WithExpansion(word)
}

// resolveWithFallback batches every ambiguous or unresolved token into
// one resolver call bounded by LLMTimeout. Failures are recorded in the
// report and never propagate; the local guesses stand.
func (e *Expander) resolveWithFallback(report *Report, tokens []Token, pieces []string) {
	if e.resolver == nil || !e.cfg.LLMEnabled || len(report.AmbiguousIndexes) == 0 {
		return
	}

	queries := make([]llm.Query, 0, len(report.AmbiguousIndexes))
	for _, idx := range report.AmbiguousIndexes {
		tr := report.Tokens[idx]
		words := make([]string, 0, len(tr.Candidates))
		for _, c := range tr.Candidates {
			words = append(words, c.Word)
		}
		queries = append(queries, llm.Query{Index: idx, Token: tr.Original, Candidates: words})
	}

	ctx, cancel := context.WithTimeout(context.Background(), e.cfg.LLMTimeout)
	defer cancel()

	resolved, err := e.resolver.ResolveBatch(ctx, queries, strings.Join(pieces, " "))
	if err != nil {
		log.Warnf("Fallback resolver failed, local guesses stand: %v", err)
		report.LLMErr = err.Error()
		return
	}

	var remaining []int
	for _, idx := range report.AmbiguousIndexes {
		word, ok := resolved[idx]
		if !ok || !isAlphaWord(word) {
			remaining = append(remaining, idx)
			continue
		}
		word = strings.ToLower(word)
		caps := utils.CapitalPositions(report.Tokens[idx].Original)
		cased := utils.ApplyCapitals(word, caps)

		report.Tokens[idx].Expanded = cased
		report.Tokens[idx].LLMResolved = true
		report.Tokens[idx].Outcome = OutcomeMatched
		pieces[idx] = tokens[idx].WithExpansion(cased)
		report.LLMUsed = true
	}
	report.AmbiguousIndexes = remaining
}

func truncCandidates(cands []ScoredCandidate) []ScoredCandidate {
	if len(cands) > topKReport {
		cands = cands[:topKReport]
	}
	return cands
}

func meanConfidence(results []TokenResult) float64 {
	if len(results) == 0 {
		return 0
	}
	sum := 0.0
	for _, r := range results {
		sum += r.Confidence
	}
	return sum / float64(len(results))
}

func (e *Expander) normFreq(word string) float64 {
	if e.maxFreq <= 0 {
		return 0
	}
	return e.words[word] / e.maxFreq
}

func (e *Expander) normBigram(prev, next string) float64 {
	if e.maxBigram <= 0 {
		return 0
	}
	return e.bigrams[corpus.Bigram{Prev: prev, Next: next}] / e.maxBigram
}

func isAlphaWord(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
