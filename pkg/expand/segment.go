package expand

import (
	"strings"
	"unicode/utf8"
)

// Substring scoring constants for the segmenter.
const (
	// segAbbrevPenalty discounts prefix matches against exact words.
	segAbbrevPenalty = 0.4
	// segExactLenBonus rewards longer exact matches so real words are
	// not fragmented into short ones.
	segExactLenBonus = 0.8
	// segAbbrevLenBonus is the smaller per-character reward for
	// abbreviation segments.
	segAbbrevLenBonus = 0.15
	// segShortPenalty punishes single-character abbreviations that are
	// not words themselves.
	segShortPenalty = 3.0
	// segUnknownCharScore is the bounded penalty for a character no
	// corpus word can explain. It keeps every position reachable, so
	// segmentation always covers the whole input.
	segUnknownCharScore = -2.0
	// segBigramWeight scales the bigram bonus between adjacent segments.
	segBigramWeight = 0.5
)

type dpEntry struct {
	score   float64
	back    int    // start index of the last segment
	word    string // corpus word the segment matched (may differ from the raw segment)
	reached bool
}

// segment finds word boundaries in spaceless text with a Viterbi-style
// dynamic program: best[i] is the best segmentation of the first i
// characters, extended by every candidate segment ending at i whose
// length is capped by MaxWordLen. Ties prefer the longer last segment,
// which discourages spurious over-segmentation. Empty input yields nil.
func (e *Expander) segment(text string) []string {
	runes := []rune(strings.ToLower(strings.TrimSpace(text)))
	n := len(runes)
	if n == 0 {
		return nil
	}

	best := make([]dpEntry, n+1)
	best[0] = dpEntry{reached: true}

	maxLen := e.cfg.MaxWordLen
	for i := 1; i <= n; i++ {
		for length := 1; length <= maxLen && length <= i; length++ {
			j := i - length
			if !best[j].reached {
				continue
			}

			sub := string(runes[j:i])
			score, matched, ok := e.scoreSegment(sub, length)
			if !ok {
				continue
			}

			total := best[j].score + score
			if best[j].word != "" && matched != "" {
				total += segBigramWeight * e.normBigram(best[j].word, matched)
			}

			prevLen := i - best[i].back
			if !best[i].reached || total > best[i].score ||
				(total == best[i].score && length > prevLen) {
				word := matched
				if word == "" {
					word = sub
				}
				best[i] = dpEntry{score: total, back: j, word: word, reached: true}
			}
		}
	}

	// Single-character fallback makes every position reachable.
	var segments []string
	for pos := n; pos > 0; {
		start := best[pos].back
		segments = append(segments, string(runes[start:pos]))
		pos = start
	}
	for i, j := 0, len(segments)-1; i < j; i, j = i+1, j-1 {
		segments[i], segments[j] = segments[j], segments[i]
	}
	return segments
}

// scoreSegment scores a substring as a potential segment. length is
// the substring's rune count. matched is the corpus word it stands
// for ("" when none). ok is false when the substring cannot start a
// segment at all.
func (e *Expander) scoreSegment(sub string, length int) (score float64, matched string, ok bool) {
	// Exact corpus word, strongly preferred.
	if freq, found := e.prefixes.exact(sub); found {
		return freq/e.maxFreq + float64(length)*segExactLenBonus, sub, true
	}

	// Prefix of a longer corpus word: an abbreviation segment.
	bestScore := 0.0
	bestWord := ""
	e.prefixes.visitPrefixed(sub, func(word string, freq float64) {
		ratio := float64(length) / float64(utf8.RuneCountInString(word))
		s := (freq/e.maxFreq)*segAbbrevPenalty*ratio + float64(length)*segAbbrevLenBonus
		if bestWord == "" || s > bestScore || (s == bestScore && word < bestWord) {
			bestScore = s
			bestWord = word
		}
	})
	if bestWord != "" {
		if length == 1 {
			bestScore -= segShortPenalty
		}
		return bestScore, bestWord, true
	}

	// Unknown single character: bounded penalty, never a dead end.
	if length == 1 {
		return segUnknownCharScore, "", true
	}
	return 0, "", false
}
