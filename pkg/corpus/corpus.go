/*
Package corpus holds the static frequency data the expansion engine reads:
a word -> frequency mapping and a bigram -> frequency mapping.

Frequencies are on a Zipf-like scale (7.0 for "the", ~1.0 for very rare
words). A Corpus is immutable after construction; the engine copies the maps
it needs, so a single Corpus value can back any number of expander instances.
*/
package corpus

import (
	"errors"
	"fmt"
)

var (
	// ErrEmpty means the word table had no entries.
	ErrEmpty = errors.New("corpus: no words")
	// ErrNegativeFrequency means a word or bigram carried a negative frequency.
	ErrNegativeFrequency = errors.New("corpus: negative frequency")
)

// Bigram is an ordered word pair.
type Bigram struct {
	Prev string
	Next string
}

// Corpus is the immutable frequency data for the expansion engine.
type Corpus struct {
	Words   map[string]float64
	Bigrams map[Bigram]float64

	// Maximums are precomputed so scoring can normalize to [0,1]
	// without rescanning the maps.
	MaxWordFreq   float64
	MaxBigramFreq float64
}

// New validates the mappings and builds a Corpus. The maps are referenced,
// not copied; callers must not mutate them afterwards.
func New(words map[string]float64, bigrams map[Bigram]float64) (*Corpus, error) {
	if len(words) == 0 {
		return nil, ErrEmpty
	}

	maxWord := 0.0
	for w, f := range words {
		if f < 0 {
			return nil, fmt.Errorf("%w: word %q", ErrNegativeFrequency, w)
		}
		if f > maxWord {
			maxWord = f
		}
	}

	maxBigram := 0.0
	for b, f := range bigrams {
		if f < 0 {
			return nil, fmt.Errorf("%w: bigram %q %q", ErrNegativeFrequency, b.Prev, b.Next)
		}
		if f > maxBigram {
			maxBigram = f
		}
	}

	if bigrams == nil {
		bigrams = make(map[Bigram]float64)
	}

	return &Corpus{
		Words:         words,
		Bigrams:       bigrams,
		MaxWordFreq:   maxWord,
		MaxBigramFreq: maxBigram,
	}, nil
}

// NormWordFreq returns a word's frequency scaled to [0,1].
func (c *Corpus) NormWordFreq(word string) float64 {
	if c.MaxWordFreq <= 0 {
		return 0
	}
	return c.Words[word] / c.MaxWordFreq
}

// NormBigramFreq returns a bigram's frequency scaled to [0,1].
// Absent bigrams score zero.
func (c *Corpus) NormBigramFreq(prev, next string) float64 {
	if c.MaxBigramFreq <= 0 {
		return 0
	}
	return c.Bigrams[Bigram{Prev: prev, Next: next}] / c.MaxBigramFreq
}
