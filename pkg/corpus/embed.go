package corpus

import (
	_ "embed"
	"fmt"
	"strconv"
	"strings"
	"sync"
)

//go:embed data/words.txt
var embeddedWords string

//go:embed data/bigrams.txt
var embeddedBigrams string

var (
	defaultOnce   sync.Once
	defaultCorpus *Corpus
	defaultErr    error
)

// Default returns the embedded starter corpus: ~1500 common English words
// with Zipf frequencies and ~300 bigrams. Parsed once, shared afterwards.
func Default() (*Corpus, error) {
	defaultOnce.Do(func() {
		words, err := parseEmbeddedWords(embeddedWords)
		if err != nil {
			defaultErr = fmt.Errorf("embedded words: %w", err)
			return
		}
		bigrams, err := parseEmbeddedBigrams(embeddedBigrams)
		if err != nil {
			defaultErr = fmt.Errorf("embedded bigrams: %w", err)
			return
		}
		defaultCorpus, defaultErr = New(words, bigrams)
	})
	return defaultCorpus, defaultErr
}

func parseEmbeddedWords(data string) (map[string]float64, error) {
	words := make(map[string]float64)
	for n, line := range strings.Split(data, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		word, freq, err := splitFreqLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n+1, err)
		}
		words[word] = freq
	}
	return words, nil
}

func parseEmbeddedBigrams(data string) (map[Bigram]float64, error) {
	bigrams := make(map[Bigram]float64)
	for n, line := range strings.Split(data, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, val, ok := strings.Cut(line, "\t")
		if !ok {
			return nil, fmt.Errorf("line %d: missing tab separator", n+1)
		}
		prev, next, ok := strings.Cut(key, " ")
		if !ok {
			return nil, fmt.Errorf("line %d: bigram needs two words, got %q", n+1, key)
		}
		freq, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad frequency %q: %w", n+1, val, err)
		}
		bigrams[Bigram{Prev: prev, Next: next}] = freq
	}
	return bigrams, nil
}
