package corpus

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/edsrzf/mmap-go"
)

// LoadWords reads a word frequency table from a text file.
// Format: one `word<TAB>frequency` per line, '#' comments and blank
// lines skipped. The file is mapped read-only while parsing.
func LoadWords(path string) (map[string]float64, error) {
	data, closer, err := mapFile(path)
	if err != nil {
		return nil, err
	}
	defer closer()

	words := make(map[string]float64)
	err = scanLines(data, func(n int, line string) error {
		word, freq, err := splitFreqLine(line)
		if err != nil {
			return fmt.Errorf("%s:%d: %w", path, n, err)
		}
		words[word] = freq
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Debugf("Loaded %d words from %s", len(words), path)
	return words, nil
}

// LoadBigrams reads a bigram frequency table from a text file.
// Format: one `prev next<TAB>frequency` per line.
func LoadBigrams(path string) (map[Bigram]float64, error) {
	data, closer, err := mapFile(path)
	if err != nil {
		return nil, err
	}
	defer closer()

	bigrams := make(map[Bigram]float64)
	err = scanLines(data, func(n int, line string) error {
		pair, freq, err := splitFreqLine(line)
		if err != nil {
			return fmt.Errorf("%s:%d: %w", path, n, err)
		}
		prev, next, ok := strings.Cut(pair, " ")
		if !ok {
			return fmt.Errorf("%s:%d: bigram needs two words, got %q", path, n, pair)
		}
		bigrams[Bigram{Prev: prev, Next: next}] = freq
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Debugf("Loaded %d bigrams from %s", len(bigrams), path)
	return bigrams, nil
}

// Load builds a Corpus from word and bigram files. bigramsPath may be
// empty; expansion then runs without context re-ranking.
func Load(wordsPath, bigramsPath string) (*Corpus, error) {
	words, err := LoadWords(wordsPath)
	if err != nil {
		return nil, fmt.Errorf("load words: %w", err)
	}

	var bigrams map[Bigram]float64
	if bigramsPath != "" {
		bigrams, err = LoadBigrams(bigramsPath)
		if err != nil {
			return nil, fmt.Errorf("load bigrams: %w", err)
		}
	}
	return New(words, bigrams)
}

// mapFile maps a file read-only and returns its bytes plus a cleanup func.
// Empty files are valid and skip the mapping (mmap rejects zero length).
func mapFile(path string) ([]byte, func(), error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}

	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	if fi.Size() == 0 {
		return nil, func() { f.Close() }, nil
	}

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("mmap %s: %w", path, err)
	}

	closer := func() {
		if err := m.Unmap(); err != nil {
			log.Warnf("Unmapping %s: %v", path, err)
		}
		f.Close()
	}
	return m, closer, nil
}

func scanLines(data []byte, fn func(n int, line string) error) error {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	n := 0
	for scanner.Scan() {
		n++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := fn(n, line); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func splitFreqLine(line string) (string, float64, error) {
	key, val, ok := strings.Cut(line, "\t")
	if !ok {
		return "", 0, fmt.Errorf("missing tab separator in %q", line)
	}
	freq, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
	if err != nil {
		return "", 0, fmt.Errorf("bad frequency %q: %w", val, err)
	}
	return strings.TrimSpace(key), freq, nil
}
