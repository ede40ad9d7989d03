package expand

import (
	"sort"

	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"
)

// wordFreq pairs a corpus word with its raw frequency.
type wordFreq struct {
	word string
	freq float64
}

// prefixIndex wraps a patricia trie for exact and prefix lookup.
// Lookup cost depends on token length, not corpus size. Built once at
// expander construction; Insert is only called from AddWords, which is
// documented as a setup-phase operation.
type prefixIndex struct {
	trie *patricia.Trie
}

func newPrefixIndex(words map[string]float64) *prefixIndex {
	idx := &prefixIndex{trie: patricia.NewTrie()}
	for word, freq := range words {
		idx.insert(word, freq)
	}
	return idx
}

func (idx *prefixIndex) insert(word string, freq float64) {
	idx.trie.Set(patricia.Prefix(word), freq)
}

// exact returns the frequency of token if it is a corpus word.
func (idx *prefixIndex) exact(token string) (float64, bool) {
	item := idx.trie.Get(patricia.Prefix(token))
	if item == nil {
		return 0, false
	}
	freq, ok := item.(float64)
	if !ok {
		log.Errorf("Unknown trie item type %T for %q", item, token)
		return 0, false
	}
	return freq, true
}

// prefixCandidates returns every corpus word having token as a proper
// prefix, sorted by frequency descending (ties by word) and truncated
// to topK. Tokens shorter than minLen return nothing to avoid
// combinatorial blowups on 1-2 character tokens.
func (idx *prefixIndex) prefixCandidates(token string, minLen, topK int) []wordFreq {
	if len(token) < minLen {
		return nil
	}

	var out []wordFreq
	err := idx.trie.VisitSubtree(patricia.Prefix(token), func(p patricia.Prefix, item patricia.Item) error {
		word := string(p)
		if word == token {
			return nil // exact match is the caller's concern
		}
		freq, ok := item.(float64)
		if !ok {
			log.Errorf("Unknown trie item type %T for %q", item, word)
			return nil
		}
		out = append(out, wordFreq{word: word, freq: freq})
		return nil
	})
	if err != nil {
		log.Errorf("Visiting trie subtree for %q: %v", token, err)
		return nil
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].freq != out[j].freq {
			return out[i].freq > out[j].freq
		}
		return out[i].word < out[j].word
	})
	if topK > 0 && len(out) > topK {
		out = out[:topK]
	}
	return out
}

// visitPrefixed walks every corpus word having token as a proper prefix
// without collecting or sorting. Used by the segmenter to pick a best
// completion in one pass.
func (idx *prefixIndex) visitPrefixed(token string, fn func(word string, freq float64)) {
	err := idx.trie.VisitSubtree(patricia.Prefix(token), func(p patricia.Prefix, item patricia.Item) error {
		word := string(p)
		if word == token {
			return nil
		}
		if freq, ok := item.(float64); ok {
			fn(word, freq)
		}
		return nil
	})
	if err != nil {
		log.Errorf("Visiting trie subtree for %q: %v", token, err)
	}
}
