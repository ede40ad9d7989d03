package expand

import "unicode/utf8"

// fuzzyIndex is a rune trie searched with an incremental Levenshtein
// DP: one row per trie edge, a branch abandoned as soon as the row
// minimum exceeds the bound. Adjacent transpositions count as one edit.
// This amortizes the bounded edit-distance search over the shared
// prefixes of the vocabulary instead of comparing against every word.
type fuzzyIndex struct {
	root *fuzzyNode
}

type fuzzyNode struct {
	children map[rune]*fuzzyNode
	word     string // set on terminal nodes
	freq     float64
}

// fuzzyMatch is one vocabulary word within the distance bound.
type fuzzyMatch struct {
	word string
	freq float64
	dist int
}

func newFuzzyIndex(words map[string]float64) *fuzzyIndex {
	idx := &fuzzyIndex{root: &fuzzyNode{children: make(map[rune]*fuzzyNode)}}
	for word, freq := range words {
		idx.insert(word, freq)
	}
	return idx
}

func (idx *fuzzyIndex) insert(word string, freq float64) {
	node := idx.root
	for _, r := range word {
		child, ok := node.children[r]
		if !ok {
			child = &fuzzyNode{children: make(map[rune]*fuzzyNode)}
			node.children[r] = child
		}
		node = child
	}
	node.word = word
	node.freq = freq
}

// search returns every vocabulary word within maxDist edits of token.
// Result order is unspecified; callers score and sort.
func (idx *fuzzyIndex) search(token string, maxDist int) []fuzzyMatch {
	if maxDist < 1 {
		return nil
	}

	runes := []rune(token)
	firstRow := make([]int, len(runes)+1)
	for i := range firstRow {
		firstRow[i] = i
	}

	s := &fuzzySearch{query: runes, maxDist: maxDist}
	for letter, child := range idx.root.children {
		s.walk(child, letter, 0, firstRow, nil)
	}
	return s.results
}

type fuzzySearch struct {
	query   []rune
	maxDist int
	results []fuzzyMatch
}

// walk computes the next Levenshtein row for the edge into node and
// recurses while any cell is still within the bound. prevPrevRow and
// prevLetter carry the state needed for the transposition case.
func (s *fuzzySearch) walk(node *fuzzyNode, letter rune, prevLetter rune, prevRow []int, prevPrevRow []int) {
	cols := len(s.query) + 1
	row := make([]int, cols)
	row[0] = prevRow[0] + 1

	rowMin := row[0]
	for col := 1; col < cols; col++ {
		insCost := row[col-1] + 1
		delCost := prevRow[col] + 1
		subCost := prevRow[col-1]
		if s.query[col-1] != letter {
			subCost++
		}
		d := min(insCost, delCost, subCost)

		// Adjacent transposition counts as a single edit.
		if col >= 2 && prevPrevRow != nil &&
			s.query[col-1] == prevLetter && s.query[col-2] == letter {
			d = min(d, prevPrevRow[col-2]+1)
		}

		row[col] = d
		if d < rowMin {
			rowMin = d
		}
	}

	if node.word != "" && row[cols-1] <= s.maxDist {
		// A length difference beyond the bound can never be within it.
		if diff := utf8.RuneCountInString(node.word) - len(s.query); diff <= s.maxDist && -diff <= s.maxDist {
			s.results = append(s.results, fuzzyMatch{word: node.word, freq: node.freq, dist: row[cols-1]})
		}
	}

	if rowMin <= s.maxDist {
		for childLetter, child := range node.children {
			s.walk(child, childLetter, letter, row, prevRow)
		}
	}
}
