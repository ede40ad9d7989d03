package expand

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
)

// TokenKind classifies a token for downstream handling.
type TokenKind int

const (
	TokenWord TokenKind = iota
	TokenNumber
	TokenPunct
	// TokenProtected marks spans that must survive verbatim: URLs,
	// e-mail addresses, backtick code spans, quoted strings.
	TokenProtected
)

// Token is an immutable slice of the input. Leading and Trailing hold
// punctuation stripped from the word so output assembly is verbatim.
type Token struct {
	Text       string
	Leading    string
	Trailing   string
	Kind       TokenKind
	Expandable bool
}

// WithExpansion reconstructs the token's surface form around an
// expanded word.
func (t Token) WithExpansion(word string) string {
	return t.Leading + word + t.Trailing
}

var (
	urlRE    = regexp.MustCompile(`(?i)https?://\S+|www\.\S+`)
	codeRE   = regexp.MustCompile("`[^`]+`")
	quotedRE = regexp.MustCompile(`"[^"]*"|'[^']*'`)
	emailRE  = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	numberRE = regexp.MustCompile(`^\d+\.?\d*$`)

	leadingPunctRE  = regexp.MustCompile(`^[(\[{"']+`)
	trailingPunctRE = regexp.MustCompile(`[)\]}.!?,;:"']+$`)
)

// Tokenize splits raw text into tokens. Protected spans become single
// non-expandable tokens; everything else splits on whitespace with
// boundary punctuation peeled into Leading/Trailing. Never fails; blank
// input yields nil.
func Tokenize(text string) []Token {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	type span struct{ start, end int }
	var protected []span
	for _, re := range []*regexp.Regexp{urlRE, codeRE, quotedRE, emailRE} {
		for _, loc := range re.FindAllStringIndex(text, -1) {
			protected = append(protected, span{loc[0], loc[1]})
		}
	}
	sort.Slice(protected, func(i, j int) bool { return protected[i].start < protected[j].start })

	var tokens []Token
	pos := 0
	for _, s := range protected {
		if s.start < pos {
			continue // overlaps a span already emitted
		}
		if pos < s.start {
			tokens = append(tokens, tokenizeChunk(text[pos:s.start])...)
		}
		tokens = append(tokens, Token{Text: text[s.start:s.end], Kind: TokenProtected})
		pos = s.end
	}
	if pos < len(text) {
		tokens = append(tokens, tokenizeChunk(text[pos:])...)
	}
	return tokens
}

// tokenizeChunk splits an unprotected chunk on whitespace.
func tokenizeChunk(chunk string) []Token {
	var tokens []Token
	for _, word := range strings.Fields(chunk) {
		if numberRE.MatchString(word) {
			tokens = append(tokens, Token{Text: word, Kind: TokenNumber})
			continue
		}

		var leading, trailing string
		if m := leadingPunctRE.FindString(word); m != "" {
			leading = m
			word = word[len(m):]
		}
		if m := trailingPunctRE.FindString(word); m != "" {
			trailing = m
			word = word[:len(word)-len(m)]
		}

		if word == "" {
			tokens = append(tokens, Token{Text: leading + trailing, Kind: TokenPunct})
			continue
		}

		tokens = append(tokens, Token{
			Text:       word,
			Leading:    leading,
			Trailing:   trailing,
			Kind:       TokenWord,
			Expandable: isExpandable(word),
		})
	}
	return tokens
}

// isExpandable: at least one letter and nothing but letters/digits, so
// abbreviations like "k8s" qualify while "v1.2-rc" does not.
func isExpandable(word string) bool {
	hasLetter := false
	for _, r := range word {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
		default:
			return false
		}
	}
	return hasLetter
}
