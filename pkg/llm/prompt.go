package llm

import (
	"fmt"
	"strings"
)

const disambiguationSystem = `You are a text expansion assistant. Given abbreviated tokens and their context, determine the most likely full English word for each abbreviation.

Rules:
- Return ONLY the expanded words, one per line, in the same order as the input tokens.
- Each line should contain a single word.
- Choose the word that best fits the sentence context.
- If unsure, pick the most common word that starts with the abbreviation.`

const polishSystem = `You are a text expansion assistant. The user typed shorthand/abbreviated text and a dictionary-based system produced a first-pass expansion. Your job is to fix any incorrect expansions so the final sentence reads naturally.

Rules:
- Return ONLY the corrected full sentence, nothing else.
- Fix words that were clearly expanded wrong.
- Do NOT add words, remove words, or rephrase. Only fix individual word expansions.
- If the expansion already looks correct, return it unchanged.
- Keep the same word count; map each expanded token 1:1.
- Preserve punctuation, URLs, code blocks, and quoted strings exactly.`

// buildDisambiguationPrompt lists each abbreviated token with its local
// candidates and asks for one word per line, in order.
func buildDisambiguationPrompt(queries []Query, sentence string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Context: %q\n\nExpand these abbreviated tokens:\n", sentence)
	for _, q := range queries {
		n := len(q.Candidates)
		if n > 5 {
			n = 5
		}
		fmt.Fprintf(&b, "  %q -> candidates: [%s]\n", q.Token, strings.Join(q.Candidates[:n], ", "))
	}
	b.WriteString("\nReturn one word per line, in order:")
	return b.String()
}

func buildPolishPrompt(original, expanded string) string {
	return fmt.Sprintf("Original shorthand: %q\nDictionary expansion: %q\n\nReturn the corrected sentence:", original, expanded)
}
