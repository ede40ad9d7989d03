package expand

import (
	"strings"
	"testing"

	"github.com/bastiangx/longhand/pkg/corpus"
)

func defaultExpander(t *testing.T) *Expander {
	t.Helper()
	c, err := corpus.Default()
	if err != nil {
		t.Fatalf("Loading embedded corpus: %v", err)
	}
	e, err := New(c, DefaultConfig())
	if err != nil {
		t.Fatalf("Building expander: %v", err)
	}
	return e
}

// Tests word boundary recovery on spaceless input.
// Whole real words should win over fragmenting into abbreviations.
func TestSegment(t *testing.T) {
	e := defaultExpander(t)

	testCases := []struct {
		input       string
		expected    []string
		description string
	}{
		{"helloworld", []string{"hello", "world"}, "Two exact words"},
		{"canyouhelp", []string{"can", "you", "help"}, "Three exact words"},
		{"hello", []string{"hello"}, "Single word stays whole"},
		{"canyouéhelp", []string{"can", "you", "é", "help"}, "Unknown multibyte rune segmented around"},
		{"", nil, "Empty input"},
		{"  ", nil, "Whitespace only"},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			got := e.segment(tc.input)
			if len(got) != len(tc.expected) {
				t.Fatalf("segment(%q) = %v, want %v", tc.input, got, tc.expected)
			}
			for i := range tc.expected {
				if got[i] != tc.expected[i] {
					t.Errorf("Segment %d: expected %q, got %q", i, tc.expected[i], got[i])
				}
			}
		})
	}
}

// segmentation must cover the entire input, even gibberish
func TestSegmentCoverage(t *testing.T) {
	e := defaultExpander(t)

	inputs := []string{
		"helloworld",
		"canyouhelp",
		"xqzjv",
		"helloxyzworld",
		"canyouéhelp",
		"a",
	}

	for _, input := range inputs {
		segments := e.segment(input)
		joined := strings.Join(segments, "")
		if joined != input {
			t.Errorf("Segments of %q concatenate to %q, coverage broken", input, joined)
		}
	}
}

// same input, same boundaries, every time
func TestSegmentDeterminism(t *testing.T) {
	e := defaultExpander(t)

	first := strings.Join(e.segment("canyouhelpme"), " ")
	for i := 0; i < 10; i++ {
		if got := strings.Join(e.segment("canyouhelpme"), " "); got != first {
			t.Fatalf("Run %d produced %q, first run produced %q", i, got, first)
		}
	}
}
