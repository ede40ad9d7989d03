// Package cli handles cmd line input and expansion output for DBG and testing various features
package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/bastiangx/longhand/pkg/expand"
)

var (
	wordStyle      = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#286983", Dark: "#9ccfd8"})
	matchedStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#56949f", Dark: "#31748f"})
	ambiguousStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#ea9d34", Dark: "#f6c177"})
	failedStyle    = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#b4637a", Dark: "#eb6f92"})
	dimStyle       = lipgloss.NewStyle().Faint(true)
)

// InputHandler expands shorthand read from stdin. It drives both the
// interactive loop and pipe mode with the same engine and flags.
type InputHandler struct {
	expander  *expand.Expander
	spaceless bool
	detailed  bool
}

// NewInputHandler handles initialization of the InputHandler with basic parameters
func NewInputHandler(expander *expand.Expander, spaceless, detailed bool) *InputHandler {
	return &InputHandler{
		expander:  expander,
		spaceless: spaceless,
		detailed:  detailed,
	}
}

// Start begins the interface loop.
// It continuously prompts for input, reads a line from stdin,
// and passes the trimmed input to handleInput() for processing.
// Loop terminates if an error occurs while reading from stdin
func (h *InputHandler) Start() error {
	log.Print("longhand CLI")
	reader := bufio.NewReader(os.Stdin)
	log.Print("type shorthand and press Enter to see the expansion (Ctrl+C to exit):")

	for {
		log.Print("> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		h.handleInput(line)
	}
}

// RunPipe expands every line of r onto w, one expansion per line.
// Diagnostics go to the logger so stdout stays clean for scripting.
func (h *InputHandler) RunPipe(r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			fmt.Fprintln(w)
			continue
		}
		report := h.expander.ExpandDetailed(line, h.spaceless)
		if _, err := fmt.Fprintln(w, report.Expanded); err != nil {
			return err
		}
		if report.LLMErr != "" {
			log.Warnf("Fallback resolver failed: %s", report.LLMErr)
		}
	}
	return scanner.Err()
}

// handleInput expands a single line and prints the report.
func (h *InputHandler) handleInput(line string) {
	report := h.expander.ExpandDetailed(line, h.spaceless)

	log.Debugf("Took [ %v ] for input '%s'", report.Elapsed, line)

	log.Printf("%s  %s", wordStyle.Render(report.Expanded),
		dimStyle.Render(fmt.Sprintf("(confidence %.2f)", report.Confidence)))

	if report.Spaceless && len(report.Segments) > 0 {
		log.Printf("segments: %s", strings.Join(report.Segments, " | "))
	}
	if report.LLMErr != "" {
		log.Warnf("Fallback resolver failed: %s", report.LLMErr)
	}
	if !h.detailed {
		return
	}

	for i, tr := range report.Tokens {
		style := outcomeStyle(tr.Outcome)
		marker := ""
		if tr.LLMResolved {
			marker = " *"
		}
		log.Printf("%2d. %-16s -> %-20s %s%s", i+1, tr.Original,
			wordStyle.Render(tr.Expanded),
			style.Render(fmt.Sprintf("[%s %.2f]", tr.Outcome, tr.Confidence)),
			marker)
		for j, sc := range tr.Candidates {
			if j >= 3 {
				break
			}
			log.Print(dimStyle.Render(fmt.Sprintf("      %s (%.3f, %s)", sc.Word, sc.Score, sc.Tier)))
		}
	}
}

func outcomeStyle(o expand.Outcome) lipgloss.Style {
	switch o {
	case expand.OutcomeMatched:
		return matchedStyle
	case expand.OutcomeAmbiguous:
		return ambiguousStyle
	case expand.OutcomeUnresolved:
		return failedStyle
	}
	return dimStyle
}
