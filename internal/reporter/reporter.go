package reporter

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Nomadcxx/mediasort/internal/media"
	"github.com/Nomadcxx/mediasort/internal/organizer"
)

// Outcome classifies one placement attempt
type Outcome int

const (
	OutcomeMoved Outcome = iota
	OutcomeWouldMove
	OutcomeSkipped
	OutcomeNotMedia
	OutcomeUnresolved
	OutcomeExists
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeMoved:
		return "moved"
	case OutcomeWouldMove:
		return "would move"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeNotMedia:
		return "not media"
	case OutcomeUnresolved:
		return "not found"
	case OutcomeExists:
		return "exists"
	case OutcomeFailed:
		return "failed"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Classify maps a Place result and error to an outcome
func Classify(result organizer.Result, err error) Outcome {
	switch {
	case err == nil:
		switch result.Action {
		case organizer.ActionMoved:
			return OutcomeMoved
		case organizer.ActionWouldMove:
			return OutcomeWouldMove
		default:
			return OutcomeSkipped
		}
	case errors.Is(err, media.ErrNotMediaFile):
		return OutcomeNotMedia
	case errors.Is(err, media.ErrNotFound):
		return OutcomeUnresolved
	case errors.Is(err, media.ErrAlreadyExists):
		return OutcomeExists
	default:
		return OutcomeFailed
	}
}

// FormatResult renders one placement attempt as a single line
func FormatResult(result organizer.Result, err error) string {
	outcome := Classify(result, err)
	switch outcome {
	case OutcomeMoved, OutcomeWouldMove, OutcomeExists:
		line := fmt.Sprintf("%-10s %s -> %s", outcome, result.Source, result.Destination)
		if result.Reason != "" {
			line += " (" + result.Reason + ")"
		}
		return line
	case OutcomeSkipped:
		return fmt.Sprintf("%-10s %s (%s)", outcome, result.Source, result.Reason)
	case OutcomeNotMedia:
		return fmt.Sprintf("%-10s %s", outcome, result.Source)
	default:
		return fmt.Sprintf("%-10s %s: %v", outcome, result.Source, err)
	}
}

// Summary counts the outcomes of a sort run
type Summary struct {
	Moved      int
	WouldMove  int
	Skipped    int
	NotMedia   int
	Unresolved int
	Exists     int
	Failed     int
}

// Add records one placement attempt and returns its outcome
func (s *Summary) Add(result organizer.Result, err error) Outcome {
	outcome := Classify(result, err)
	switch outcome {
	case OutcomeMoved:
		s.Moved++
	case OutcomeWouldMove:
		s.WouldMove++
	case OutcomeSkipped:
		s.Skipped++
	case OutcomeNotMedia:
		s.NotMedia++
	case OutcomeUnresolved:
		s.Unresolved++
	case OutcomeExists:
		s.Exists++
	case OutcomeFailed:
		s.Failed++
	}
	return outcome
}

// Total is the number of files seen
func (s Summary) Total() int {
	return s.Moved + s.WouldMove + s.Skipped + s.NotMedia + s.Unresolved + s.Exists + s.Failed
}

// Problems is the number of media files that were left in place
func (s Summary) Problems() int {
	return s.Unresolved + s.Exists + s.Failed
}

// WriteSummary prints the totals of a sort run
func WriteSummary(w io.Writer, s Summary) error {
	h := headingStyle(w)

	var sb strings.Builder
	sb.WriteString(h.Render("SORT SUMMARY") + "\n")
	fmt.Fprintf(&sb, "Files seen:  %d\n", s.Total())
	if s.WouldMove > 0 {
		fmt.Fprintf(&sb, "Would move:  %d\n", s.WouldMove)
	}
	fmt.Fprintf(&sb, "Moved:       %d\n", s.Moved)
	fmt.Fprintf(&sb, "Skipped:     %d\n", s.Skipped+s.NotMedia)
	fmt.Fprintf(&sb, "Not found:   %d\n", s.Unresolved)
	fmt.Fprintf(&sb, "Exists:      %d\n", s.Exists)
	fmt.Fprintf(&sb, "Failed:      %d\n", s.Failed)

	_, err := io.WriteString(w, sb.String())
	return err
}

// headingStyle renders bold headings on terminals and plain text elsewhere
func headingStyle(w io.Writer) lipgloss.Style {
	return lipgloss.NewRenderer(w).NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
}
