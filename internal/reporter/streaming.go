package reporter

import (
	"bufio"
	"fmt"
	"io"

	"github.com/Nomadcxx/mediasort/internal/organizer"
)

// Stream prints one line per placement attempt as it happens and keeps the
// running totals. It is not safe for concurrent use.
type Stream struct {
	out     io.Writer
	w       *bufio.Writer
	summary Summary
}

// NewStream creates a stream writing to w
func NewStream(w io.Writer) *Stream {
	return &Stream{out: w, w: bufio.NewWriter(w)}
}

// Record writes the line for one attempt and flushes it, so watch mode output
// shows up immediately.
func (s *Stream) Record(result organizer.Result, err error) (Outcome, error) {
	outcome := s.summary.Add(result, err)
	if _, werr := fmt.Fprintln(s.w, FormatResult(result, err)); werr != nil {
		return outcome, fmt.Errorf("failed to write result: %w", werr)
	}
	if werr := s.w.Flush(); werr != nil {
		return outcome, fmt.Errorf("failed to write result: %w", werr)
	}
	return outcome, nil
}

// Summary returns the totals recorded so far
func (s *Stream) Summary() Summary {
	return s.summary
}

// Finalize writes the summary block
func (s *Stream) Finalize() error {
	if err := s.w.Flush(); err != nil {
		return err
	}
	if _, err := io.WriteString(s.out, "\n"); err != nil {
		return err
	}
	return WriteSummary(s.out, s.summary)
}
