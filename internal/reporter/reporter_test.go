package reporter

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/Nomadcxx/mediasort/internal/media"
	"github.com/Nomadcxx/mediasort/internal/organizer"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		result organizer.Result
		err    error
		want   Outcome
	}{
		{"moved", organizer.Result{Action: organizer.ActionMoved}, nil, OutcomeMoved},
		{"dry run", organizer.Result{Action: organizer.ActionWouldMove}, nil, OutcomeWouldMove},
		{"in place", organizer.Result{Action: organizer.ActionSkipped}, nil, OutcomeSkipped},
		{"not media", organizer.Result{}, fmt.Errorf("x: %w", media.ErrNotMediaFile), OutcomeNotMedia},
		{"not found", organizer.Result{}, &media.NotFoundError{Kind: media.KindMovie, Title: "x"}, OutcomeUnresolved},
		{"exists", organizer.Result{}, fmt.Errorf("/m/x.mkv: %w", media.ErrAlreadyExists), OutcomeExists},
		{"filesystem", organizer.Result{}, media.FilesystemError("copy", "/m/x.mkv", errors.New("disk full")), OutcomeFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.result, tt.err); got != tt.want {
				t.Errorf("Classify = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFormatResult(t *testing.T) {
	moved := FormatResult(organizer.Result{
		Source:      "/inbox/alien.1979.mkv",
		Destination: "/movies/Alien (1979).mkv",
		Action:      organizer.ActionMoved,
	}, nil)
	if !strings.HasPrefix(moved, "moved") || !strings.Contains(moved, "/inbox/alien.1979.mkv -> /movies/Alien (1979).mkv") {
		t.Errorf("unexpected line %q", moved)
	}

	notFound := FormatResult(organizer.Result{Source: "/inbox/x.mkv"},
		&media.NotFoundError{Kind: media.KindShow, Title: "x"})
	if !strings.HasPrefix(notFound, "not found") || !strings.Contains(notFound, `show "x"`) {
		t.Errorf("unexpected line %q", notFound)
	}

	if strings.Contains(moved, "\n") || strings.Contains(notFound, "\n") {
		t.Error("result lines must be single lines")
	}
}

func TestStreamSummary(t *testing.T) {
	var buf bytes.Buffer
	s := NewStream(&buf)

	s.Record(organizer.Result{Source: "/a.mkv", Destination: "/m/A.mkv", Action: organizer.ActionMoved}, nil)
	s.Record(organizer.Result{Source: "/b.mkv", Destination: "/m/B.mkv", Action: organizer.ActionMoved}, nil)
	s.Record(organizer.Result{Source: "/c.nfo"}, media.ErrNotMediaFile)
	s.Record(organizer.Result{Source: "/d.mkv"}, &media.NotFoundError{Kind: media.KindMovie, Title: "d"})

	sum := s.Summary()
	if sum.Moved != 2 || sum.NotMedia != 1 || sum.Unresolved != 1 || sum.Total() != 4 {
		t.Errorf("summary = %+v", sum)
	}
	if sum.Problems() != 1 {
		t.Errorf("problems = %d, want 1", sum.Problems())
	}

	if got := strings.Count(buf.String(), "\n"); got != 4 {
		t.Errorf("expected 4 lines before finalize, got %d", got)
	}

	if err := s.Finalize(); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "SORT SUMMARY") || !strings.Contains(out, "Moved:       2") {
		t.Errorf("summary missing from output:\n%s", out)
	}
	if strings.Contains(out, "Would move") {
		t.Errorf("would move line printed without dry-run results:\n%s", out)
	}
}

func TestWriteCheckReport(t *testing.T) {
	report := &organizer.CheckReport{
		Root:    "/inbox",
		Scanned: 4,
		Planned: map[string][]string{
			"/movies/Alien (1979).mkv": {"/inbox/a/alien.mkv", "/inbox/b/alien.mkv"},
		},
		Collisions: []organizer.Collision{
			{Destination: "/movies/Alien (1979).mkv", Sources: []string{"/inbox/a/alien.mkv", "/inbox/b/alien.mkv"}},
		},
		Unresolved: []string{"/inbox/unknown.mkv"},
		Existing: []organizer.Result{
			{Source: "/inbox/aliens.mkv", Destination: "/movies/Aliens (1986).mkv"},
		},
	}

	var buf bytes.Buffer
	if err := WriteCheckReport(&buf, report); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	for _, want := range []string{
		"CHECK REPORT",
		"Collisions:  1",
		"COLLISIONS",
		"/movies/Alien (1979).mkv",
		"/inbox/a/alien.mkv",
		"/inbox/b/alien.mkv",
		"NOT FOUND",
		"/inbox/unknown.mkv",
		"ALREADY IN LIBRARY",
		"/movies/Aliens (1986).mkv",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	// a buffer is not a terminal, so no escape codes
	if strings.Contains(out, "\x1b[") {
		t.Errorf("unexpected escape codes in output")
	}
}

func TestWriteCheckReportWithoutCollisions(t *testing.T) {
	var buf bytes.Buffer
	err := WriteCheckReport(&buf, &organizer.CheckReport{Root: "/inbox", Planned: map[string][]string{}})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "No collisions found.") {
		t.Errorf("unexpected output:\n%s", buf.String())
	}
}
