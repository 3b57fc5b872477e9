package organizer

import (
	"context"
	"errors"
	"sort"

	"go.uber.org/zap"

	"github.com/Nomadcxx/mediasort/internal/media"
)

// Collision is a destination claimed by more than one source
type Collision struct {
	Destination string
	Sources     []string
}

// Failure is a file that could not be evaluated
type Failure struct {
	Source string
	Err    error
}

// CheckReport is the outcome of a read-only sweep
type CheckReport struct {
	Root       string
	Scanned    int
	Planned    map[string][]string // destination -> sources, in walk order
	Collisions []Collision         // sorted by destination
	Unresolved []string            // sorted
	Existing   []Result            // destination already in the library, sorted
	Failed     []Failure
}

// HasCollisions reports whether any destination is claimed twice
func (r *CheckReport) HasCollisions() bool {
	return len(r.Collisions) > 0
}

// Check plans every file under root in dry-run mode and groups the results by
// destination. Nothing on disk is changed. Cancelling ctx stops the walk and
// returns the partial report with ctx's error.
func (o *Organizer) Check(ctx context.Context, root string) (*CheckReport, error) {
	report := &CheckReport{
		Root:    root,
		Planned: make(map[string][]string),
	}

	walkErr := o.Walk(ctx, root, func(path string, err error) error {
		if err != nil {
			report.Failed = append(report.Failed, Failure{Source: path, Err: err})
			return nil
		}

		report.Scanned++
		result, err := o.Place(ctx, path, true)
		switch {
		case err == nil:
			report.Planned[result.Destination] = append(report.Planned[result.Destination], result.Source)
			if result.Reason == reasonOverwrite {
				report.Existing = append(report.Existing, result)
			}
		case errors.Is(err, media.ErrNotMediaFile):
			o.logger.Debug("not a media file", zap.String("path", path))
		case errors.Is(err, media.ErrNotFound):
			report.Unresolved = append(report.Unresolved, result.Source)
		case errors.Is(err, media.ErrAlreadyExists):
			report.Planned[result.Destination] = append(report.Planned[result.Destination], result.Source)
			report.Existing = append(report.Existing, result)
		default:
			report.Failed = append(report.Failed, Failure{Source: path, Err: err})
		}
		return nil
	})

	for dest, sources := range report.Planned {
		if len(sources) > 1 {
			report.Collisions = append(report.Collisions, Collision{Destination: dest, Sources: sources})
		}
	}
	sort.Slice(report.Collisions, func(i, j int) bool {
		return report.Collisions[i].Destination < report.Collisions[j].Destination
	})
	sort.Strings(report.Unresolved)
	sort.Slice(report.Existing, func(i, j int) bool {
		return report.Existing[i].Destination < report.Existing[j].Destination
	})

	return report, walkErr
}
