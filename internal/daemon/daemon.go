package daemon

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/Nomadcxx/mediasort/internal/organizer"
	"github.com/Nomadcxx/mediasort/internal/reporter"
	"github.com/Nomadcxx/mediasort/internal/watcher"
)

// Organizer places single files and walks directory trees
type Organizer interface {
	Place(ctx context.Context, path string, dryRun bool) (organizer.Result, error)
	Walk(ctx context.Context, root string, fn organizer.WalkFunc) error
	InLibrary(path string) bool
}

// Daemon drives the organizer from filesystem events or a one-shot walk.
// Files are processed one at a time, in order.
type Daemon struct {
	org    Organizer
	out    *reporter.Stream
	logger *zap.Logger
	dryRun bool
}

// New creates a daemon printing per-file outcomes to out
func New(org Organizer, out io.Writer, logger *zap.Logger, dryRun bool) *Daemon {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Daemon{
		org:    org,
		out:    reporter.NewStream(out),
		logger: logger.With(zap.String("component", "daemon")),
		dryRun: dryRun,
	}
}

// Summary returns the outcomes recorded so far
func (d *Daemon) Summary() reporter.Summary {
	return d.out.Summary()
}

// Run consumes src until ctx is cancelled (nil error) or the event stream
// fails (non-nil error). Per-file failures are logged and never stop the loop.
func (d *Daemon) Run(ctx context.Context, src watcher.Source) error {
	d.logger.Info("watching for new files", zap.Bool("dry_run", d.dryRun))

	events := src.Events()
	errs := src.Errors()
	for {
		select {
		case <-ctx.Done():
			d.logger.Info("watch stopped")
			return nil

		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			return fmt.Errorf("watch error: %w", err)

		case ev, ok := <-events:
			if !ok {
				return d.streamClosed(ctx, errs)
			}
			if !ev.Complete() {
				d.logger.Debug("event ignored", zap.String("path", ev.Path), zap.Stringer("kind", ev.Kind))
				continue
			}
			if d.org.InLibrary(ev.Path) {
				// the library may live under the watched directory
				d.logger.Debug("event inside library ignored", zap.String("path", ev.Path))
				continue
			}
			if _, err := os.Lstat(ev.Path); errors.Is(err, os.ErrNotExist) {
				d.logger.Debug("file gone before processing", zap.String("path", ev.Path))
				continue
			}
			d.logger.Debug("file ready", zap.String("path", ev.Path), zap.Stringer("kind", ev.Kind))
			d.process(ctx, ev.Path)
		}
	}
}

func (d *Daemon) streamClosed(ctx context.Context, errs <-chan error) error {
	if errs != nil {
		select {
		case err, ok := <-errs:
			if ok && err != nil {
				return fmt.Errorf("watch error: %w", err)
			}
		default:
		}
	}
	if ctx.Err() != nil {
		return nil
	}
	return errors.New("watch error: event stream closed")
}

// Sort places every file under dir, depth-first, and returns the totals.
// The returned error is only set when the walk itself was interrupted.
func (d *Daemon) Sort(ctx context.Context, dir string) (reporter.Summary, error) {
	d.logger.Info("sorting directory", zap.String("dir", dir), zap.Bool("dry_run", d.dryRun))

	err := d.org.Walk(ctx, dir, func(path string, err error) error {
		if err != nil {
			d.record(organizer.Result{Source: path}, err)
			return nil
		}
		d.process(ctx, path)
		return nil
	})

	summary := d.out.Summary()
	d.logger.Info("sort complete",
		zap.Int("moved", summary.Moved),
		zap.Int("would_move", summary.WouldMove),
		zap.Int("not_found", summary.Unresolved),
		zap.Int("exists", summary.Exists),
		zap.Int("failed", summary.Failed))

	if err != nil {
		return summary, fmt.Errorf("sort %s: %w", dir, err)
	}
	return summary, nil
}

// Finalize prints the summary block
func (d *Daemon) Finalize() error {
	return d.out.Finalize()
}

func (d *Daemon) process(ctx context.Context, path string) {
	result, err := d.org.Place(ctx, path, d.dryRun)
	d.record(result, err)
}

func (d *Daemon) record(result organizer.Result, err error) {
	outcome, werr := d.out.Record(result, err)
	if werr != nil {
		d.logger.Warn("cannot print result", zap.Error(werr))
	}

	fields := []zap.Field{zap.String("source", result.Source)}
	if result.Destination != "" {
		fields = append(fields, zap.String("destination", result.Destination))
	}

	switch outcome {
	case reporter.OutcomeMoved:
		d.logger.Info("placed", append(fields, zap.Stringer("kind", result.Kind))...)
	case reporter.OutcomeWouldMove:
		d.logger.Info("would place", append(fields, zap.Stringer("kind", result.Kind))...)
	case reporter.OutcomeSkipped:
		d.logger.Debug("skipped", append(fields, zap.String("reason", result.Reason))...)
	case reporter.OutcomeNotMedia:
		d.logger.Info("not a media file, ignored", fields...)
	case reporter.OutcomeUnresolved, reporter.OutcomeExists:
		d.logger.Warn("file left in place", append(fields, zap.Error(err))...)
	case reporter.OutcomeFailed:
		d.logger.Error("cannot process file", append(fields, zap.Error(err))...)
	}
}
