package organizer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Nomadcxx/mediasort/internal/media"
	"github.com/Nomadcxx/mediasort/internal/scanner"
)

// Action is what happened (or would happen) to a file
type Action int

const (
	ActionMoved Action = iota
	ActionSkipped
	ActionWouldMove
)

func (a Action) String() string {
	switch a {
	case ActionMoved:
		return "moved"
	case ActionSkipped:
		return "skipped"
	case ActionWouldMove:
		return "would move"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

const (
	reasonInPlace   = "already in place"
	reasonOverwrite = "overwrite"
)

// Result is the outcome of placing one file. Destination is filled whenever it
// could be computed, including when Place returns ErrAlreadyExists.
type Result struct {
	Source      string
	Destination string
	Kind        media.Kind
	Action      Action
	Reason      string
}

// Resolver identifies a parsed file against the metadata catalogs
type Resolver interface {
	Resolve(ctx context.Context, parsed scanner.Parsed) (media.Info, error)
}

// Options configures placement
type Options struct {
	ShowRoot  string
	MovieRoot string
	Overwrite bool
	Mode      os.FileMode // applied to files; directories also get 0o111
	User      string      // empty leaves the owner unchanged
	Group     string      // empty leaves the group unchanged
}

// Organizer places media files into the library
type Organizer struct {
	builder   *Builder
	resolver  Resolver
	overwrite bool
	mode      os.FileMode
	owner     Ownership
	logger    *zap.Logger
}

// New creates an organizer. User and group names are resolved once here.
func New(opts Options, resolver Resolver, logger *zap.Logger) (*Organizer, error) {
	if opts.ShowRoot == "" || opts.MovieRoot == "" {
		return nil, fmt.Errorf("show and movie roots are required")
	}
	if resolver == nil {
		return nil, fmt.Errorf("resolver is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	owner, err := ResolveOwnership(opts.User, opts.Group)
	if err != nil {
		return nil, err
	}

	showRoot, err := filepath.Abs(opts.ShowRoot)
	if err != nil {
		return nil, fmt.Errorf("show root: %w", err)
	}
	movieRoot, err := filepath.Abs(opts.MovieRoot)
	if err != nil {
		return nil, fmt.Errorf("movie root: %w", err)
	}

	return &Organizer{
		builder:   NewBuilder(showRoot, movieRoot),
		resolver:  resolver,
		overwrite: opts.Overwrite,
		mode:      opts.Mode.Perm(),
		owner:     owner,
		logger:    logger.With(zap.String("component", "organizer")),
	}, nil
}

// Builder returns the destination builder used by the organizer
func (o *Organizer) Builder() *Builder {
	return o.builder
}

// InLibrary reports whether path already sits inside the show or movie library
func (o *Organizer) InLibrary(path string) bool {
	return o.builder.Contains(absPath(path))
}

// Place identifies path and moves it into the library. With dryRun nothing is
// changed on disk but the overwrite check still runs.
//
// Errors wrap media.ErrNotMediaFile, media.ErrNotFound, media.ErrAlreadyExists
// or media.ErrFilesystem. The file stays where it was on every error except a
// failed permission cascade, which happens after the move.
func (o *Organizer) Place(ctx context.Context, path string, dryRun bool) (Result, error) {
	src, err := filepath.Abs(path)
	if err != nil {
		return Result{Source: path}, fmt.Errorf("resolve path: %w", err)
	}
	result := Result{Source: src}

	parsed, err := scanner.Parse(src)
	if err != nil {
		result.Kind = media.KindNotMedia
		return result, err
	}
	result.Kind = parsed.Kind()

	info, err := o.resolver.Resolve(ctx, parsed)
	if err != nil {
		return result, err
	}

	dest, err := o.builder.BuildDestination(info, parsed.Ext)
	if err != nil {
		return result, fmt.Errorf("build destination: %w", err)
	}
	result.Destination = dest

	if dest == src {
		result.Action = ActionSkipped
		result.Reason = reasonInPlace
		return result, nil
	}

	if _, err := os.Lstat(dest); err == nil {
		if !o.overwrite {
			return result, fmt.Errorf("%s: %w", dest, media.ErrAlreadyExists)
		}
		result.Reason = reasonOverwrite
	} else if !errors.Is(err, os.ErrNotExist) {
		return result, media.FilesystemError("stat", dest, err)
	}

	if dryRun {
		result.Action = ActionWouldMove
		return result, nil
	}

	method, err := transfer(src, dest)
	if err != nil {
		return result, err
	}
	result.Action = ActionMoved

	touched, err := o.cascade(dest)
	if err != nil {
		return result, fmt.Errorf("file moved, permissions not applied: %w", err)
	}

	o.logger.Debug("placed",
		zap.String("source", src),
		zap.String("destination", dest),
		zap.String("method", string(method)),
		zap.Int("permissions_applied", len(touched)))

	return result, nil
}
