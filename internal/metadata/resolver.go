package metadata

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Nomadcxx/mediasort/internal/media"
	"github.com/Nomadcxx/mediasort/internal/scanner"
)

// ShowMatch is a show provider's canonical answer
type ShowMatch struct {
	Name string
}

// MovieMatch is a movie provider's canonical answer. Year is 0 when the
// provider did not report one.
type MovieMatch struct {
	Name string
	Year int
}

// ShowProvider looks TV shows up by title. A nil match with a nil error means no result.
type ShowProvider interface {
	SearchShow(ctx context.Context, title string, year int) (*ShowMatch, error)
}

// MovieProvider looks movies up by title. A nil match with a nil error means no result.
type MovieProvider interface {
	SearchMovie(ctx context.Context, title string, year int) (*MovieMatch, error)
}

// Resolver turns a parsed filename into canonical media info
type Resolver struct {
	shows  ShowProvider
	movies MovieProvider
	logger *zap.Logger
}

// NewResolver creates a resolver over the given providers
func NewResolver(shows ShowProvider, movies MovieProvider, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		shows:  shows,
		movies: movies,
		logger: logger.With(zap.String("component", "resolver")),
	}
}

// Resolve queries the provider matching the parsed kind, once. Misses and
// provider failures both come back as *media.NotFoundError.
func (r *Resolver) Resolve(ctx context.Context, parsed scanner.Parsed) (media.Info, error) {
	switch kind := parsed.Kind(); kind {
	case media.KindShow:
		return r.resolveShow(ctx, parsed)
	case media.KindMovie:
		return r.resolveMovie(ctx, parsed)
	case media.KindNotMedia:
		return media.Info{}, fmt.Errorf("%s: %w", parsed.Path, media.ErrNotMediaFile)
	default:
		return media.Info{}, fmt.Errorf("unexpected media kind %v", kind)
	}
}

func (r *Resolver) resolveShow(ctx context.Context, parsed scanner.Parsed) (media.Info, error) {
	notFound := &media.NotFoundError{Kind: media.KindShow, Title: parsed.Title, Year: parsed.Year}
	if strings.TrimSpace(parsed.Title) == "" || r.shows == nil {
		return media.Info{}, notFound
	}

	match, err := r.shows.SearchShow(ctx, parsed.Title, parsed.Year)
	if err != nil {
		r.logger.Warn("show lookup failed",
			zap.String("title", parsed.Title),
			zap.Int("year", parsed.Year),
			zap.Error(err))
		return media.Info{}, notFound
	}
	if match == nil || strings.TrimSpace(match.Name) == "" {
		return media.Info{}, notFound
	}

	r.logger.Debug("show resolved",
		zap.String("title", parsed.Title),
		zap.String("name", match.Name))

	return media.Info{
		Name: match.Name,
		Year: parsed.Year,
		Show: parsed.Show,
	}, nil
}

func (r *Resolver) resolveMovie(ctx context.Context, parsed scanner.Parsed) (media.Info, error) {
	notFound := &media.NotFoundError{Kind: media.KindMovie, Title: parsed.Title, Year: parsed.Year}
	if strings.TrimSpace(parsed.Title) == "" || r.movies == nil {
		return media.Info{}, notFound
	}

	match, err := r.movies.SearchMovie(ctx, parsed.Title, parsed.Year)
	if err != nil {
		r.logger.Warn("movie lookup failed",
			zap.String("title", parsed.Title),
			zap.Int("year", parsed.Year),
			zap.Error(err))
		return media.Info{}, notFound
	}
	if match == nil || strings.TrimSpace(match.Name) == "" {
		return media.Info{}, notFound
	}

	year := parsed.Year
	if match.Year >= media.MinYear {
		year = match.Year
	}

	r.logger.Debug("movie resolved",
		zap.String("title", parsed.Title),
		zap.String("name", match.Name),
		zap.Int("year", year))

	return media.Info{Name: match.Name, Year: year}, nil
}
