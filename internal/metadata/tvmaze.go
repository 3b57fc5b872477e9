package metadata

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/time/rate"
)

// DefaultTVMazeURL is the public TVMaze API root
const DefaultTVMazeURL = "https://api.tvmaze.com"

// TVMazeShow is the subset of a TVMaze show we use
type TVMazeShow struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Premiered string `json:"premiered"`
}

// TVMazeSearchResult is one entry of /search/shows
type TVMazeSearchResult struct {
	Score float64    `json:"score"`
	Show  TVMazeShow `json:"show"`
}

// TVMaze searches shows on TVMaze. It needs no API key.
type TVMaze struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

var _ ShowProvider = (*TVMaze)(nil)

// NewTVMaze creates a TVMaze client
func NewTVMaze(opts ClientOptions) *TVMaze {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = DefaultTVMazeURL
	}
	return &TVMaze{
		baseURL:    base,
		httpClient: opts.httpClient(),
		limiter:    opts.limiter(),
	}
}

// SearchShows returns every match TVMaze reports for name, best first
func (c *TVMaze) SearchShows(ctx context.Context, name string) ([]TVMazeSearchResult, error) {
	apiURL := fmt.Sprintf("%s/search/shows?q=%s", c.baseURL, url.QueryEscape(strings.TrimSpace(name)))

	var results []TVMazeSearchResult
	if err := getJSON(ctx, c.httpClient, c.limiter, apiURL, &results); err != nil {
		return nil, fmt.Errorf("tvmaze: %w", err)
	}
	return results, nil
}

// SearchShow returns TVMaze's top match for title, or nil when there is none.
// The search endpoint has no year filter, so year is not sent.
func (c *TVMaze) SearchShow(ctx context.Context, title string, year int) (*ShowMatch, error) {
	results, err := c.SearchShows(ctx, title)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 || strings.TrimSpace(results[0].Show.Name) == "" {
		return nil, nil
	}
	return &ShowMatch{Name: results[0].Show.Name}, nil
}
