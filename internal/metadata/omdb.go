package metadata

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/time/rate"
)

// DefaultOMDbURL is the public OMDb API root
const DefaultOMDbURL = "https://www.omdbapi.com"

var leadingYearRegex = regexp.MustCompile(`^(\d{4})`)

// ErrNoMatch is returned by LookupMovie when OMDb knows no such title
var ErrNoMatch = errors.New("no matching title")

// OMDbMovie is the title lookup response of OMDb
type OMDbMovie struct {
	Title    string `json:"Title"`
	Year     string `json:"Year"`
	ImdbID   string `json:"imdbID"`
	Type     string `json:"Type"`
	Response string `json:"Response"`
	Error    string `json:"Error,omitempty"`
}

// OMDb looks movies up by title on OMDb
type OMDb struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

var _ MovieProvider = (*OMDb)(nil)

// NewOMDb creates an OMDb client
func NewOMDb(apiKey string, opts ClientOptions) *OMDb {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = DefaultOMDbURL
	}
	return &OMDb{
		apiKey:     apiKey,
		baseURL:    base,
		httpClient: opts.httpClient(),
		limiter:    opts.limiter(),
	}
}

// LookupMovie fetches the OMDb title match for name. OMDb answers misses and
// rejected requests alike with HTTP 200 and Response "False"; misses wrap
// ErrNoMatch.
func (c *OMDb) LookupMovie(ctx context.Context, name string, year int) (*OMDbMovie, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("OMDb API key not configured")
	}

	params := url.Values{}
	params.Set("t", strings.TrimSpace(name))
	params.Set("type", "movie")
	if year != 0 {
		params.Set("y", strconv.Itoa(year))
	}
	params.Set("apikey", c.apiKey)
	apiURL := c.baseURL + "/?" + params.Encode()

	var result OMDbMovie
	if err := getJSON(ctx, c.httpClient, c.limiter, apiURL, &result); err != nil {
		return nil, fmt.Errorf("omdb: %w", err)
	}

	if result.Error != "" {
		if strings.Contains(strings.ToLower(result.Error), "not found") {
			return nil, fmt.Errorf("OMDb: %s: %w", result.Error, ErrNoMatch)
		}
		return nil, fmt.Errorf("OMDb error: %s", result.Error)
	}
	if !strings.EqualFold(result.Response, "True") {
		return nil, fmt.Errorf("OMDb returned unsuccessful response")
	}

	return &result, nil
}

// SearchMovie returns the canonical title and year for a movie, or nil when
// OMDb has no match
func (c *OMDb) SearchMovie(ctx context.Context, title string, year int) (*MovieMatch, error) {
	movie, err := c.LookupMovie(ctx, title, year)
	if errors.Is(err, ErrNoMatch) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(movie.Title) == "" {
		return nil, nil
	}
	return &MovieMatch{Name: movie.Title, Year: ParseYear(movie.Year)}, nil
}

// ParseYear reads the leading year of an OMDb year field ("1979", "2019–2021").
// It returns 0 when there is none.
func ParseYear(s string) int {
	matches := leadingYearRegex.FindStringSubmatch(strings.TrimSpace(s))
	if len(matches) != 2 {
		return 0
	}
	year, err := strconv.Atoi(matches[1])
	if err != nil {
		return 0
	}
	return year
}
