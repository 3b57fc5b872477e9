package metadata

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Nomadcxx/mediasort/internal/media"
	"github.com/Nomadcxx/mediasort/internal/scanner"
)

func TestTVMazeSearchShow(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search/shows" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		gotQuery = r.URL.Query().Get("q")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[{"score":0.9,"show":{"id":1,"name":"Great Series","premiered":"2005-03-24"}},{"score":0.5,"show":{"id":2,"name":"Great Series UK"}}]`)
	}))
	defer server.Close()

	client := NewTVMaze(ClientOptions{BaseURL: server.URL})
	match, err := client.SearchShow(context.Background(), "great series", 2005)
	if err != nil {
		t.Fatalf("SearchShow error: %v", err)
	}
	if gotQuery != "great series" {
		t.Errorf("query = %q, want %q", gotQuery, "great series")
	}
	if match == nil || match.Name != "Great Series" {
		t.Errorf("match = %+v, want top result", match)
	}
}

func TestTVMazeNoResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[]`)
	}))
	defer server.Close()

	match, err := NewTVMaze(ClientOptions{BaseURL: server.URL}).SearchShow(context.Background(), "nothing", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if match != nil {
		t.Errorf("expected nil match, got %+v", match)
	}
}

func TestTVMazeStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := NewTVMaze(ClientOptions{BaseURL: server.URL}).SearchShow(context.Background(), "x", 0)
	if err == nil {
		t.Fatal("expected error for 500 response")
	}
}

func TestOMDbSearchMovie(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("apikey") != "secret" {
			t.Errorf("apikey = %q", q.Get("apikey"))
		}
		if q.Get("t") != "alien" || q.Get("y") != "1979" || q.Get("type") != "movie" {
			t.Errorf("unexpected query %v", q)
		}
		fmt.Fprint(w, `{"Title":"Alien","Year":"1979","imdbID":"tt0078748","Type":"movie","Response":"True"}`)
	}))
	defer server.Close()

	client := NewOMDb("secret", ClientOptions{BaseURL: server.URL})
	match, err := client.SearchMovie(context.Background(), "alien", 1979)
	if err != nil {
		t.Fatalf("SearchMovie error: %v", err)
	}
	if match.Name != "Alien" || match.Year != 1979 {
		t.Errorf("match = %+v, want Alien (1979)", match)
	}
}

func TestOMDbOmitsUnknownYear(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Has("y") {
			t.Errorf("year should not be sent, got %q", r.URL.Query().Get("y"))
		}
		fmt.Fprint(w, `{"Title":"2012","Year":"2009","Response":"True"}`)
	}))
	defer server.Close()

	match, err := NewOMDb("k", ClientOptions{BaseURL: server.URL}).SearchMovie(context.Background(), "2012", 0)
	if err != nil {
		t.Fatal(err)
	}
	if match.Year != 2009 {
		t.Errorf("year = %d, want 2009", match.Year)
	}
}

func TestOMDbNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"Response":"False","Error":"Movie not found!"}`)
	}))
	defer server.Close()

	client := NewOMDb("k", ClientOptions{BaseURL: server.URL})
	if _, err := client.LookupMovie(context.Background(), "nope", 0); !errors.Is(err, ErrNoMatch) {
		t.Errorf("LookupMovie: expected ErrNoMatch, got %v", err)
	}

	match, err := client.SearchMovie(context.Background(), "nope", 0)
	if err != nil {
		t.Fatalf("SearchMovie error: %v", err)
	}
	if match != nil {
		t.Errorf("match = %+v, want nil", match)
	}
}

func TestOMDbRejectedRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"Response":"False","Error":"Invalid API key!"}`)
	}))
	defer server.Close()

	_, err := NewOMDb("bad", ClientOptions{BaseURL: server.URL}).SearchMovie(context.Background(), "alien", 0)
	if err == nil || errors.Is(err, ErrNoMatch) {
		t.Fatalf("expected a failure distinct from a miss, got %v", err)
	}
}

func TestOMDbRequiresKey(t *testing.T) {
	_, err := NewOMDb("", ClientOptions{BaseURL: "http://127.0.0.1:0"}).SearchMovie(context.Background(), "alien", 0)
	if err == nil {
		t.Fatal("expected error without API key")
	}
}

func TestParseYear(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"1979", 1979},
		{"2019–2021", 2019},
		{" 2001 ", 2001},
		{"N/A", 0},
		{"", 0},
	}
	for _, tt := range tests {
		if got := ParseYear(tt.in); got != tt.want {
			t.Errorf("ParseYear(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

type fakeShows struct {
	match *ShowMatch
	err   error
	calls int
}

func (f *fakeShows) SearchShow(ctx context.Context, title string, year int) (*ShowMatch, error) {
	f.calls++
	return f.match, f.err
}

type fakeMovies struct {
	match *MovieMatch
	err   error
	calls int
}

func (f *fakeMovies) SearchMovie(ctx context.Context, title string, year int) (*MovieMatch, error) {
	f.calls++
	return f.match, f.err
}

func TestResolveShow(t *testing.T) {
	shows := &fakeShows{match: &ShowMatch{Name: "Great Series"}}
	movies := &fakeMovies{}
	r := NewResolver(shows, movies, nil)

	signal := &media.ShowSignal{Season: 13, Episode: media.Numbered(3)}
	info, err := r.Resolve(context.Background(), scanner.Parsed{Title: "great series", Year: 2005, Show: signal})
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if info.Name != "Great Series" || info.Year != 2005 || info.Show != signal {
		t.Errorf("info = %+v", info)
	}
	if shows.calls != 1 || movies.calls != 0 {
		t.Errorf("calls shows=%d movies=%d, want 1/0", shows.calls, movies.calls)
	}
}

func TestResolveMovieYear(t *testing.T) {
	tests := []struct {
		name       string
		parsedYear int
		match      *MovieMatch
		wantYear   int
	}{
		{"provider year wins", 0, &MovieMatch{Name: "2012", Year: 2009}, 2009},
		{"parsed year kept without provider year", 1979, &MovieMatch{Name: "Alien"}, 1979},
		{"no year at all", 0, &MovieMatch{Name: "Alien"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			movies := &fakeMovies{match: tt.match}
			r := NewResolver(&fakeShows{}, movies, nil)
			info, err := r.Resolve(context.Background(), scanner.Parsed{Title: "x", Year: tt.parsedYear})
			if err != nil {
				t.Fatal(err)
			}
			if info.Year != tt.wantYear {
				t.Errorf("year = %d, want %d", info.Year, tt.wantYear)
			}
			if info.Kind() != media.KindMovie {
				t.Errorf("kind = %v, want movie", info.Kind())
			}
		})
	}
}

func TestResolveNotFound(t *testing.T) {
	tests := []struct {
		name     string
		parsed   scanner.Parsed
		shows    *fakeShows
		movies   *fakeMovies
		wantKind media.Kind
		wantCall bool
	}{
		{
			name:     "show without result",
			parsed:   scanner.Parsed{Title: "x", Show: &media.ShowSignal{Season: 1, Episode: media.Numbered(1)}},
			shows:    &fakeShows{},
			movies:   &fakeMovies{},
			wantKind: media.KindShow,
			wantCall: true,
		},
		{
			name:     "movie without result",
			parsed:   scanner.Parsed{Title: "x"},
			shows:    &fakeShows{},
			movies:   &fakeMovies{},
			wantKind: media.KindMovie,
			wantCall: true,
		},
		{
			name:     "empty title skips the lookup",
			parsed:   scanner.Parsed{Title: "  "},
			shows:    &fakeShows{},
			movies:   &fakeMovies{match: &MovieMatch{Name: "Anything"}},
			wantKind: media.KindMovie,
			wantCall: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResolver(tt.shows, tt.movies, nil)
			_, err := r.Resolve(context.Background(), tt.parsed)
			if !errors.Is(err, media.ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}
			var nf *media.NotFoundError
			if !errors.As(err, &nf) || nf.Kind != tt.wantKind {
				t.Errorf("err = %v, want kind %v", err, tt.wantKind)
			}
			calls := tt.shows.calls + tt.movies.calls
			if (calls > 0) != tt.wantCall {
				t.Errorf("provider calls = %d, want called=%v", calls, tt.wantCall)
			}
		})
	}
}

func TestResolveLogsProviderFailure(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	movies := &fakeMovies{err: errors.New("connection refused")}
	r := NewResolver(&fakeShows{}, movies, zap.New(core))

	_, err := r.Resolve(context.Background(), scanner.Parsed{Title: "alien", Year: 1979})
	if !errors.Is(err, media.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	entries := logs.FilterMessage("movie lookup failed").All()
	if len(entries) != 1 {
		t.Fatalf("expected one warning, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["title"]; got != "alien" {
		t.Errorf("logged title = %v, want alien", got)
	}
}
