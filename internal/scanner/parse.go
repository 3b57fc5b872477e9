package scanner

import (
	"fmt"
	"path/filepath"

	"github.com/Nomadcxx/mediasort/internal/media"
)

// Parsed is the locally derived guess for one file, before any catalog lookup
type Parsed struct {
	Path  string
	Ext   string // original extension including the dot, case preserved
	Title string // working title used for the catalog search
	Year  int    // 0 when no plausible year was found
	Show  *media.ShowSignal
}

// Kind reports whether the file looks like a show episode or a movie
func (p Parsed) Kind() media.Kind {
	if p.Show != nil {
		return media.KindShow
	}
	return media.KindMovie
}

// Parse runs the full local identification of path: normalize the filename, pull
// out the season/episode marker, then the year. The order matters: the year is
// looked for on the title left over after the episode marker is removed.
func Parse(path string) (Parsed, error) {
	if !IsMediaFile(path) {
		return Parsed{}, fmt.Errorf("%s: %w", filepath.Base(path), media.ErrNotMediaFile)
	}

	title := NormalizeTitle(path)
	title, show := ExtractShowSignal(title)
	title, year := ExtractYear(title)

	return Parsed{
		Path:  path,
		Ext:   filepath.Ext(path),
		Title: title,
		Year:  year,
		Show:  show,
	}, nil
}
