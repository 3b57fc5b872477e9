package organizer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Nomadcxx/mediasort/internal/media"
)

// Builder computes library paths for identified media
type Builder struct {
	ShowRoot  string
	MovieRoot string

	// exists reports whether a directory is already on disk. Swappable in tests.
	exists func(path string) bool
}

// NewBuilder creates a builder for the given library roots
func NewBuilder(showRoot, movieRoot string) *Builder {
	return &Builder{
		ShowRoot:  filepath.Clean(showRoot),
		MovieRoot: filepath.Clean(movieRoot),
		exists:    dirExists,
	}
}

// BuildDestination returns where info belongs in the library, with ext appended.
//
//	show:  <ShowRoot>/<Name>[ (<Year>)]/Season 13/<Name> - S13E03.mkv
//	movie: <MovieRoot>/<Name>[ (<Year>)].mkv
//
// A show only gets the year suffix when no bare-name directory exists yet, so
// libraries that started without years keep being used.
func (b *Builder) BuildDestination(info media.Info, ext string) (string, error) {
	name := sanitizeName(info.Name)
	if name == "" {
		return "", fmt.Errorf("empty media name")
	}

	switch kind := info.Kind(); kind {
	case media.KindShow:
		season := info.Show.Season
		base := filepath.Join(b.ShowRoot, name)
		if info.HasYear() && !b.exists(base) {
			base = filepath.Join(b.ShowRoot, withYear(name, info.Year))
		}
		file := fmt.Sprintf("%s - S%02dE%s%s", name, season, sanitizeName(info.Show.Episode.String()), ext)
		return filepath.Join(base, fmt.Sprintf("Season %02d", season), file), nil

	case media.KindMovie:
		file := name
		if info.HasYear() {
			file = withYear(name, info.Year)
		}
		return filepath.Join(b.MovieRoot, file+ext), nil

	case media.KindNotMedia:
		return "", media.ErrNotMediaFile

	default:
		return "", fmt.Errorf("unexpected media kind %v", kind)
	}
}

// IsRoot reports whether path is one of the library roots
func (b *Builder) IsRoot(path string) bool {
	p := filepath.Clean(path)
	return p == b.ShowRoot || p == b.MovieRoot
}

// Contains reports whether path is a library root or lies below one
func (b *Builder) Contains(path string) bool {
	p := filepath.Clean(path)
	for _, root := range []string{b.ShowRoot, b.MovieRoot} {
		if p == root || strings.HasPrefix(p, strings.TrimSuffix(root, string(filepath.Separator))+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

func withYear(name string, year int) string {
	return fmt.Sprintf("%s (%d)", name, year)
}

// sanitizeName keeps provider names to a single path element
func sanitizeName(name string) string {
	name = strings.ReplaceAll(name, "/", "-")
	name = strings.ReplaceAll(name, string(filepath.Separator), "-")
	name = strings.TrimSpace(name)
	if name == "." || name == ".." {
		return ""
	}
	return name
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
