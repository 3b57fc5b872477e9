package media

import (
	"fmt"
	"strings"
)

// MinYear is the earliest accepted release year ("The Horse in Motion", 1878)
const MinYear = 1878

// UnknownSpecial is the title given to specials without a parsed episode title
const UnknownSpecial = "Unknown Special"

// Kind identifies what a file was recognised as
type Kind int

const (
	KindNotMedia Kind = iota
	KindMovie
	KindShow
)

// String returns the lowercase kind name used in logs and reports
func (k Kind) String() string {
	switch k {
	case KindNotMedia:
		return "not-media"
	case KindMovie:
		return "movie"
	case KindShow:
		return "show"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// EpisodeMarker is either a numbered episode or a titled special (episode 0)
type EpisodeMarker struct {
	Number int
	Title  string
}

// Numbered returns the marker for regular episode n
func Numbered(n int) EpisodeMarker {
	return EpisodeMarker{Number: n}
}

// Special returns the marker for a season special with the given title
func Special(title string) EpisodeMarker {
	if strings.TrimSpace(title) == "" {
		title = UnknownSpecial
	}
	return EpisodeMarker{Title: title}
}

// IsSpecial reports whether the marker denotes episode 0
func (m EpisodeMarker) IsSpecial() bool {
	return m.Number == 0
}

// String renders the marker as it appears after the "E" of an episode code:
// "03" for numbered episodes, "00 - Title" for specials.
func (m EpisodeMarker) String() string {
	if m.IsSpecial() {
		return "00 - " + m.Title
	}
	return fmt.Sprintf("%02d", m.Number)
}

// ShowSignal is the parsed season/episode pair that marks a TV episode
type ShowSignal struct {
	Season  int
	Episode EpisodeMarker
}

// Info is the identified media: a show episode when Show is set, a movie otherwise.
// Year is 0 when unknown.
type Info struct {
	Name string
	Year int
	Show *ShowSignal
}

// Kind derives the media kind from the presence of a show signal
func (i Info) Kind() Kind {
	if i.Show != nil {
		return KindShow
	}
	return KindMovie
}

// HasYear reports whether a release year is known
func (i Info) HasYear() bool {
	return i.Year != 0
}
