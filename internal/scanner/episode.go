package scanner

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/Nomadcxx/mediasort/internal/media"
)

// showPatternRegex matches "<name> s<season> e<episode> <trailing>" on a normalized title.
// The name is greedy so the last episode marker wins.
var showPatternRegex = regexp.MustCompile(`(?i)^(.*)\bs(\d{1,2})e(\d{1,2})(.*)$`)

// ExtractShowSignal looks for a season/episode marker in a normalized title.
// On a match it returns the show name in front of the marker (the new working
// title) and the parsed signal. Without a match the title is returned unchanged
// with a nil signal.
//
// Episode 0 is a special: its title comes from the text after the marker, or
// "Unknown Special" when there is none.
func ExtractShowSignal(title string) (string, *media.ShowSignal) {
	matches := showPatternRegex.FindStringSubmatch(title)
	if len(matches) != 5 {
		return title, nil
	}

	season, err := strconv.Atoi(matches[2])
	if err != nil || season < 1 || season > 99 {
		return title, nil
	}
	episode, err := strconv.Atoi(matches[3])
	if err != nil {
		return title, nil
	}

	signal := &media.ShowSignal{Season: season}
	if episode == 0 {
		trailing := collapseSpaces(matches[4])
		if trailing == "" {
			signal.Episode = media.Special(media.UnknownSpecial)
		} else {
			signal.Episode = media.Special(TitleCase(trailing))
		}
	} else {
		signal.Episode = media.Numbered(episode)
	}

	return strings.TrimSpace(matches[1]), signal
}

// TitleCase capitalises every word of s ("special title" → "Special Title")
func TitleCase(s string) string {
	caser := cases.Title(language.English)
	return caser.String(s)
}
