package scanner

import (
	"regexp"
	"strconv"
	"time"

	"github.com/Nomadcxx/mediasort/internal/media"
)

var trailingYearRegex = regexp.MustCompile(`^(.*) (\d{4})$`)

// now is swapped in tests that need a fixed current year
var now = time.Now

// ExtractYear splits a trailing release year off title. The year must be preceded
// by a space and lie between 1878 and the current year; otherwise the title is
// returned unchanged with year 0. "The 4400" keeps its number, "2012" alone
// stays a title.
func ExtractYear(title string) (string, int) {
	matches := trailingYearRegex.FindStringSubmatch(title)
	if len(matches) != 3 {
		return title, 0
	}

	year, err := strconv.Atoi(matches[2])
	if err != nil {
		return title, 0
	}
	if year < media.MinYear || year > now().Year() {
		return title, 0
	}

	return matches[1], year
}
