package scanner

import (
	"path/filepath"
	"regexp"
	"strings"
)

// Pre-compiled regexes used by the filename normalizer
var (
	punctuationRegex *regexp.Regexp
	releaseTagRegex  *regexp.Regexp
	parenthesisRegex *regexp.Regexp
	spacesRegex      *regexp.Regexp
)

// releaseTags are the resolution, codec and source markers that end the useful
// part of a release name. Everything from the first one onwards is noise.
var releaseTags = []string{
	"720p", "1080p", "1440p", "2160p",
	"hdtv", "bluray", "webrip", "web", "imax",
	"x264", "x265", "h264", "h265", "hevc",
	"dts", "aac", "atmos",
}

// mediaExtensions lists the recognised video and subtitle extensions (lowercase, no dot)
var mediaExtensions = map[string]bool{
	"mkv": true, "avi": true, "mp4": true, "m4v": true,
	"mov": true, "wmv": true, "mpg": true, "mpeg": true,
	"ts": true, "m2ts": true, "webm": true, "flv": true,
	"srt": true, "sub": true, "ass": true, "ssa": true, "vtt": true,
}

func init() {
	punctuationRegex = regexp.MustCompile(`[.\-_]`)
	// Keywords only count at the start of a word, so "cobweb" keeps its "web"
	releaseTagRegex = regexp.MustCompile(`\b(` + strings.Join(releaseTags, "|") + `).*`)
	// Greedy on purpose: "(a(b) ) )" goes away in one piece
	parenthesisRegex = regexp.MustCompile(`\(.*\)`)
	spacesRegex = regexp.MustCompile(`\s+`)
}

// IsMediaFile reports whether path carries a recognised media extension
func IsMediaFile(path string) bool {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return false
	}
	return mediaExtensions[strings.ToLower(ext)]
}

// NormalizeTitle turns a raw path into a best-effort search title:
//
//	"/in/Great.Series.2005.S13E03.1080p.WEB.h264-X[y].mkv" → "great series 2005 s13e03"
//
// The result keeps single spaces between words and no leading or trailing space.
func NormalizeTitle(path string) string {
	name := filepath.Base(path)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	name = strings.ToLower(name)

	name = punctuationRegex.ReplaceAllString(name, " ")
	name = releaseTagRegex.ReplaceAllString(name, "")
	name = parenthesisRegex.ReplaceAllString(name, "")

	return collapseSpaces(name)
}

func collapseSpaces(s string) string {
	return strings.TrimSpace(spacesRegex.ReplaceAllString(s, " "))
}
