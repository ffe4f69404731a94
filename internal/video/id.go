// Package video extracts YouTube video identifiers from the URL forms
// users paste in.
package video

import "regexp"

var (
	urlPattern = regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/|youtube\.com/embed/)([a-zA-Z0-9_-]{11})`)
	idPattern  = regexp.MustCompile(`^[a-zA-Z0-9_-]{11}$`)
)

// ExtractID returns the 11-character video ID from a watch, short, or embed
// URL, or from a bare ID. The second return is false when no ID is found.
func ExtractID(input string) (string, bool) {
	if m := urlPattern.FindStringSubmatch(input); m != nil {
		return m[1], true
	}
	if idPattern.MatchString(input) {
		return input, true
	}
	return "", false
}
