package scraper

import (
	"regexp"
	"strings"
)

var brTags = regexp.MustCompile(`(?i)<\s*br\s*/?\s*>`)

// Normalize folds every line break and whitespace run into a single space
// and trims the ends, leaving one line of text.
func Normalize(raw string) string {
	if raw == "" {
		return ""
	}
	return strings.Join(strings.Fields(raw), " ")
}

// StripBreaks replaces HTML line-break tags with a space.
func StripBreaks(s string) string {
	return brTags.ReplaceAllString(s, " ")
}
