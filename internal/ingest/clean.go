package ingest

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	nonASCII   = regexp.MustCompile(`[^\x00-\x7F]+`)
	whitespace = regexp.MustCompile(`\s+`)
)

// CleanText normalizes scraped text: control and non-printable runes are
// dropped, non-ASCII runs collapse to a single space, and whitespace runs
// collapse to one space.
func CleanText(text string) string {
	if text == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if unicode.IsPrint(r) {
			b.WriteRune(r)
		}
	}
	out := nonASCII.ReplaceAllString(b.String(), " ")
	out = whitespace.ReplaceAllString(out, " ")
	return strings.TrimSpace(out)
}
