// Package sanitize cleans free text coming from records we do not own before
// it is shown or sent to the geocoder.
package sanitize

import (
	"html"
	"regexp"
	"strings"
)

var (
	tagPattern      = regexp.MustCompile(`<[^>]*>`)
	spaceBeforeList = regexp.MustCompile(`\s+,`)
)

// Line strips markup, decodes entities and collapses all whitespace (newlines
// included) into single spaces.
func Line(s string) string {
	s = tagPattern.ReplaceAllString(s, " ")
	s = html.UnescapeString(s)
	// Entities may have produced new tags.
	s = tagPattern.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}

// Address is Line plus comma cleanup, so "12 Main St ,\n Springfield" becomes
// "12 Main St, Springfield". Empty segments are dropped.
func Address(s string) string {
	s = spaceBeforeList.ReplaceAllString(Line(s), ",")
	parts := strings.Split(s, ",")
	kept := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ", ")
}
