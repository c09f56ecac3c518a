package utils

import (
	"html"

	"github.com/microcosm-cc/bluemonday"
)

var stripper = bluemonday.StrictPolicy()

// PlainText strips all markup, for fields rendered as text such as posts, comments and bios.
func PlainText(input string) string {
	return html.UnescapeString(stripper.Sanitize(input))
}
