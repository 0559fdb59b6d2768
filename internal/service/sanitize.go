package service

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var fieldPolicy = bluemonday.UGCPolicy().
	AllowElements("img").
	AllowAttrs("src", "alt").OnElements("img").
	AllowElements("span").
	AllowAttrs("class").OnElements("span")

// sanitizeField strips unsafe markup from a note field.
func sanitizeField(input string) string {
	return strings.TrimSpace(fieldPolicy.Sanitize(input))
}
