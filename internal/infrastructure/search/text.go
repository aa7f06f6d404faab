package search

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// plainText strips markup such as <b> highlights and decodes entities.
func plainText(raw string) string {
	return strings.Join(strings.Fields(html.UnescapeString(strict.Sanitize(raw))), " ")
}
