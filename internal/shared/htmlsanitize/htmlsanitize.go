// Package htmlsanitize cleans user supplied text before it is stored.
package htmlsanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strict = bluemonday.StrictPolicy()
	ugc    = bluemonday.UGCPolicy()
)

// Text strips all markup and trims surrounding whitespace. Used for titles,
// categories and other single line fields.
func Text(s string) string {
	return strings.TrimSpace(strict.Sanitize(s))
}

// Rich keeps safe formatting markup such as paragraphs, emphasis and links
// and removes scripts, event handlers and javascript: URLs.
func Rich(s string) string {
	return strings.TrimSpace(ugc.Sanitize(s))
}
