package utils

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/russross/blackfriday/v2"
)

var (
	sanitizePolicy = bluemonday.UGCPolicy()
	stripPolicy    = bluemonday.StrictPolicy()
)

// RenderMarkdown converts markdown source into sanitized HTML.
func RenderMarkdown(src string) string {
	rendered := blackfriday.Run([]byte(src))
	return sanitizePolicy.Sanitize(string(rendered))
}

// StripMarkup renders markdown and removes every tag, leaving plain text.
// Calendar descriptions use this form.
func StripMarkup(src string) string {
	rendered := blackfriday.Run([]byte(src))
	text := stripPolicy.Sanitize(string(rendered))
	return strings.TrimSpace(html.UnescapeString(text))
}
