// Package htmlsanitize cleans user-supplied free text before it is stored.
package htmlsanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	// ugc allows the usual formatting tags in listing descriptions.
	ugc = bluemonday.UGCPolicy()
	// strict removes every tag; used for names and profile text.
	strict = bluemonday.StrictPolicy()
)

// Sanitize keeps safe formatting HTML and removes scripts, event handlers
// and javascript: links.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	return ugc.Sanitize(s)
}

// PlainText strips all markup and returns unescaped text, trimmed.
func PlainText(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}

// IsPlainText reports whether s contains no tag-like markup.
func IsPlainText(s string) bool {
	return !strings.Contains(s, "<")
}
