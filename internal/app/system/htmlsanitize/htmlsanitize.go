// Package htmlsanitize cleans user- and HR-authored text before it is
// shown in a page.
package htmlsanitize

import (
	"html"
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	// ugc allows basic formatting (paragraphs, lists, links, tables).
	ugc = bluemonday.UGCPolicy()

	// strict strips every tag.
	strict = bluemonday.StrictPolicy()
)

// Sanitize removes anything unsafe from s and keeps basic formatting.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	return ugc.Sanitize(s)
}

// SanitizeToHTML is Sanitize for direct use in templates.
func SanitizeToHTML(s string) template.HTML {
	return template.HTML(Sanitize(s))
}

// PlainText strips all markup from s and returns the text content,
// unescaped, so the template layer escapes it exactly once.
func PlainText(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}

// IsPlainText reports whether s contains no markup.
func IsPlainText(s string) bool {
	return !strings.ContainsAny(s, "<>")
}
