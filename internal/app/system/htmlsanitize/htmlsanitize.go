// Package htmlsanitize cleans the rich-text bodies and descriptions admins
// submit before they are stored and served to the mobile app.
package htmlsanitize

import (
	"html"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

var (
	once   sync.Once
	rich   *bluemonday.Policy
	strict *bluemonday.Policy
)

func policies() (*bluemonday.Policy, *bluemonday.Policy) {
	once.Do(func() {
		rich = bluemonday.UGCPolicy()
		rich.AllowAttrs("class").OnElements("table", "thead", "tbody", "tr", "td", "th")
		rich.AllowAttrs("colspan", "rowspan").OnElements("td", "th")
		rich.RequireNoFollowOnLinks(true)
		rich.AddTargetBlankToFullyQualifiedLinks(true)

		strict = bluemonday.StrictPolicy()
	})
	return rich, strict
}

// Sanitize keeps formatting markup (paragraphs, lists, tables, links,
// images) and drops scripts, event handlers, styles and frames.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	p, _ := policies()
	return strings.TrimSpace(p.Sanitize(s))
}

// StripTags removes every tag and returns plain, unescaped text. Used for
// titles, names and other single-line fields.
func StripTags(s string) string {
	if s == "" {
		return ""
	}
	_, p := policies()
	return strings.TrimSpace(html.UnescapeString(p.Sanitize(s)))
}

// Excerpt returns the first max runes of body's text content, cut at a word
// boundary and suffixed with "…" when truncated.
func Excerpt(body string, max int) string {
	text := strings.Join(strings.Fields(StripTags(body)), " ")
	if max <= 0 || utf8.RuneCountInString(text) <= max {
		return text
	}
	r := []rune(text)[:max]
	if i := strings.LastIndexByte(string(r), ' '); i > max/2 {
		return string(r)[:i] + "…"
	}
	return string(r) + "…"
}
