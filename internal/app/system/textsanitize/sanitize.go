// Package textsanitize normalizes user-supplied strings.
//
// Free text (descriptions, chat messages, feedback) is kept as submitted:
// only surrounding whitespace, invalid UTF-8 and non-printing control
// characters are removed. JSON encoding makes it safe on the wire and
// clients escape it for display. Short single-line fields such as names,
// venues and skill levels go through Line, which strips markup with
// bluemonday's strict policy.
package textsanitize

import (
	"html"
	"strings"
	"sync"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
)

var (
	policyOnce sync.Once
	policy     *bluemonday.Policy
)

func strict() *bluemonday.Policy {
	policyOnce.Do(func() {
		policy = bluemonday.StrictPolicy()
	})
	return policy
}

// Text trims s and drops invalid UTF-8 and control characters other than
// newline and tab. Everything else, including '<', '>' and '&', is kept.
func Text(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ToValidUTF8(s, "")
	s = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if r == '\r' || unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(s)
}

// Line strips all tags from s, decodes entities and collapses whitespace
// runs, for short single-line fields.
func Line(s string) string {
	if s == "" {
		return ""
	}
	return strings.Join(strings.Fields(html.UnescapeString(strict().Sanitize(s))), " ")
}
