// Package sanitize strips markup from user-entered event text. Titles,
// descriptions and categories are plain text: any HTML a client submits is
// removed with bluemonday's strict policy before it is validated or stored.
package sanitize

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

// policy is the singleton strict policy. It allows no elements at all.
var (
	policy     *bluemonday.Policy
	policyOnce sync.Once
)

// getPolicy returns the shared policy, initializing it on first call.
func getPolicy() *bluemonday.Policy {
	policyOnce.Do(func() {
		policy = bluemonday.StrictPolicy()
	})
	return policy
}

// PlainText removes every HTML element from input and trims surrounding
// whitespace. The strict policy entity-encodes what it keeps, so the result
// is unescaped again: templates escape on output and the stored value
// should read the way the user typed it ("Q&A", not "Q&amp;A").
func PlainText(input string) string {
	if input == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(getPolicy().Sanitize(input)))
}

// Color accepts only "#rgb" or "#rrggbb" hex colors and returns "" for
// anything else, so a color value can be placed in a style attribute.
func Color(input string) string {
	s := strings.TrimSpace(input)
	if len(s) != 4 && len(s) != 7 {
		return ""
	}
	if s[0] != '#' {
		return ""
	}
	for _, r := range s[1:] {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return ""
		}
	}
	return strings.ToLower(s)
}
