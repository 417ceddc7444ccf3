package search

import (
	"regexp"
	"strings"
)

// Matcher matches free-text or regular-expression queries against decoded
// payload and URL strings. An invalid pattern degrades to a literal
// case-insensitive substring match rather than an error.
type Matcher struct {
	re      *regexp.Regexp
	literal string
}

// NewMatcher compiles q as a case-insensitive regular expression, falling
// back to literal matching when the pattern does not compile. An empty query
// matches everything.
func NewMatcher(q string) Matcher {
	if q == "" {
		return Matcher{}
	}
	re, err := regexp.Compile("(?i)" + q)
	if err != nil {
		return Matcher{literal: strings.ToLower(q)}
	}
	return Matcher{re: re}
}

func (m Matcher) Match(s string) bool {
	if m.re != nil {
		return m.re.MatchString(s)
	}
	if m.literal != "" {
		return strings.Contains(strings.ToLower(s), m.literal)
	}
	return true
}

// MatchAny reports whether any of the given strings matches.
func (m Matcher) MatchAny(ss ...string) bool {
	if m.re == nil && m.literal == "" {
		return true
	}
	for _, s := range ss {
		if s != "" && m.Match(s) {
			return true
		}
	}
	return false
}
