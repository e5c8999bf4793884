package domain

import (
	"regexp"
	"strings"
)

// DefaultMatchURLs are the pages the agent augments: new manual dives and
// edits of existing ones.
var DefaultMatchURLs = []string{
	"https://connect.garmin.com/modern/activity/manual?typeKey=diving",
	"https://connect.garmin.com/modern/activity/manual/*/edit",
}

// Scope decides which page URLs the agent is active on. Patterns are literal
// URLs where * matches any run of characters.
type Scope struct {
	patterns []*regexp.Regexp
}

// NewScope compiles the URL patterns.
func NewScope(patterns []string) Scope {
	s := Scope{patterns: make([]*regexp.Regexp, 0, len(patterns))}
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		quoted := strings.ReplaceAll(regexp.QuoteMeta(p), `\*`, `.*`)
		s.patterns = append(s.patterns, regexp.MustCompile("^"+quoted+"$"))
	}
	return s
}

// Matches reports whether url falls within the scope. An empty scope
// matches nothing.
func (s Scope) Matches(url string) bool {
	for _, re := range s.patterns {
		if re.MatchString(url) {
			return true
		}
	}
	return false
}
