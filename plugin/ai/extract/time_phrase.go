package extract

import (
	"regexp"
	"strings"
)

// meridiemFixes repair am/pm confusions left after normalization.
var meridiemFixes = []struct {
	pattern     *regexp.Regexp
	replacement string
}{
	{regexp.MustCompile(`(\d)\s*[pq]\s*n\b`), "${1}pm"},
	{regexp.MustCompile(`(\d)\s*[og]\s*m\b`), "${1}pm"},
	{regexp.MustCompile(`(\d)\s*p\s*m\b`), "${1}pm"},
	{regexp.MustCompile(`(\d)\s*a\s*m\b`), "${1}am"},
}

var (
	// timePattern matches hour[[:|.]mm][ ][am|pm].
	timePattern = regexp.MustCompile(`\b(\d{1,2})(?:([:.]?)(\d{2}))?\s*(am|pm)?\b`)
	// durationUnit follows a number that counts something other than the clock.
	durationUnit = regexp.MustCompile(`^\s*(?:days?|weeks?|months?|years?|hours?|hrs?|minutes?|mins?)\b`)
)

// findTimePhrase returns the best time-looking substring. A match with
// minutes or a meridiem wins over a bare hour. Minutes without a separator
// need a meridiem, so "330pm" is a time and "room 123" is not.
func findTimePhrase(text string) string {
	s := strings.ToLower(text)
	for _, fix := range meridiemFixes {
		s = fix.pattern.ReplaceAllString(s, fix.replacement)
	}

	matches := timePattern.FindAllStringSubmatchIndex(s, -1)
	bare := ""
	for _, m := range matches {
		hasMinutes := m[6] >= 0
		hasMeridiem := m[8] >= 0
		if hasMinutes && m[4] == m[5] && !hasMeridiem {
			continue
		}
		phrase := strings.TrimSpace(s[m[0]:m[1]])
		if hasMinutes || hasMeridiem {
			return phrase
		}
		if bare == "" && !durationUnit.MatchString(s[m[1]:]) {
			bare = phrase
		}
	}
	return bare
}
