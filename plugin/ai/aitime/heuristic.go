package aitime

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Patterns for the fallback resolver.
var (
	dayAfterTomorrowPattern = regexp.MustCompile(`\bday after tomorrow\b`)
	tomorrowPattern         = regexp.MustCompile(`\btomorrow\b`)
	todayPattern            = regexp.MustCompile(`\btoday\b`)
	nextWeekdayPattern      = regexp.MustCompile(`\bnext\s+(monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`)
	weekdayPattern          = regexp.MustCompile(`\b(monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`)
	inDaysPattern           = regexp.MustCompile(`\bin\s+(\d{1,3})\s+days?\b`)

	// clockPattern matches a whitespace-free time phrase.
	clockPattern = regexp.MustCompile(`^(\d{1,2})(?:[:.]?(\d{2}))?(am|pm)?$`)
)

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// HeuristicStrategy resolves the fixed phrase table deterministically.
type HeuristicStrategy struct{}

// NewHeuristicStrategy creates the fallback strategy.
func NewHeuristicStrategy() *HeuristicStrategy {
	return &HeuristicStrategy{}
}

// Name implements Strategy.
func (s *HeuristicStrategy) Name() string {
	return "heuristic"
}

// Resolve implements Strategy. When the date phrase does not resolve the
// reference text is rescanned for the same cues.
func (s *HeuristicStrategy) Resolve(req Request) (NormalizedEntity, error) {
	today := time.Date(req.Now.Year(), req.Now.Month(), req.Now.Day(), 0, 0, 0, 0, req.Location)

	date, ok := resolveDate(req.DatePhrase, today)
	if !ok {
		date, ok = resolveDate(req.Reference, today)
	}
	var datePtr *time.Time
	if ok {
		datePtr = &date
	}

	hour, minute, hasTime := ParseClock(req.TimePhrase)

	out := newEntity(datePtr, hour, minute, hasTime, req.Location)
	if out.IsEmpty() {
		return out, ErrNoCandidate
	}
	return out, nil
}

// resolveDate maps a phrase to a calendar day relative to today.
func resolveDate(phrase string, today time.Time) (time.Time, bool) {
	s := strings.ToLower(strings.TrimSpace(phrase))
	if s == "" {
		return time.Time{}, false
	}

	switch {
	case dayAfterTomorrowPattern.MatchString(s):
		return today.AddDate(0, 0, 2), true
	case tomorrowPattern.MatchString(s):
		return today.AddDate(0, 0, 1), true
	case todayPattern.MatchString(s):
		return today, true
	}

	if m := nextWeekdayPattern.FindStringSubmatch(s); m != nil {
		return today.AddDate(0, 0, DaysUntil(today.Weekday(), weekdays[m[1]], true)), true
	}
	if m := weekdayPattern.FindStringSubmatch(s); m != nil {
		return today.AddDate(0, 0, DaysUntil(today.Weekday(), weekdays[m[1]], false)), true
	}
	if m := inDaysPattern.FindStringSubmatch(s); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil {
			return today.AddDate(0, 0, n), true
		}
	}
	return time.Time{}, false
}

// DaysUntil returns the day offset from today to target in [0,6].
// With forceNext a zero offset becomes 7.
func DaysUntil(today, target time.Weekday, forceNext bool) int {
	days := (int(target) - int(today) + 7) % 7
	if days == 0 && forceNext {
		days = 7
	}
	return days
}

// ParseClock parses phrases like "3pm", "3:30 pm", "15.45" or "9".
// Hours are clamped to [0,23] and minutes to [0,59].
func ParseClock(phrase string) (hour, minute int, ok bool) {
	s := strings.Join(strings.Fields(strings.ToLower(phrase)), "")
	if s == "" {
		return 0, 0, false
	}

	m := clockPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, 0, false
	}

	hour, _ = strconv.Atoi(m[1])
	if m[2] != "" {
		minute, _ = strconv.Atoi(m[2])
	}

	switch m[3] {
	case "pm":
		if hour < 12 {
			hour += 12
		}
	case "am":
		if hour == 12 {
			hour = 0
		}
	}

	return min(max(hour, 0), 23), min(max(minute, 0), 59), true
}
