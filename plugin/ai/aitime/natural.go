package aitime

import (
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
	"github.com/pkg/errors"
)

// naturalRewrites turn phrases the English rules read differently into
// equivalents they handle ("day after tomorrow" would otherwise match "tomorrow").
var naturalRewrites = strings.NewReplacer(
	"day after tomorrow", "in 2 days",
)

// NaturalStrategy resolves phrases with the olebedev/when natural language parser.
type NaturalStrategy struct {
	parser *when.Parser
}

// NewNaturalStrategy creates a strategy with the English and common rule sets.
// The parser is read-only after construction.
func NewNaturalStrategy() *NaturalStrategy {
	w := when.New(&rules.Options{
		Distance:     5,
		MatchByOrder: true,
	})
	w.Add(en.All...)
	w.Add(common.All...)
	return &NaturalStrategy{parser: w}
}

// Name implements Strategy.
func (s *NaturalStrategy) Name() string {
	return "natural"
}

// Resolve implements Strategy. The first candidate is converted to the target
// zone and truncated to the minute.
func (s *NaturalStrategy) Resolve(req Request) (out NormalizedEntity, err error) {
	input := naturalInput(req)
	if input == "" {
		return NormalizedEntity{}, ErrNoCandidate
	}

	defer func() {
		if r := recover(); r != nil {
			out = NormalizedEntity{}
			err = errors.Errorf("natural parser panic: %v", r)
		}
	}()

	result, err := s.parser.Parse(naturalRewrites.Replace(input), req.Now)
	if err != nil {
		return NormalizedEntity{}, errors.Wrap(err, "natural parser")
	}
	if result == nil {
		return NormalizedEntity{}, ErrNoCandidate
	}

	t := result.Time.In(req.Location)
	date := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, req.Location)
	hour, minute := t.Hour(), t.Minute()

	// Known day phrases and clock phrases override the parser, which reads a
	// bare weekday as the next one and fills unknown clocks from the base time.
	now := req.Now.In(req.Location)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, req.Location)
	if d, ok := resolveDate(req.DatePhrase, today); ok {
		date = d
	}
	if h, m, ok := ParseClock(req.TimePhrase); ok {
		hour, minute = h, m
	}
	return newEntity(&date, hour, minute, true, req.Location), nil
}

// naturalInput prefers the extracted phrases and falls back to the full text.
func naturalInput(req Request) string {
	date := strings.TrimSpace(req.DatePhrase)
	clock := strings.TrimSpace(req.TimePhrase)
	switch {
	case date != "" && clock != "":
		return date + " " + clock
	case date != "":
		return date
	default:
		return strings.TrimSpace(req.Reference)
	}
}
