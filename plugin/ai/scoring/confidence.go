// Package scoring computes extraction and normalization confidences.
package scoring

import (
	"strings"
	"unicode/utf8"

	"github.com/hrygo/apptintent/plugin/ai/aitime"
	"github.com/hrygo/apptintent/plugin/ai/extract"
)

// Entity presence weights.
const (
	WeightDepartment = 0.4
	WeightDatePhrase = 0.3
	WeightTimePhrase = 0.3
)

// Normalization presence weights.
const (
	WeightDate     = 0.5
	WeightTime     = 0.4
	WeightTimezone = 0.1
)

// midnightPenalty applies to a 00:00 time the raw text never mentioned.
const midnightPenalty = 0.5

// Entities scores presence of each entity, scaled by the text quality of raw.
func Entities(e extract.Entities, raw string) float64 {
	score := 0.0
	if e.HasDepartment() {
		score += WeightDepartment
	}
	if e.HasDatePhrase() {
		score += WeightDatePhrase
	}
	if e.HasTimePhrase() {
		score += WeightTimePhrase
	}
	return Clamp01(score * (0.5 + 0.5*Quality(raw)))
}

// Normalization scores the resolved date and time.
func Normalization(n aitime.NormalizedEntity, raw string) float64 {
	score := 0.0
	if n.Date != "" {
		score += WeightDate
	}
	if n.Time != "" {
		score += WeightTime
	}
	if n.Timezone != "" {
		score += WeightTimezone
	}
	if n.Time == "00:00" && !strings.Contains(raw, "12") {
		score *= midnightPenalty
	}
	return Clamp01(score)
}

// Quality is the share of ASCII letters and digits among the runes of raw.
func Quality(raw string) float64 {
	total := utf8.RuneCountInString(raw)
	if total == 0 {
		return 0
	}
	alnum := 0
	for _, r := range raw {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			alnum++
		}
	}
	return float64(alnum) / float64(total)
}

// Clamp01 bounds v to [0,1].
func Clamp01(v float64) float64 {
	return min(max(v, 0), 1)
}
