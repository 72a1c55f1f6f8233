package extract

import (
	"regexp"

	"github.com/hrygo/apptintent/plugin/ai/fuzzy"
)

const weekdayAlternation = `monday|tuesday|wednesday|thursday|friday|saturday|sunday`

// dateCascade is tried in order; the first rule that matches wins.
var dateCascade = []*regexp.Regexp{
	regexp.MustCompile(`\bday after tomorrow\b`),
	regexp.MustCompile(`\bnext\s+(?:` + weekdayAlternation + `)\b`),
	regexp.MustCompile(`\btomorrow\b`),
	regexp.MustCompile(`\btoday\b`),
	regexp.MustCompile(`\b(?:` + weekdayAlternation + `)\b`),
	regexp.MustCompile(`\bin\s+\d{1,2}\s+days?\b`),
}

// dateWords are the fuzzy targets for misspelled single tokens.
var dateWords = []string{
	"today",
	"tomorrow",
	"monday",
	"tuesday",
	"wednesday",
	"thursday",
	"friday",
	"saturday",
	"sunday",
}

func isWeekday(word string) bool {
	switch word {
	case "monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday":
		return true
	}
	return false
}

// findDatePhrase returns the literal phrase of the first cascade rule that
// matches, or the canonical date word of the best fuzzy token.
func (e *Extractor) findDatePhrase(text string, tokens []string) string {
	for _, pattern := range dateCascade {
		if m := pattern.FindString(text); m != "" {
			return m
		}
	}
	return e.fuzzyDateWord(tokens)
}

func (e *Extractor) fuzzyDateWord(tokens []string) string {
	bestWord := ""
	bestIdx := -1
	bestSim := 0.0

	for i, tok := range tokens {
		for _, word := range dateWords {
			if sim := fuzzy.Similarity(tok, word); sim > bestSim {
				bestSim = sim
				bestWord = word
				bestIdx = i
			}
		}
	}

	if bestWord == "" || bestSim < e.dateThreshold {
		return ""
	}
	if isWeekday(bestWord) && bestIdx > 0 && tokens[bestIdx-1] == "next" {
		return "next " + bestWord
	}
	return bestWord
}
