package extract

import (
	"strings"

	"github.com/hrygo/apptintent/plugin/ai/fuzzy"
)

// maxDepartmentWindow is the widest token window compared during fuzzy search.
const maxDepartmentWindow = 2

// findDepartment tries a whole-word match first, then the best fuzzy window.
func (e *Extractor) findDepartment(tokens []string) (string, float64) {
	if len(tokens) == 0 {
		return "", 0
	}

	if name, ok := e.exactDepartment(tokens); ok {
		return name, 1.0
	}
	return e.fuzzyDepartment(tokens)
}

// exactDepartment returns the first vocabulary entry, longest first, whose
// words appear contiguously in tokens.
func (e *Extractor) exactDepartment(tokens []string) (string, bool) {
	var found string
	e.vocab.Each(func(name string) bool {
		if containsSequence(tokens, strings.Fields(name)) {
			found = name
			return false
		}
		return true
	})
	return found, found != ""
}

// fuzzyDepartment slides 1..maxDepartmentWindow token windows and keeps the
// single best (window, entry) pair. Ties keep the earliest pair.
func (e *Extractor) fuzzyDepartment(tokens []string) (string, float64) {
	bestName := ""
	bestSim := 0.0

	for size := 1; size <= maxDepartmentWindow; size++ {
		for i := 0; i+size <= len(tokens); i++ {
			window := strings.Join(tokens[i:i+size], " ")
			if !fuzzy.IsPlausibleWord(window) {
				continue
			}
			e.vocab.Each(func(name string) bool {
				if sim := fuzzy.Similarity(window, name); sim > bestSim {
					bestSim = sim
					bestName = name
				}
				return true
			})
		}
	}

	if bestName == "" || bestSim < e.deptThreshold {
		return "", 0
	}
	return bestName, bestSim
}

func containsSequence(tokens, seq []string) bool {
	if len(seq) == 0 || len(seq) > len(tokens) {
		return false
	}
	for i := 0; i+len(seq) <= len(tokens); i++ {
		match := true
		for j, word := range seq {
			if tokens[i+j] != word {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}
