// Package fuzzy provides approximate string matching used by entity extraction.
package fuzzy

import (
	"strings"
	"unicode"
)

// Levenshtein returns the edit distance between a and b, ignoring case.
// It keeps two rows sized by the shorter input.
func Levenshtein(a, b string) int {
	ra := []rune(strings.ToLower(a))
	rb := []rune(strings.ToLower(b))

	if string(ra) == string(rb) {
		return 0
	}
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	// rb is the shorter one
	if len(ra) < len(rb) {
		ra, rb = rb, ra
	}

	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		cur[0] = i
		ca := ra[i-1]
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ca == rb[j-1] {
				cost = 0
			}
			cur[j] = min(cur[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}

	return prev[len(rb)]
}

// Similarity returns 1 - distance/max(len(a), len(b)) over trimmed inputs.
// Two empty strings are identical.
func Similarity(a, b string) float64 {
	a = strings.TrimSpace(a)
	b = strings.TrimSpace(b)

	maxLen := max(len([]rune(a)), len([]rune(b)))
	if maxLen == 0 {
		return 1.0
	}

	return 1.0 - float64(Levenshtein(a, b))/float64(maxLen)
}

const (
	// minPlausibleLen is the length below which every token is accepted.
	minPlausibleLen = 3
	// maxConsonantRun is the longest consonant run a real word may contain.
	maxConsonantRun = 4
)

// IsPlausibleWord reports whether token looks like a word rather than OCR noise.
// Tokens shorter than three runes always pass.
func IsPlausibleWord(token string) bool {
	runes := []rune(strings.ToLower(token))
	if len(runes) < minPlausibleLen {
		return true
	}

	vowels := 0
	run := 0
	for _, r := range runes {
		switch {
		case isVowel(r):
			vowels++
			run = 0
		case unicode.IsLetter(r):
			run++
			if run > maxConsonantRun {
				return false
			}
		default:
			run = 0
		}
	}

	return vowels > 0
}

func isVowel(r rune) bool {
	switch r {
	case 'a', 'e', 'i', 'o', 'u':
		return true
	}
	return false
}
