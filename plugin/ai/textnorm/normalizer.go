// Package textnorm cleans raw appointment text (typed or OCR) before extraction.
package textnorm

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// correction is a single OCR fix applied to lowercased text.
type correction struct {
	pattern     *regexp.Regexp
	replacement string
}

// corrections run top to bottom; later rules see the output of earlier ones.
// Every replacement is a fixed point of its own pattern so Normalize stays idempotent.
var corrections = []correction{
	// Department misreads.
	{regexp.MustCompile(`dent1st|dentlst|dnntist`), "dentist"},
	{regexp.MustCompile(`cardio1ogist`), "cardiologist"},
	{regexp.MustCompile(`neuro1ogist`), "neurologist"},
	{regexp.MustCompile(`derrnatologist`), "dermatologist"},
	{regexp.MustCompile(`orthoped1c`), "orthopedic"},

	// Date words.
	{regexp.MustCompile(`\b(?:tmrw|tmr|tomm?or?ow)\b`), "tomorrow"},
	{regexp.MustCompile(`\bnxt\b`), "next"},
	{regexp.MustCompile(`\bnext(monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`), "next $1"},

	// Meridiem confusions, anchored on the preceding hour digit.
	{regexp.MustCompile(`(\d)\s*([ap])\.\s*m\b\.?`), "${1}${2}m"},
	{regexp.MustCompile(`(\d)\s*(?:[pq]\s*[mn]|[og]\s*m)\b`), "${1}pm"},
	{regexp.MustCompile(`(\d)\s*a\s*m\b`), "${1}am"},
}

// Normalizer applies deterministic cleanup to raw text.
// It holds no state and is safe for concurrent use.
type Normalizer struct{}

// New creates a Normalizer.
func New() *Normalizer {
	return &Normalizer{}
}

// Normalize lowercases, folds compatibility forms, turns control characters
// into spaces, applies the OCR correction table and collapses whitespace.
func (n *Normalizer) Normalize(raw string) string {
	if raw == "" {
		return ""
	}

	s := fold(raw)
	s = strings.ToLower(s)
	for _, c := range corrections {
		s = c.pattern.ReplaceAllString(s, c.replacement)
	}

	return strings.Join(strings.Fields(s), " ")
}

// fold builds a fresh transformer per call; transform.Chain keeps internal buffers.
// Format and control characters go before NFKC so composition sees the final rune sequence.
func fold(s string) string {
	t := transform.Chain(
		runes.Remove(runes.In(unicode.Cf)),
		runes.Map(func(r rune) rune {
			if unicode.IsControl(r) {
				return ' '
			}
			return r
		}),
		norm.NFKC,
	)

	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
