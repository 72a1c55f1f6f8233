package extract

import (
	"strings"
	"unicode"

	"github.com/hrygo/apptintent/plugin/ai/department"
)

const (
	// DefaultDepartmentFuzzyThreshold is the minimum similarity for a fuzzy department hit.
	DefaultDepartmentFuzzyThreshold = 0.75
	// DefaultDateFuzzyThreshold is the minimum similarity for a fuzzy date word hit.
	DefaultDateFuzzyThreshold = 0.70
)

// Extractor finds entities in normalized text. It is immutable after
// construction and safe for concurrent use.
type Extractor struct {
	vocab         *department.Vocabulary
	deptThreshold float64
	dateThreshold float64
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithDepartmentThreshold overrides DefaultDepartmentFuzzyThreshold.
func WithDepartmentThreshold(v float64) Option {
	return func(e *Extractor) {
		e.deptThreshold = v
	}
}

// WithDateThreshold overrides DefaultDateFuzzyThreshold.
func WithDateThreshold(v float64) Option {
	return func(e *Extractor) {
		e.dateThreshold = v
	}
}

// NewExtractor creates an Extractor over vocab. A nil vocab uses the default departments.
func NewExtractor(vocab *department.Vocabulary, opts ...Option) *Extractor {
	if vocab == nil {
		vocab = department.Default()
	}
	e := &Extractor{
		vocab:         vocab,
		deptThreshold: DefaultDepartmentFuzzyThreshold,
		dateThreshold: DefaultDateFuzzyThreshold,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract returns every entity it can find. Missing entities are left empty.
func (e *Extractor) Extract(text string) Entities {
	var out Entities
	if strings.TrimSpace(text) == "" {
		return out
	}

	lower := strings.ToLower(text)
	tokens := tokenize(lower)
	out.Department, out.DepartmentConfidence = e.findDepartment(tokens)
	out.DatePhrase = e.findDatePhrase(lower, tokens)
	out.TimePhrase = findTimePhrase(lower)
	return out
}

// tokenize splits on anything that is not a letter or digit.
func tokenize(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
