// Package department holds the controlled vocabulary of bookable departments.
package department

import (
	"slices"
	"strings"

	"github.com/pkg/errors"
)

// DefaultNames is the vocabulary used when no configuration overrides it.
var DefaultNames = []string{
	"dentist",
	"cardiologist",
	"neurologist",
	"orthopedic",
	"dermatologist",
	"ent",
}

// Vocabulary is an immutable list of canonical department names ordered
// longest first so a short entry such as "ent" never shadows a longer one.
type Vocabulary struct {
	names []string
}

// NewVocabulary lowercases, trims and de-duplicates names, then sorts them by
// descending length. Entries of equal length keep their configured order.
func NewVocabulary(names []string) (*Vocabulary, error) {
	seen := make(map[string]bool, len(names))
	sorted := make([]string, 0, len(names))
	for _, name := range names {
		canonical := strings.Join(strings.Fields(strings.ToLower(name)), " ")
		if canonical == "" {
			return nil, errors.Errorf("empty department name in vocabulary %q", names)
		}
		if seen[canonical] {
			continue
		}
		seen[canonical] = true
		sorted = append(sorted, canonical)
	}
	if len(sorted) == 0 {
		return nil, errors.New("department vocabulary is empty")
	}

	slices.SortStableFunc(sorted, func(a, b string) int {
		return len([]rune(b)) - len([]rune(a))
	})

	return &Vocabulary{names: sorted}, nil
}

// MustNewVocabulary is like NewVocabulary but panics on error.
func MustNewVocabulary(names []string) *Vocabulary {
	v, err := NewVocabulary(names)
	if err != nil {
		panic(err)
	}
	return v
}

// Default returns the vocabulary built from DefaultNames.
func Default() *Vocabulary {
	return MustNewVocabulary(DefaultNames)
}

// Names returns a copy of the names in search order.
func (v *Vocabulary) Names() []string {
	return slices.Clone(v.names)
}

// Len returns the number of entries.
func (v *Vocabulary) Len() int {
	return len(v.names)
}

// Each calls fn for every entry in search order until fn returns false.
func (v *Vocabulary) Each(fn func(name string) bool) {
	for _, name := range v.names {
		if !fn(name) {
			return
		}
	}
}
