package guardrail

import (
	"strings"
	"unicode/utf8"

	"github.com/hrygo/apptintent/plugin/ai/aitime"
	"github.com/hrygo/apptintent/plugin/ai/extract"
	"github.com/hrygo/apptintent/plugin/ai/scoring"
)

// DefaultMinDepartmentConfidence is the lowest department confidence accepted.
// It is applied on top of the extractor's own fuzzy threshold.
const DefaultMinDepartmentConfidence = 0.70

// Confidence weights and penalties.
const (
	entitiesWeight      = 0.7
	normalizationWeight = 0.3
	departmentPenalty   = 0.2
	datePenalty         = 0.4
)

const successMessage = "Appointment parsed successfully."

// Input carries every signal the decision needs.
type Input struct {
	RawText                 string
	Entities                extract.Entities
	Normalized              aitime.NormalizedEntity
	EntitiesConfidence      float64
	NormalizationConfidence float64
}

// Guardrail turns signals into a ParseResult. Safe for concurrent use.
type Guardrail struct {
	minDepartmentConfidence float64
}

// Option configures a Guardrail.
type Option func(*Guardrail)

// WithMinDepartmentConfidence overrides DefaultMinDepartmentConfidence.
func WithMinDepartmentConfidence(v float64) Option {
	return func(g *Guardrail) {
		g.minDepartmentConfidence = v
	}
}

// New creates a Guardrail.
func New(opts ...Option) *Guardrail {
	g := &Guardrail{minDepartmentConfidence: DefaultMinDepartmentConfidence}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Decide assembles the result. The request is accepted iff the department is
// valid, a date phrase was found and a time was resolved.
func (g *Guardrail) Decide(in Input) ParseResult {
	departmentValid := in.Entities.HasDepartment() &&
		in.Entities.DepartmentConfidence >= g.minDepartmentConfidence
	hasDatePhrase := in.Entities.HasDatePhrase()
	hasTime := in.Normalized.Time != ""

	overall := scoring.Clamp01(entitiesWeight*in.EntitiesConfidence + normalizationWeight*in.NormalizationConfidence)
	if !departmentValid {
		overall *= departmentPenalty
	}
	if !hasDatePhrase {
		overall *= datePenalty
	}

	result := ParseResult{
		RawText:                 in.RawText,
		Confidence:              overall,
		Entities:                in.Entities,
		EntitiesConfidence:      in.EntitiesConfidence,
		Normalized:              in.Normalized,
		NormalizationConfidence: in.NormalizationConfidence,
	}

	if departmentValid && hasDatePhrase && hasTime {
		result.Status = StatusOK
		result.Message = successMessage
		result.Appointment = &AppointmentIntent{
			Department: Capitalize(in.Entities.Department),
			Date:       in.Normalized.Date,
			Time:       in.Normalized.Time,
			Timezone:   in.Normalized.Timezone,
		}
		return result
	}

	var missing []string
	if !departmentValid {
		missing = append(missing, "department")
	}
	if !hasDatePhrase {
		missing = append(missing, "date")
	}
	if !hasTime {
		missing = append(missing, "time")
	}
	result.Status = StatusNeedsClarification
	result.Message = "Ambiguous " + strings.Join(missing, ", ") + "."
	return result
}

// Capitalize upper-cases the first rune and lower-cases the rest.
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return strings.ToUpper(string(r)) + strings.ToLower(s[size:])
}
