// Package guardrail decides whether a parsed request is accepted.
package guardrail

import (
	"github.com/hrygo/apptintent/plugin/ai/aitime"
	"github.com/hrygo/apptintent/plugin/ai/extract"
)

// Status is the outcome of a decision.
type Status string

const (
	StatusOK                 Status = "ok"
	StatusNeedsClarification Status = "needs_clarification"
)

// AppointmentIntent is the accepted appointment.
type AppointmentIntent struct {
	Department string `json:"department"`
	Date       string `json:"date"`
	Time       string `json:"time"`
	Timezone   string `json:"tz"`
}

// ParseResult is the full answer returned for one request.
type ParseResult struct {
	RawText                 string                  `json:"raw_text"`
	Confidence              float64                 `json:"confidence"`
	Entities                extract.Entities        `json:"entities"`
	EntitiesConfidence      float64                 `json:"entities_confidence"`
	Normalized              aitime.NormalizedEntity `json:"normalized"`
	NormalizationConfidence float64                 `json:"normalization_confidence"`
	Appointment             *AppointmentIntent      `json:"appointment,omitempty"`
	Status                  Status                  `json:"status"`
	Message                 string                  `json:"message"`
}

// IsOK reports whether the request was accepted.
func (r ParseResult) IsOK() bool {
	return r.Status == StatusOK
}
