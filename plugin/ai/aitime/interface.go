// Package aitime resolves date and time phrases of appointment requests.
package aitime

import (
	"time"

	"github.com/pkg/errors"
)

const (
	// DateLayout is the ISO-8601 calendar date format of NormalizedEntity.Date.
	DateLayout = "2006-01-02"
	// TimeLayout is the 24-hour format of NormalizedEntity.Time.
	TimeLayout = "15:04"
)

// ErrNoCandidate is returned by a Strategy that could not resolve anything.
var ErrNoCandidate = errors.New("no temporal candidate")

// NormalizedEntity is a resolved date/time. Fields are either fully formatted or empty.
type NormalizedEntity struct {
	Date     string `json:"date,omitempty"`
	Time     string `json:"time,omitempty"`
	Timezone string `json:"tz,omitempty"`
}

// IsEmpty reports whether neither date nor time was resolved.
func (n NormalizedEntity) IsEmpty() bool {
	return n.Date == "" && n.Time == ""
}

// Request is the input shared by every Strategy.
type Request struct {
	// Reference is the full normalized text.
	Reference  string
	DatePhrase string
	TimePhrase string
	// Now is the current instant expressed in Location.
	Now      time.Time
	Location *time.Location
}

// Strategy turns a Request into a NormalizedEntity.
// Implementations return ErrNoCandidate (or any error) when they have no answer.
type Strategy interface {
	Name() string
	Resolve(req Request) (NormalizedEntity, error)
}

// newEntity formats the resolved parts. The timezone is set iff date or time is.
func newEntity(date *time.Time, hour, minute int, hasTime bool, loc *time.Location) NormalizedEntity {
	var out NormalizedEntity
	if date != nil {
		out.Date = date.Format(DateLayout)
	}
	if hasTime {
		out.Time = time.Date(2000, 1, 1, hour, minute, 0, 0, time.UTC).Format(TimeLayout)
	}
	if !out.IsEmpty() {
		out.Timezone = loc.String()
	}
	return out
}
