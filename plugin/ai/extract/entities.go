// Package extract finds department, date and time phrases in normalized text.
package extract

// Entities holds the raw signals found in one request.
// Empty strings mean the signal was not found.
type Entities struct {
	Department           string  `json:"department,omitempty"`
	DepartmentConfidence float64 `json:"department_confidence"`
	DatePhrase           string  `json:"date_phrase,omitempty"`
	TimePhrase           string  `json:"time_phrase,omitempty"`
}

// HasDepartment reports whether a department was extracted.
func (e Entities) HasDepartment() bool {
	return e.Department != ""
}

// HasDatePhrase reports whether a date phrase was extracted.
func (e Entities) HasDatePhrase() bool {
	return e.DatePhrase != ""
}

// HasTimePhrase reports whether a time phrase was extracted.
func (e Entities) HasTimePhrase() bool {
	return e.TimePhrase != ""
}
