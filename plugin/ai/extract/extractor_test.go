package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/apptintent/plugin/ai/department"
)

func TestExtract_ExactDepartmentForEveryEntry(t *testing.T) {
	vocab := department.Default()
	e := NewExtractor(vocab)

	for _, name := range vocab.Names() {
		t.Run(name, func(t *testing.T) {
			got := e.Extract("please book " + name + " tomorrow")
			assert.Equal(t, name, got.Department)
			assert.Equal(t, 1.0, got.DepartmentConfidence)
		})
	}
}

func TestExtract_LongestEntryWins(t *testing.T) {
	e := NewExtractor(nil)

	got := e.Extract("cardiologist appointment")
	assert.Equal(t, "cardiologist", got.Department)
	assert.Equal(t, 1.0, got.DepartmentConfidence)

	// "ent" inside other words is not a whole-word hit
	got = e.Extract("appointment for dentistry at the center")
	assert.NotEqual(t, "ent", got.Department)
}

func TestExtract_MultiWordDepartment(t *testing.T) {
	vocab := department.MustNewVocabulary([]string{"general physician", "ent"})
	e := NewExtractor(vocab)

	got := e.Extract("see a general physician today")
	assert.Equal(t, "general physician", got.Department)
	assert.Equal(t, 1.0, got.DepartmentConfidence)
}

func TestExtract_FuzzyDepartment(t *testing.T) {
	e := NewExtractor(nil)

	tests := []struct {
		name     string
		input    string
		wantDept string
		minConf  float64
	}{
		{"deletion", "book dentst tomorrow", "dentist", 0.85},
		{"substitution", "see the neurologest", "neurologist", 0.9},
		{"split token", "cardio logist on monday", "cardiologist", 0.9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Extract(tt.input)
			assert.Equal(t, tt.wantDept, got.Department)
			assert.Less(t, got.DepartmentConfidence, 1.0)
			assert.GreaterOrEqual(t, got.DepartmentConfidence, tt.minConf)
		})
	}
}

func TestExtract_FuzzyDepartmentBelowThreshold(t *testing.T) {
	e := NewExtractor(nil)

	got := e.Extract("book a plumber friday")
	assert.Empty(t, got.Department)
	assert.Equal(t, 0.0, got.DepartmentConfidence)
}

func TestExtract_FuzzyDepartmentThresholdOption(t *testing.T) {
	// "dentst" scores 6/7 against "dentist"
	strict := NewExtractor(nil, WithDepartmentThreshold(0.9))
	assert.Empty(t, strict.Extract("dentst").Department)

	loose := NewExtractor(nil, WithDepartmentThreshold(0.8))
	assert.Equal(t, "dentist", loose.Extract("dentst").Department)
}

func TestExtract_GibberishNeverFuzzyMatches(t *testing.T) {
	e := NewExtractor(nil)

	for _, in := range []string{
		"xkcdqwrt zzzbbn",
		"dntst crdlgst",
		"bcdfghjklm nrlgst",
	} {
		t.Run(in, func(t *testing.T) {
			got := e.Extract(in)
			assert.Empty(t, got.Department)
		})
	}
}

func TestExtract_DatePhraseCascade(t *testing.T) {
	e := NewExtractor(nil)

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"day after tomorrow beats tomorrow", "dentist day after tomorrow", "day after tomorrow"},
		{"next weekday beats tomorrow", "tomorrow or next friday", "next friday"},
		{"tomorrow beats today", "today or tomorrow", "tomorrow"},
		{"today beats weekday", "monday or today", "today"},
		{"leftmost bare weekday", "wednesday or monday", "wednesday"},
		{"bare weekday", "dentist friday 3pm", "friday"},
		{"in n days", "dentist in 3 days", "in 3 days"},
		{"in one day", "in 1 day", "in 1 day"},
		{"fuzzy weekday", "dentist wednsday", "wednesday"},
		{"fuzzy tomorrow", "dentist tommorrow", "tomorrow"},
		{"fuzzy next weekday", "dentist next fridy at 3pm", "next friday"},
		{"none", "dentist at 3pm", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, e.Extract(tt.input).DatePhrase)
		})
	}
}

func TestExtract_DateFuzzyThresholdOption(t *testing.T) {
	// "fridy" scores 5/6 against "friday"
	strict := NewExtractor(nil, WithDateThreshold(0.9))
	assert.Empty(t, strict.Extract("fridy").DatePhrase)

	loose := NewExtractor(nil, WithDateThreshold(0.8))
	assert.Equal(t, "friday", loose.Extract("fridy").DatePhrase)
}

func TestExtract_TimePhrase(t *testing.T) {
	e := NewExtractor(nil)

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"meridiem", "dentist at 3pm", "3pm"},
		{"spaced meridiem", "dentist at 3 pm", "3pm"},
		{"p n confusion", "dentist at 3 p n", "3pm"},
		{"o m confusion", "dentist at 4 om", "4pm"},
		{"twenty four hour", "dentist at 15:00", "15:00"},
		{"dotted minutes", "dentist at 3.30pm", "3.30pm"},
		{"am", "dentist at 12am", "12am"},
		{"compact minutes", "dentist at 330pm", "330pm"},
		{"compact minutes spaced meridiem", "dentist at 1045 am", "1045am"},
		{"four digits without meridiem", "dentist 2026", ""},
		{"bare hour", "dentist friday at 5", "5"},
		{"prefers richer match", "dentist in 3 days at 5pm", "5pm"},
		{"skips duration count", "dentist in 3 days", ""},
		{"three digits are not an hour", "room 123", ""},
		{"none", "dentist tomorrow", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, e.Extract(tt.input).TimePhrase)
		})
	}
}

func TestExtract_EmptyInput(t *testing.T) {
	e := NewExtractor(nil)

	for _, in := range []string{"", "   "} {
		got := e.Extract(in)
		require.Equal(t, Entities{}, got)
		assert.False(t, got.HasDepartment())
		assert.False(t, got.HasDatePhrase())
		assert.False(t, got.HasTimePhrase())
	}
}

func TestExtract_FullSentence(t *testing.T) {
	e := NewExtractor(nil)

	got := e.Extract("book dentist next friday at 3pm")
	assert.Equal(t, Entities{
		Department:           "dentist",
		DepartmentConfidence: 1.0,
		DatePhrase:           "next friday",
		TimePhrase:           "3pm",
	}, got)
}
