package aitime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kolkata(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)
	return loc
}

// monday returns Monday 2026-01-26 10:00 in loc.
func monday(loc *time.Location) time.Time {
	return time.Date(2026, 1, 26, 10, 0, 0, 0, loc)
}

func TestHeuristic_DatePhrases(t *testing.T) {
	loc := kolkata(t)
	s := NewHeuristicStrategy()

	tests := []struct {
		name     string
		phrase   string
		wantDate string
	}{
		{"today", "today", "2026-01-26"},
		{"tomorrow", "tomorrow", "2026-01-27"},
		{"day after tomorrow", "day after tomorrow", "2026-01-28"},
		{"bare weekday same day", "monday", "2026-01-26"},
		{"next weekday same day", "next monday", "2026-02-02"},
		{"bare weekday later", "friday", "2026-01-30"},
		{"next weekday later", "next friday", "2026-01-30"},
		{"bare weekday wraps", "sunday", "2026-02-01"},
		{"in n days", "in 3 days", "2026-01-29"},
		{"in one day", "in 1 day", "2026-01-27"},
		{"case insensitive", "Tomorrow", "2026-01-27"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Resolve(Request{DatePhrase: tt.phrase, Now: monday(loc), Location: loc})
			require.NoError(t, err)
			assert.Equal(t, tt.wantDate, got.Date)
			assert.Empty(t, got.Time)
			assert.Equal(t, "Asia/Kolkata", got.Timezone)
		})
	}
}

func TestHeuristic_RescansReference(t *testing.T) {
	loc := kolkata(t)
	s := NewHeuristicStrategy()

	got, err := s.Resolve(Request{
		Reference:  "dentist visit tomorrow please",
		DatePhrase: "",
		TimePhrase: "4pm",
		Now:        monday(loc),
		Location:   loc,
	})
	require.NoError(t, err)
	assert.Equal(t, NormalizedEntity{Date: "2026-01-27", Time: "16:00", Timezone: "Asia/Kolkata"}, got)
}

func TestHeuristic_TimeOnly(t *testing.T) {
	loc := kolkata(t)
	s := NewHeuristicStrategy()

	got, err := s.Resolve(Request{
		Reference:  "dentist at 3pm",
		TimePhrase: "3pm",
		Now:        monday(loc),
		Location:   loc,
	})
	require.NoError(t, err)
	assert.Empty(t, got.Date)
	assert.Equal(t, "15:00", got.Time)
	assert.Equal(t, "Asia/Kolkata", got.Timezone)
}

func TestHeuristic_NothingResolved(t *testing.T) {
	loc := kolkata(t)
	s := NewHeuristicStrategy()

	got, err := s.Resolve(Request{Reference: "dentist please", Now: monday(loc), Location: loc})
	assert.ErrorIs(t, err, ErrNoCandidate)
	assert.True(t, got.IsEmpty())
	assert.Empty(t, got.Timezone)
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		phrase     string
		wantHour   int
		wantMinute int
		wantOK     bool
	}{
		{"3pm", 15, 0, true},
		{"3 pm", 15, 0, true},
		{"3:30pm", 15, 30, true},
		{"3.30 pm", 15, 30, true},
		{"330pm", 15, 30, true},
		{"12am", 0, 0, true},
		{"12pm", 12, 0, true},
		{"11am", 11, 0, true},
		{"9", 9, 0, true},
		{"15:00", 15, 0, true},
		{"25", 23, 0, true},
		{"10:75", 10, 59, true},
		{"99pm", 23, 0, true},
		{"noon", 0, 0, false},
		{"", 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.phrase, func(t *testing.T) {
			h, m, ok := ParseClock(tt.phrase)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantHour, h)
			assert.Equal(t, tt.wantMinute, m)
		})
	}
}

func TestDaysUntil(t *testing.T) {
	assert.Equal(t, 0, DaysUntil(time.Monday, time.Monday, false))
	assert.Equal(t, 7, DaysUntil(time.Monday, time.Monday, true))
	assert.Equal(t, 4, DaysUntil(time.Monday, time.Friday, true))
	assert.Equal(t, 6, DaysUntil(time.Monday, time.Sunday, false))
	assert.Equal(t, 1, DaysUntil(time.Saturday, time.Sunday, true))
}
