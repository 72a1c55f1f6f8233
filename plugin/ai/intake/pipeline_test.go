package intake

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/apptintent/plugin/ai/guardrail"
)

func newTestPipeline(t *testing.T, now time.Time) *Pipeline {
	t.Helper()
	p, err := New(Config{
		Location: now.Location(),
		Now:      func() time.Time { return now },
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)
	return p
}

func kolkataTime(t *testing.T, year int, month time.Month, day, hour int) time.Time {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)
	return time.Date(year, month, day, hour, 0, 0, 0, loc)
}

func TestPipeline_BookNextFriday(t *testing.T) {
	tests := []struct {
		name     string
		now      time.Time
		wantDate string
	}{
		// Monday
		{"from monday", kolkataTime(t, 2026, time.January, 26, 10), "2026-01-30"},
		// Friday itself rolls to the following week
		{"from friday", kolkataTime(t, 2026, time.January, 30, 10), "2026-02-06"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestPipeline(t, tt.now)
			got := p.Parse(context.Background(), "Book dentist next Friday at 3pm")

			require.Equal(t, guardrail.StatusOK, got.Status, got.Message)
			require.NotNil(t, got.Appointment)
			assert.Equal(t, "Dentist", got.Appointment.Department)
			assert.Equal(t, tt.wantDate, got.Appointment.Date)
			assert.Equal(t, "15:00", got.Appointment.Time)
			assert.Equal(t, "Asia/Kolkata", got.Appointment.Timezone)
			assert.Equal(t, "Appointment parsed successfully.", got.Message)
			assert.Equal(t, "Book dentist next Friday at 3pm", got.RawText)
			assert.Greater(t, got.Confidence, 0.9)
			assert.LessOrEqual(t, got.Confidence, 1.0)
		})
	}
}

func TestPipeline_NoisyInput(t *testing.T) {
	p := newTestPipeline(t, kolkataTime(t, 2026, time.January, 26, 10))

	got := p.Parse(context.Background(), "  TMRW   Cardio1ogist 10:30am ")
	require.Equal(t, guardrail.StatusOK, got.Status, got.Message)
	assert.Equal(t, "cardiologist", got.Entities.Department)
	assert.Equal(t, "tomorrow", got.Entities.DatePhrase)
	assert.Equal(t, "Cardiologist", got.Appointment.Department)
	assert.Equal(t, "2026-01-27", got.Appointment.Date)
	assert.Equal(t, "10:30", got.Appointment.Time)
}

func TestPipeline_ClockAndWeekday(t *testing.T) {
	// Monday
	now := kolkataTime(t, 2026, time.January, 26, 10)

	tests := []struct {
		name     string
		input    string
		wantDate string
		wantTime string
	}{
		{"dotted minutes", "dentist tomorrow 3.30pm", "2026-01-27", "15:30"},
		{"compact minutes", "dentist tomorrow 330pm", "2026-01-27", "15:30"},
		{"midnight", "dentist tomorrow 12am", "2026-01-27", "00:00"},
		{"noon", "dentist tomorrow 12pm", "2026-01-27", "12:00"},
		{"out of range clock", "dentist tomorrow 25:70", "2026-01-27", "23:59"},
		{"bare weekday is today", "dentist monday 3pm", "2026-01-26", "15:00"},
		{"next weekday skips today", "dentist next monday 3pm", "2026-02-02", "15:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestPipeline(t, now)
			got := p.Parse(context.Background(), tt.input)

			require.Equal(t, guardrail.StatusOK, got.Status, got.Message)
			require.NotNil(t, got.Appointment)
			assert.Equal(t, tt.wantDate, got.Appointment.Date)
			assert.Equal(t, tt.wantTime, got.Appointment.Time)
		})
	}
}

func TestPipeline_EmptyInput(t *testing.T) {
	p := newTestPipeline(t, kolkataTime(t, 2026, time.January, 26, 10))

	for _, in := range []string{"", "   ", "\t\n"} {
		got := p.Parse(context.Background(), in)
		assert.Equal(t, guardrail.StatusNeedsClarification, got.Status)
		assert.Nil(t, got.Appointment)
		assert.Equal(t, "Ambiguous department, date, time.", got.Message)
		assert.Equal(t, 0.0, got.Confidence)
		assert.True(t, got.Normalized.IsEmpty())
	}
}

func TestPipeline_GibberishNeverMatchesDepartment(t *testing.T) {
	p := newTestPipeline(t, kolkataTime(t, 2026, time.January, 26, 10))

	got := p.Parse(context.Background(), "xkcdqwrt zzzbbn plmnk")
	assert.Equal(t, guardrail.StatusNeedsClarification, got.Status)
	assert.Empty(t, got.Entities.Department)
	assert.Nil(t, got.Appointment)
	assert.Contains(t, got.Message, "department")
}

func TestPipeline_UnknownDepartment(t *testing.T) {
	p := newTestPipeline(t, kolkataTime(t, 2026, time.January, 26, 10))

	got := p.Parse(context.Background(), "book plumber tomorrow at 3pm")
	assert.Equal(t, guardrail.StatusNeedsClarification, got.Status)
	assert.Equal(t, "Ambiguous department.", got.Message)
	assert.Equal(t, "2026-01-27", got.Normalized.Date)
	assert.Equal(t, "15:00", got.Normalized.Time)
}

func TestPipeline_CustomConfig(t *testing.T) {
	now := kolkataTime(t, 2026, time.January, 26, 10)
	p, err := New(Config{
		Departments:             []string{"pediatrician"},
		Location:                now.Location(),
		Now:                     func() time.Time { return now },
		MinDepartmentConfidence: 0.95,
	})
	require.NoError(t, err)
	assert.Equal(t, now.Location(), p.Location())

	got := p.Parse(context.Background(), "pediatrician tomorrow 3pm")
	assert.Equal(t, guardrail.StatusOK, got.Status)

	// fuzzy hit scores below the stricter guardrail floor
	got = p.Parse(context.Background(), "pediatrican tomorrow 3pm")
	assert.Equal(t, "pediatrician", got.Entities.Department)
	assert.Equal(t, guardrail.StatusNeedsClarification, got.Status)
}

func TestPipeline_InvalidDepartments(t *testing.T) {
	_, err := New(Config{Departments: []string{"  "}})
	assert.Error(t, err)
}

func TestPipeline_LogsVocabulary(t *testing.T) {
	var buf bytes.Buffer
	_, err := New(Config{
		Departments: []string{"ent", "Pediatrician"},
		Logger:      slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})),
	})
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "department_count=2")
	assert.Contains(t, buf.String(), "departments=\"[pediatrician ent]\"")
}

func TestPipeline_ConcurrentParseIsDeterministic(t *testing.T) {
	p := newTestPipeline(t, kolkataTime(t, 2026, time.January, 26, 10))
	want := p.Parse(context.Background(), "Book dentist next Friday at 3pm")

	var wg sync.WaitGroup
	results := make([]guardrail.ParseResult, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = p.Parse(context.Background(), "Book dentist next Friday at 3pm")
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, want, got)
	}
}
