package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestContext_LogsBaseFields(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	rc := NewRequestContextWithID(logger, "req-1", SourceText)
	rc.Info("parsed", slog.String(LogFieldStatus, "ok"))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "parsed", entry["msg"])
	assert.Equal(t, "req-1", entry[LogFieldRequestID])
	assert.Equal(t, SourceText, entry[LogFieldSource])
	assert.Equal(t, "ok", entry[LogFieldStatus])
}

func TestRequestContext_Error(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	rc := NewRequestContext(logger, SourceImage)
	rc.Error("ocr failed", errors.New("boom"))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "boom", entry["error"])
	assert.Equal(t, "ERROR", entry["level"])
	assert.NotEmpty(t, entry[LogFieldRequestID])
}

func TestRequestContext_GeneratesUniqueIDs(t *testing.T) {
	a := NewRequestContext(nil, SourceText)
	b := NewRequestContext(nil, SourceText)
	assert.NotEqual(t, a.RequestID, b.RequestID)
	assert.Len(t, a.RequestID, 36)
}

func TestRequestContext_RoundTripsThroughContext(t *testing.T) {
	rc := NewRequestContext(nil, SourceText)
	ctx := WithRequestContext(context.Background(), rc)

	got, ok := FromContext(ctx)
	require.True(t, ok)
	assert.Same(t, rc, got)

	_, ok = FromContext(context.Background())
	assert.False(t, ok)
}

func TestMetrics_Snapshot(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest(SourceText)
	m.RecordOutcome(SourceText, true)
	m.RecordDuration(SourceText, 30*time.Millisecond)
	m.RecordRequest(SourceText)
	m.RecordOutcome(SourceText, false)
	m.RecordDuration(SourceText, 10*time.Millisecond)
	m.RecordRequest(SourceImage)
	m.RecordFailure(SourceImage)

	s := m.Snapshot()
	assert.Equal(t, int64(3), s.RequestTotal)
	assert.Equal(t, int64(1), s.RequestFailed)
	assert.InDelta(t, 66.67, s.SuccessRate(), 0.01)

	text := s.Sources[SourceText]
	require.NotNil(t, text)
	assert.Equal(t, int64(2), text.RequestCount)
	assert.Equal(t, int64(1), text.AcceptedCount)
	assert.Equal(t, int64(1), text.ClarificationCount)
	assert.Equal(t, int64(40), text.TotalDurationMs)
	assert.Equal(t, int64(20), text.AverageDurationMs)

	assert.Equal(t, int64(1), s.Sources[SourceImage].ErrorCount)

	m.Reset()
	s = m.Snapshot()
	assert.Zero(t, s.RequestTotal)
	assert.Empty(t, s.Sources)
	assert.Equal(t, 100.0, s.SuccessRate())
}
