package observability

import (
	"sync"
	"sync/atomic"
	"time"
)

// Metrics collects request counters per input source.
type Metrics struct {
	mu sync.Mutex

	requestTotal  atomic.Int64
	requestFailed atomic.Int64

	sources map[string]*SourceMetrics
}

// SourceMetrics represents metrics for one input source.
type SourceMetrics struct {
	requestCount       atomic.Int64
	acceptedCount      atomic.Int64
	clarificationCount atomic.Int64
	errorCount         atomic.Int64
	totalDuration      atomic.Int64 // milliseconds
}

// NewMetrics creates a new metrics collector.
func NewMetrics() *Metrics {
	return &Metrics{sources: make(map[string]*SourceMetrics)}
}

// RecordRequest records a request.
func (m *Metrics) RecordRequest(source string) {
	m.requestTotal.Add(1)
	m.source(source).requestCount.Add(1)
}

// RecordOutcome records whether a parsed request was accepted.
func (m *Metrics) RecordOutcome(source string, accepted bool) {
	sm := m.source(source)
	if accepted {
		sm.acceptedCount.Add(1)
	} else {
		sm.clarificationCount.Add(1)
	}
}

// RecordFailure records a request that ended in an error response.
func (m *Metrics) RecordFailure(source string) {
	m.requestFailed.Add(1)
	m.source(source).errorCount.Add(1)
}

// RecordDuration records a request duration.
func (m *Metrics) RecordDuration(source string, duration time.Duration) {
	m.source(source).totalDuration.Add(duration.Milliseconds())
}

// source gets or creates the metrics of a source.
func (m *Metrics) source(name string) *SourceMetrics {
	m.mu.Lock()
	defer m.mu.Unlock()

	sm, ok := m.sources[name]
	if !ok {
		sm = &SourceMetrics{}
		m.sources[name] = sm
	}
	return sm
}

// Reset resets all metrics (useful for testing).
func (m *Metrics) Reset() {
	m.requestTotal.Store(0)
	m.requestFailed.Store(0)

	m.mu.Lock()
	m.sources = make(map[string]*SourceMetrics)
	m.mu.Unlock()
}

// Snapshot returns a snapshot of current metrics.
func (m *Metrics) Snapshot() *MetricsSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	sources := make(map[string]*SourceMetricsSnapshot, len(m.sources))
	for name, sm := range m.sources {
		count := sm.requestCount.Load()
		total := sm.totalDuration.Load()
		var avg int64
		if count > 0 {
			avg = total / count
		}
		sources[name] = &SourceMetricsSnapshot{
			RequestCount:       count,
			AcceptedCount:      sm.acceptedCount.Load(),
			ClarificationCount: sm.clarificationCount.Load(),
			ErrorCount:         sm.errorCount.Load(),
			TotalDurationMs:    total,
			AverageDurationMs:  avg,
		}
	}

	return &MetricsSnapshot{
		RequestTotal:  m.requestTotal.Load(),
		RequestFailed: m.requestFailed.Load(),
		Sources:       sources,
	}
}

// MetricsSnapshot represents a point-in-time snapshot of metrics.
type MetricsSnapshot struct {
	RequestTotal  int64                             `json:"request_total"`
	RequestFailed int64                             `json:"request_failed"`
	Sources       map[string]*SourceMetricsSnapshot `json:"sources"`
}

// SourceMetricsSnapshot represents metrics for a specific source.
type SourceMetricsSnapshot struct {
	RequestCount       int64 `json:"request_count"`
	AcceptedCount      int64 `json:"accepted_count"`
	ClarificationCount int64 `json:"clarification_count"`
	ErrorCount         int64 `json:"error_count"`
	TotalDurationMs    int64 `json:"total_duration_ms"`
	AverageDurationMs  int64 `json:"average_duration_ms"`
}

// SuccessRate returns the share of requests without an error response, as a percentage (0-100).
func (s *MetricsSnapshot) SuccessRate() float64 {
	if s.RequestTotal == 0 {
		return 100.0
	}
	return float64(s.RequestTotal-s.RequestFailed) / float64(s.RequestTotal) * 100.0
}
