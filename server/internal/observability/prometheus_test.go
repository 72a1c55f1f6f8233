package observability

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_Observe(t *testing.T) {
	c := NewCollector()

	c.Begin()
	c.Begin()
	assert.Equal(t, 2.0, testutil.ToFloat64(c.inflight))

	c.Observe(SourceText, "ok", 20*time.Millisecond)
	c.Observe(SourceImage, "OCR_FAILED", time.Second)

	assert.Equal(t, 0.0, testutil.ToFloat64(c.inflight))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.requests.WithLabelValues(SourceText, "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.requests.WithLabelValues(SourceImage, "OCR_FAILED")))
	assert.Equal(t, 2, testutil.CollectAndCount(c.duration))
}

func TestCollector_Handler(t *testing.T) {
	c := NewCollector()
	c.Begin()
	c.Observe(SourceText, "needs_clarification", time.Millisecond)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `apptintent_requests_total{outcome="needs_clarification",source="text"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}

func TestCollector_SeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		NewCollector()
		NewCollector()
	})
	assert.NotNil(t, NewCollector().Registry())
}
