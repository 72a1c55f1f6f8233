package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/apptintent/server/internal/observability"
)

// MetricsOverviewResponse represents the overview response of request metrics
type MetricsOverviewResponse struct {
	TotalRequests int64                                            `json:"total_requests"`
	SuccessRate   float64                                          `json:"success_rate"`
	ErrorCount    int64                                            `json:"error_count"`
	AvgLatencyMs  int64                                            `json:"avg_latency_ms"`
	Sources       map[string]*observability.SourceMetricsSnapshot `json:"sources"`
	OCRCache      *OCRCacheStats                                   `json:"ocr_cache,omitempty"`
}

// OCRCacheStats reports the recognized-text cache when image parsing runs behind one.
type OCRCacheStats struct {
	Entries int   `json:"entries"`
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
}

type cacheStatser interface {
	Len() int
	Stats() (hits, misses int64)
}

// GetMetricsOverview returns the request metrics collected since startup
// GET /ai_task/metrics
func (s *APIV1Service) GetMetricsOverview(c echo.Context) error {
	snapshot := s.Metrics.Snapshot()

	var totalDuration, count int64
	for _, src := range snapshot.Sources {
		totalDuration += src.TotalDurationMs
		count += src.RequestCount
	}
	var avg int64
	if count > 0 {
		avg = totalDuration / count
	}

	resp := MetricsOverviewResponse{
		TotalRequests: snapshot.RequestTotal,
		SuccessRate:   snapshot.SuccessRate(),
		ErrorCount:    snapshot.RequestFailed,
		AvgLatencyMs:  avg,
		Sources:       snapshot.Sources,
	}
	if cache, ok := s.OCR.(cacheStatser); ok {
		hits, misses := cache.Stats()
		resp.OCRCache = &OCRCacheStats{Entries: cache.Len(), Hits: hits, Misses: misses}
	}
	return c.JSON(http.StatusOK, resp)
}
