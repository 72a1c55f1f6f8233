package v1

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/sync/semaphore"

	"github.com/hrygo/apptintent/internal/profile"
	"github.com/hrygo/apptintent/plugin/ai/intake"
	"github.com/hrygo/apptintent/plugin/ocr"
	"github.com/hrygo/apptintent/server/internal/observability"
	ratelimit "github.com/hrygo/apptintent/server/middleware"
)

type APIV1Service struct {
	Profile  *profile.Profile
	Pipeline *intake.Pipeline
	// OCR is nil when image parsing is disabled.
	OCR ocr.Recognizer

	Metrics *observability.Metrics
	Prom    *observability.Collector
	Limiter *ratelimit.RateLimiter
	logger  *slog.Logger

	// ocrSemaphore limits concurrent tesseract runs to prevent CPU and memory exhaustion
	ocrSemaphore *semaphore.Weighted
}

// NewAPIV1Service wires the HTTP API. A nil recognizer disables image parsing.
func NewAPIV1Service(profile *profile.Profile, pipeline *intake.Pipeline, recognizer ocr.Recognizer, logger *slog.Logger) *APIV1Service {
	if logger == nil {
		logger = slog.Default()
	}
	concurrency := int64(profile.OCRMaxConcurrency)
	if concurrency < 1 {
		concurrency = 1
	}
	return &APIV1Service{
		Profile:      profile,
		Pipeline:     pipeline,
		OCR:          recognizer,
		Metrics:      observability.NewMetrics(),
		Prom:         observability.NewCollector(),
		Limiter:      ratelimit.NewRateLimiter(profile.RateLimitRPS, profile.RateLimitBurst),
		logger:       logger,
		ocrSemaphore: semaphore.NewWeighted(concurrency),
	}
}

// RegisterRoutes registers the appointment API with the given Echo instance.
func (s *APIV1Service) RegisterRoutes(echoServer *echo.Echo) {
	echoServer.GET("/metrics", echo.WrapHandler(s.Prom.Handler()))

	group := echoServer.Group("/ai_task")
	group.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOriginFunc: func(_ string) (bool, error) {
			return true, nil
		},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{"*"},
	}))

	group.GET("", s.HealthCheck)
	group.GET("/", s.HealthCheck)
	group.GET("/metrics", s.GetMetricsOverview)

	parse := group.Group("/parse", s.Limiter.Middleware())
	parse.POST("/text", s.ParseText)
	parse.POST("/image", s.ParseImage)
}

// HealthCheck reports that the API is reachable.
// GET /ai_task/
func (s *APIV1Service) HealthCheck(c echo.Context) error {
	return c.String(http.StatusOK, "Health Check")
}
