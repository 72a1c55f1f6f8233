package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/hrygo/apptintent/internal/profile"
	"github.com/hrygo/apptintent/plugin/ai/intake"
	"github.com/hrygo/apptintent/plugin/ocr"
	apiv1 "github.com/hrygo/apptintent/server/router/api/v1"
)

const shutdownTimeout = 10 * time.Second

type Server struct {
	Profile *profile.Profile

	echoServer   *echo.Echo
	apiService   *apiv1.APIV1Service
	cancelPrune  context.CancelFunc
	listenerAddr net.Addr
}

// NewServer builds the parsing pipeline, the optional OCR client and the HTTP routes.
func NewServer(ctx context.Context, profile *profile.Profile, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}

	pipeline, err := intake.New(intake.Config{
		Departments:              profile.Departments,
		Location:                 profile.Location(),
		DepartmentFuzzyThreshold: profile.DepartmentFuzzyThreshold,
		DateFuzzyThreshold:       profile.DateFuzzyThreshold,
		MinDepartmentConfidence:  profile.MinDepartmentConfidence,
		Logger:                   logger,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to build parsing pipeline")
	}

	recognizer := newRecognizer(ctx, profile, logger)

	echoServer := echo.New()
	echoServer.Debug = profile.IsDev()
	echoServer.HideBanner = true
	echoServer.HidePort = true
	echoServer.Use(middleware.Recover())

	// Healthz endpoint.
	echoServer.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "Service ready.")
	})

	apiService := apiv1.NewAPIV1Service(profile, pipeline, recognizer, logger)
	apiService.RegisterRoutes(echoServer)

	return &Server{
		Profile:    profile,
		echoServer: echoServer,
		apiService: apiService,
	}, nil
}

// newRecognizer returns nil when OCR is disabled. A missing binary is only
// logged so text parsing keeps working. Cache hits bypass the breaker.
func newRecognizer(ctx context.Context, profile *profile.Profile, logger *slog.Logger) ocr.Recognizer {
	if !profile.OCREnabled {
		return nil
	}
	config := ocr.DefaultConfig()
	config.TesseractPath = profile.TesseractPath
	config.DataPath = profile.TessdataPath
	config.Languages = profile.OCRLanguages

	client := ocr.NewClient(config)
	if !client.IsAvailable(ctx) {
		logger.Warn("tesseract is not available, image requests will fail",
			slog.String("tesseract_path", profile.TesseractPath))
	}

	var recognizer ocr.Recognizer = ocr.NewBreakingRecognizer(client, ocr.DefaultBreakerConfig(), logger)
	if profile.OCRCacheSize > 0 {
		recognizer = ocr.NewCachedRecognizer(recognizer, profile.OCRCacheSize, ocr.DefaultCacheTTL)
	}
	return recognizer
}

// Handler exposes the HTTP handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.echoServer
}

// Start listens on the configured address and serves until Shutdown.
func (s *Server) Start(ctx context.Context) error {
	address := fmt.Sprintf("%s:%d", s.Profile.Addr, s.Profile.Port)
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return errors.Wrapf(err, "failed to listen on %s", address)
	}
	s.listenerAddr = listener.Addr()
	s.echoServer.Listener = listener

	pruneCtx, cancel := context.WithCancel(ctx)
	s.cancelPrune = cancel
	s.apiService.Limiter.StartPruning(pruneCtx, time.Minute)

	go func() {
		if err := s.echoServer.Start(address); err != nil && err != http.ErrServerClosed {
			slog.Error("failed to start echo server", slog.String("error", err.Error()))
		}
	}()
	return nil
}

// Addr returns the bound address once Start succeeded.
func (s *Server) Addr() net.Addr {
	return s.listenerAddr
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	slog.Info("server shutting down")
	if s.cancelPrune != nil {
		s.cancelPrune()
	}
	if err := s.echoServer.Shutdown(ctx); err != nil {
		slog.Error("failed to shutdown server", slog.String("error", err.Error()))
	}
	slog.Info("server stopped properly")
}
