package v1

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/hrygo/apptintent/plugin/ai/guardrail"
	"github.com/hrygo/apptintent/plugin/ocr"
	apierrors "github.com/hrygo/apptintent/server/internal/errors"
	"github.com/hrygo/apptintent/server/internal/observability"
)

// ParseTextRequest is the body of POST /ai_task/parse/text.
type ParseTextRequest struct {
	Text *string `json:"text"`
}

// ParseText parses a typed appointment request.
// POST /ai_task/parse/text
func (s *APIV1Service) ParseText(c echo.Context) error {
	rc := s.begin(c, observability.SourceText)

	var req ParseTextRequest
	if err := c.Bind(&req); err != nil {
		if errors.Is(err, echo.ErrUnsupportedMediaType) {
			return s.fail(c, rc, apierrors.UnsupportedMediaType(c.Request().Header.Get(echo.HeaderContentType)))
		}
		return s.fail(c, rc, apierrors.InvalidArgument("invalid JSON body"))
	}
	if req.Text == nil {
		return s.fail(c, rc, apierrors.InvalidArgument("text is required"))
	}

	return s.respond(c, rc, *req.Text)
}

// ParseImage runs OCR over an uploaded image and parses the recognized text.
// POST /ai_task/parse/image (multipart field "file")
func (s *APIV1Service) ParseImage(c echo.Context) error {
	rc := s.begin(c, observability.SourceImage)

	if s.OCR == nil {
		return s.fail(c, rc, apierrors.ServiceUnavailable("image parsing is disabled"))
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return s.fail(c, rc, apierrors.InvalidArgument("file is required"))
	}
	if fileHeader.Size == 0 {
		return s.fail(c, rc, apierrors.InvalidArgument("uploaded file is empty"))
	}
	if limit := s.Profile.MaxUploadBytes; limit > 0 && fileHeader.Size > limit {
		return s.fail(c, rc, apierrors.PayloadTooLarge(limit))
	}

	file, err := fileHeader.Open()
	if err != nil {
		return s.fail(c, rc, apierrors.Wrap(err, apierrors.ErrCodeInvalidArgument, "failed to open upload"))
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return s.fail(c, rc, apierrors.Wrap(err, apierrors.ErrCodeInvalidArgument, "failed to read upload"))
	}

	mimeType := detectMimeType(fileHeader.Header.Get(echo.HeaderContentType), data)
	if !s.OCR.IsSupported(mimeType) {
		return s.fail(c, rc, apierrors.UnsupportedMediaType(mimeType))
	}

	text, apiErr := s.recognize(c.Request().Context(), data, mimeType)
	if apiErr != nil {
		return s.fail(c, rc, apiErr)
	}

	rc.Debug("image text recognized", slog.Int(observability.LogFieldTextLen, len(text)))
	return s.respond(c, rc, text)
}

// recognize holds an OCR slot for the duration of the call, including when the recognizer panics.
func (s *APIV1Service) recognize(ctx context.Context, data []byte, mimeType string) (string, *apierrors.APIError) {
	if err := s.ocrSemaphore.Acquire(ctx, 1); err != nil {
		return "", apierrors.ContextCanceled(err)
	}
	defer s.ocrSemaphore.Release(1)

	text, err := s.OCR.ExtractText(ctx, data, mimeType)
	if errors.Is(err, ocr.ErrUnavailable) {
		return "", apierrors.Wrap(err, apierrors.ErrCodeServiceUnavailable, "image recognition is temporarily unavailable")
	}
	if err != nil {
		return "", apierrors.OCRFailed(err)
	}
	return text, nil
}

// detectMimeType trusts the declared type unless it is missing or generic.
func detectMimeType(declared string, data []byte) string {
	declared = strings.TrimSpace(declared)
	if declared != "" && !strings.EqualFold(declared, echo.MIMEOctetStream) {
		return declared
	}
	return http.DetectContentType(data)
}

func (s *APIV1Service) begin(c echo.Context, source string) *observability.RequestContext {
	rc := observability.NewRequestContext(s.logger, source)
	c.Response().Header().Set(echo.HeaderXRequestID, rc.RequestID)
	c.SetRequest(c.Request().WithContext(observability.WithRequestContext(c.Request().Context(), rc)))
	s.Metrics.RecordRequest(source)
	s.Prom.Begin()
	return rc
}

func (s *APIV1Service) respond(c echo.Context, rc *observability.RequestContext, text string) error {
	result := s.Pipeline.Parse(c.Request().Context(), text)

	s.Metrics.RecordOutcome(rc.Source, result.Status == guardrail.StatusOK)
	s.Metrics.RecordDuration(rc.Source, rc.Duration())
	s.Prom.Observe(rc.Source, string(result.Status), rc.Duration())
	rc.Info("appointment request handled",
		slog.String(observability.LogFieldStatus, string(result.Status)),
		slog.Int(observability.LogFieldTextLen, len(text)),
		slog.Int64(observability.LogFieldDuration, rc.DurationMs()),
	)
	return c.JSON(http.StatusOK, result)
}

func (s *APIV1Service) fail(c echo.Context, rc *observability.RequestContext, apiErr *apierrors.APIError) error {
	s.Metrics.RecordFailure(rc.Source)
	s.Metrics.RecordDuration(rc.Source, rc.Duration())
	s.Prom.Observe(rc.Source, string(apiErr.Code), rc.Duration())
	attrs := []slog.Attr{
		slog.String(observability.LogFieldErrorCode, string(apiErr.Code)),
		slog.Int64(observability.LogFieldDuration, rc.DurationMs()),
	}
	if apiErr.HTTPStatus() >= http.StatusInternalServerError {
		rc.Error("appointment request failed", apiErr, attrs...)
	} else {
		rc.Warn("appointment request rejected", append(attrs, slog.String("message", apiErr.Message))...)
	}
	return c.JSON(apiErr.HTTPStatus(), apiErr)
}
