package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode represents a specific error type for API operations.
type ErrorCode string

const (
	// ErrCodeInvalidArgument indicates invalid input parameters.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
	// ErrCodeUnsupportedMediaType indicates an upload of a type that cannot be processed.
	ErrCodeUnsupportedMediaType ErrorCode = "UNSUPPORTED_MEDIA_TYPE"
	// ErrCodePayloadTooLarge indicates an upload above the configured size limit.
	ErrCodePayloadTooLarge ErrorCode = "PAYLOAD_TOO_LARGE"
	// ErrCodeRateLimitExceeded indicates rate limit has been exceeded.
	ErrCodeRateLimitExceeded ErrorCode = "RATE_LIMIT_EXCEEDED"
	// ErrCodeServiceUnavailable indicates the service is not available.
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	// ErrCodeOCRFailed indicates text recognition failure.
	ErrCodeOCRFailed ErrorCode = "OCR_FAILED"
	// ErrCodeContextCanceled indicates the operation was canceled.
	ErrCodeContextCanceled ErrorCode = "CONTEXT_CANCELED"
	// ErrCodeInternal indicates an unexpected failure.
	ErrCodeInternal ErrorCode = "INTERNAL"
)

var httpStatus = map[ErrorCode]int{
	ErrCodeInvalidArgument:      http.StatusBadRequest,
	ErrCodeUnsupportedMediaType: http.StatusUnsupportedMediaType,
	ErrCodePayloadTooLarge:      http.StatusRequestEntityTooLarge,
	ErrCodeRateLimitExceeded:    http.StatusTooManyRequests,
	ErrCodeServiceUnavailable:   http.StatusServiceUnavailable,
	ErrCodeOCRFailed:            http.StatusInternalServerError,
	ErrCodeContextCanceled:      499,
	ErrCodeInternal:             http.StatusInternalServerError,
}

// HTTPStatus returns the response status for the code.
func (c ErrorCode) HTTPStatus() int {
	if status, ok := httpStatus[c]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// APIError represents a structured error returned by the HTTP API.
type APIError struct {
	Code    ErrorCode      `json:"code"`
	Message string         `json:"message"`
	Cause   error          `json:"-"`
	Context map[string]any `json:"context,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *APIError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error.
func (e *APIError) WithContext(key string, value any) *APIError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// HTTPStatus returns the response status for the error.
func (e *APIError) HTTPStatus() int {
	return e.Code.HTTPStatus()
}

// Convenience constructors for common error types.

// InvalidArgument creates an invalid argument error.
func InvalidArgument(msg string) *APIError {
	return &APIError{Code: ErrCodeInvalidArgument, Message: msg}
}

// UnsupportedMediaType creates an unsupported media type error.
func UnsupportedMediaType(mimeType string) *APIError {
	return &APIError{
		Code:    ErrCodeUnsupportedMediaType,
		Message: fmt.Sprintf("unsupported media type: %s", mimeType),
	}
}

// PayloadTooLarge creates a payload too large error.
func PayloadTooLarge(limit int64) *APIError {
	return &APIError{
		Code:    ErrCodePayloadTooLarge,
		Message: fmt.Sprintf("upload exceeds %d bytes", limit),
	}
}

// RateLimitExceeded creates a rate limit exceeded error.
func RateLimitExceeded(msg string) *APIError {
	return &APIError{Code: ErrCodeRateLimitExceeded, Message: msg}
}

// ServiceUnavailable creates a service unavailable error.
func ServiceUnavailable(msg string) *APIError {
	return &APIError{Code: ErrCodeServiceUnavailable, Message: msg}
}

// OCRFailed creates an OCR failure error.
func OCRFailed(cause error) *APIError {
	return &APIError{Code: ErrCodeOCRFailed, Message: "text recognition failed", Cause: cause}
}

// ContextCanceled creates a context canceled error.
func ContextCanceled(cause error) *APIError {
	return &APIError{Code: ErrCodeContextCanceled, Message: "operation canceled", Cause: cause}
}

// Wrap wraps an existing error with additional context.
func Wrap(cause error, code ErrorCode, msg string) *APIError {
	return &APIError{Code: code, Message: msg, Cause: cause}
}

// IsCode checks if an error is of a specific code.
func IsCode(err error, code ErrorCode) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == code
	}
	return false
}

// GetCodeFromError extracts the error code from any error.
// Returns the provided default code if the error is not an APIError.
func GetCodeFromError(err error, defaultCode ErrorCode) ErrorCode {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return defaultCode
}
