package ocr

import (
	"context"
	"log/slog"
	"time"

	"github.com/pkg/errors"
	"github.com/sony/gobreaker/v2"
)

// ErrUnavailable is returned while the breaker is open.
var ErrUnavailable = errors.New("ocr is temporarily unavailable")

// BreakerConfig configures the tesseract circuit breaker.
type BreakerConfig struct {
	// FailureThreshold is the number of consecutive failures that opens the breaker
	FailureThreshold uint32
	// OpenTimeout is how long the breaker stays open before probing again
	OpenTimeout time.Duration
	// MaxRequests is the number of trial requests allowed while half-open
	MaxRequests uint32
}

// DefaultBreakerConfig returns the default breaker configuration.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		FailureThreshold: 5,
		OpenTimeout:      30 * time.Second,
		MaxRequests:      1,
	}
}

// BreakingRecognizer stops calling a failing tesseract for a while instead of
// spawning a process per request.
type BreakingRecognizer struct {
	next    Recognizer
	breaker *gobreaker.CircuitBreaker[string]
}

// NewBreakingRecognizer wraps next with a circuit breaker.
func NewBreakingRecognizer(next Recognizer, config BreakerConfig, logger *slog.Logger) *BreakingRecognizer {
	if logger == nil {
		logger = slog.Default()
	}
	defaults := DefaultBreakerConfig()
	if config.FailureThreshold == 0 {
		config.FailureThreshold = defaults.FailureThreshold
	}
	if config.OpenTimeout <= 0 {
		config.OpenTimeout = defaults.OpenTimeout
	}
	if config.MaxRequests == 0 {
		config.MaxRequests = defaults.MaxRequests
	}

	settings := gobreaker.Settings{
		Name:        "tesseract",
		MaxRequests: config.MaxRequests,
		Timeout:     config.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= config.FailureThreshold
		},
		// canceled requests do not count as failures
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info("circuit breaker state changed",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
	}
	return &BreakingRecognizer{
		next:    next,
		breaker: gobreaker.NewCircuitBreaker[string](settings),
	}
}

// ExtractText runs the wrapped recognizer unless the breaker is open.
func (b *BreakingRecognizer) ExtractText(ctx context.Context, image []byte, mimeType string) (string, error) {
	text, err := b.breaker.Execute(func() (string, error) {
		return b.next.ExtractText(ctx, image, mimeType)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return "", errors.Wrap(ErrUnavailable, err.Error())
	}
	return text, err
}

// IsSupported delegates to the wrapped recognizer.
func (b *BreakingRecognizer) IsSupported(mimeType string) bool {
	return b.next.IsSupported(mimeType)
}

// State reports the breaker state, e.g. "closed" or "open".
func (b *BreakingRecognizer) State() string {
	return b.breaker.State().String()
}

var _ Recognizer = (*BreakingRecognizer)(nil)
