package aitime

import (
	"log/slog"
	"time"

	"github.com/pkg/errors"
)

// DefaultTimezone is the zone appointments are resolved in.
const DefaultTimezone = "Asia/Kolkata"

// Resolver runs its strategies in order and returns the first candidate.
// It is immutable after construction and safe for concurrent use.
type Resolver struct {
	location   *time.Location
	now        func() time.Time
	strategies []Strategy
	logger     *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) {
		r.now = now
	}
}

// WithStrategies replaces the default natural-then-heuristic chain.
func WithStrategies(strategies ...Strategy) Option {
	return func(r *Resolver) {
		r.strategies = strategies
	}
}

// WithLogger sets the logger for strategy diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// NewResolver creates a Resolver for loc. A nil loc uses DefaultTimezone.
func NewResolver(loc *time.Location, opts ...Option) *Resolver {
	if loc == nil {
		loc = LoadLocation(DefaultTimezone)
	}
	r := &Resolver{
		location:   loc,
		now:        time.Now,
		strategies: []Strategy{NewNaturalStrategy(), NewHeuristicStrategy()},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Location returns the target zone.
func (r *Resolver) Location() *time.Location {
	return r.location
}

// Resolve turns the extracted phrases into a NormalizedEntity. It never fails;
// an empty entity means nothing could be resolved.
func (r *Resolver) Resolve(reference, datePhrase, timePhrase string) NormalizedEntity {
	req := Request{
		Reference:  reference,
		DatePhrase: datePhrase,
		TimePhrase: timePhrase,
		Now:        r.now().In(r.location),
		Location:   r.location,
	}

	for _, s := range r.strategies {
		out, err := safeResolve(s, req)
		if err != nil {
			if !errors.Is(err, ErrNoCandidate) {
				r.logger.Debug("temporal strategy failed",
					slog.String("strategy", s.Name()),
					slog.String("error", err.Error()),
				)
			}
			continue
		}
		if out.IsEmpty() {
			continue
		}
		r.logger.Debug("temporal strategy resolved",
			slog.String("strategy", s.Name()),
			slog.String("date", out.Date),
			slog.String("time", out.Time),
		)
		return out
	}
	return NormalizedEntity{}
}

// safeResolve turns a strategy panic into an error.
func safeResolve(s Strategy, req Request) (out NormalizedEntity, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = NormalizedEntity{}
			err = errors.Errorf("strategy %s panic: %v", s.Name(), r)
		}
	}()
	return s.Resolve(req)
}

// LoadLocation loads name, falling back to UTC when the zone database lacks it.
func LoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		slog.Warn("unknown timezone, using UTC", slog.String("timezone", name))
		return time.UTC
	}
	return loc
}
