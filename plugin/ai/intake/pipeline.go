// Package intake turns free-form appointment requests into parse results.
package intake

import (
	"context"
	"log/slog"
	"time"

	"github.com/hrygo/apptintent/plugin/ai/aitime"
	"github.com/hrygo/apptintent/plugin/ai/department"
	"github.com/hrygo/apptintent/plugin/ai/extract"
	"github.com/hrygo/apptintent/plugin/ai/guardrail"
	"github.com/hrygo/apptintent/plugin/ai/scoring"
	"github.com/hrygo/apptintent/plugin/ai/textnorm"
)

// Pipeline runs normalization, extraction, temporal resolution, scoring and
// the guardrail in that order. It holds no per-request state and is safe for
// concurrent use.
type Pipeline struct {
	normalizer *textnorm.Normalizer
	extractor  *extract.Extractor
	resolver   *aitime.Resolver
	guardrail  *guardrail.Guardrail
	logger     *slog.Logger
}

// Config selects the tunables of a Pipeline. Zero values use the defaults.
type Config struct {
	Departments              []string
	Location                 *time.Location
	DepartmentFuzzyThreshold float64
	DateFuzzyThreshold       float64
	MinDepartmentConfidence  float64
	// Now replaces time.Now.
	Now    func() time.Time
	Logger *slog.Logger
}

// New builds a Pipeline from cfg.
func New(cfg Config) (*Pipeline, error) {
	vocab := department.Default()
	if len(cfg.Departments) > 0 {
		v, err := department.NewVocabulary(cfg.Departments)
		if err != nil {
			return nil, err
		}
		vocab = v
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var extractOpts []extract.Option
	if cfg.DepartmentFuzzyThreshold > 0 {
		extractOpts = append(extractOpts, extract.WithDepartmentThreshold(cfg.DepartmentFuzzyThreshold))
	}
	if cfg.DateFuzzyThreshold > 0 {
		extractOpts = append(extractOpts, extract.WithDateThreshold(cfg.DateFuzzyThreshold))
	}

	resolverOpts := []aitime.Option{aitime.WithLogger(logger)}
	if cfg.Now != nil {
		resolverOpts = append(resolverOpts, aitime.WithClock(cfg.Now))
	}

	var guardOpts []guardrail.Option
	if cfg.MinDepartmentConfidence > 0 {
		guardOpts = append(guardOpts, guardrail.WithMinDepartmentConfidence(cfg.MinDepartmentConfidence))
	}

	logger.Debug("appointment pipeline configured",
		slog.Int("department_count", vocab.Len()),
		slog.Any("departments", vocab.Names()),
	)

	return &Pipeline{
		normalizer: textnorm.New(),
		extractor:  extract.NewExtractor(vocab, extractOpts...),
		resolver:   aitime.NewResolver(cfg.Location, resolverOpts...),
		guardrail:  guardrail.New(guardOpts...),
		logger:     logger,
	}, nil
}

// Parse runs the full pipeline over raw. It never fails; unusable input
// yields a needs_clarification result.
func (p *Pipeline) Parse(ctx context.Context, raw string) guardrail.ParseResult {
	normalized := p.normalizer.Normalize(raw)
	entities := p.extractor.Extract(normalized)
	resolved := p.resolver.Resolve(normalized, entities.DatePhrase, entities.TimePhrase)

	result := p.guardrail.Decide(guardrail.Input{
		RawText:                 raw,
		Entities:                entities,
		Normalized:              resolved,
		EntitiesConfidence:      scoring.Entities(entities, raw),
		NormalizationConfidence: scoring.Normalization(resolved, raw),
	})

	p.logger.DebugContext(ctx, "appointment request parsed",
		slog.String("normalized_text", normalized),
		slog.String("department", entities.Department),
		slog.String("date_phrase", entities.DatePhrase),
		slog.String("time_phrase", entities.TimePhrase),
		slog.String("status", string(result.Status)),
		slog.Float64("confidence", result.Confidence),
	)
	return result
}

// Location returns the zone dates are resolved in.
func (p *Pipeline) Location() *time.Location {
	return p.resolver.Location()
}
