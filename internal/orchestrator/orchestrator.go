// Package orchestrator implements the per-category fallback chain:
// sources are tried strictly in priority order until enough results
// accumulate, and every source failure is absorbed here rather than in
// business logic.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/awidjaja/tripplanner/internal/dedupe"
	"github.com/awidjaja/tripplanner/internal/models"
	"github.com/awidjaja/tripplanner/internal/ranking"
	"github.com/awidjaja/tripplanner/internal/ratelimit"
	"github.com/awidjaja/tripplanner/internal/sources"
)

const DefaultTargetCount = 5

type Config struct {
	// TargetCount is the sufficiency threshold: once the accumulator
	// holds this many records, no further sources are queried.
	TargetCount int

	// Budget bounds the category's total wall time. It is checked
	// between source attempts only; in-flight calls are never
	// interrupted.
	Budget time.Duration
}

// NormalizeFunc maps one raw record into a canonical one, or drops it.
type NormalizeFunc func(models.RawRecord) (models.Record, bool)

// FilterFunc prunes a normalized batch against query preferences.
type FilterFunc func(models.TripQuery, []models.Record) []models.Record

type Orchestrator struct {
	category  models.Category
	sources   []sources.Source
	normalize NormalizeFunc
	filter    FilterFunc
	caller    *ratelimit.Caller
	rankOpts  ranking.Options
	cfg       Config
	log       zerolog.Logger
}

func New(category models.Category, srcs []sources.Source, normalize NormalizeFunc, caller *ratelimit.Caller, cfg Config, log zerolog.Logger) *Orchestrator {
	if cfg.TargetCount <= 0 {
		cfg.TargetCount = DefaultTargetCount
	}
	return &Orchestrator{
		category:  category,
		sources:   srcs,
		normalize: normalize,
		caller:    caller,
		rankOpts:  ranking.DefaultOptions(),
		cfg:       cfg,
		log:       log.With().Str("category", string(category)).Logger(),
	}
}

// WithFilter installs a post-normalization filter (e.g. budget bands
// for hotels), applied per source batch before the sufficiency check.
func (o *Orchestrator) WithFilter(f FilterFunc) *Orchestrator {
	o.filter = f
	return o
}

// Run executes the fallback chain and returns the ranked merge of all
// contributing sources. An empty result is a normal terminal state
// described by a suggestion, never an error.
func (o *Orchestrator) Run(ctx context.Context, q models.TripQuery) models.RankedResultSet {
	start := time.Now()
	accumulated := make([]models.Record, 0, o.cfg.TargetCount)
	var contributing []string
	dropped := 0

	for _, src := range o.sources {
		if o.cfg.Budget > 0 && time.Since(start) >= o.cfg.Budget {
			o.log.Warn().Dur("budget", o.cfg.Budget).Msg("category budget exhausted, skipping remaining sources")
			break
		}

		raws, err := o.caller.Call(ctx, src.Name(), func(ctx context.Context) ([]models.RawRecord, error) {
			return src.Search(ctx, o.category, q)
		})
		if err != nil {
			// The per-source error boundary: an unavailable source
			// contributes nothing, the chain moves on.
			o.log.Warn().Err(err).Str("source", src.Name()).Msg("source failed")
			continue
		}

		batch := make([]models.Record, 0, len(raws))
		for _, raw := range raws {
			rec, ok := o.normalize(raw)
			if !ok {
				dropped++
				continue
			}
			batch = append(batch, rec)
		}
		if o.filter != nil {
			batch = o.filter(q, batch)
		}

		before := len(accumulated)
		accumulated = dedupe.Records(append(accumulated, batch...))
		if len(accumulated) > before {
			contributing = append(contributing, src.Name())
		}

		o.log.Debug().
			Str("source", src.Name()).
			Int("raw", len(raws)).
			Int("accumulated", len(accumulated)).
			Msg("source done")

		if len(accumulated) >= o.cfg.TargetCount {
			break
		}
	}

	if dropped > 0 {
		o.log.Debug().Int("dropped", dropped).Msg("malformed records dropped during normalization")
	}

	result := models.RankedResultSet{
		Category:            o.category,
		Records:             accumulated,
		ContributingSources: contributing,
	}
	if len(accumulated) == 0 {
		result.Suggestions = append(result.Suggestions, o.exhaustedSuggestion(q))
	}

	ranking.Sort(o.category, result.Records, o.rankOpts)
	return result
}

func (o *Orchestrator) exhaustedSuggestion(q models.TripQuery) string {
	switch o.category {
	case models.CategoryFlight:
		return fmt.Sprintf("no flights found from %s to %s for the given dates; try nearby airports or different dates", q.OriginCity, q.DestinationCity)
	case models.CategoryHotel:
		return fmt.Sprintf("no hotels found in %s for the given dates; try different dates or a nearby destination", q.DestinationCity)
	case models.CategoryActivity:
		return fmt.Sprintf("no activities found for %s; try a broader search or a nearby destination", q.DestinationCity)
	default:
		return fmt.Sprintf("no %s results found for %s", o.category, q.DestinationCity)
	}
}
