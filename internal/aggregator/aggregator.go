// Package aggregator is the top-level planner: it fans the query out to
// one fallback orchestrator per category, collects whatever each one
// managed to find, and assembles the final TripPlan.
package aggregator

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/awidjaja/tripplanner/internal/models"
)

// Runner is one category's fallback chain.
type Runner interface {
	Run(ctx context.Context, q models.TripQuery) models.RankedResultSet
}

// InfoSource is the single best-effort visa/advisory/health lookup.
type InfoSource interface {
	Fetch(ctx context.Context, q models.TripQuery) (*models.TravelInfo, error)
}

// Summarizer produces the plan's narrative summary. Nil is fine; a
// static summary is used instead.
type Summarizer interface {
	Summarize(ctx context.Context, system, prompt string) (string, error)
}

type Config struct {
	// Workers bounds how many categories resolve concurrently.
	Workers int
}

type Aggregator struct {
	flights    Runner
	hotels     Runner
	activities Runner
	travelInfo InfoSource
	summarizer Summarizer
	cfg        Config
	log        zerolog.Logger
}

func New(flights, hotels, activities Runner, travelInfo InfoSource, summarizer Summarizer, cfg Config, log zerolog.Logger) *Aggregator {
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	return &Aggregator{
		flights:    flights,
		hotels:     hotels,
		activities: activities,
		travelInfo: travelInfo,
		summarizer: summarizer,
		cfg:        cfg,
		log:        log.With().Str("component", "aggregator").Logger(),
	}
}

// Plan runs every category and always returns a TripPlan for a valid
// query. Categories degrade independently; only query validation can
// fail the call.
func (a *Aggregator) Plan(ctx context.Context, q models.TripQuery) (*models.TripPlan, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	plan := &models.TripPlan{
		ID:        uuid.New(),
		Query:     q,
		CreatedAt: time.Now().UTC(),
	}

	var infoErr error

	jobs := []func(){
		func() { plan.Hotels = a.hotels.Run(ctx, q) },
		func() { plan.Activities = a.activities.Run(ctx, q) },
	}
	if q.OriginCity != "" {
		jobs = append(jobs, func() { plan.Flights = a.flights.Run(ctx, q) })
	} else {
		plan.Flights = models.RankedResultSet{
			Category:    models.CategoryFlight,
			Records:     []models.Record{},
			Suggestions: []string{"no origin city provided; flight search was skipped"},
		}
	}
	if a.travelInfo != nil {
		jobs = append(jobs, func() { plan.TravelInfo, infoErr = a.travelInfo.Fetch(ctx, q) })
	}

	a.runBounded(jobs)

	if infoErr != nil {
		a.log.Warn().Err(infoErr).Msg("travel info lookup failed")
		plan.Suggestions = append(plan.Suggestions, "travel advisory information is currently unavailable for "+q.DestinationCity)
		plan.TravelInfo = nil
	}

	plan.Suggestions = append(plan.Suggestions, plan.Flights.Suggestions...)
	plan.Suggestions = append(plan.Suggestions, plan.Hotels.Suggestions...)
	plan.Suggestions = append(plan.Suggestions, plan.Activities.Suggestions...)

	plan.Status = planStatus(plan)
	plan.Summary = a.buildSummary(ctx, q, plan)
	return plan, nil
}

// runBounded executes jobs on a fixed-size worker pool. Each job writes
// to its own plan field, so no further synchronization is needed beyond
// the pool join.
func (a *Aggregator) runBounded(jobs []func()) {
	queue := make(chan func())
	var wg sync.WaitGroup

	for i := 0; i < a.cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range queue {
				job()
			}
		}()
	}

	for _, job := range jobs {
		queue <- job
	}
	close(queue)
	wg.Wait()
}

func planStatus(plan *models.TripPlan) models.PlanStatus {
	total := len(plan.Flights.Records) + len(plan.Hotels.Records) + len(plan.Activities.Records)
	switch {
	case total == 0:
		return models.PlanEmpty
	case len(plan.Suggestions) > 0:
		return models.PlanPartial
	default:
		return models.PlanSuccess
	}
}
