package sources

import (
	"context"
	"errors"

	"github.com/awidjaja/tripplanner/internal/models"
)

var (
	// ErrSourceUnavailable marks a hard failure (auth, network
	// unreachable). The orchestrator treats it as "this source
	// produced zero results", never as a fatal error.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrRateLimited tells the retrier to back off exponentially
	// instead of retrying on a fixed delay.
	ErrRateLimited = errors.New("source rate limited")
)

// Source is one external provider of travel data. Ordinary "no
// results" conditions return an empty slice, not an error.
type Source interface {
	Name() string
	Search(ctx context.Context, category models.Category, q models.TripQuery) ([]models.RawRecord, error)
}
