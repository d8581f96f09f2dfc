package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/awidjaja/tripplanner/internal/models"
	"github.com/awidjaja/tripplanner/internal/sources"
)

// Caller wraps source calls with throttling and retry. Rate-limit
// signals back off exponentially (BaseDelay * 2^attempt), other
// transient failures retry on a fixed BaseDelay. Exhausted retries
// surface as ErrSourceUnavailable so callers never see the raw error.
type Caller struct {
	MaxRetries int
	BaseDelay  time.Duration
	Limiter    *SourceLimiter

	sleep func(ctx context.Context, d time.Duration) error
}

func NewCaller(maxRetries int, baseDelay time.Duration, limiter *SourceLimiter) *Caller {
	return &Caller{
		MaxRetries: maxRetries,
		BaseDelay:  baseDelay,
		Limiter:    limiter,
		sleep:      sleepCtx,
	}
}

func (c *Caller) Call(ctx context.Context, source string, fn func(ctx context.Context) ([]models.RawRecord, error)) ([]models.RawRecord, error) {
	var lastErr error

	for attempt := 0; attempt <= c.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := c.BaseDelay
			if errors.Is(lastErr, sources.ErrRateLimited) {
				delay = c.BaseDelay * (1 << attempt)
			}
			if err := c.sleep(ctx, delay); err != nil {
				return nil, fmt.Errorf("%s: %w: %v", source, sources.ErrSourceUnavailable, err)
			}
		}

		if c.Limiter != nil {
			if err := c.Limiter.Wait(ctx, source); err != nil {
				return nil, fmt.Errorf("%s: %w: %v", source, sources.ErrSourceUnavailable, err)
			}
		}

		records, err := fn(ctx)
		if err == nil {
			return records, nil
		}
		if errors.Is(err, sources.ErrSourceUnavailable) {
			// Already classified as hard; retrying won't help.
			return nil, err
		}
		lastErr = err
	}

	return nil, fmt.Errorf("%s: %w after %d attempts: %v", source, sources.ErrSourceUnavailable, c.MaxRetries+1, lastErr)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
