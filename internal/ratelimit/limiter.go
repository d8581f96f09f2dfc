package ratelimit

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// SourceLimiter throttles outbound calls per source. Per-source limits
// are fixed at construction; sources without one get the defaults,
// lazily on first use. The mutex keeps throttle state consistent when
// category workers share a source.
type SourceLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.RWMutex
	defaults RateLimitConfig
}

type RateLimitConfig struct {
	RequestsPerSecond float64
	BurstSize         int
}

func DefaultConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerSecond: 5,
		BurstSize:         10,
	}
}

func NewSourceLimiter(defaults RateLimitConfig, limits map[string]RateLimitConfig) *SourceLimiter {
	s := &SourceLimiter{
		limiters: make(map[string]*rate.Limiter, len(limits)),
		defaults: defaults,
	}
	for source, c := range limits {
		s.limiters[source] = rate.NewLimiter(rate.Limit(c.RequestsPerSecond), c.BurstSize)
	}
	return s
}

func (s *SourceLimiter) GetLimiter(source string) *rate.Limiter {
	s.mu.RLock()
	limiter, exists := s.limiters[source]
	s.mu.RUnlock()

	if exists {
		return limiter
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if limiter, exists = s.limiters[source]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(rate.Limit(s.defaults.RequestsPerSecond), s.defaults.BurstSize)
	s.limiters[source] = limiter
	return limiter
}

func (s *SourceLimiter) Wait(ctx context.Context, source string) error {
	return s.GetLimiter(source).Wait(ctx)
}
