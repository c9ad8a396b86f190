package ymaps

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/time/rate"
)

// RateLimiter manages rate limiting for the different map API services.
// The set of services is fixed at construction.
type RateLimiter struct {
	limiters map[string]*rate.Limiter
}

// NewRateLimiter creates one token bucket per service from its endpoint
// settings. Services with a non-positive RPS are not limited.
func NewRateLimiter(endpoints map[string]Endpoint) *RateLimiter {
	limiters := make(map[string]*rate.Limiter, len(endpoints))
	for service, ep := range endpoints {
		burst := ep.Burst
		if burst <= 0 {
			burst = 1
		}
		limit := rate.Limit(ep.RPS)
		if ep.RPS <= 0 {
			limit = rate.Inf
		}
		limiters[service] = rate.NewLimiter(limit, burst)
	}
	return &RateLimiter{limiters: limiters}
}

// Wait blocks until the rate limit for the specified service allows an event
// or the context is canceled.
func (rl *RateLimiter) Wait(ctx context.Context, service string) error {
	limiter, exists := rl.limiters[service]

	if !exists {
		return fmt.Errorf("no rate limiter defined for service: %s", service)
	}

	if err := limiter.Wait(ctx); err != nil {
		slog.Debug("rate limiter wait error", "service", service, "error", err)
		return err
	}

	return nil
}
