package crawl

import (
	"context"
	"sync"
	"time"

	"github.com/fwojciec/serpwatch"
	"golang.org/x/time/rate"
)

var _ serpwatch.RateLimiter = (*EngineLimiter)(nil)

// EngineLimiter provides per-engine rate limiting using token buckets.
// Requests to the same engine share one bucket with a burst of 1; requests
// to different engines never wait on each other.
type EngineLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
}

// NewEngineLimiter creates an EngineLimiter allowing one request per
// interval to each engine. A non-positive interval disables limiting.
func NewEngineLimiter(interval time.Duration) *EngineLimiter {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &EngineLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    limit,
	}
}

// Wait blocks until the rate limit allows a request to the engine.
// Returns an error if the context is canceled before the wait completes.
func (l *EngineLimiter) Wait(ctx context.Context, engine string) error {
	l.mu.Lock()
	limiter, ok := l.limiters[engine]
	if !ok {
		limiter = rate.NewLimiter(l.limit, 1)
		l.limiters[engine] = limiter
	}
	l.mu.Unlock()

	return limiter.Wait(ctx)
}
