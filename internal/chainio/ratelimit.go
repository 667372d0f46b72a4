package chainio

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// RateLimiter provides per-endpoint rate limiting using a token-bucket
// algorithm, so one noisy RPC method can't starve the others' share of a
// backend's request budget.
type RateLimiter struct {
	limiters   map[string]*rate.Limiter
	mu         sync.RWMutex
	rateLimit  rate.Limit
	burstLimit int
}

// NewRateLimiter creates a rate limiter with the given requests-per-second
// rate and burst size.
func NewRateLimiter(ratePerSecond float64, burst int) *RateLimiter {
	return &RateLimiter{
		limiters:   make(map[string]*rate.Limiter),
		rateLimit:  rate.Limit(ratePerSecond),
		burstLimit: burst,
	}
}

// DefaultRateLimiter returns a rate limiter with this engine's default
// chain-backend budget: 5 requests/second, burst of 10.
func DefaultRateLimiter() *RateLimiter {
	return NewRateLimiter(5, 10)
}

// Wait blocks until a request to endpoint is allowed or ctx is canceled.
func (r *RateLimiter) Wait(ctx context.Context, endpoint string) error {
	return r.getLimiter(endpoint).Wait(ctx)
}

func (r *RateLimiter) getLimiter(endpoint string) *rate.Limiter {
	r.mu.RLock()
	limiter, exists := r.limiters[endpoint]
	r.mu.RUnlock()
	if exists {
		return limiter
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if limiter, exists = r.limiters[endpoint]; exists {
		return limiter
	}
	limiter = rate.NewLimiter(r.rateLimit, r.burstLimit)
	r.limiters[endpoint] = limiter
	return limiter
}
