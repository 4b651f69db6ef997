// Package antibot composes a per-run token-bucket rate limiter with a
// post-acquire delay and jitter, applied before every fetch of an engine
// run.
package antibot

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimiter is a token-bucket limiter: tokens refill at qps per second,
// bucket capacity equals qps (or 1 if qps < 1). Acquire suspends the caller
// until a token is available, granting tokens to concurrent waiters in
// FIFO order.
type RateLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter builds a RateLimiter for the given qps ceiling. qps <= 0
// disables limiting: Acquire always returns immediately.
func NewRateLimiter(qps float64) *RateLimiter {
	if qps <= 0 {
		return &RateLimiter{}
	}
	burst := int(qps)
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{limiter: rate.NewLimiter(rate.Limit(qps), burst)}
}

// Acquire suspends until one token is available or ctx is done.
func (r *RateLimiter) Acquire(ctx context.Context) error {
	if r.limiter == nil {
		return nil
	}
	return r.limiter.Wait(ctx)
}
