package antibot

import (
	"context"
	"math/rand"
	"time"
)

// Middleware composes the token-bucket rate limiter (if qps is set) with a
// fixed post-acquire delay and, when enabled, uniform jitter in
// [0, 5*delay). Pacing is scoped to one engine run, not shared globally.
type Middleware struct {
	limiter *RateLimiter
	delay   time.Duration
	jitter  bool
}

// New builds a Middleware. qps <= 0 disables rate limiting; delay <= 0
// disables the post-acquire pause.
func New(qps float64, delay time.Duration, jitter bool) *Middleware {
	return &Middleware{
		limiter: NewRateLimiter(qps),
		delay:   delay,
		jitter:  jitter,
	}
}

// BeforeRequest blocks for a token (if rate limiting is enabled), then
// sleeps for delay plus jitter (if enabled). Returns early on context
// cancellation.
func (m *Middleware) BeforeRequest(ctx context.Context) error {
	if err := m.limiter.Acquire(ctx); err != nil {
		return err
	}
	wait := m.delay
	if m.jitter && m.delay > 0 {
		wait += time.Duration(rand.Int63n(int64(5 * m.delay)))
	}
	if wait <= 0 {
		return nil
	}
	t := time.NewTimer(wait)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// AfterRequest is a hook reserved for future response inspection (e.g.
// adapting delay from observed latency or anti-bot challenge responses).
// It currently does nothing.
func (m *Middleware) AfterRequest(context.Context) {}
