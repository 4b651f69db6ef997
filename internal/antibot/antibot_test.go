package antibot

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMiddleware_BeforeRequest_NoLimits(t *testing.T) {
	m := New(0, 0, false)
	start := time.Now()
	err := m.BeforeRequest(context.Background())
	assert.NoError(t, err)
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}

func TestMiddleware_BeforeRequest_Delay(t *testing.T) {
	m := New(0, 30*time.Millisecond, false)
	start := time.Now()
	err := m.BeforeRequest(context.Background())
	assert.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}

func TestMiddleware_BeforeRequest_ContextCancelled(t *testing.T) {
	m := New(0, time.Second, false)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := m.BeforeRequest(ctx)
	assert.Error(t, err)
}

func TestRateLimiter_RateCeiling(t *testing.T) {
	limiter := NewRateLimiter(2)
	ctx := context.Background()
	start := time.Now()
	for i := 0; i < 10; i++ {
		assert.NoError(t, limiter.Acquire(ctx))
	}
	// 10 requests at 2 qps (burst 2): ~4 seconds worth of refills expected.
	assert.GreaterOrEqual(t, time.Since(start), 3500*time.Millisecond)
}

func TestRateLimiter_DisabledWhenQPSZero(t *testing.T) {
	limiter := NewRateLimiter(0)
	start := time.Now()
	for i := 0; i < 100; i++ {
		assert.NoError(t, limiter.Acquire(context.Background()))
	}
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}
