package redis

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateGuard_AllowsUpToLimit(t *testing.T) {
	ctx := context.Background()
	guard := NewRateGuard(newFakeBackend(), 10, time.Minute)

	for i := 1; i <= 10; i++ {
		allowed, remaining, _ := guard.Allow(ctx, "K")
		assert.True(t, allowed, "request %d should be allowed", i)
		assert.Equal(t, 10-i, remaining)
	}

	allowed, remaining, retryAfter := guard.Allow(ctx, "K")
	assert.False(t, allowed, "11th request within the window should be rejected")
	assert.Zero(t, remaining)
	assert.Equal(t, time.Minute, retryAfter)
}

func TestRateGuard_KeysAreIndependent(t *testing.T) {
	ctx := context.Background()
	guard := NewRateGuard(newFakeBackend(), 10, time.Minute)

	for i := 0; i < 11; i++ {
		guard.Allow(ctx, "busy")
	}

	allowed, _, _ := guard.Allow(ctx, "quiet")
	assert.True(t, allowed, "an unrelated key must not be affected")
}

func TestRateGuard_WindowReset(t *testing.T) {
	ctx := context.Background()
	backend := newFakeBackend()
	guard := NewRateGuard(backend, 10, time.Minute)

	for i := 0; i < 11; i++ {
		guard.Allow(ctx, "K")
	}
	allowed, _, _ := guard.Allow(ctx, "K")
	require.False(t, allowed)

	backend.advance(61 * time.Second)

	allowed, remaining, _ := guard.Allow(ctx, "K")
	assert.True(t, allowed, "counter should reset after the window lapses")
	assert.Equal(t, 9, remaining)
}

// Fail-open contract: a dead backend must never reject a request.
func TestRateGuard_FailsOpen(t *testing.T) {
	ctx := context.Background()
	guard := NewRateGuard(downBackend{}, 10, time.Minute)

	for i := 0; i < 25; i++ {
		allowed, _, _ := guard.Allow(ctx, "K")
		assert.True(t, allowed)
	}
}

func TestRateGuard_Reset(t *testing.T) {
	ctx := context.Background()
	backend := newFakeBackend()
	guard := NewRateGuard(backend, 2, time.Minute)

	guard.Allow(ctx, "K")
	guard.Allow(ctx, "K")
	allowed, _, _ := guard.Allow(ctx, "K")
	require.False(t, allowed)

	require.NoError(t, guard.Reset(ctx, "K"))

	allowed, _, _ = guard.Allow(ctx, "K")
	assert.True(t, allowed)
}

func TestRateGuard_Defaults(t *testing.T) {
	guard := NewRateGuard(newFakeBackend(), 0, 0)
	assert.Equal(t, 10, guard.maxRequests)
	assert.Equal(t, time.Minute, guard.window)
}

func BenchmarkRateGuard_Allow(b *testing.B) {
	ctx := context.Background()
	guard := NewRateGuard(newFakeBackend(), 1<<30, time.Minute)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		guard.Allow(ctx, fmt.Sprintf("k%d", i%8))
	}
}
