package redis

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

const rateLimitPrefix = "ratelimit:"

// RateGuard is a fixed-window request counter. Counting is delegated to the
// backend's atomic increment; the guard holds no state of its own. It fails
// open: when the backend errors, requests are allowed and the failure is
// only logged, trading strictness for availability.
type RateGuard struct {
	backend     Backend
	maxRequests int
	window      time.Duration
}

// NewRateGuard creates a rate guard allowing maxRequests per window
func NewRateGuard(backend Backend, maxRequests int, window time.Duration) *RateGuard {
	if maxRequests <= 0 {
		maxRequests = 10
	}
	if window <= 0 {
		window = time.Minute
	}
	return &RateGuard{
		backend:     backend,
		maxRequests: maxRequests,
		window:      window,
	}
}

// Allow counts one request for key and reports whether it is within the
// window limit, how many requests remain, and when the window resets.
func (g *RateGuard) Allow(ctx context.Context, key string) (allowed bool, remaining int, retryAfter time.Duration) {
	fullKey := rateLimitPrefix + key

	count, err := g.backend.Incr(ctx, fullKey)
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("rate guard backend error, failing open")
		return true, g.maxRequests, 0
	}

	// First request of the window starts the clock
	if count == 1 {
		if err := g.backend.Expire(ctx, fullKey, g.window); err != nil {
			log.Error().Err(err).Str("key", key).Msg("rate guard expire error, failing open")
			return true, g.maxRequests, 0
		}
	}

	remaining = g.maxRequests - int(count)
	if remaining < 0 {
		remaining = 0
	}

	if count > int64(g.maxRequests) {
		return false, 0, g.window
	}
	return true, remaining, 0
}

// Reset clears the counter for a key
func (g *RateGuard) Reset(ctx context.Context, key string) error {
	return g.backend.Del(ctx, rateLimitPrefix+key)
}
