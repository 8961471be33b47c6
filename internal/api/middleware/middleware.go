package middleware

import (
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/kango-hamed/musia-guide/internal/api/response"
	"github.com/kango-hamed/musia-guide/internal/repository/redis"
	"github.com/rs/zerolog/log"
)

// Logger records one structured line per request.
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("remote", r.RemoteAddr).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("request")
	})
}

// RateLimitMiddleware limits session-less endpoints by client address.
// Turn endpoints are limited inside the orchestrator by session id instead,
// so the same visitor keeps one quota across devices on those routes.
type RateLimitMiddleware struct {
	guard *redis.RateGuard
}

// NewRateLimitMiddleware creates a new rate limit middleware
func NewRateLimitMiddleware(guard *redis.RateGuard) *RateLimitMiddleware {
	return &RateLimitMiddleware{guard: guard}
}

// Limit applies rate limiting keyed by the caller's address. RemoteAddr
// carries an ephemeral port for direct clients, so only the host part is
// used; otherwise every connection would start a fresh quota.
func (m *RateLimitMiddleware) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}

		allowed, remaining, retryAfter := m.guard.Allow(r.Context(), "ip:"+host)

		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		if !allowed {
			response.TooManyRequests(w, int(retryAfter.Seconds()), "rate limit exceeded")
			return
		}

		next.ServeHTTP(w, r)
	})
}
