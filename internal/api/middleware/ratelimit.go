package middleware

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Satyam216/todo-collab/internal/metrics"
)

// RateLimit defines a fixed-window limit for an endpoint pattern.
type RateLimit struct {
	Requests int
	Window   time.Duration
}

// Counter increments a fixed-window counter and reports the new count.
// *store.RedisStore satisfies it.
type Counter interface {
	IncrRateLimit(ctx context.Context, bucket, caller string, window time.Duration) (int64, error)
}

// RateLimiter applies per-IP fixed-window rate limits to write-heavy
// endpoints. Reads are left unlimited; the task list is the hot path of
// every room view.
type RateLimiter struct {
	counter Counter
	logger  zerolog.Logger
	limits  map[string]RateLimit
}

// NewRateLimiter creates a rate limiter backed by the given counter.
func NewRateLimiter(counter Counter, logger zerolog.Logger) *RateLimiter {
	return &RateLimiter{
		counter: counter,
		logger:  logger,
		limits: map[string]RateLimit{
			"POST /auth/signin": {20, time.Minute},
			"POST /rooms":       {30, time.Hour},
			"POST /rooms/":      {120, time.Minute}, // task adds
			"PUT /rooms/":       {120, time.Minute},
			"PATCH /rooms/":     {240, time.Minute},
			"DELETE /rooms/":    {120, time.Minute},
		},
	}
}

// Middleware enforces the configured limits. With no counter attached
// (development without Redis) it is a no-op.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rl.counter == nil {
			next.ServeHTTP(w, r)
			return
		}

		bucket, limit, ok := rl.match(r)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		count, err := rl.counter.IncrRateLimit(r.Context(), bucket, clientIP(r), limit.Window)
		if err != nil {
			// Redis trouble should not take the API down; let the
			// request through and log.
			rl.logger.Warn().Err(err).Str("bucket", bucket).Msg("rate limit check failed")
			next.ServeHTTP(w, r)
			return
		}

		if count > int64(limit.Requests) {
			metrics.RateLimitHits.WithLabelValues(bucket).Inc()
			w.Header().Set("Retry-After", strconv.Itoa(int(limit.Window.Seconds())))
			jsonError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// match finds the limit for a request, longest pattern first.
func (rl *RateLimiter) match(r *http.Request) (string, RateLimit, bool) {
	exact := r.Method + " " + r.URL.Path
	if limit, ok := rl.limits[exact]; ok {
		return exact, limit, true
	}
	var bestKey string
	var bestLen int
	var best RateLimit
	for key, limit := range rl.limits {
		method, prefix, found := strings.Cut(key, " ")
		if !found || method != r.Method || !strings.HasSuffix(prefix, "/") {
			continue
		}
		if strings.HasPrefix(r.URL.Path, prefix) && len(prefix) > bestLen {
			bestKey = key
			bestLen = len(prefix)
			best = limit
		}
	}
	if bestKey == "" {
		return "", RateLimit{}, false
	}
	return bestKey, best, true
}

// clientIP extracts the caller address, trusting RealIP middleware to
// have rewritten RemoteAddr already.
func clientIP(r *http.Request) string {
	host := r.RemoteAddr
	if idx := strings.LastIndex(host, ":"); idx > 0 {
		host = host[:idx]
	}
	return host
}
