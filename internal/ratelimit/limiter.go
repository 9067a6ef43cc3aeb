// Package ratelimit guards fee-costing submission routes with a fixed-window
// counter in Redis. The limiter fails open: if Redis is unreachable the
// request proceeds, because blocking attestations on cache availability would
// trade a fee cap for an outage.
package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"lifeledger/internal/platform/middleware"
)

// Limiter counts submissions per key per window.
type Limiter struct {
	rdb    *redis.Client
	limit  int
	window time.Duration
	logger *slog.Logger
}

// New creates a Limiter allowing limit submissions per window.
func New(rdb *redis.Client, limit int, window time.Duration, logger *slog.Logger) *Limiter {
	return &Limiter{rdb: rdb, limit: limit, window: window, logger: logger}
}

// Allow reports whether the key may submit now.
func (l *Limiter) Allow(ctx context.Context, key string) bool {
	windowStart := time.Now().Truncate(l.window).Unix()
	redisKey := fmt.Sprintf("ratelimit:submit:%s:%d", key, windowStart)

	count, err := l.rdb.Incr(ctx, redisKey).Result()
	if err != nil {
		l.logger.WarnContext(ctx, "rate limiter unavailable, failing open",
			"error", err.Error(),
		)
		return true
	}
	if count == 1 {
		if err := l.rdb.Expire(ctx, redisKey, l.window).Err(); err != nil {
			l.logger.WarnContext(ctx, "rate limiter expire failed", "error", err.Error())
		}
	}
	return count <= int64(l.limit)
}

// Middleware applies the limiter per authenticated organization, falling back
// to the remote address for unbound callers.
func (l *Limiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.RemoteAddr
		if orgID := middleware.GetOrgID(r.Context()); orgID != 0 {
			key = fmt.Sprintf("org:%d", orgID)
		}
		if !l.Allow(r.Context(), key) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":"rate_limited"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}
