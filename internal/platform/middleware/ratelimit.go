package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	platformredis "epiaudit/internal/platform/redis"
	"epiaudit/pkg/platform/httputil"
)

// Decision is the outcome of one rate limit check.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// RequestLimiter admits or rejects a request for a client key.
type RequestLimiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

// MemoryLimiter is a sliding-window limiter for single-process runs.
type MemoryLimiter struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	windows map[string][]time.Time
}

func NewMemoryLimiter(limit int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		limit:   limit,
		window:  window,
		windows: make(map[string][]time.Time),
	}
}

func (l *MemoryLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-l.window)
	kept := l.windows[key]
	for len(kept) > 0 && !kept[0].After(cutoff) {
		kept = kept[1:]
	}

	if len(kept) >= l.limit {
		l.windows[key] = kept
		return Decision{Allowed: false, Limit: l.limit, ResetAt: kept[0].Add(l.window)}, nil
	}

	kept = append(kept, now)
	l.windows[key] = kept
	return Decision{
		Allowed:   true,
		Limit:     l.limit,
		Remaining: l.limit - len(kept),
		ResetAt:   kept[0].Add(l.window),
	}, nil
}

// RedisLimiter is a fixed-window counter shared across replicas. The counter
// key carries the window start, so a new window begins with a fresh key and
// the old one expires on its own.
type RedisLimiter struct {
	redis  *platformredis.Client
	limit  int
	window time.Duration
}

func NewRedisLimiter(redis *platformredis.Client, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{redis: redis, limit: limit, window: window}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	windowStart := time.Now().Truncate(l.window)
	counterKey := fmt.Sprintf("epiaudit:ratelimit:%s:%d", key, windowStart.Unix())

	count, err := l.redis.Incr(ctx, counterKey).Result()
	if err != nil {
		return Decision{}, fmt.Errorf("rate limit counter: %w", err)
	}
	if count == 1 {
		if err := l.redis.Expire(ctx, counterKey, l.window).Err(); err != nil {
			return Decision{}, fmt.Errorf("rate limit expiry: %w", err)
		}
	}

	d := Decision{
		Allowed:   count <= int64(l.limit),
		Limit:     l.limit,
		Remaining: l.limit - int(count),
		ResetAt:   windowStart.Add(l.window),
	}
	if d.Remaining < 0 {
		d.Remaining = 0
	}
	return d, nil
}

// RateLimit rejects clients that exceed the request limit. A nil limiter
// disables limiting; a limiter failure fails open so a degraded Redis never
// takes the audit API down with it.
func RateLimit(limiter RequestLimiter, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d, err := limiter.Allow(r.Context(), clientKey(r))
			if err != nil {
				logger.WarnContext(r.Context(), "rate limit check failed", "error", err)
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(d.ResetAt.Unix(), 10))

			if !d.Allowed {
				retryAfter := max(int(time.Until(d.ResetAt).Seconds()), 1)
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				httputil.WriteJSON(w, http.StatusTooManyRequests, map[string]string{
					"error":   "rate_limited",
					"message": "request limit exceeded, retry later",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientKey prefers the first X-Forwarded-For hop so replicas behind a proxy
// key on the caller, not the proxy.
func clientKey(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if first, _, found := strings.Cut(fwd, ","); found || first != "" {
			return strings.TrimSpace(first)
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
