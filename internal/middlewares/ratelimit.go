package middlewares

import (
	"context"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"github.com/onurcolak/messaging-gateway/internal/domain"
	"github.com/onurcolak/messaging-gateway/pkg/logger"
	"github.com/onurcolak/messaging-gateway/pkg/response"
)

const (
	HeaderRateLimitLimit     = "X-RateLimit-Limit"
	HeaderRateLimitRemaining = "X-RateLimit-Remaining"
	HeaderRateLimitReset     = "X-RateLimit-Reset"
)

// WindowCounter is a shared fixed window counter, implemented by pkg/redis.
type WindowCounter interface {
	Hit(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

// RateLimit allows limit requests per window for each client IP on the named
// endpoint. With a counter the window is shared across instances; without one
// each instance keeps its own token bucket. Counter failures let the request
// through.
func RateLimit(counter WindowCounter, name string, limit int, window time.Duration) echo.MiddlewareFunc {
	if limit <= 0 || window <= 0 {
		return passThrough
	}

	var local *localLimiter
	if counter == nil {
		local = newLocalLimiter(limit, window)
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := name + ":" + c.RealIP()
			now := time.Now()

			var (
				remaining int
				reset     time.Duration
				allowed   bool
			)

			if local != nil {
				remaining, reset, allowed = local.take(key, now)
			} else {
				count, ttl, err := counter.Hit(c.Request().Context(), key, window)
				if err != nil {
					logger.Warn().Err(err).Str("key", key).Msg("Rate limiter unavailable, allowing request")
					return next(c)
				}
				remaining = limit - int(count)
				reset = ttl
				allowed = count <= int64(limit)
			}

			h := c.Response().Header()
			h.Set(HeaderRateLimitLimit, strconv.Itoa(limit))
			h.Set(HeaderRateLimitRemaining, strconv.Itoa(max(remaining, 0)))
			h.Set(HeaderRateLimitReset, strconv.FormatInt(now.Add(reset).Unix(), 10))

			if !allowed {
				logger.Warn().Str("key", key).Int("limit", limit).Msg("Rate limit exceeded")
				return response.Error(c, &domain.RateLimitError{RetryAfter: reset})
			}

			return next(c)
		}
	}
}

// localLimiter keeps one token bucket per key, refilled at limit per window.
type localLimiter struct {
	mu        sync.Mutex
	limit     int
	window    time.Duration
	every     rate.Limit
	buckets   map[string]*bucket
	lastPrune time.Time
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newLocalLimiter(limit int, window time.Duration) *localLimiter {
	return &localLimiter{
		limit:   limit,
		window:  window,
		every:   rate.Every(window / time.Duration(limit)),
		buckets: make(map[string]*bucket),
	}
}

func (l *localLimiter) take(key string, now time.Time) (remaining int, reset time.Duration, allowed bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.prune(now)

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(l.every, l.limit)}
		l.buckets[key] = b
	}
	b.lastSeen = now

	r := b.limiter.ReserveN(now, 1)
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return 0, delay, false
	}

	tokens := b.limiter.TokensAt(now)
	missing := float64(l.limit) - tokens
	reset = time.Duration(missing / float64(l.every) * float64(time.Second))

	return int(math.Floor(tokens)), reset, true
}

// prune drops buckets idle for longer than a window; they would be full again.
func (l *localLimiter) prune(now time.Time) {
	if now.Sub(l.lastPrune) < l.window {
		return
	}
	l.lastPrune = now

	for key, b := range l.buckets {
		if now.Sub(b.lastSeen) > l.window {
			delete(l.buckets, key)
		}
	}
}
