package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// RateLimiter is a fixed-window request limiter backed by Redis, so every
// API instance shares the same counters.
type RateLimiter struct {
	client redis.Cmdable
	limit  int64
	window time.Duration
	prefix string
	log    logrus.FieldLogger
}

// NewRateLimiter allows limit requests per window for each actor or client IP
func NewRateLimiter(client redis.Cmdable, limit int, window time.Duration, log logrus.FieldLogger) *RateLimiter {
	return &RateLimiter{
		client: client,
		limit:  int64(limit),
		window: window,
		prefix: "boletera:ratelimit:",
		log:    log,
	}
}

// Allow counts one request for key and reports whether it is within the
// limit, with the time left in the current window.
func (rl *RateLimiter) Allow(ctx context.Context, key string) (bool, int64, time.Duration, error) {
	key = rl.prefix + key

	count, err := rl.client.Incr(ctx, key).Result()
	if err != nil {
		return true, 0, 0, err
	}
	if count == 1 {
		if err := rl.client.Expire(ctx, key, rl.window).Err(); err != nil {
			return true, 0, 0, err
		}
	}

	remaining := rl.limit - count
	if remaining >= 0 {
		return true, remaining, 0, nil
	}

	ttl, err := rl.client.TTL(ctx, key).Result()
	if err != nil || ttl < 0 {
		ttl = rl.window
	}
	return false, 0, ttl, nil
}

// Middleware limits requests per authenticated user, or per client IP for
// anonymous requests. Redis errors let the request through.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := clientKey(r)

		allowed, remaining, retryAfter, err := rl.Allow(r.Context(), key)
		if err != nil {
			rl.log.WithError(err).WithField("key", key).Warn("rate limiter unavailable, allowing request")
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(rl.limit, 10))
		w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if !allowed {
			seconds := int64(retryAfter.Round(time.Second) / time.Second)
			if seconds < 1 {
				seconds = 1
			}
			w.Header().Set("Retry-After", strconv.FormatInt(seconds, 10))
			writeError(w, http.StatusTooManyRequests, "too many requests, please try again later")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func clientKey(r *http.Request) string {
	if actor, ok := GetActor(r.Context()); ok {
		return fmt.Sprintf("user:%d", actor.UserID)
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}
