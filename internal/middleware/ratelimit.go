package middleware

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"postboard/internal/observability"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// FailPolicy defines the behavior when the rate limit store (Redis) is unavailable.
type FailPolicy int

const (
	// FailOpen falls back to the in-process limiter if Redis is unavailable.
	FailOpen FailPolicy = iota
	// FailClosed blocks the request (503 Service Unavailable) if Redis is unavailable.
	FailClosed
)

// maxLocalBuckets bounds the in-process fallback; the map is reset when full.
const maxLocalBuckets = 10000

var errNoRedis = errors.New("redis client is nil")

// rateLimitBypassed reports whether limits are disabled for the current
// APP_ENV so dev and load test workflows are not throttled.
func rateLimitBypassed() bool {
	switch os.Getenv("APP_ENV") {
	case "test", "development", "stress", "":
		return true
	}
	return false
}

// CheckRateLimit checks if a resource has exceeded its rate limit using a
// fixed Redis window. Returns true if allowed, false if limit exceeded.
func CheckRateLimit(ctx context.Context, rdb *redis.Client, resource, id string, limit int, window time.Duration) (bool, error) {
	if rdb == nil {
		return false, errNoRedis
	}

	key := fmt.Sprintf("rl:%s:%s", resource, id)

	// The window TTL is set in the same transaction as the increment; NX only
	// sets it when missing, so a key never outlives its window.
	var incr *redis.IntCmd
	_, err := rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.ExpireNX(ctx, key, window)
		return nil
	})
	if err != nil {
		observability.RedisErrorRate.WithLabelValues("ratelimit_incr").Inc()
		return false, err
	}
	return incr.Val() <= int64(limit), nil
}

// RateLimiter enforces per-caller limits in Redis, with an in-process token
// bucket used when Redis is absent or failing under FailOpen.
type RateLimiter struct {
	rdb   *redis.Client
	mu    sync.Mutex
	local map[string]*rate.Limiter
}

// NewRateLimiter creates a limiter backed by rdb, which may be nil.
func NewRateLimiter(rdb *redis.Client) *RateLimiter {
	return &RateLimiter{rdb: rdb, local: make(map[string]*rate.Limiter)}
}

// Allow reports whether one more request for (resource, id) fits in the window.
func (l *RateLimiter) Allow(ctx context.Context, resource, id string, limit int, window time.Duration, policy FailPolicy) (bool, error) {
	allowed, err := CheckRateLimit(ctx, l.rdb, resource, id, limit, window)
	if err == nil {
		return allowed, nil
	}
	if policy == FailClosed {
		return false, err
	}
	return l.allowLocal(resource+":"+id, limit, window), nil
}

func (l *RateLimiter) allowLocal(key string, limit int, window time.Duration) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	lim, ok := l.local[key]
	if !ok {
		if len(l.local) >= maxLocalBuckets {
			l.local = make(map[string]*rate.Limiter)
		}
		lim = rate.NewLimiter(rate.Every(window/time.Duration(limit)), limit)
		l.local[key] = lim
	}
	return lim.Allow()
}

// RateLimit returns a Fiber middleware enforcing `limit` requests per `window`.
// It keys by authenticated userID (if set in c.Locals("userID")) otherwise by remote IP.
// It defaults to FailOpen policy.
func (l *RateLimiter) RateLimit(limit int, window time.Duration, name ...string) fiber.Handler {
	return l.RateLimitWithPolicy(limit, window, FailOpen, name...)
}

// RateLimitWithPolicy returns a Fiber middleware enforcing `limit` requests per `window` with a specific failure policy.
func (l *RateLimiter) RateLimitWithPolicy(limit int, window time.Duration, policy FailPolicy, name ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if rateLimitBypassed() || limit <= 0 {
			return c.Next()
		}

		var id string
		if uid := c.Locals("userID"); uid != nil {
			id = fmt.Sprintf("user:%v", uid)
		} else {
			id = fmt.Sprintf("ip:%s", c.IP())
		}

		resource := c.Path()
		if len(name) > 0 {
			resource = name[0]
		}

		allowed, err := l.Allow(c.UserContext(), resource, id, limit, window, policy)
		if err != nil {
			Logger.WarnContext(c.UserContext(), "rate limit store unavailable",
				"resource", resource, "error", err)
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"message": "rate limit unavailable",
			})
		}

		if !allowed {
			observability.RateLimitRejections.WithLabelValues(resource).Inc()
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"message": "rate limit exceeded",
			})
		}
		return c.Next()
	}
}
