package middleware

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RateLimitConfig describes a fixed window limit per client IP.
type RateLimitConfig struct {
	Limit     int
	Window    time.Duration
	Block     time.Duration
	KeyPrefix string
}

// RateLimiter uses Redis when rdb is set and Fiber's in-memory limiter
// otherwise. Redis errors let the request through.
func RateLimiter(rdb *redis.Client, cfg RateLimitConfig, log *zap.Logger) fiber.Handler {
	if cfg.Limit <= 0 {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	if rdb == nil {
		return limiter.New(limiter.Config{
			Max:        cfg.Limit,
			Expiration: cfg.Window,
			KeyGenerator: func(c *fiber.Ctx) string {
				return cfg.KeyPrefix + ":ip:" + c.IP()
			},
			LimitReached: func(c *fiber.Ctx) error {
				return tooManyRequests(c, "Too many requests. Please try again later.")
			},
		})
	}

	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 500*time.Millisecond)
		defer cancel()

		key := cfg.KeyPrefix + ":ip:" + c.IP()
		blockKey := key + ":blocked"

		if blocked, err := rdb.Get(ctx, blockKey).Result(); err == nil && blocked == "1" {
			ttl, _ := rdb.TTL(ctx, blockKey).Result()
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(retrySeconds(ttl, cfg.Block)))
			return tooManyRequests(c, "Too many requests. Please try again later.")
		}

		count, err := rdb.Incr(ctx, key).Result()
		if err != nil {
			log.Warn("rate limiter unavailable", zap.Error(err))
			return c.Next()
		}
		if count == 1 {
			rdb.Expire(ctx, key, cfg.Window)
		}

		if count > int64(cfg.Limit) {
			rdb.Set(ctx, blockKey, "1", cfg.Block)
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(retrySeconds(cfg.Block, cfg.Block)))
			return tooManyRequests(c, fmt.Sprintf("Too many requests. Blocked for %s.", cfg.Block))
		}

		c.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Limit))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(cfg.Limit-int(count)))
		return c.Next()
	}
}

func tooManyRequests(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": message})
}

func retrySeconds(ttl, fallback time.Duration) int {
	if ttl <= 0 {
		ttl = fallback
	}
	return int(ttl.Seconds())
}
