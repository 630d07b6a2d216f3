package middleware

import (
	"fmt"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
)

// RateLimiter provides fixed-window per-IP rate limiting. The capture
// endpoint triggers a full pipeline run, so it gets a much tighter limit
// than the read endpoints.
type RateLimiter struct {
	requests map[string]*requestInfo
	mu       sync.Mutex
	limit    int
	window   time.Duration
}

type requestInfo struct {
	count     int
	expiresAt time.Time
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		requests: make(map[string]*requestInfo),
		limit:    limit,
		window:   window,
	}

	// Cleanup goroutine
	go func() {
		ticker := time.NewTicker(time.Minute)
		for range ticker.C {
			rl.cleanup()
		}
	}()

	return rl
}

func (rl *RateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	for key, info := range rl.requests {
		if now.After(info.expiresAt) {
			delete(rl.requests, key)
		}
	}
}

func (rl *RateLimiter) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.IP()
		now := time.Now()

		rl.mu.Lock()
		info, exists := rl.requests[key]

		if !exists || now.After(info.expiresAt) {
			info = &requestInfo{count: 1, expiresAt: now.Add(rl.window)}
			rl.requests[key] = info
			rl.mu.Unlock()
			setRateLimitHeaders(c, rl.limit, rl.limit-1, info)
			return c.Next()
		}

		if info.count >= rl.limit {
			rl.mu.Unlock()
			setRateLimitHeaders(c, rl.limit, 0, info)
			return c.Status(429).JSON(fiber.Map{
				"error":       "rate limit exceeded",
				"code":        "RATE_LIMITED",
				"retry_after": int(info.expiresAt.Sub(now).Seconds()),
			})
		}

		info.count++
		remaining := rl.limit - info.count
		rl.mu.Unlock()

		setRateLimitHeaders(c, rl.limit, remaining, info)
		return c.Next()
	}
}

func setRateLimitHeaders(c *fiber.Ctx, limit, remaining int, info *requestInfo) {
	c.Set("X-RateLimit-Limit", fmt.Sprintf("%d", limit))
	c.Set("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))
	if info != nil {
		c.Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.expiresAt.Unix()))
	}
}
