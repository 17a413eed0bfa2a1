package middleware

import (
	"context"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"

	"github.com/artem13815/colorfit/api/http/presenter"
)

const (
	staleAfter      = 10 * time.Minute
	cleanupInterval = 3 * time.Minute
)

type ipLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter limits requests per client IP with a token bucket.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*ipLimiter
	rate     rate.Limit
	burst    int
	now      func() time.Time
}

// NewRateLimiter returns nil when rps is not positive; a nil limiter's
// Handler lets everything through.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	if rps <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		limiters: make(map[string]*ipLimiter),
		rate:     rate.Limit(rps),
		burst:    burst,
		now:      time.Now,
	}
}

func (rl *RateLimiter) get(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if l, ok := rl.limiters[ip]; ok {
		l.lastSeen = now
		return l.limiter
	}
	l := rate.NewLimiter(rl.rate, rl.burst)
	rl.limiters[ip] = &ipLimiter{limiter: l, lastSeen: now}
	return l
}

// Run drops idle clients until ctx is cancelled.
func (rl *RateLimiter) Run(ctx context.Context) {
	if rl == nil {
		return
	}
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.prune()
		}
	}
}

func (rl *RateLimiter) prune() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	cutoff := rl.now().Add(-staleAfter)
	for ip, l := range rl.limiters {
		if l.lastSeen.Before(cutoff) {
			delete(rl.limiters, ip)
		}
	}
}

func (rl *RateLimiter) Handler() fiber.Handler {
	if rl == nil {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	retryAfter := strconv.Itoa(int(math.Max(1, math.Ceil(1/float64(rl.rate)))))
	return func(c *fiber.Ctx) error {
		if !rl.get(c.IP()).Allow() {
			c.Set(fiber.HeaderRetryAfter, retryAfter)
			return presenter.ErrorCode(c, fiber.StatusTooManyRequests, "RATE_LIMITED", "too many requests, try again later")
		}
		return c.Next()
	}
}
