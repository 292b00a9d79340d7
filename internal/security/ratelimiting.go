// Package security provides request throttling for abuse-prone endpoints:
// login (credential stuffing) and application submission (spam).
package security

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
)

// RateLimiter is a token-bucket limiter keyed by an arbitrary identifier,
// typically the client IP or the authenticated user ID. Buckets refill
// continuously at one token per refill interval.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket

	maxTokens  int
	refillRate time.Duration

	cleanupTicker *time.Ticker
	stopCleanup   chan struct{}
}

type bucket struct {
	tokens     int
	lastRefill time.Time
}

// NewRateLimiter creates a limiter allowing maxTokens requests in a
// burst, refilling one token per refillRate.
//
// Parameters:
//   - maxTokens: burst capacity per identifier
//   - refillRate: interval between token refills
//
// Example:
//
//	// 5 login attempts per minute per IP
//	limiter := security.NewRateLimiter(5, 12*time.Second)
func NewRateLimiter(maxTokens int, refillRate time.Duration) *RateLimiter {
	rl := &RateLimiter{
		buckets:     make(map[string]*bucket),
		maxTokens:   maxTokens,
		refillRate:  refillRate,
		stopCleanup: make(chan struct{}),
	}
	rl.cleanupTicker = time.NewTicker(10 * time.Minute)
	go rl.cleanup()
	return rl
}

// Allow reports whether a request from identifier may proceed, consuming
// one token when it does.
func (rl *RateLimiter) Allow(identifier string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.buckets[identifier]
	if !ok {
		rl.buckets[identifier] = &bucket{
			tokens:     rl.maxTokens - 1,
			lastRefill: time.Now(),
		}
		return true
	}

	if refill := int(time.Since(b.lastRefill) / rl.refillRate); refill > 0 {
		b.tokens += refill
		if b.tokens > rl.maxTokens {
			b.tokens = rl.maxTokens
		}
		b.lastRefill = time.Now()
	}

	if b.tokens > 0 {
		b.tokens--
		return true
	}
	return false
}

// Reset drops the bucket for an identifier, clearing any throttle.
func (rl *RateLimiter) Reset(identifier string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.buckets, identifier)
}

// Middleware adapts the limiter into a Fiber handler keyed by client IP.
// Throttled requests receive a JSON 429.
func (rl *RateLimiter) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !rl.Allow(c.IP()) {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "too many requests, slow down",
			})
		}
		return c.Next()
	}
}

// cleanup drops buckets idle for over an hour so the map cannot grow
// without bound.
func (rl *RateLimiter) cleanup() {
	for {
		select {
		case <-rl.cleanupTicker.C:
			rl.mu.Lock()
			cutoff := time.Now().Add(-time.Hour)
			for id, b := range rl.buckets {
				if b.lastRefill.Before(cutoff) {
					delete(rl.buckets, id)
				}
			}
			rl.mu.Unlock()
		case <-rl.stopCleanup:
			return
		}
	}
}

// Stop halts the cleanup goroutine.
func (rl *RateLimiter) Stop() {
	rl.cleanupTicker.Stop()
	close(rl.stopCleanup)
}
