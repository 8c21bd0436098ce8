package safety

import (
	"context"
	"sync"
	"time"
)

// RateLimiter implements token bucket rate limiting
type RateLimiter struct {
	capacity   int        // Maximum number of tokens
	tokens     float64    // Current number of tokens
	refillRate float64    // Tokens added per second
	lastRefill time.Time  // Last time tokens were added
	mutex      sync.Mutex // Protects token count
	name       string     // Name for logging/identification
}

// NewRateLimiter creates a new rate limiter starting with a full bucket
func NewRateLimiter(name string, capacity int, refillRate float64) *RateLimiter {
	return &RateLimiter{
		capacity:   capacity,
		tokens:     float64(capacity),
		refillRate: refillRate,
		lastRefill: time.Now(),
		name:       name,
	}
}

// Allow checks if an operation is allowed under the rate limit
func (rl *RateLimiter) Allow() bool {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	rl.refillTokens()

	if rl.tokens >= 1 {
		rl.tokens--
		return true
	}
	return false
}

// Wait blocks until an operation is allowed or ctx is done
func (rl *RateLimiter) Wait(ctx context.Context) error {
	for {
		if rl.Allow() {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(rl.waitTime()):
		}
	}
}

// refillTokens adds tokens based on elapsed time; callers hold the mutex
func (rl *RateLimiter) refillTokens() {
	now := time.Now()
	rl.tokens += now.Sub(rl.lastRefill).Seconds() * rl.refillRate
	if rl.tokens > float64(rl.capacity) {
		rl.tokens = float64(rl.capacity)
	}
	rl.lastRefill = now
}

// waitTime estimates how long until the next token is available
func (rl *RateLimiter) waitTime() time.Duration {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	if rl.refillRate <= 0 {
		return time.Second
	}
	missing := 1 - rl.tokens
	if missing <= 0 {
		return 0
	}
	return time.Duration(missing / rl.refillRate * float64(time.Second))
}

// GetStats returns current statistics about the rate limiter
func (rl *RateLimiter) GetStats() RateLimiterStats {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	rl.refillTokens()

	return RateLimiterStats{
		Name:       rl.name,
		Capacity:   rl.capacity,
		Tokens:     int(rl.tokens),
		RefillRate: rl.refillRate,
	}
}

// RateLimiterStats holds statistics about a rate limiter
type RateLimiterStats struct {
	Name       string
	Capacity   int
	Tokens     int
	RefillRate float64
}
