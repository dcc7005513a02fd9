package services

import (
	"fmt"
	"sync"
	"time"
)

// RequestRateLimiter bounds how many requests a single client may issue per
// sliding window. Every online endpoint fans out to the metered upstream
// API, so this caps quota burn per caller.
type RequestRateLimiter struct {
	mu          sync.Mutex
	requests    map[string][]time.Time
	maxRequests int
	window      time.Duration
}

// NewRequestRateLimiter creates a limiter allowing maxRequests per window
// per key.
func NewRequestRateLimiter(maxRequests int, window time.Duration) *RequestRateLimiter {
	return &RequestRateLimiter{
		requests:    make(map[string][]time.Time),
		maxRequests: maxRequests,
		window:      window,
	}
}

// Allow records a request for the key and reports whether it is within the
// limit.
func (rl *RequestRateLimiter) Allow(key string) error {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	rl.cleanupOldRequests(key, now)

	if len(rl.requests[key]) >= rl.maxRequests {
		return fmt.Errorf("rate limit exceeded: maximum %d requests per %v", rl.maxRequests, rl.window)
	}

	rl.requests[key] = append(rl.requests[key], now)
	return nil
}

// cleanupOldRequests drops requests outside the window.
func (rl *RequestRateLimiter) cleanupOldRequests(key string, now time.Time) {
	requests, exists := rl.requests[key]
	if !exists {
		return
	}

	cutoff := now.Add(-rl.window)
	valid := requests[:0]
	for _, req := range requests {
		if req.After(cutoff) {
			valid = append(valid, req)
		}
	}

	if len(valid) == 0 {
		delete(rl.requests, key)
	} else {
		rl.requests[key] = valid
	}
}

// GetStats returns limiter statistics.
func (rl *RequestRateLimiter) GetStats() map[string]interface{} {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	return map[string]interface{}{
		"tracked_clients": len(rl.requests),
		"max_requests":    rl.maxRequests,
		"window":          rl.window.String(),
	}
}
