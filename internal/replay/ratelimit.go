// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package replay

import (
	"sync"
	"time"
)

// bucket is a leaky-bucket rate limiter for one agent.
type bucket struct {
	tokens     float64
	lastRefill time.Time
}

// RateLimiter enforces an inbound-RPC budget per agent, per spec.md §5
// "Backpressure".
type RateLimiter struct {
	mu         sync.Mutex
	buckets    map[string]*bucket
	ratePerSec float64
	burst      float64
}

// NewRateLimiter creates a limiter allowing ratePerSec sustained
// requests with a burst allowance of burst tokens.
func NewRateLimiter(ratePerSec, burst float64) *RateLimiter {
	return &RateLimiter{
		buckets:    make(map[string]*bucket),
		ratePerSec: ratePerSec,
		burst:      burst,
	}
}

// Allow reports whether agentID may proceed now, consuming one token if so.
func (r *RateLimiter) Allow(agentID string, now time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.buckets[agentID]
	if !ok {
		b = &bucket{tokens: r.burst, lastRefill: now}
		r.buckets[agentID] = b
	}
	elapsed := now.Sub(b.lastRefill).Seconds()
	if elapsed > 0 {
		b.tokens += elapsed * r.ratePerSec
		if b.tokens > r.burst {
			b.tokens = r.burst
		}
		b.lastRefill = now
	}
	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}
