// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package crdt

import (
	"math"
	"sync"

	luxmath "github.com/luxfi/math"
)

// PNCounter is a Positive-Negative counter CRDT: per-node increments and
// decrements, merged by per-node element-wise maximum, per spec.md §4.2.
// Used for ReputationRecord.positive / .negative tallies.
type PNCounter struct {
	mu           sync.RWMutex
	nodeID       string
	increments   map[string]uint64
	decrements   map[string]uint64
}

// NewPNCounter creates a counter owned by nodeID.
func NewPNCounter(nodeID string) *PNCounter {
	return &PNCounter{
		nodeID:     nodeID,
		increments: make(map[string]uint64),
		decrements: make(map[string]uint64),
	}
}

// Increment bumps this node's increment tally by delta, saturating at
// math.MaxUint64 instead of wrapping — a malicious or buggy peer
// spamming positive reports must not be able to flip a tally negative
// by overflow.
func (c *PNCounter) Increment(delta uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.increments[c.nodeID] = saturatingAdd(c.increments[c.nodeID], delta)
}

// Decrement bumps this node's decrement tally by delta, saturating the
// same way as Increment.
func (c *PNCounter) Decrement(delta uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.decrements[c.nodeID] = saturatingAdd(c.decrements[c.nodeID], delta)
}

// saturatingAdd wraps luxfi/math.Add64's overflow-checked addition,
// clamping to the maximum representable tally rather than surfacing the
// error: a PNCounter tally has no caller in a position to act on an
// overflow, and clamping preserves the CRDT merge invariant (per-node
// counters are monotonically non-decreasing) better than wrapping would.
func saturatingAdd(a, b uint64) uint64 {
	sum, err := luxmath.Add64(a, b)
	if err != nil {
		return math.MaxUint64
	}
	return sum
}

// Value returns Σ increments − Σ decrements.
func (c *PNCounter) Value() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var total int64
	for _, v := range c.increments {
		total += int64(v)
	}
	for _, v := range c.decrements {
		total -= int64(v)
	}
	return total
}

// PNSnapshot is the transmissible state of a PNCounter.
type PNSnapshot struct {
	Increments map[string]uint64 `json:"increments"`
	Decrements map[string]uint64 `json:"decrements"`
}

// Snapshot returns a copy of this replica's state.
func (c *PNCounter) Snapshot() PNSnapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	snap := PNSnapshot{
		Increments: make(map[string]uint64, len(c.increments)),
		Decrements: make(map[string]uint64, len(c.decrements)),
	}
	for k, v := range c.increments {
		snap.Increments[k] = v
	}
	for k, v := range c.decrements {
		snap.Decrements[k] = v
	}
	return snap
}

// Merge takes, per node, the element-wise maximum of increments and
// decrements — each node's own counter only grows, so max() recovers the
// most up-to-date value regardless of delivery order.
func (c *PNCounter) Merge(other PNSnapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for node, v := range other.Increments {
		if cur := c.increments[node]; v > cur {
			c.increments[node] = v
		}
	}
	for node, v := range other.Decrements {
		if cur := c.decrements[node]; v > cur {
			c.decrements[node] = v
		}
	}
}
