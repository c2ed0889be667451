// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package replay implements the inbound-message checks of spec.md §4.1:
// timestamp skew, a sliding nonce-replay window, and rate limiting. No
// third-party nonce-window or rate-limiter library appears anywhere in
// the retrieval pack; this package is the documented stdlib-only
// exception (see DESIGN.md).
package replay

import (
	"sync"
	"time"
)

// Window is a time-bucketed sliding replay window keyed on
// (agent_id, nonce). Bucketing keeps memory bounded: buckets older than
// the window size are dropped wholesale rather than scanned entry by
// entry.
type Window struct {
	mu         sync.Mutex
	size       time.Duration
	bucketSize time.Duration
	buckets    map[int64]map[string]struct{}
}

// NewWindow creates a replay window of the given size, bucketed at
// bucketSize granularity (spec.md §4.1 names a 10 minute sliding window).
func NewWindow(size, bucketSize time.Duration) *Window {
	return &Window{
		size:       size,
		bucketSize: bucketSize,
		buckets:    make(map[int64]map[string]struct{}),
	}
}

func (w *Window) bucketKey(t time.Time) int64 {
	return t.UnixNano() / int64(w.bucketSize)
}

func key(agentID, nonce string) string { return agentID + "\x00" + nonce }

// CheckAndRecord reports true (ReplayDetected) if (agentID, nonce) was
// already observed within the window; otherwise records it and returns
// false.
func (w *Window) CheckAndRecord(agentID, nonce string, now time.Time) (replayed bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.evictOlderThan(now)

	k := key(agentID, nonce)
	for _, bucket := range w.buckets {
		if _, seen := bucket[k]; seen {
			return true
		}
	}
	bk := w.bucketKey(now)
	if w.buckets[bk] == nil {
		w.buckets[bk] = make(map[string]struct{})
	}
	w.buckets[bk][k] = struct{}{}
	return false
}

func (w *Window) evictOlderThan(now time.Time) {
	cutoff := w.bucketKey(now.Add(-w.size))
	for bk := range w.buckets {
		if bk < cutoff {
			delete(w.buckets, bk)
		}
	}
}

// CheckTimestamp enforces |now - timestampMs| <= maxSkew, returning
// ok=false and which way it skewed.
func CheckTimestamp(timestampMs int64, now time.Time, maxSkew time.Duration) (ok bool, stale bool, future bool) {
	ts := time.UnixMilli(timestampMs)
	diff := now.Sub(ts)
	if diff > maxSkew {
		return false, true, false
	}
	if diff < -maxSkew {
		return false, false, true
	}
	return true, false, false
}
