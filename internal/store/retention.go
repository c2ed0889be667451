// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package store

import (
	"context"
	"sync"
	"time"

	"github.com/luxfi/log"

	"github.com/Good-karma-lab/Agent-Swarm-Communication-Protocol-sub002/internal/swarmid"
)

// DefaultRetentionWindow is how long a holon's records are kept after
// reaching a terminal status (Done/Failed/Rejected), per spec.md §6.
const DefaultRetentionWindow = 24 * time.Hour

// Sweeper periodically reaps Store records whose task reached a
// terminal outcome more than Window ago, never touching in-flight
// tasks — callers are responsible for calling MarkTerminal only once a
// task has actually left the active set (Done, Failed, or Rejected).
type Sweeper struct {
	Store  *Store
	Window time.Duration
	Log    log.Logger
	Now    func() time.Time

	mu           sync.Mutex
	terminatedAt map[swarmid.ID]time.Time
}

// NewSweeper constructs a Sweeper with DefaultRetentionWindow unless
// window is positive.
func NewSweeper(s *Store, window time.Duration, logger log.Logger) *Sweeper {
	if window <= 0 {
		window = DefaultRetentionWindow
	}
	return &Sweeper{
		Store:        s,
		Window:       window,
		Log:          logger,
		terminatedAt: make(map[swarmid.ID]time.Time),
	}
}

func (sw *Sweeper) now() time.Time {
	if sw.Now != nil {
		return sw.Now()
	}
	return time.Now()
}

// MarkTerminal records that taskID reached a terminal outcome now, the
// retention clock's starting point. Safe to call more than once; only
// the first call for a given task starts the clock.
func (sw *Sweeper) MarkTerminal(taskID swarmid.ID) {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	if _, ok := sw.terminatedAt[taskID]; ok {
		return
	}
	sw.terminatedAt[taskID] = sw.now()
}

// Unmark clears a task's terminal marker, for the rare case a
// "terminal" task is revived (e.g. a reassignment reopens a Failed leaf).
func (sw *Sweeper) Unmark(taskID swarmid.ID) {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	delete(sw.terminatedAt, taskID)
}

// Pending reports whether taskID is tracked as terminal and awaiting
// its retention window.
func (sw *Sweeper) Pending(taskID swarmid.ID) bool {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	_, ok := sw.terminatedAt[taskID]
	return ok
}

// Sweep reaps every tracked task whose retention window has elapsed,
// deleting its records from Store. Tasks never marked terminal
// (still in-flight) are never touched.
func (sw *Sweeper) Sweep() {
	cutoff := sw.now().Add(-sw.Window)

	sw.mu.Lock()
	var expired []swarmid.ID
	for taskID, at := range sw.terminatedAt {
		if !at.After(cutoff) {
			expired = append(expired, taskID)
		}
	}
	for _, taskID := range expired {
		delete(sw.terminatedAt, taskID)
	}
	sw.mu.Unlock()

	for _, taskID := range expired {
		sw.Store.Forget(taskID)
		if sw.Log != nil {
			sw.Log.Debug("reaped retention window", "task_id", taskID.String())
		}
	}
}

// Run sweeps on every tick of interval until ctx is cancelled.
func (sw *Sweeper) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sw.Sweep()
		}
	}
}
