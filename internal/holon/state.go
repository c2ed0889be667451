// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package holon

import (
	"fmt"
	"sync"

	"github.com/Good-karma-lab/Agent-Swarm-Communication-Protocol-sub002/internal/swarmtypes"
)

// StateGuard enforces strictly monotonic HolonState transitions (CAS,
// per spec.md §5 "Across tasks" and §8 invariant 4). Forward jumps that
// skip states, such as Forming -> Done (timeout with insufficient
// acceptances), are allowed.
type StateGuard struct {
	mu    sync.Mutex
	state *swarmtypes.HolonState
}

// NewStateGuard wraps an initial HolonState (typically freshly created
// in the Forming status).
func NewStateGuard(initial *swarmtypes.HolonState) *StateGuard {
	return &StateGuard{state: initial}
}

// Snapshot returns a copy of the current state.
func (g *StateGuard) Snapshot() swarmtypes.HolonState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return *g.state
}

// ErrRegression is returned when a transition would not move the state
// machine strictly forward (and isn't the Forming->Done fallback).
type ErrRegression struct {
	From, To swarmtypes.HolonStatus
}

func (e ErrRegression) Error() string {
	return fmt.Sprintf("holon: transition %s -> %s does not advance the canonical sequence", e.From, e.To)
}

// Transition attempts a compare-and-set move to next. Two concurrent
// attempts resolve by holding g.mu; the loser, if its observed "from"
// doesn't match current state, gets ErrRegression rather than silently
// clobbering a state it didn't observe — callers should retry by
// re-reading Snapshot.
func (g *StateGuard) Transition(next swarmtypes.HolonStatus) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	current := g.state.Status
	if isFormingDoneFallback(current, next) {
		g.state.Status = next
		return nil
	}
	if swarmtypes.Order(next) <= swarmtypes.Order(current) {
		return ErrRegression{From: current, To: next}
	}
	g.state.Status = next
	return nil
}

// isFormingDoneFallback recognizes the Forming -> Done jump on timeout
// with insufficient acceptances (spec.md §3); it is also a forward move
// under swarmtypes.Order.
func isFormingDoneFallback(from, to swarmtypes.HolonStatus) bool {
	return from == swarmtypes.HolonForming && to == swarmtypes.HolonDone
}

// Mutate applies fn to the guarded state under lock, for field updates
// (members, chair, critic) that don't themselves change Status.
func (g *StateGuard) Mutate(fn func(*swarmtypes.HolonState)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	fn(g.state)
}
