// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package holon

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/luxfi/log"

	"github.com/Good-karma-lab/Agent-Swarm-Communication-Protocol-sub002/internal/swarmid"
	"github.com/Good-karma-lab/Agent-Swarm-Communication-Protocol-sub002/internal/swarmtypes"
	"github.com/Good-karma-lab/Agent-Swarm-Communication-Protocol-sub002/internal/transport"
)

// Phase timeouts, per spec.md §4.4.
const (
	FormingTimeout             = 5 * time.Second
	DeliberatingRoundOneTimeout = 60 * time.Second
	DeliberatingRoundTwoTimeout = 120 * time.Second
	VotingTimeout              = 120 * time.Second
	SynthesizingTimeout        = 60 * time.Second
)

// Engine is the per-Connector holon lifecycle driver. It holds no global
// mutable state: every call is explicit over a *StateGuard, matching
// spec.md §9 "Replace [global mutable state] with per-Connector state
// bundles passed explicitly to every handler."
type Engine struct {
	Transport   transport.Transport
	Topics      transport.TopicRegistry
	Log         log.Logger
	MaxDepth    int
	maxConcurrent int

	mu     sync.Mutex
	active map[swarmid.ID]*StateGuard
	sem    chan struct{}
}

// NewEngine constructs an Engine bounding at most maxConcurrentHolons
// holons processed in parallel (spec.md §5).
func NewEngine(tr transport.Transport, topics transport.TopicRegistry, logger log.Logger, maxConcurrentHolons int) *Engine {
	if maxConcurrentHolons <= 0 {
		maxConcurrentHolons = 64
	}
	return &Engine{
		Transport:     tr,
		Topics:        topics,
		Log:           logger,
		MaxDepth:      MaxDepth,
		maxConcurrent: maxConcurrentHolons,
		active:        make(map[swarmid.ID]*StateGuard),
		sem:           make(chan struct{}, maxConcurrentHolons),
	}
}

// CreateHolon starts a new holon for task in the Forming status, with
// chair as its initial chair.
func (e *Engine) CreateHolon(taskID swarmid.ID, chair swarmid.AgentID, depth int, parent *swarmid.ID, complexity float64) *StateGuard {
	g := NewStateGuard(&swarmtypes.HolonState{
		SchemaVersion:      swarmtypes.SchemaVersion,
		TaskID:             taskID,
		Status:             swarmtypes.HolonForming,
		Chair:              chair,
		Depth:              depth,
		ParentHolon:        parent,
		CreatedAt:          time.Now().UTC(),
		ComplexityEstimate: complexity,
	})
	e.mu.Lock()
	e.active[taskID] = g
	e.mu.Unlock()
	return g
}

// Get returns the StateGuard for taskID, if the holon is still active.
func (e *Engine) Get(taskID swarmid.ID) (*StateGuard, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	g, ok := e.active[taskID]
	return g, ok
}

// ApplyFormation records the outcome of a completed board-formation
// round into the holon's state and advances Forming -> Deliberating, or
// Forming -> Done if the timeout fallback applies (no members at all and
// the chair could not even solo — callers pass fellBack=true in that
// vanishingly rare case; ordinarily a 0-accepter result still proceeds
// to solo execution, which advances normally).
func (e *Engine) ApplyFormation(g *StateGuard, result FormationResult, fellBack bool) error {
	g.Mutate(func(s *swarmtypes.HolonState) {
		s.Members = append([]swarmid.AgentID{s.Chair}, result.Members...)
		s.AdversarialCritic = result.AdversarialCritic
	})
	if fellBack {
		return g.Transition(swarmtypes.HolonDone)
	}
	return g.Transition(swarmtypes.HolonDeliberating)
}

// Dissolve broadcasts board.dissolve for taskID after the root result is
// accepted, per spec.md §4.4.
func (e *Engine) Dissolve(ctx context.Context, taskID swarmid.ID, env transport.Envelope) error {
	topic := e.Topics.Board(taskID.String())
	if err := e.Transport.Publish(ctx, topic, env); err != nil {
		return fmt.Errorf("holon: dissolve publish: %w", err)
	}
	e.mu.Lock()
	delete(e.active, taskID)
	e.mu.Unlock()
	return nil
}

// Cancel marks a holon and all of its tracked children cancelled by
// removing them from the active set; cancellation is cooperative — any
// in-flight capability call for this task is allowed to finish but its
// result is discarded by the caller checking Get after the fact.
func (e *Engine) Cancel(taskID swarmid.ID, childTaskIDs []swarmid.ID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.active, taskID)
	for _, c := range childTaskIDs {
		delete(e.active, c)
	}
}
