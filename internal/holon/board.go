// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package holon implements the Holon lifecycle engine of spec.md §4.4:
// two-RTT board formation, the six-state state machine, recursive
// sub-holon spawning, and dissolution.
package holon

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/luxfi/log"

	"github.com/Good-karma-lab/Agent-Swarm-Communication-Protocol-sub002/internal/swarmid"
	"github.com/Good-karma-lab/Agent-Swarm-Communication-Protocol-sub002/internal/swarmtypes"
	"github.com/Good-karma-lab/Agent-Swarm-Communication-Protocol-sub002/internal/transport"
)

// Candidate is a board.accept response, per spec.md §4.4.
type Candidate struct {
	AgentID        swarmid.AgentID
	ActiveTasks    int
	Capabilities   []string
	AffinityScores map[string]float64 // capability -> [0,1]
	Reputation     int64              // effective reputation, higher is better
}

// meanAffinity returns the candidate's mean affinity score over the
// required capabilities; capabilities with no recorded score count as 0.
func (c Candidate) meanAffinity(required []string) float64 {
	if len(required) == 0 {
		return 0
	}
	var sum float64
	for _, cap := range required {
		sum += c.AffinityScores[cap]
	}
	return sum / float64(len(required))
}

// RankCandidates orders accepters by the tiebreak chain of spec.md §4.4:
// lowest active_tasks asc, then highest mean affinity desc, then higher
// effective reputation desc.
func RankCandidates(candidates []Candidate, requiredCapabilities []string) []Candidate {
	ranked := append([]Candidate(nil), candidates...)
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.ActiveTasks != b.ActiveTasks {
			return a.ActiveTasks < b.ActiveTasks
		}
		am, bm := a.meanAffinity(requiredCapabilities), b.meanAffinity(requiredCapabilities)
		if am != bm {
			return am > bm
		}
		return a.Reputation > b.Reputation
	})
	return ranked
}

// SelectTopN returns the top N ≤ capacity ranked candidates.
func SelectTopN(ranked []Candidate, capacity int) []Candidate {
	if capacity < 0 {
		capacity = 0
	}
	if capacity > len(ranked) {
		capacity = len(ranked)
	}
	return ranked[:capacity]
}

// Invite is the board.invite broadcast of spec.md §4.4.
type Invite struct {
	TaskID               swarmid.ID
	TaskDigest           swarmid.ID
	ComplexityEstimate   float64
	Depth                int
	RequiredCapabilities []string
	Capacity             int
}

// InviteWindow is the fixed 5s response window for board formation.
const InviteWindow = 5 * time.Second

// Former drives the two-RTT board-formation exchange over a Transport.
type Former struct {
	Transport transport.Transport
	Topics    transport.TopicRegistry
	Log       log.Logger
	Now       func() time.Time
}

func (f *Former) now() time.Time {
	if f.Now != nil {
		return f.Now()
	}
	return time.Now()
}

// FormationResult is the outcome of one board-formation round.
type FormationResult struct {
	Members           []swarmid.AgentID
	AdversarialCritic *swarmid.AgentID
	// PeerCollaboration is true when accepters < 3 (no adversarial
	// critic, chair + accepters only).
	PeerCollaboration bool
	// Solo is true when the chair must execute alone (0 or 1 accepters).
	Solo bool
}

// Form runs the fallback ladder of spec.md §4.4 over an already-collected
// set of accepters (collection itself — publishing the invite and
// draining Subscribe for InviteWindow — is the caller's responsibility,
// kept separate so board selection remains a pure, directly testable
// function of the observed accepters).
func Form(chair swarmid.AgentID, taskID swarmid.ID, epoch uint64, accepters []Candidate, requiredCapabilities []string, capacity int) FormationResult {
	switch len(accepters) {
	case 0:
		return FormationResult{Members: nil, Solo: true}
	case 1:
		return FormationResult{Members: []swarmid.AgentID{accepters[0].AgentID}, Solo: true}
	}
	ranked := RankCandidates(accepters, requiredCapabilities)
	top := SelectTopN(ranked, capacity)
	members := make([]swarmid.AgentID, 0, len(top)+1)
	for _, c := range top {
		members = append(members, c.AgentID)
	}
	if len(members) < 3 {
		return FormationResult{Members: members, PeerCollaboration: true}
	}
	critic := DrawAdversarialCritic(taskID, epoch, members, chair)
	return FormationResult{Members: members, AdversarialCritic: &critic}
}

// RunFormation executes the two-RTT exchange: subscribe to the task's
// board topic, publish the invite, collect accepters for InviteWindow,
// then resolve the fallback ladder via Form. Callers own decode, which
// turns a raw accept Envelope into a Candidate.
func (f *Former) RunFormation(ctx context.Context, chair swarmid.AgentID, taskID swarmid.ID, epoch uint64, invite Invite, decode func(transport.Envelope) (Candidate, bool)) (FormationResult, error) {
	topic := f.Topics.Board(taskID.String())
	ch, err := f.Transport.Subscribe(ctx, topic)
	if err != nil {
		return FormationResult{}, fmt.Errorf("holon: subscribe board topic: %w", err)
	}

	payload, err := json.Marshal(invite)
	if err != nil {
		return FormationResult{}, fmt.Errorf("holon: marshal invite: %w", err)
	}
	env := transport.Envelope{
		Method:      "board.invite",
		Params:      payload,
		AgentID:     chair.String(),
		TimestampMs: f.now().UnixMilli(),
	}
	if err := f.Transport.Publish(ctx, topic, env); err != nil {
		return FormationResult{}, fmt.Errorf("holon: publish invite: %w", err)
	}

	accepters := collectAccepters(ctx, ch, InviteWindow, decode)
	return Form(chair, taskID, epoch, accepters, invite.RequiredCapabilities, invite.Capacity), nil
}

// collectAccepters drains the board's accept topic for the invite
// window, honoring ctx cancellation. Declines are simply not collected.
func collectAccepters(ctx context.Context, ch <-chan transport.Envelope, window time.Duration, decode func(transport.Envelope) (Candidate, bool)) []Candidate {
	deadline := time.After(window)
	var out []Candidate
	for {
		select {
		case <-ctx.Done():
			return out
		case <-deadline:
			return out
		case env, ok := <-ch:
			if !ok {
				return out
			}
			if c, ok := decode(env); ok {
				out = append(out, c)
			}
		}
	}
}
