// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package swarmtypes

import (
	"time"

	"github.com/Good-karma-lab/Agent-Swarm-Communication-Protocol-sub002/internal/swarmid"
)

// HolonStatus is the six-state lifecycle of spec.md §3/§4.4.
type HolonStatus string

const (
	HolonForming       HolonStatus = "Forming"
	HolonDeliberating  HolonStatus = "Deliberating"
	HolonVoting        HolonStatus = "Voting"
	HolonExecuting     HolonStatus = "Executing"
	HolonSynthesizing  HolonStatus = "Synthesizing"
	HolonDone          HolonStatus = "Done"
)

// order gives the canonical forward-only ordering of HolonStatus, used
// to enforce invariant 4 of spec.md §8: every transition s -> s' must
// satisfy order(s') > order(s). The Forming -> Done timeout fallback
// satisfies it too, since Done is last in the sequence.
var order = map[HolonStatus]int{
	HolonForming:      0,
	HolonDeliberating: 1,
	HolonVoting:       2,
	HolonExecuting:    3,
	HolonSynthesizing: 4,
	HolonDone:         5,
}

// Order returns the canonical sequence position of s, or -1 if unknown.
func Order(s HolonStatus) int {
	if o, ok := order[s]; ok {
		return o
	}
	return -1
}

// HolonState is the board record for a task.
type HolonState struct {
	SchemaVersion      int               `json:"schema_version"`
	TaskID             swarmid.ID        `json:"task_id"`
	Status             HolonStatus       `json:"status"`
	Chair              swarmid.AgentID   `json:"chair"`
	Members            []swarmid.AgentID `json:"members"`
	AdversarialCritic  *swarmid.AgentID  `json:"adversarial_critic,omitempty"`
	Depth              int               `json:"depth"`
	ParentHolon        *swarmid.ID       `json:"parent_holon,omitempty"`
	Children           []swarmid.ID      `json:"children"`
	CreatedAt          time.Time         `json:"created_at"`
	ComplexityEstimate float64           `json:"complexity_estimate"`
}

// MembersExcept returns Members with agent removed, preserving order.
func (h *HolonState) MembersExcept(agent swarmid.AgentID) []swarmid.AgentID {
	out := make([]swarmid.AgentID, 0, len(h.Members))
	for _, m := range h.Members {
		if m != agent {
			out = append(out, m)
		}
	}
	return out
}
