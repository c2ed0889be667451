// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package capability declares the external agent-side handles the core
// consumes per spec.md §6: PlanGenerator, Critic, ResultValidator. These
// are small interfaces in the teacher's style (networking/sender.Sender),
// carried explicitly in a per-connector context rather than resolved by
// name — the core never knows which LLM vendor, local model, or shell-out
// variant backs a handle.
package capability

import (
	"context"

	"github.com/Good-karma-lab/Agent-Swarm-Communication-Protocol-sub002/internal/swarmid"
	"github.com/Good-karma-lab/Agent-Swarm-Communication-Protocol-sub002/internal/swarmtypes"
)

// TaskContext is the information handed to a PlanGenerator for one RFP round.
type TaskContext struct {
	Task    swarmtypes.Task
	Epoch   uint64
	Depth   int
}

// PlanGenerator produces a Plan for a given task context.
type PlanGenerator interface {
	Generate(ctx context.Context, tc TaskContext) (swarmtypes.Plan, error)
}

// CriticRole distinguishes a standard critique from an adversarial,
// flaw-seeking one.
type CriticRole string

const (
	CriticStandard    CriticRole = "standard"
	CriticAdversarial CriticRole = "adversarial"
)

// Critic scores a set of revealed plans and returns free-text content
// alongside the per-plan scores.
type Critic interface {
	Critique(ctx context.Context, plans []swarmtypes.Plan, role CriticRole) (map[swarmid.ID]swarmtypes.CriticScore, string, error)
}

// ResultValidator judges whether an executor's artifact conforms to its
// task's requirements.
type ResultValidator interface {
	Judge(ctx context.Context, task swarmtypes.Task, artifactBytes []byte) (accept bool, reason string, err error)
}
