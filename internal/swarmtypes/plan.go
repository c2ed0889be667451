// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package swarmtypes

import (
	"time"

	"github.com/Good-karma-lab/Agent-Swarm-Communication-Protocol-sub002/internal/canon"
	"github.com/Good-karma-lab/Agent-Swarm-Communication-Protocol-sub002/internal/swarmid"
)

// PlanSubtask is one ordered decomposition step of a Plan.
type PlanSubtask struct {
	Index                int      `json:"index"`
	Description          string   `json:"description"`
	RequiredCapabilities []string `json:"required_capabilities"`
	EstimatedComplexity  float64  `json:"estimated_complexity"`
}

// Plan is a proposer's RFP response. PlanID is never included when
// computing the commitment hash — see Hash.
type Plan struct {
	SchemaVersion        int             `json:"schema_version"`
	PlanID               swarmid.ID      `json:"plan_id"`
	TaskID               swarmid.ID      `json:"task_id"`
	Proposer             swarmid.AgentID `json:"proposer"`
	Epoch                uint64          `json:"epoch"`
	Subtasks             []PlanSubtask   `json:"subtasks"`
	Rationale            string          `json:"rationale"`
	EstimatedParallelism int             `json:"estimated_parallelism"`
	CreatedAt            time.Time       `json:"created_at"`
}

// hashablePlan is Plan without PlanID (the commitment covers the plan's
// content, not its self-referential content address) — mirroring
// spec.md §3's "plan without signature" commitment shape.
type hashablePlan struct {
	SchemaVersion        int             `json:"schema_version"`
	TaskID               swarmid.ID      `json:"task_id"`
	Proposer             swarmid.AgentID `json:"proposer"`
	Epoch                uint64          `json:"epoch"`
	Subtasks             []PlanSubtask   `json:"subtasks"`
	Rationale            string          `json:"rationale"`
	EstimatedParallelism int             `json:"estimated_parallelism"`
	CreatedAt            time.Time       `json:"created_at"`
}

// Hash computes plan_hash := SHA256(canonical_json(plan without
// signature)) per spec.md §3.
func (p *Plan) Hash() (swarmid.ID, error) {
	hp := hashablePlan{
		SchemaVersion:        p.SchemaVersion,
		TaskID:               p.TaskID,
		Proposer:             p.Proposer,
		Epoch:                p.Epoch,
		Subtasks:             p.Subtasks,
		Rationale:            p.Rationale,
		EstimatedParallelism: p.EstimatedParallelism,
		CreatedAt:            p.CreatedAt,
	}
	b, err := canon.Marshal(hp)
	if err != nil {
		return swarmid.Empty, err
	}
	return swarmid.FromBytes(b), nil
}

// MaxSubtaskComplexity returns the highest EstimatedComplexity among the
// plan's subtasks, used to validate Open Question #2 (subtask complexity
// must not exceed the parent's complexity_estimate).
func (p *Plan) MaxSubtaskComplexity() float64 {
	max := 0.0
	for _, st := range p.Subtasks {
		if st.EstimatedComplexity > max {
			max = st.EstimatedComplexity
		}
	}
	return max
}
