// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package swarmtypes holds the wire/storage entities defined in
// spec.md §3: Task, Plan, HolonState, BallotRecord, IrvRound,
// DeliberationMessage, Artifact, ReputationRecord.
package swarmtypes

import (
	"time"

	"github.com/Good-karma-lab/Agent-Swarm-Communication-Protocol-sub002/internal/swarmid"
)

// SchemaVersion tags every persisted record, per the "Persisted state
// layout" requirement in spec.md §6.
const SchemaVersion = 1

// TaskStatus is the Task.status enum.
type TaskStatus string

const (
	TaskPending        TaskStatus = "Pending"
	TaskProposalPhase  TaskStatus = "ProposalPhase"
	TaskVotingPhase    TaskStatus = "VotingPhase"
	TaskInProgress     TaskStatus = "InProgress"
	TaskCompleted      TaskStatus = "Completed"
	TaskFailed         TaskStatus = "Failed"
	TaskRejected       TaskStatus = "Rejected"
)

// Task is the unit of work injected into the swarm.
type Task struct {
	SchemaVersion        int             `json:"schema_version"`
	TaskID               swarmid.ID      `json:"task_id"`
	ParentTaskID         *swarmid.ID     `json:"parent_task_id,omitempty"`
	Description          string          `json:"description"`
	Status               TaskStatus      `json:"status"`
	TierLevel            int             `json:"tier_level"`
	Epoch                uint64          `json:"epoch"`
	CapabilitiesRequired []string        `json:"capabilities_required"`
	EstimatedComplexity  float64         `json:"estimated_complexity"`
	Deadline             *time.Time      `json:"deadline,omitempty"`
	AssignedTo           *swarmid.AgentID `json:"assigned_to,omitempty"`
	CreatedAt            time.Time       `json:"created_at"`
}

// IsRoot reports whether t has no parent task.
func (t *Task) IsRoot() bool { return t.ParentTaskID == nil }
