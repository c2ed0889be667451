// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package rfp implements the three-phase RFP Coordinator of spec.md §4.5:
// commit -> reveal -> critique, with hash-binding anti-plagiarism.
// Grounded on the teacher's poll/poll.go Set/Poll pairing, adapted from
// single-round quorum polling to a three-round commit/reveal/critique
// sequence.
package rfp

import (
	"sync"
	"time"

	"github.com/luxfi/log"

	"github.com/Good-karma-lab/Agent-Swarm-Communication-Protocol-sub002/internal/swarmerr"
	"github.com/Good-karma-lab/Agent-Swarm-Communication-Protocol-sub002/internal/swarmid"
	"github.com/Good-karma-lab/Agent-Swarm-Communication-Protocol-sub002/internal/swarmtypes"
)

// Phase is the six-state RFP lifecycle of spec.md §4.5.
type Phase string

const (
	Idle            Phase = "Idle"
	CommitPhase     Phase = "CommitPhase"
	RevealPhase     Phase = "RevealPhase"
	CritiquePhase   Phase = "CritiquePhase"
	ReadyForVoting  Phase = "ReadyForVoting"
	Completed       Phase = "Completed"
)

// CommitTimeout / RevealTimeout / CritiqueTimeout are the per-phase
// fallback deadlines of spec.md §4.5.
const (
	CommitTimeout   = 60 * time.Second
	RevealTimeout   = 60 * time.Second
	CritiqueTimeout = 60 * time.Second
)

// Coordinator drives one task's RFP round. One Coordinator exists per
// task, owned by the task's chair (exclusive writer, per spec.md §5).
type Coordinator struct {
	mu sync.Mutex

	TaskID swarmid.ID
	Phase  Phase
	Log    log.Logger

	expectedProposers map[swarmid.AgentID]struct{}
	commits           map[swarmid.AgentID]swarmid.ID // proposer -> plan_hash
	revealed          map[swarmid.AgentID]swarmtypes.Plan
	critiqued         map[swarmid.AgentID]struct{}
	extended          bool

	Deliberation []swarmtypes.DeliberationMessage
}

// NewCoordinator creates an Idle coordinator expecting commits from
// expectedProposers (the holon's members).
func NewCoordinator(taskID swarmid.ID, expectedProposers []swarmid.AgentID, logger log.Logger) *Coordinator {
	expected := make(map[swarmid.AgentID]struct{}, len(expectedProposers))
	for _, p := range expectedProposers {
		expected[p] = struct{}{}
	}
	return &Coordinator{
		TaskID:            taskID,
		Phase:             CommitPhase,
		Log:               logger,
		expectedProposers: expected,
		commits:           make(map[swarmid.AgentID]swarmid.ID),
		revealed:          make(map[swarmid.AgentID]swarmtypes.Plan),
		critiqued:         make(map[swarmid.AgentID]struct{}),
	}
}

// Commit records {proposer -> plan_hash} during CommitPhase.
func (c *Coordinator) Commit(proposer swarmid.AgentID, planHash swarmid.ID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Phase != CommitPhase {
		return swarmerr.ErrEpochMismatch
	}
	c.commits[proposer] = planHash
	if c.allCommitted() {
		c.Phase = RevealPhase
	}
	return nil
}

func (c *Coordinator) allCommitted() bool {
	for p := range c.expectedProposers {
		if _, ok := c.commits[p]; !ok {
			return false
		}
	}
	return true
}

// AdvanceAfterCommitTimeout transitions Commit -> Reveal on timeout
// regardless of how many commits arrived, per spec.md §4.5.
func (c *Coordinator) AdvanceAfterCommitTimeout() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Phase == CommitPhase {
		c.Phase = RevealPhase
	}
}

// Reveal processes a revealed plan, enforcing hash-binding and
// no-duplicate-no-reveal-without-commit per spec.md §4.5.
func (c *Coordinator) Reveal(plan swarmtypes.Plan) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Phase != RevealPhase {
		return swarmerr.ErrEpochMismatch
	}
	committedHash, ok := c.commits[plan.Proposer]
	if !ok {
		return swarmerr.ErrHashMismatch
	}
	if _, already := c.revealed[plan.Proposer]; already {
		return swarmerr.ErrDuplicateProposal
	}
	actualHash, err := plan.Hash()
	if err != nil {
		return err
	}
	if actualHash != committedHash {
		return swarmerr.ErrHashMismatch
	}
	c.revealed[plan.Proposer] = plan
	c.appendMessage(1, swarmtypes.MsgProposalSubmission, plan.Proposer, plan.Rationale, nil)
	if c.allRevealed() {
		c.Phase = CritiquePhase
	}
	return nil
}

func (c *Coordinator) allRevealed() bool {
	for p := range c.commits {
		if _, ok := c.revealed[p]; !ok {
			return false
		}
	}
	return true
}

// AdvanceAfterRevealTimeout transitions Reveal -> Critique on timeout.
func (c *Coordinator) AdvanceAfterRevealTimeout() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Phase == RevealPhase {
		c.Phase = CritiquePhase
	}
}

// Critique records a critic's scores/content as a DeliberationMessage.
func (c *Coordinator) Critique(voter swarmid.AgentID, scores map[swarmid.ID]swarmtypes.CriticScore, content string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Phase != CritiquePhase {
		return swarmerr.ErrEpochMismatch
	}
	c.critiqued[voter] = struct{}{}
	c.appendMessage(2, swarmtypes.MsgCritiqueFeedback, voter, content, scores)
	if len(c.critiqued) >= len(c.revealed) {
		c.Phase = ReadyForVoting
	}
	return nil
}

// AdvanceAfterCritiqueTimeout transitions Critique -> ReadyForVoting on
// timeout.
func (c *Coordinator) AdvanceAfterCritiqueTimeout() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Phase == CritiquePhase {
		c.Phase = ReadyForVoting
	}
}

// RevealedPlans returns the plans that survived reveal, for handoff to
// the voting engine. If a hash mismatch or late reveal left fewer than 2
// plans, callers implement the extend-once-or-auto-win policy of
// spec.md §7 using this list's length.
func (c *Coordinator) RevealedPlans() []swarmtypes.Plan {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]swarmtypes.Plan, 0, len(c.revealed))
	for _, p := range c.revealed {
		out = append(out, p)
	}
	return out
}

// ReopenCommitWindow implements the extend-once fallback of spec.md §7:
// a reveal round that leaves zero revealed plans gets the commit window
// cleared and reopened exactly once, so a round of silence or
// unanimous hash mismatches isn't automatically fatal. Returns false if
// this coordinator's one extension is already spent, leaving Phase
// untouched so the caller can fail the holon upward instead.
func (c *Coordinator) ReopenCommitWindow() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.extended {
		return false
	}
	c.extended = true
	c.commits = make(map[swarmid.AgentID]swarmid.ID)
	c.revealed = make(map[swarmid.AgentID]swarmtypes.Plan)
	c.critiqued = make(map[swarmid.AgentID]struct{})
	c.Phase = CommitPhase
	return true
}

// Complete marks the coordinator Completed once the Voting Engine has
// selected a winner.
func (c *Coordinator) Complete() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Phase = Completed
}

func (c *Coordinator) appendMessage(round int, kind swarmtypes.DeliberationMessageType, speaker swarmid.AgentID, content string, scores map[swarmid.ID]swarmtypes.CriticScore) {
	c.Deliberation = append(c.Deliberation, swarmtypes.DeliberationMessage{
		SchemaVersion: swarmtypes.SchemaVersion,
		TaskID:        c.TaskID,
		Round:         round,
		MessageType:   kind,
		Speaker:       speaker,
		Content:       content,
		TimestampMs:   time.Now().UnixMilli(),
		PlanScores:    scores,
	})
}
