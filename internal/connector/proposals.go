// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package connector

import (
	"context"
	"fmt"

	"github.com/Good-karma-lab/Agent-Swarm-Communication-Protocol-sub002/internal/capability"
	"github.com/Good-karma-lab/Agent-Swarm-Communication-Protocol-sub002/internal/holon"
	"github.com/Good-karma-lab/Agent-Swarm-Communication-Protocol-sub002/internal/rfp"
	"github.com/Good-karma-lab/Agent-Swarm-Communication-Protocol-sub002/internal/swarmerr"
	"github.com/Good-karma-lab/Agent-Swarm-Communication-Protocol-sub002/internal/swarmid"
	"github.com/Good-karma-lab/Agent-Swarm-Communication-Protocol-sub002/internal/swarmtypes"
)

func (c *Connector) round(taskID swarmid.ID) (*taskRound, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.rounds[taskID]
	return r, ok
}

// ProposePlan handles swarm.propose_plan. The agent hands over its full
// Plan in one call; the connector commits its hash immediately and
// reveals it the instant every expected proposer has committed, folding
// the network-visible commit/reveal round trip spec.md §4.5 describes
// into the single RPC the method table names ("connector handles
// commit-reveal").
func (c *Connector) ProposePlan(plan swarmtypes.Plan) error {
	r, ok := c.round(plan.TaskID)
	if !ok {
		return swarmerr.ErrTaskNotFound
	}

	c.mu.Lock()
	task, known := c.tasks[plan.TaskID]
	c.mu.Unlock()
	if known && plan.MaxSubtaskComplexity() > task.EstimatedComplexity {
		return swarmerr.ErrSubtaskTooComplex
	}

	hash, err := plan.Hash()
	if err != nil {
		return err
	}
	if err := r.coordinator.Commit(plan.Proposer, hash); err != nil {
		return err
	}

	c.mu.Lock()
	plan.PlanID = hash
	r.pendingPlans[plan.Proposer] = plan
	phase := r.coordinator.Phase
	c.mu.Unlock()

	if phase != rfp.RevealPhase {
		return nil
	}
	return c.revealAll(plan.TaskID, r)
}

func (c *Connector) revealAll(taskID swarmid.ID, r *taskRound) error {
	c.mu.Lock()
	plans := make([]swarmtypes.Plan, 0, len(r.pendingPlans))
	for _, p := range r.pendingPlans {
		plans = append(plans, p)
	}
	c.mu.Unlock()

	for _, p := range plans {
		if err := r.coordinator.Reveal(p); err != nil {
			c.Log.Warn("plan reveal rejected", "task_id", taskID.String(), "proposer", p.Proposer.String(), "error", err)
			continue
		}
		c.mu.Lock()
		r.planProposer[p.PlanID] = p.Proposer
		c.mu.Unlock()
	}
	for _, msg := range r.coordinator.Deliberation {
		c.Store.AppendDeliberation(taskID, msg)
	}

	if r.coordinator.Phase != rfp.CritiquePhase {
		return c.extendOrAutoWin(taskID, r)
	}
	return c.runCritique(taskID, r)
}

// extendOrAutoWin implements the reveal-time recovery rule of spec.md
// §7: a hash mismatch or late reveal that leaves fewer than 2 revealed
// plans either lets the lone survivor auto-win, extends the RFP once
// with a fresh commit window, or — if that one extension is already
// spent — fails the holon upward per spec.md §4.6.
func (c *Connector) extendOrAutoWin(taskID swarmid.ID, r *taskRound) error {
	revealed := r.coordinator.RevealedPlans()
	if len(revealed) >= 2 {
		return nil
	}
	if len(revealed) == 1 {
		return c.runCritique(taskID, r)
	}
	if r.coordinator.ReopenCommitWindow() {
		c.Log.Info("rfp: commit window extended after zero plans revealed", "task_id", taskID.String())
		return nil
	}
	guard, ok := c.Holons.Get(taskID)
	if !ok {
		return swarmerr.ErrNoProposals
	}
	return c.failUpward(taskID, guard)
}

// failUpward marks a holon that exhausted its one commit-window
// extension with still nothing revealed as Done and fails its task,
// per spec.md §4.6 ("the holon transitions to Forming at a new depth
// or fails upward"): recursively re-forming at a new depth only makes
// sense when a parent task can re-inject a replacement subtask, so a
// root task fails outright while a subtask also fails its parent,
// surfacing the stall instead of leaving the RPC caller with a bare
// sentinel and no holon-side trace of what happened.
func (c *Connector) failUpward(taskID swarmid.ID, guard *holon.StateGuard) error {
	if err := guard.Transition(swarmtypes.HolonDone); err != nil {
		c.Log.Warn("holon: transition to done on fail-upward", "task_id", taskID.String(), "error", err)
	}
	c.Store.PutHolon(guard.Snapshot())
	c.setTaskStatus(taskID, swarmtypes.TaskFailed)

	if task, err := c.GetTask(taskID); err == nil && task.ParentTaskID != nil {
		c.setTaskStatus(*task.ParentTaskID, swarmtypes.TaskFailed)
	}
	return swarmerr.ErrNoProposals
}

func (c *Connector) runCritique(taskID swarmid.ID, r *taskRound) error {
	revealed := r.coordinator.RevealedPlans()
	guard, ok := c.Holons.Get(taskID)
	if !ok {
		return fmt.Errorf("connector: run critique: unknown holon %s", taskID)
	}
	state := guard.Snapshot()

	for _, member := range state.Members {
		role := capability.CriticStandard
		if state.AdversarialCritic != nil && *state.AdversarialCritic == member {
			role = capability.CriticAdversarial
		}
		scores, content, err := c.Caps.Critic.Critique(context.Background(), revealed, role)
		if err != nil {
			c.Log.Warn("critique failed", "task_id", taskID.String(), "voter", member.String(), "error", err)
			continue
		}
		if err := r.coordinator.Critique(member, scores, content); err != nil {
			c.Log.Warn("critique rejected", "task_id", taskID.String(), "voter", member.String(), "error", err)
		}
	}
	for _, msg := range r.coordinator.Deliberation {
		c.Store.AppendDeliberation(taskID, msg)
	}

	if r.coordinator.Phase != rfp.ReadyForVoting {
		return nil
	}
	return c.openVoting(taskID, r, guard, state)
}

func (c *Connector) openVoting(taskID swarmid.ID, r *taskRound, guard *holon.StateGuard, state swarmtypes.HolonState) error {
	electorate := c.buildElectorate(state, taskID)
	c.mu.Lock()
	r.electorate = electorate
	c.mu.Unlock()
	if err := guard.Transition(swarmtypes.HolonVoting); err != nil {
		return err
	}
	c.Store.PutHolon(guard.Snapshot())
	return nil
}

// VotingStateView answers swarm.get_voting_state.
type VotingStateView struct {
	Phase   string       `json:"phase"`
	PlanIDs []swarmid.ID `json:"plan_ids"`
}

// GetVotingState answers swarm.get_voting_state.
func (c *Connector) GetVotingState(taskID swarmid.ID) (VotingStateView, error) {
	r, ok := c.round(taskID)
	if !ok {
		return VotingStateView{}, swarmerr.ErrTaskNotFound
	}
	revealed := r.coordinator.RevealedPlans()
	ids := make([]swarmid.ID, 0, len(revealed))
	for _, p := range revealed {
		ids = append(ids, p.PlanID)
	}
	return VotingStateView{Phase: string(r.coordinator.Phase), PlanIDs: ids}, nil
}

// GetDeliberation answers swarm.get_deliberation.
func (c *Connector) GetDeliberation(taskID swarmid.ID) []swarmtypes.DeliberationMessage {
	return c.Store.Deliberation(taskID)
}
