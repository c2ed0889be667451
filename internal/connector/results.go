// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package connector

import (
	"context"
	"fmt"

	"github.com/Good-karma-lab/Agent-Swarm-Communication-Protocol-sub002/internal/holon"
	"github.com/Good-karma-lab/Agent-Swarm-Communication-Protocol-sub002/internal/merkledag"
	"github.com/Good-karma-lab/Agent-Swarm-Communication-Protocol-sub002/internal/swarmid"
	"github.com/Good-karma-lab/Agent-Swarm-Communication-Protocol-sub002/internal/swarmtypes"
	"github.com/Good-karma-lab/Agent-Swarm-Communication-Protocol-sub002/internal/transport"
)

// advanceToExecuting transitions Voting -> Executing, decomposes the
// winning plan into leaf assignments and sub-holon spawns per spec.md
// §4.4's recursive rule, and opens the task's Merkle branch.
func (c *Connector) advanceToExecuting(taskID swarmid.ID, r *taskRound, winnerPlanID swarmid.ID) error {
	var winner *swarmtypes.Plan
	for _, p := range r.coordinator.RevealedPlans() {
		if p.PlanID == winnerPlanID {
			cp := p
			winner = &cp
			break
		}
	}
	if winner == nil {
		return fmt.Errorf("connector: advance to executing: winning plan %s not found among revealed", winnerPlanID)
	}

	guard, ok := c.Holons.Get(taskID)
	if !ok {
		return fmt.Errorf("connector: advance to executing: unknown holon %s", taskID)
	}
	state := guard.Snapshot()
	if err := guard.Transition(swarmtypes.HolonExecuting); err != nil {
		return err
	}
	c.Store.PutHolon(guard.Snapshot())
	c.setTaskStatus(taskID, swarmtypes.TaskInProgress)

	c.mu.Lock()
	r.branch = merkledag.NewBranch(len(winner.Subtasks))
	c.mu.Unlock()

	parent, err := c.GetTask(taskID)
	if err != nil {
		return err
	}

	for i, subtask := range winner.Subtasks {
		owner := state.Members[i%len(state.Members)]
		c.mu.Lock()
		r.subtaskOwner[subtask.Index] = owner
		c.mu.Unlock()

		child := c.childTask(&parent, subtask, state.Depth+1)
		decision := holon.DecideSpawn(subtask.EstimatedComplexity, state.Depth, len(state.Members))
		if decision == holon.SpawnSubHolon {
			if err := c.StartBoardFormation(child.TaskID, owner); err != nil {
				c.Log.Warn("sub-holon spawn failed", "task_id", child.TaskID.String(), "error", err)
			}
			continue
		}
		c.assign(owner, child.TaskID)
	}
	return nil
}

// SubmitResult handles swarm.submit_result (task.submit_result per
// spec.md §4.7): verifies the content binding, invokes the
// ResultValidator capability, places the leaf in the parent's Merkle
// branch, and closes out the parent holon via finishHolon once every
// sibling slot resolves. The resolved branch hash is not placed in any
// higher-level branch.
func (c *Connector) SubmitResult(taskID swarmid.ID, subtaskIndex int, producer swarmid.AgentID, artifact swarmtypes.Artifact, content []byte) (accepted bool, reason string, err error) {
	if !artifact.VerifyContentCID(content) {
		c.recordNegative(producer)
		if c.Metrics != nil {
			c.Metrics.ResultsRejected.WithLabelValues("content_cid_mismatch").Inc()
		}
		return false, "content_cid mismatch", nil
	}

	task, terr := c.GetTask(taskID)
	if terr != nil {
		return false, "", terr
	}
	ok, judgeReason, jerr := c.Caps.Validate.Judge(context.Background(), task, content)
	if jerr != nil {
		return false, "", jerr
	}
	if !ok {
		return c.rejectResult(taskID, subtaskIndex, producer, judgeReason)
	}

	if err := c.Artifacts.Put(artifact.ContentCID, content); err != nil {
		return false, "", err
	}
	c.recordPositive(producer)
	if c.Metrics != nil {
		c.Metrics.ResultsAccepted.Inc()
	}

	parentID := task.ParentTaskID
	if parentID == nil {
		c.setTaskStatus(taskID, swarmtypes.TaskCompleted)
		return true, "", nil
	}

	r, ok2 := c.round(*parentID)
	if !ok2 {
		// Parent has no live round (e.g. process restart): accept the leaf
		// without bubbling; the audit trail still records the artifact.
		c.setTaskStatus(taskID, swarmtypes.TaskCompleted)
		return true, "", nil
	}
	leaf := merkledag.Leaf(content)
	c.mu.Lock()
	if r.branch == nil {
		c.mu.Unlock()
		c.setTaskStatus(taskID, swarmtypes.TaskCompleted)
		return true, "", nil
	}
	setErr := r.branch.SetChild(subtaskIndex, leaf)
	resolved := r.branch.Resolved()
	c.mu.Unlock()
	if setErr != nil {
		return false, "", setErr
	}
	c.setTaskStatus(taskID, swarmtypes.TaskCompleted)

	if !resolved {
		return true, "", nil
	}
	return true, "", c.finishHolon(*parentID, r)
}

func (c *Connector) rejectResult(taskID swarmid.ID, subtaskIndex int, producer swarmid.AgentID, reason string) (bool, string, error) {
	c.recordNegative(producer)
	if c.Metrics != nil {
		c.Metrics.ResultsRejected.WithLabelValues("judge_rejected").Inc()
	}

	task, err := c.GetTask(taskID)
	if err != nil {
		return false, reason, err
	}
	if task.ParentTaskID == nil {
		c.setTaskStatus(taskID, swarmtypes.TaskFailed)
		return false, reason, nil
	}
	r, ok := c.round(*task.ParentTaskID)
	if !ok {
		c.setTaskStatus(taskID, swarmtypes.TaskFailed)
		return false, reason, nil
	}

	c.mu.Lock()
	r.retries[subtaskIndex]++
	retries := r.retries[subtaskIndex]
	maxRetries := 3
	if c.Config != nil {
		maxRetries = c.Config.MaxResultRetries
	}
	c.mu.Unlock()

	if retries <= maxRetries {
		c.assign(producer, taskID)
		return false, fmt.Sprintf("%s (retry %d/%d)", reason, retries, maxRetries), nil
	}

	reassigned, ok := c.nextOwner(r, subtaskIndex, producer)
	if !ok {
		c.setTaskStatus(taskID, swarmtypes.TaskFailed)
		return false, "exhausted retries and reassignment pool", nil
	}
	c.mu.Lock()
	r.subtaskOwner[subtaskIndex] = reassigned
	r.retries[subtaskIndex] = 0
	c.mu.Unlock()
	c.assign(reassigned, taskID)
	return false, "reassigned to another board member", nil
}

func (c *Connector) nextOwner(r *taskRound, subtaskIndex int, exclude swarmid.AgentID) (swarmid.AgentID, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, owner := range r.subtaskOwner {
		if owner != exclude {
			return owner, true
		}
	}
	return "", false
}

// finishHolon closes out a holon once its Merkle branch is fully
// resolved: computes the branch hash (returning its error, if any),
// transitions Executing -> Synthesizing -> Done, persists the final
// snapshot, and broadcasts dissolution to the board's transport topic.
// The computed branch root is discarded: it is not stored, and it is not
// set as a leaf in the branch of this holon's own parent.
func (c *Connector) finishHolon(taskID swarmid.ID, r *taskRound) error {
	c.mu.Lock()
	_, herr := r.branch.Hash()
	c.mu.Unlock()
	if herr != nil {
		return herr
	}

	guard, ok := c.Holons.Get(taskID)
	if !ok {
		return fmt.Errorf("connector: finish holon: unknown holon %s", taskID)
	}
	if err := guard.Transition(swarmtypes.HolonSynthesizing); err != nil {
		return err
	}
	if err := guard.Transition(swarmtypes.HolonDone); err != nil {
		return err
	}
	c.Store.PutHolon(guard.Snapshot())
	c.setTaskStatus(taskID, swarmtypes.TaskCompleted)
	if c.Metrics != nil {
		c.Metrics.HolonsActive.Dec()
	}

	state := guard.Snapshot()
	env := transport.Envelope{
		Method:      "board.dissolve",
		AgentID:     state.Chair.String(),
		TimestampMs: c.Now().UnixMilli(),
	}
	if err := c.Holons.Dissolve(context.Background(), taskID, env); err != nil {
		c.Log.Warn("dissolve broadcast failed", "task_id", taskID.String(), "error", err)
	}
	return nil
}
