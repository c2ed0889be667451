// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package connector

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Good-karma-lab/Agent-Swarm-Communication-Protocol-sub002/internal/holon"
	"github.com/Good-karma-lab/Agent-Swarm-Communication-Protocol-sub002/internal/rfp"
	"github.com/Good-karma-lab/Agent-Swarm-Communication-Protocol-sub002/internal/swarmid"
	"github.com/Good-karma-lab/Agent-Swarm-Communication-Protocol-sub002/internal/swarmtypes"
	"github.com/Good-karma-lab/Agent-Swarm-Communication-Protocol-sub002/internal/transport"
)

// boardAccept is the wire shape of board.accept, per spec.md §4.4.
type boardAccept struct {
	TaskID         string             `json:"task_id"`
	AgentID        string             `json:"agent_id"`
	ActiveTasks    int                `json:"active_tasks"`
	Capabilities   []string           `json:"capabilities"`
	AffinityScores map[string]float64 `json:"affinity_scores"`
}

// StartBoardFormation runs the two-RTT board-formation exchange for
// taskID with chair presiding, asynchronously (the 5 s invite window is
// a suspension point per spec.md §5, never blocking the RPC caller).
// Once formed, it starts the task's RFP Coordinator and transitions the
// HolonState Forming -> Deliberating.
func (c *Connector) StartBoardFormation(taskID swarmid.ID, chair swarmid.AgentID) error {
	c.mu.Lock()
	task, ok := c.tasks[taskID]
	c.mu.Unlock()
	if !ok {
		return fmt.Errorf("connector: start board formation: unknown task %s", taskID)
	}

	guard := c.Holons.CreateHolon(taskID, chair, task.TierLevel, task.ParentTaskID, task.EstimatedComplexity)
	c.Store.PutHolon(guard.Snapshot())
	c.setTaskStatus(taskID, swarmtypes.TaskProposalPhase)

	former := &holon.Former{Transport: c.Transport, Topics: c.Topics, Log: c.Log, Now: c.Now}
	invite := holon.Invite{
		TaskID:               taskID,
		TaskDigest:           swarmid.FromBytes([]byte(task.Description)),
		ComplexityEstimate:   task.EstimatedComplexity,
		Depth:                task.TierLevel,
		RequiredCapabilities: task.CapabilitiesRequired,
		Capacity:             c.boardCapacity(),
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), holon.InviteWindow+holon.InviteWindow)
		defer cancel()
		result, err := former.RunFormation(ctx, chair, taskID, task.Epoch, invite, c.decodeAcceptEnvelope)
		if err != nil {
			c.Log.Warn("board formation failed", "task_id", taskID.String(), "error", err)
			return
		}
		c.completeFormation(taskID, guard, result)
	}()
	return nil
}

func (c *Connector) boardCapacity() int {
	if c.Config != nil && c.Config.SwarmSize > 0 {
		return c.Config.SwarmSize
	}
	return 5
}

func (c *Connector) completeFormation(taskID swarmid.ID, guard *holon.StateGuard, result holon.FormationResult) {
	fellBack := len(result.Members) == 0 && guard.Snapshot().Chair == ""
	if err := c.Holons.ApplyFormation(guard, result, fellBack); err != nil {
		c.Log.Warn("apply formation", "task_id", taskID.String(), "error", err)
		return
	}
	c.Store.PutHolon(guard.Snapshot())
	if c.Metrics != nil {
		c.Metrics.HolonsFormed.Inc()
		c.Metrics.HolonsActive.Inc()
	}
	if fellBack {
		c.setTaskStatus(taskID, swarmtypes.TaskFailed)
		return
	}

	snap := guard.Snapshot()
	coord := rfp.NewCoordinator(taskID, snap.Members, c.Log)
	c.mu.Lock()
	c.rounds[taskID] = &taskRound{
		coordinator:  coord,
		pendingPlans: make(map[swarmid.AgentID]swarmtypes.Plan),
		planProposer: make(map[swarmid.ID]swarmid.AgentID),
		votesCast:    make(map[swarmid.AgentID]struct{}),
		subtaskOwner: make(map[int]swarmid.AgentID),
		retries:      make(map[int]int),
	}
	c.mu.Unlock()
	for _, m := range snap.Members {
		c.assign(m, taskID)
	}
	if c.Metrics != nil {
		c.Metrics.RFPRoundsStarted.WithLabelValues(string(rfp.CommitPhase)).Inc()
	}
}

// decodeAcceptEnvelope turns a transport.Envelope's JSON params into a
// holon.Candidate, filling in reputation from this Connector's records
// since an accept message does not itself carry it.
func (c *Connector) decodeAcceptEnvelope(env transport.Envelope) (holon.Candidate, bool) {
	var a boardAccept
	if err := json.Unmarshal(env.Params, &a); err != nil {
		return holon.Candidate{}, false
	}
	agentID := swarmid.AgentID(a.AgentID)
	return holon.Candidate{
		AgentID:        agentID,
		ActiveTasks:    a.ActiveTasks,
		Capabilities:   a.Capabilities,
		AffinityScores: a.AffinityScores,
		Reputation:     c.reputationScore(agentID),
	}, true
}
