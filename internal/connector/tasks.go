// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package connector

import (
	"github.com/Good-karma-lab/Agent-Swarm-Communication-Protocol-sub002/internal/swarmerr"
	"github.com/Good-karma-lab/Agent-Swarm-Communication-Protocol-sub002/internal/swarmid"
	"github.com/Good-karma-lab/Agent-Swarm-Communication-Protocol-sub002/internal/swarmtypes"
)

// baseReputationThreshold is the effective-score floor task.inject
// requires at complexity 0, scaled linearly by estimated_complexity per
// the uniform-check resolution of spec.md §9 Open Question 3.
const baseReputationThreshold = 5

// reputationThresholdFor scales baseReputationThreshold by a task's
// estimated complexity: a trivial task (complexity 0) needs only the
// base floor, a maximally complex one needs double.
func reputationThresholdFor(complexity float64) int64 {
	return int64(float64(baseReputationThreshold) * (1 + complexity))
}

// InjectTask handles task.inject: operator-gated root task injection,
// requiring the injector's effective reputation to clear a
// complexity-scaled threshold unless localOverride is set (the bootstrap
// escape hatch spec.md §9 anticipates for agents with no track record
// yet).
func (c *Connector) InjectTask(task swarmtypes.Task, injector swarmid.AgentID, localOverride bool) (swarmtypes.Task, error) {
	if !localOverride {
		threshold := reputationThresholdFor(task.EstimatedComplexity)
		if c.reputationScore(injector) < threshold {
			return swarmtypes.Task{}, swarmerr.ErrInsufficientReputation
		}
	}

	c.mu.Lock()
	now := c.Now()
	if task.TaskID.IsZero() {
		task.TaskID = swarmid.FromBytes([]byte(task.Description + now.String()))
	}
	task.SchemaVersion = swarmtypes.SchemaVersion
	task.Status = swarmtypes.TaskPending
	task.Epoch = c.epoch
	task.CreatedAt = now
	c.tasks[task.TaskID] = &task
	c.mu.Unlock()

	if err := c.StartBoardFormation(task.TaskID, injector); err != nil {
		return task, err
	}
	return task, nil
}

// ReceiveTask answers swarm.receive_task: the poll-style assignment
// queue an agent drains for work handed to it (leaf subtasks or
// sub-holon chair seats).
func (c *Connector) ReceiveTask(agentID swarmid.AgentID) []swarmid.ID {
	c.mu.Lock()
	defer c.mu.Unlock()
	pending := c.assignments[agentID]
	delete(c.assignments, agentID)
	return pending
}

// GetTask answers swarm.get_task.
func (c *Connector) GetTask(taskID swarmid.ID) (swarmtypes.Task, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, ok := c.tasks[taskID]
	if !ok {
		return swarmtypes.Task{}, swarmerr.ErrTaskNotFound
	}
	return *t, nil
}

func (c *Connector) assign(agentID swarmid.AgentID, taskID swarmid.ID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.assignments[agentID] = append(c.assignments[agentID], taskID)
}

func (c *Connector) setTaskStatus(taskID swarmid.ID, status swarmtypes.TaskStatus) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if t, ok := c.tasks[taskID]; ok {
		t.Status = status
	}
}

func (c *Connector) childTask(parent *swarmtypes.Task, subtask swarmtypes.PlanSubtask, depth int) swarmtypes.Task {
	child := swarmtypes.Task{
		SchemaVersion:        swarmtypes.SchemaVersion,
		ParentTaskID:         &parent.TaskID,
		Description:          subtask.Description,
		Status:               swarmtypes.TaskPending,
		TierLevel:            depth,
		Epoch:                parent.Epoch,
		CapabilitiesRequired: subtask.RequiredCapabilities,
		EstimatedComplexity:  subtask.EstimatedComplexity,
		CreatedAt:            c.Now(),
	}
	child.TaskID = swarmid.FromBytes([]byte(parent.TaskID.String() + "/" + subtask.Description))
	c.mu.Lock()
	c.tasks[child.TaskID] = &child
	c.mu.Unlock()
	return child
}
