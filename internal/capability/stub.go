// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package capability

import (
	"context"
	"fmt"
	"time"

	"github.com/Good-karma-lab/Agent-Swarm-Communication-Protocol-sub002/internal/swarmid"
	"github.com/Good-karma-lab/Agent-Swarm-Communication-Protocol-sub002/internal/swarmtypes"
)

// StubPlanGenerator produces a single-subtask deterministic plan,
// useful for integration tests and bootstrap without a live LLM runtime.
type StubPlanGenerator struct {
	Proposer swarmid.AgentID
}

func (s StubPlanGenerator) Generate(_ context.Context, tc TaskContext) (swarmtypes.Plan, error) {
	p := swarmtypes.Plan{
		SchemaVersion: swarmtypes.SchemaVersion,
		TaskID:        tc.Task.TaskID,
		Proposer:      s.Proposer,
		Epoch:         tc.Epoch,
		Subtasks: []swarmtypes.PlanSubtask{
			{Index: 0, Description: fmt.Sprintf("execute %s", tc.Task.Description), EstimatedComplexity: tc.Task.EstimatedComplexity},
		},
		Rationale:            "stub single-step decomposition",
		EstimatedParallelism: 1,
		CreatedAt:            time.Now().UTC(),
	}
	h, err := p.Hash()
	if err != nil {
		return swarmtypes.Plan{}, err
	}
	p.PlanID = h
	return p, nil
}

// StubCritic scores every plan at a fixed midpoint, standard role only;
// the adversarial role knocks 0.2 off feasibility/completeness to
// reflect its flaw-seeking posture without requiring an LLM.
type StubCritic struct{}

func (StubCritic) Critique(_ context.Context, plans []swarmtypes.Plan, role CriticRole) (map[swarmid.ID]swarmtypes.CriticScore, string, error) {
	out := make(map[swarmid.ID]swarmtypes.CriticScore, len(plans))
	penalty := 0.0
	if role == CriticAdversarial {
		penalty = 0.2
	}
	for _, p := range plans {
		out[p.PlanID] = swarmtypes.CriticScore{
			Feasibility:  0.7 - penalty,
			Parallelism:  0.5,
			Completeness: 0.7 - penalty,
			Risk:         0.3 + penalty,
		}
	}
	return out, "stub critique", nil
}

// StubResultValidator accepts any non-empty artifact.
type StubResultValidator struct{}

func (StubResultValidator) Judge(_ context.Context, _ swarmtypes.Task, artifactBytes []byte) (bool, string, error) {
	if len(artifactBytes) == 0 {
		return false, "empty artifact", nil
	}
	return true, "", nil
}
