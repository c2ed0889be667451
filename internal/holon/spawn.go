// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package holon

import "github.com/Good-karma-lab/Agent-Swarm-Communication-Protocol-sub002/internal/swarmid"

// MaxDepth bounds recursive sub-holon nesting, per spec.md §3/§4.4.
const MaxDepth = 10

// SpawnDecision is the outcome of deciding what to do with one subtask
// of a winning plan, per spec.md §4.4.
type SpawnDecision int

const (
	// AssignLeaf executes the subtask directly as a leaf task.
	AssignLeaf SpawnDecision = iota
	// SpawnSubHolon recurses: the assigned member becomes chair of a new
	// sub-holon at depth+1.
	SpawnSubHolon
)

// DecideSpawn implements the recursive sub-holon spawning rule:
//   - complexity > 0.4 AND depth < MAX_DEPTH AND clusterSize >= 3 -> spawn
//   - complexity < 0.1 OR clusterSize < 3 OR depth limit reached -> leaf
//
// Complexities in [0.1, 0.4] that don't meet the spawn conditions (e.g.
// depth exhausted) also fall through to AssignLeaf — the spec's leaf
// condition is deliberately the logical complement of its spawn
// condition's structural gates.
func DecideSpawn(estimatedComplexity float64, currentDepth int, localClusterSize int) SpawnDecision {
	if estimatedComplexity > 0.4 && currentDepth < MaxDepth && localClusterSize >= 3 {
		return SpawnSubHolon
	}
	return AssignLeaf
}

// SubHolonSeed is the minimal information needed to start a sub-holon,
// returned by the engine when DecideSpawn yields SpawnSubHolon.
type SubHolonSeed struct {
	ChairCandidate swarmid.AgentID
	Depth          int
	ParentHolon    swarmid.ID
}
