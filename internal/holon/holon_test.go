package holon

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Good-karma-lab/Agent-Swarm-Communication-Protocol-sub002/internal/swarmid"
	"github.com/Good-karma-lab/Agent-Swarm-Communication-Protocol-sub002/internal/swarmtypes"
)

func agent(s string) swarmid.AgentID { return swarmid.AgentIDFromPublicKey([]byte(s)) }

func TestRankCandidates_TiebreakOrder(t *testing.T) {
	candidates := []Candidate{
		{AgentID: agent("busy-high-rep"), ActiveTasks: 5, Reputation: 100},
		{AgentID: agent("idle-low-affinity"), ActiveTasks: 1, AffinityScores: map[string]float64{"x": 0.2}, Reputation: 10},
		{AgentID: agent("idle-high-affinity"), ActiveTasks: 1, AffinityScores: map[string]float64{"x": 0.9}, Reputation: 10},
	}
	ranked := RankCandidates(candidates, []string{"x"})
	require.Equal(t, agent("idle-high-affinity"), ranked[0].AgentID)
	require.Equal(t, agent("idle-low-affinity"), ranked[1].AgentID)
	require.Equal(t, agent("busy-high-rep"), ranked[2].AgentID)
}

func TestForm_FallbackLadder(t *testing.T) {
	chair := agent("chair")
	taskID := swarmid.FromBytes([]byte("t1"))

	solo0 := Form(chair, taskID, 1, nil, nil, 5)
	require.True(t, solo0.Solo)
	require.Empty(t, solo0.Members)

	solo1 := Form(chair, taskID, 1, []Candidate{{AgentID: agent("m1")}}, nil, 5)
	require.True(t, solo1.Solo)
	require.Len(t, solo1.Members, 1)

	peer := Form(chair, taskID, 1, []Candidate{{AgentID: agent("m1")}, {AgentID: agent("m2")}}, nil, 5)
	require.True(t, peer.PeerCollaboration)
	require.Nil(t, peer.AdversarialCritic)

	full := Form(chair, taskID, 1, []Candidate{
		{AgentID: agent("m1")}, {AgentID: agent("m2")}, {AgentID: agent("m3")}, {AgentID: agent("m4")}, {AgentID: agent("m5")},
	}, nil, 5)
	require.NotNil(t, full.AdversarialCritic)
	require.NotEqual(t, chair, *full.AdversarialCritic)
	require.Contains(t, full.Members, *full.AdversarialCritic)
}

func TestDrawAdversarialCritic_Reproducible(t *testing.T) {
	taskID := swarmid.FromBytes([]byte("t1"))
	members := []swarmid.AgentID{agent("chair"), agent("m1"), agent("m2"), agent("m3")}
	chair := agent("chair")

	c1 := DrawAdversarialCritic(taskID, 7, members, chair)
	c2 := DrawAdversarialCritic(taskID, 7, members, chair)
	require.Equal(t, c1, c2)
	require.NotEqual(t, chair, c1)

	c3 := DrawAdversarialCritic(taskID, 8, members, chair)
	// not asserting inequality (could coincidentally match) — just that
	// it's deterministic and a valid non-chair member.
	require.Contains(t, members, c3)
}

func TestDecideSpawn_BoundaryBehaviors(t *testing.T) {
	require.Equal(t, SpawnSubHolon, DecideSpawn(0.5, 0, 3))
	require.Equal(t, AssignLeaf, DecideSpawn(0.05, 0, 3))
	require.Equal(t, AssignLeaf, DecideSpawn(0.5, MaxDepth, 3), "depth limit suppresses spawn")
	require.Equal(t, AssignLeaf, DecideSpawn(0.5, 0, 2), "cluster size < 3 suppresses spawn")
}

func TestStateGuard_ForwardOnlyTransitions(t *testing.T) {
	g := NewStateGuard(&swarmtypes.HolonState{Status: swarmtypes.HolonForming})
	require.NoError(t, g.Transition(swarmtypes.HolonDeliberating))
	require.NoError(t, g.Transition(swarmtypes.HolonVoting))
	err := g.Transition(swarmtypes.HolonDeliberating)
	require.Error(t, err)
	require.NoError(t, g.Transition(swarmtypes.HolonExecuting))
	require.NoError(t, g.Transition(swarmtypes.HolonSynthesizing))
	require.NoError(t, g.Transition(swarmtypes.HolonDone))
}

func TestStateGuard_FormingDoneFallback(t *testing.T) {
	g := NewStateGuard(&swarmtypes.HolonState{Status: swarmtypes.HolonForming})
	require.NoError(t, g.Transition(swarmtypes.HolonDone))
}
