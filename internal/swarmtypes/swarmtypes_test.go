package swarmtypes

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Good-karma-lab/Agent-Swarm-Communication-Protocol-sub002/internal/swarmid"
)

func TestHolonStatus_OrderIsMonotonic(t *testing.T) {
	seq := []HolonStatus{HolonForming, HolonDeliberating, HolonVoting, HolonExecuting, HolonSynthesizing, HolonDone}
	for i := 1; i < len(seq); i++ {
		require.Greater(t, Order(seq[i]), Order(seq[i-1]))
	}
}

func TestPlan_HashExcludesPlanID(t *testing.T) {
	p1 := Plan{SchemaVersion: 1, PlanID: swarmid.FromBytes([]byte("a")), TaskID: swarmid.FromBytes([]byte("t"))}
	p2 := p1
	p2.PlanID = swarmid.FromBytes([]byte("different-plan-id"))

	h1, err := p1.Hash()
	require.NoError(t, err)
	h2, err := p2.Hash()
	require.NoError(t, err)
	require.Equal(t, h1, h2, "plan hash must not depend on plan_id")
}

func TestPlan_HashChangesWithContent(t *testing.T) {
	p1 := Plan{SchemaVersion: 1, Rationale: "a"}
	p2 := Plan{SchemaVersion: 1, Rationale: "b"}
	h1, _ := p1.Hash()
	h2, _ := p2.Hash()
	require.NotEqual(t, h1, h2)
}

func TestArtifact_VerifyContentCID(t *testing.T) {
	content := []byte("artifact bytes")
	a := Artifact{ContentCID: ContentCID(content)}
	require.True(t, a.VerifyContentCID(content))
	require.False(t, a.VerifyContentCID([]byte("tampered")))
}

func TestReputationRecord_EffectiveScoreNeverExceedsPeak(t *testing.T) {
	now := time.Now()
	r := &ReputationRecord{}
	for i := 0; i < 10; i++ {
		r.RecordPositive(now)
	}
	require.LessOrEqual(t, r.EffectiveScore(now), int64(r.Peak))
}

func TestReputationRecord_PeakMonotone(t *testing.T) {
	now := time.Now()
	r := &ReputationRecord{}
	r.RecordPositive(now)
	r.RecordPositive(now)
	peakAfterTwo := r.Peak
	r.RecordNegative(now)
	require.Equal(t, peakAfterTwo, r.Peak, "peak must not shrink on a negative event")
}
