package identity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRequiredZeroBits_Tiers(t *testing.T) {
	require.Equal(t, 12, RequiredZeroBits(0))
	require.Equal(t, 12, RequiredZeroBits(99))
	require.Equal(t, 14, RequiredZeroBits(100))
	require.Equal(t, 14, RequiredZeroBits(999))
	require.Equal(t, 16, RequiredZeroBits(1000))
	require.Equal(t, 16, RequiredZeroBits(9999))
	require.Equal(t, 18, RequiredZeroBits(10000))
	require.Equal(t, 18, RequiredZeroBits(50000))
}

func TestSolveAndVerifyPoW(t *testing.T) {
	agentID := []byte("did:swarm:deadbeef")
	nonce, ok := SolvePoW(agentID, 8, 1<<20)
	require.True(t, ok)
	require.True(t, VerifyPoW(agentID, nonce, 8))
	require.False(t, VerifyPoW(agentID, nonce, 40))
}
