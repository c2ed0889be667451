package swarmid

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAgentIDFromPublicKey(t *testing.T) {
	pub := make([]byte, 32)
	for i := range pub {
		pub[i] = byte(i)
	}
	id := AgentIDFromPublicKey(pub)
	require.True(t, id.Valid())
	require.Contains(t, id.String(), "did:swarm:")
}

func TestID_RoundTripJSON(t *testing.T) {
	id := FromBytes([]byte("hello"))
	b, err := json.Marshal(id)
	require.NoError(t, err)

	var back ID
	require.NoError(t, json.Unmarshal(b, &back))
	require.Equal(t, id, back)
}

func TestID_Deterministic(t *testing.T) {
	a := FromBytes([]byte("plan-content"))
	b := FromBytes([]byte("plan-content"))
	require.Equal(t, a, b)

	c := FromBytes([]byte("different"))
	require.NotEqual(t, a, c)
}

func TestAgentID_InvalidShapes(t *testing.T) {
	require.False(t, AgentID("not-a-did").Valid())
	require.False(t, AgentID("did:swarm:short").Valid())
}
