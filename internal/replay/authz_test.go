package replay

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Good-karma-lab/Agent-Swarm-Communication-Protocol-sub002/internal/identity"
	"github.com/Good-karma-lab/Agent-Swarm-Communication-Protocol-sub002/internal/swarmerr"
)

func newTestHandle(t *testing.T) *identity.Handle {
	t.Helper()
	path := filepath.Join(t.TempDir(), "agent.key")
	h, err := identity.CreateKeypair(path, 0o600)
	require.NoError(t, err)
	return h
}

func sign(t *testing.T, h *identity.Handle, method string, params interface{}, ts int64, nonce string) []byte {
	t.Helper()
	sig, err := h.Sign(identity.SignedPayload{Method: method, Params: params, TimestampMs: ts, Nonce: nonce})
	require.NoError(t, err)
	return sig
}

func TestVerifier_AcceptsValidMessage(t *testing.T) {
	h := newTestHandle(t)
	v := NewVerifier()
	now := time.Now()
	sig := sign(t, h, "swarm.keepalive", nil, now.UnixMilli(), "n1")

	err := v.Verify(InboundMessage{
		AgentID:     h.AgentID().String(),
		PublicKey:   h.PublicKey(),
		Method:      "swarm.keepalive",
		Params:      nil,
		TimestampMs: now.UnixMilli(),
		Nonce:       "n1",
		Signature:   sig,
	}, now)
	require.NoError(t, err)
}

func TestVerifier_RejectsReplay(t *testing.T) {
	h := newTestHandle(t)
	v := NewVerifier()
	now := time.Now()
	sig := sign(t, h, "swarm.keepalive", nil, now.UnixMilli(), "n1")
	msg := InboundMessage{
		AgentID: h.AgentID().String(), PublicKey: h.PublicKey(), Method: "swarm.keepalive",
		TimestampMs: now.UnixMilli(), Nonce: "n1", Signature: sig,
	}
	require.NoError(t, v.Verify(msg, now))
	require.ErrorIs(t, v.Verify(msg, now.Add(time.Second)), swarmerr.ErrReplayDetected)
}

func TestVerifier_RejectsStaleTimestamp(t *testing.T) {
	h := newTestHandle(t)
	v := NewVerifier()
	now := time.Now()
	ts := now.Add(-10 * time.Minute).UnixMilli()
	sig := sign(t, h, "swarm.keepalive", nil, ts, "n1")
	err := v.Verify(InboundMessage{
		AgentID: h.AgentID().String(), PublicKey: h.PublicKey(), Method: "swarm.keepalive",
		TimestampMs: ts, Nonce: "n1", Signature: sig,
	}, now)
	require.ErrorIs(t, err, swarmerr.ErrStaleTimestamp)
}

func TestVerifier_RejectsBadSignature(t *testing.T) {
	h := newTestHandle(t)
	v := NewVerifier()
	now := time.Now()
	sig := sign(t, h, "swarm.keepalive", nil, now.UnixMilli(), "n1")
	sig[0] ^= 0xFF
	err := v.Verify(InboundMessage{
		AgentID: h.AgentID().String(), PublicKey: h.PublicKey(), Method: "swarm.keepalive",
		TimestampMs: now.UnixMilli(), Nonce: "n1", Signature: sig,
	}, now)
	require.ErrorIs(t, err, swarmerr.ErrInvalidSignature)
}

func TestVerifier_RegistrationRequiresPoW(t *testing.T) {
	h := newTestHandle(t)
	v := NewVerifier()
	now := time.Now()
	sig := sign(t, h, "swarm.register_agent", nil, now.UnixMilli(), "n1")
	msg := InboundMessage{
		AgentID: h.AgentID().String(), PublicKey: h.PublicKey(), Method: "swarm.register_agent",
		TimestampMs: now.UnixMilli(), Nonce: "n1", Signature: sig,
	}
	agentIDBytes := []byte(h.AgentID().String())
	nonce, ok := identity.SolvePoW(agentIDBytes, 8, 1<<20)
	require.True(t, ok)
	require.NoError(t, v.VerifyRegistration(msg, now, agentIDBytes, nonce, 50))

	msg.Nonce = "n2"
	sig2 := sign(t, h, "swarm.register_agent", nil, now.UnixMilli(), "n2")
	msg.Signature = sig2
	err := v.VerifyRegistration(msg, now, agentIDBytes, []byte{0, 0, 0, 0, 0, 0, 0, 0}, 50)
	require.ErrorIs(t, err, swarmerr.ErrInvalidPoW)
}

func TestCreateKeypair_PermissionsChecked(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agent.key")
	_, err := identity.CreateKeypair(path, 0o644)
	require.NoError(t, err)
	_, err = identity.LoadKeypair(path)
	require.Error(t, err, "overly permissive key file must be rejected")
	require.NoError(t, os.Chmod(path, 0o600))
	_, err = identity.LoadKeypair(path)
	require.NoError(t, err)
}
