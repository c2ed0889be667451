// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rpcserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/luxfi/database/memdb"
	"github.com/luxfi/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/Good-karma-lab/Agent-Swarm-Communication-Protocol-sub002/internal/capability"
	"github.com/Good-karma-lab/Agent-Swarm-Communication-Protocol-sub002/internal/config"
	"github.com/Good-karma-lab/Agent-Swarm-Communication-Protocol-sub002/internal/connector"
	"github.com/Good-karma-lab/Agent-Swarm-Communication-Protocol-sub002/internal/identity"
	"github.com/Good-karma-lab/Agent-Swarm-Communication-Protocol-sub002/internal/metrics"
	"github.com/Good-karma-lab/Agent-Swarm-Communication-Protocol-sub002/internal/store"
	"github.com/Good-karma-lab/Agent-Swarm-Communication-Protocol-sub002/internal/swarmid"
	"github.com/Good-karma-lab/Agent-Swarm-Communication-Protocol-sub002/internal/transport"
)

func newTestServer(t *testing.T) (*Server, *identity.Handle) {
	t.Helper()
	dir := t.TempDir()
	chair, err := identity.CreateKeypair(dir+"/chair.seed", 0o600)
	require.NoError(t, err)

	cfg := config.Default()
	cfg.SwarmID = "test-swarm"
	cfg.SwarmSize = 1
	cfg.SenateSeatCount = 0

	tr := transport.NewMemory()
	st := store.New(memdb.New(), log.NewNoOpLogger())
	arts, err := store.NewArtifactStore(dir + "/artifacts")
	require.NoError(t, err)
	m := metrics.New(prometheus.NewRegistry())

	caps := connector.Capabilities{
		PlanGen:  capability.StubPlanGenerator{Proposer: chair.AgentID()},
		Critic:   capability.StubCritic{},
		Validate: capability.StubResultValidator{},
	}
	c := connector.New(chair, cfg, tr, st, arts, m, log.NewNoOpLogger(), caps)
	return New(c, cfg, log.NewNoOpLogger()), chair
}

type testEnvelope struct {
	JSONRPC     string      `json:"jsonrpc"`
	Method      string      `json:"method"`
	ID          string      `json:"id"`
	Params      interface{} `json:"params"`
	AgentID     string      `json:"agent_id,omitempty"`
	TimestampMs int64       `json:"timestamp_ms,omitempty"`
	Nonce       string      `json:"nonce,omitempty"`
	Signature   []byte      `json:"signature,omitempty"`
}

func signedCall(t *testing.T, s *Server, h *identity.Handle, method string, params interface{}, nonce string) *httptest.ResponseRecorder {
	t.Helper()
	paramsJSON, err := json.Marshal(params)
	require.NoError(t, err)
	ts := time.Now().UTC().UnixMilli()

	sig, err := ClientSign(h, method, paramsJSON, ts, nonce)
	require.NoError(t, err)

	env := testEnvelope{
		JSONRPC:     "2.0",
		Method:      method,
		ID:          "1",
		Params:      json.RawMessage(paramsJSON),
		AgentID:     h.AgentID().String(),
		TimestampMs: ts,
		Nonce:       nonce,
		Signature:   sig,
	}
	return doCall(t, s, env)
}

func doCall(t *testing.T, s *Server, env interface{}) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(env)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestRegisterAgent_SignedAndPoWValid_Succeeds(t *testing.T) {
	s, _ := newTestServer(t)

	agent, err := identity.CreateKeypair(t.TempDir()+"/agent.seed", 0o600)
	require.NoError(t, err)
	agentID := agent.AgentID()

	required := identity.RequiredZeroBits(1)
	nonce, ok := identity.SolvePoW([]byte(agentID), required, 1_000_000)
	require.True(t, ok)

	params := registerAgentParams{PublicKey: agent.PublicKey(), PoWNonce: nonce}
	rec := signedCall(t, s, agent, "swarm.register_agent", params, "n1")

	require.Equal(t, http.StatusOK, rec.Code)
	var resp response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Nil(t, resp.Error)
}

func TestRegisterAgent_UnsignedCall_DroppedSilently(t *testing.T) {
	s, _ := newTestServer(t)
	agent, err := identity.CreateKeypair(t.TempDir()+"/agent.seed", 0o600)
	require.NoError(t, err)

	env := testEnvelope{
		JSONRPC: "2.0",
		Method:  "swarm.register_agent",
		ID:      "1",
		Params:  registerAgentParams{PublicKey: agent.PublicKey(), PoWNonce: []byte{0}},
		AgentID: agent.AgentID().String(),
		// No signature, no timestamp, no nonce: a protocol violation.
	}
	rec := doCall(t, s, env)

	// Dropped silently per spec.md §7: the handler returns with no body,
	// not a JSON-RPC error response an attacker could use as an oracle.
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, rec.Body.Bytes())
}

func TestRegisterAgent_ReplayedNonce_SecondCallDropped(t *testing.T) {
	s, _ := newTestServer(t)
	agent, err := identity.CreateKeypair(t.TempDir()+"/agent.seed", 0o600)
	require.NoError(t, err)
	agentID := agent.AgentID()
	required := identity.RequiredZeroBits(1)
	nonce, ok := identity.SolvePoW([]byte(agentID), required, 1_000_000)
	require.True(t, ok)
	params := registerAgentParams{PublicKey: agent.PublicKey(), PoWNonce: nonce}

	first := signedCall(t, s, agent, "swarm.register_agent", params, "replay-nonce")
	require.NotEmpty(t, first.Body.Bytes())

	second := signedCall(t, s, agent, "swarm.register_agent", params, "replay-nonce")
	require.Empty(t, second.Body.Bytes())
}

func TestGetStatus_UnsignedReadSucceeds(t *testing.T) {
	s, _ := newTestServer(t)
	env := testEnvelope{JSONRPC: "2.0", Method: "swarm.get_status", ID: "7"}
	rec := doCall(t, s, env)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Nil(t, resp.Error)
	require.NotNil(t, resp.Result)
}

func TestDispatch_UnknownMethod_ReturnsMethodNotFound(t *testing.T) {
	s, _ := newTestServer(t)
	env := testEnvelope{JSONRPC: "2.0", Method: "swarm.nonexistent", ID: "9"}
	rec := doCall(t, s, env)

	var resp response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	require.Equal(t, -32601, resp.Error.Code)
}

func TestGetTask_UnknownTask_ReturnsRPCError(t *testing.T) {
	s, _ := newTestServer(t)
	env := testEnvelope{
		JSONRPC: "2.0",
		Method:  "swarm.get_task",
		ID:      "3",
		Params:  map[string]string{"task_id": swarmid.Empty.String()},
	}
	rec := doCall(t, s, env)

	var resp response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
}
