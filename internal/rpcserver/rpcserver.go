// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package rpcserver exposes the Connector over the local JSON-RPC 2.0
// surface of spec.md §6, grounded on the teacher's pkg/go/cmd/server
// pattern: a plain net/http handler decoding/encoding with
// encoding/json, no JSON-RPC framework (none appears anywhere in the
// retrieval pack; documented stdlib exception in DESIGN.md).
package rpcserver

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/luxfi/log"

	"github.com/Good-karma-lab/Agent-Swarm-Communication-Protocol-sub002/internal/config"
	"github.com/Good-karma-lab/Agent-Swarm-Communication-Protocol-sub002/internal/connector"
	"github.com/Good-karma-lab/Agent-Swarm-Communication-Protocol-sub002/internal/identity"
	"github.com/Good-karma-lab/Agent-Swarm-Communication-Protocol-sub002/internal/replay"
	"github.com/Good-karma-lab/Agent-Swarm-Communication-Protocol-sub002/internal/swarmid"
	"github.com/Good-karma-lab/Agent-Swarm-Communication-Protocol-sub002/internal/swarmtypes"
)

// envelope is the wire shape of spec.md §6: every call to the exposed
// JSON-RPC surface carries this envelope, signed over
// {method, params, timestamp_ms, nonce} except for swarm.get_* reads
// and swarm.receive_task, which this server accepts unsigned (see
// signedMethods).
type envelope struct {
	JSONRPC     string          `json:"jsonrpc"`
	Method      string          `json:"method"`
	ID          json.RawMessage `json:"id"`
	Params      json.RawMessage `json:"params"`
	AgentID     string          `json:"agent_id,omitempty"`
	TimestampMs int64           `json:"timestamp_ms,omitempty"`
	Nonce       string          `json:"nonce,omitempty"`
	Signature   []byte          `json:"signature,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Result  interface{}     `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

// signedMethods lists the methods that mutate state and therefore
// require a valid signature, replay check and rate limit per spec.md
// §4.1; the read-only swarm.get_* methods and swarm.receive_task are
// exempted since they carry no mutation to protect against replay.
var signedMethods = map[string]bool{
	"swarm.register_agent": true,
	"swarm.propose_plan":   true,
	"swarm.submit_vote":    true,
	"swarm.submit_result":  true,
	"swarm.keepalive":      true,
	"task.inject":          true,
}

// Server adapts a connector.Connector to the JSON-RPC 2.0 envelope of
// spec.md §6, enforcing the §4.1 signature/replay/rate-limit checks and
// the §7 propagation policy (protocol violations dropped silently with a
// reputation penalty where the offending agent can be identified).
type Server struct {
	Connector *connector.Connector
	Verifier  *replay.Verifier
	Log       log.Logger
	Now       func() time.Time
}

// New constructs a Server whose replay/skew/rate-limit settings come
// from cfg (internal/config's §4.1 tunables), bucketing the replay
// window at one-tenth its size per internal/replay's own convention.
func New(c *connector.Connector, cfg *config.Config, logger log.Logger) *Server {
	bucket := cfg.ReplayWindow / 10
	if bucket <= 0 {
		bucket = time.Second
	}
	v := &replay.Verifier{
		Window:    replay.NewWindow(cfg.ReplayWindow, bucket),
		MaxSkew:   cfg.TimestampSkew,
		RateLimit: replay.NewRateLimiter(cfg.RateLimitPerSec, float64(cfg.RateLimitBurst)),
	}
	return &Server{
		Connector: c,
		Verifier:  v,
		Log:       logger,
		Now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *Server) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// ServeHTTP implements http.Handler: every call is a POST carrying one
// envelope, per spec.md §6.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var env envelope
	if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
		http.Error(w, "malformed envelope", http.StatusBadRequest)
		return
	}

	if signedMethods[env.Method] {
		if !s.authenticate(env) {
			// spec.md §7: protocol violations are dropped silently. The
			// handler returns with status 200 and an empty body, no
			// JSON-RPC envelope, so an attacker gets no oracle to refine
			// a forged signature against.
			return
		}
	}

	result, rpcErr := s.dispatch(env)
	resp := response{JSONRPC: "2.0", ID: env.ID}
	if rpcErr != nil {
		resp.Error = rpcErr
	} else {
		resp.Result = result
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// authenticate runs the §4.1 checks for a signed method, penalizing the
// agent's reputation when a specific offender can be identified. A bad
// signature from an unregistered or misreported agent_id cannot be
// attributed to anyone, so no penalty applies in that case; the call is
// simply dropped.
func (s *Server) authenticate(env envelope) bool {
	agentID := swarmid.AgentID(env.AgentID)

	var pubKey []byte
	if env.Method == "swarm.register_agent" {
		var p registerAgentParams
		if err := json.Unmarshal(env.Params, &p); err != nil {
			return false
		}
		pubKey = p.PublicKey
	} else {
		key, ok := s.Connector.PublicKeyOf(agentID)
		if !ok {
			s.Log.Warn("rpc: unregistered agent on signed method", "method", env.Method, "agent_id", env.AgentID)
			return false
		}
		pubKey = key
	}

	msg := replay.InboundMessage{
		AgentID:     env.AgentID,
		PublicKey:   pubKey,
		Method:      env.Method,
		Params:      json.RawMessage(env.Params),
		TimestampMs: env.TimestampMs,
		Nonce:       env.Nonce,
		Signature:   env.Signature,
	}
	if err := s.Verifier.Verify(msg, s.now()); err != nil {
		s.Log.Warn("rpc: protocol violation", "method", env.Method, "agent_id", env.AgentID, "error", err)
		if agentID != "" {
			s.Connector.PenalizeAgent(agentID)
		}
		return false
	}
	return true
}

func rpcErrorFor(err error) *rpcError {
	return &rpcError{Code: -32000, Message: err.Error()}
}

const errInvalidParams = -32602

// dispatch routes env to the matching Connector method, decoding params
// into the shape each method expects.
func (s *Server) dispatch(env envelope) (interface{}, *rpcError) {
	switch env.Method {
	case "swarm.register_agent":
		return s.handleRegisterAgent(env)
	case "swarm.get_status":
		return s.Connector.GetStatus(), nil
	case "swarm.receive_task":
		return s.handleReceiveTask(env)
	case "swarm.get_task":
		return s.handleGetTask(env)
	case "swarm.propose_plan":
		return s.handleProposePlan(env)
	case "swarm.submit_vote":
		return s.handleSubmitVote(env)
	case "swarm.submit_result":
		return s.handleSubmitResult(env)
	case "swarm.get_voting_state":
		return s.handleGetVotingState(env)
	case "swarm.get_board_status":
		return s.handleGetBoardStatus(env)
	case "swarm.get_deliberation":
		return s.handleGetDeliberation(env)
	case "swarm.get_ballots":
		return s.handleGetBallots(env)
	case "swarm.get_irv_rounds":
		return s.handleGetIrvRounds(env)
	case "swarm.get_network_stats":
		return s.Connector.GetNetworkStats(), nil
	case "swarm.keepalive":
		return s.handleKeepalive(env)
	case "task.inject":
		return s.handleInjectTask(env)
	default:
		return nil, &rpcError{Code: -32601, Message: "method not found"}
	}
}

type registerAgentParams struct {
	PublicKey []byte `json:"public_key"`
	PoWNonce  []byte `json:"pow_nonce"`
}

func (s *Server) handleRegisterAgent(env envelope) (interface{}, *rpcError) {
	var p registerAgentParams
	if err := json.Unmarshal(env.Params, &p); err != nil {
		return nil, &rpcError{Code: errInvalidParams, Message: "invalid params"}
	}
	agentID, err := s.Connector.RegisterAgent(p.PublicKey, p.PoWNonce)
	if err != nil {
		return nil, rpcErrorFor(err)
	}
	return map[string]string{"agent_id": agentID.String()}, nil
}

func (s *Server) handleReceiveTask(env envelope) (interface{}, *rpcError) {
	ids := s.Connector.ReceiveTask(swarmid.AgentID(env.AgentID))
	taskIDs := make([]string, 0, len(ids))
	for _, id := range ids {
		taskIDs = append(taskIDs, id.String())
	}
	return map[string]interface{}{"task_ids": taskIDs}, nil
}

type taskIDParams struct {
	TaskID swarmid.ID `json:"task_id"`
}

func decodeTaskID(raw json.RawMessage) (swarmid.ID, error) {
	var p taskIDParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return swarmid.ID{}, err
	}
	return p.TaskID, nil
}

func (s *Server) handleGetTask(env envelope) (interface{}, *rpcError) {
	taskID, err := decodeTaskID(env.Params)
	if err != nil {
		return nil, &rpcError{Code: errInvalidParams, Message: "invalid params"}
	}
	task, err := s.Connector.GetTask(taskID)
	if err != nil {
		return nil, rpcErrorFor(err)
	}
	return task, nil
}

func (s *Server) handleProposePlan(env envelope) (interface{}, *rpcError) {
	var plan swarmtypes.Plan
	if err := json.Unmarshal(env.Params, &plan); err != nil {
		return nil, &rpcError{Code: errInvalidParams, Message: "invalid params"}
	}
	if err := s.Connector.ProposePlan(plan); err != nil {
		return nil, rpcErrorFor(err)
	}
	return map[string]bool{"accepted": true}, nil
}

func (s *Server) handleSubmitVote(env envelope) (interface{}, *rpcError) {
	var ballot swarmtypes.BallotRecord
	if err := json.Unmarshal(env.Params, &ballot); err != nil {
		return nil, &rpcError{Code: errInvalidParams, Message: "invalid params"}
	}
	if err := s.Connector.SubmitVote(ballot); err != nil {
		return nil, rpcErrorFor(err)
	}
	return map[string]bool{"accepted": true}, nil
}

type submitResultParams struct {
	TaskID       swarmid.ID          `json:"task_id"`
	SubtaskIndex int                 `json:"subtask_index"`
	Artifact     swarmtypes.Artifact `json:"artifact"`
	Content      []byte              `json:"content"`
}

func (s *Server) handleSubmitResult(env envelope) (interface{}, *rpcError) {
	var p submitResultParams
	if err := json.Unmarshal(env.Params, &p); err != nil {
		return nil, &rpcError{Code: errInvalidParams, Message: "invalid params"}
	}
	accepted, reason, err := s.Connector.SubmitResult(p.TaskID, p.SubtaskIndex, swarmid.AgentID(env.AgentID), p.Artifact, p.Content)
	if err != nil {
		return nil, rpcErrorFor(err)
	}
	return map[string]interface{}{"accepted": accepted, "reason": reason}, nil
}

func (s *Server) handleGetVotingState(env envelope) (interface{}, *rpcError) {
	taskID, err := decodeTaskID(env.Params)
	if err != nil {
		return nil, &rpcError{Code: errInvalidParams, Message: "invalid params"}
	}
	state, err := s.Connector.GetVotingState(taskID)
	if err != nil {
		return nil, rpcErrorFor(err)
	}
	return state, nil
}

func (s *Server) handleGetBoardStatus(env envelope) (interface{}, *rpcError) {
	taskID, err := decodeTaskID(env.Params)
	if err != nil {
		return nil, &rpcError{Code: errInvalidParams, Message: "invalid params"}
	}
	state, err := s.Connector.GetBoardStatus(taskID)
	if err != nil {
		return nil, rpcErrorFor(err)
	}
	return state, nil
}

func (s *Server) handleGetDeliberation(env envelope) (interface{}, *rpcError) {
	taskID, err := decodeTaskID(env.Params)
	if err != nil {
		return nil, &rpcError{Code: errInvalidParams, Message: "invalid params"}
	}
	return s.Connector.GetDeliberation(taskID), nil
}

func (s *Server) handleGetBallots(env envelope) (interface{}, *rpcError) {
	taskID, err := decodeTaskID(env.Params)
	if err != nil {
		return nil, &rpcError{Code: errInvalidParams, Message: "invalid params"}
	}
	return s.Connector.GetBallots(taskID), nil
}

func (s *Server) handleGetIrvRounds(env envelope) (interface{}, *rpcError) {
	taskID, err := decodeTaskID(env.Params)
	if err != nil {
		return nil, &rpcError{Code: errInvalidParams, Message: "invalid params"}
	}
	return s.Connector.GetIrvRounds(taskID), nil
}

func (s *Server) handleKeepalive(env envelope) (interface{}, *rpcError) {
	if err := s.Connector.Keepalive(swarmid.AgentID(env.AgentID)); err != nil {
		return nil, rpcErrorFor(err)
	}
	return map[string]bool{"ok": true}, nil
}

type injectTaskParams struct {
	Task          swarmtypes.Task `json:"task"`
	LocalOverride bool            `json:"local_override"`
}

func (s *Server) handleInjectTask(env envelope) (interface{}, *rpcError) {
	var p injectTaskParams
	if err := json.Unmarshal(env.Params, &p); err != nil {
		return nil, &rpcError{Code: errInvalidParams, Message: "invalid params"}
	}
	created, err := s.Connector.InjectTask(p.Task, swarmid.AgentID(env.AgentID), p.LocalOverride)
	if err != nil {
		return nil, rpcErrorFor(err)
	}
	return created, nil
}

// ClientSign signs {method, params, timestamp_ms, nonce} with h's key,
// the same payload a conforming agent client attaches as the envelope's
// signature field before calling a method in signedMethods.
func ClientSign(h *identity.Handle, method string, params json.RawMessage, timestampMs int64, nonce string) ([]byte, error) {
	return h.Sign(identity.SignedPayload{
		Method:      method,
		Params:      params,
		TimestampMs: timestampMs,
		Nonce:       nonce,
	})
}
