// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package replay

import (
	"time"

	"github.com/Good-karma-lab/Agent-Swarm-Communication-Protocol-sub002/internal/identity"
	"github.com/Good-karma-lab/Agent-Swarm-Communication-Protocol-sub002/internal/swarmerr"
)

// InboundMessage is the envelope every inbound RPC/transport message
// carries per spec.md §4.1: {agent_id, timestamp_ms, nonce, signature}
// plus the signed payload fields.
type InboundMessage struct {
	AgentID     string
	PublicKey   []byte
	Method      string
	Params      interface{}
	TimestampMs int64
	Nonce       string
	Signature   []byte
}

// Verifier runs the four checks of spec.md §4.1 in order, short-circuiting
// on the first failure: timestamp skew, replay window, signature, and
// (for registration calls only) proof of work.
type Verifier struct {
	Window    *Window
	MaxSkew   time.Duration
	RateLimit *RateLimiter
}

// NewVerifier constructs a Verifier with the spec's default 5 minute skew
// and 10 minute / 1 minute-bucket replay window.
func NewVerifier() *Verifier {
	return &Verifier{
		Window:  NewWindow(10*time.Minute, time.Minute),
		MaxSkew: 5 * time.Minute,
	}
}

// Verify checks timestamp skew, replay, signature (and rate limit, if
// configured) for msg. It does not check PoW — call VerifyRegistration
// for registration calls.
func (v *Verifier) Verify(msg InboundMessage, now time.Time) error {
	if v.RateLimit != nil && !v.RateLimit.Allow(msg.AgentID, now) {
		return swarmerr.ErrRateLimitExceeded
	}

	ok, stale, future := CheckTimestamp(msg.TimestampMs, now, v.MaxSkew)
	if !ok {
		if stale {
			return swarmerr.ErrStaleTimestamp
		}
		if future {
			return swarmerr.ErrFutureTimestamp
		}
	}

	if v.Window.CheckAndRecord(msg.AgentID, msg.Nonce, now) {
		return swarmerr.ErrReplayDetected
	}

	valid, err := identity.Verify(msg.PublicKey, identity.SignedPayload{
		Method:      msg.Method,
		Params:      msg.Params,
		TimestampMs: msg.TimestampMs,
		Nonce:       msg.Nonce,
	}, msg.Signature)
	if err != nil || !valid {
		return swarmerr.ErrInvalidSignature
	}
	return nil
}

// VerifyRegistration additionally checks the proof-of-work solution
// attached to a swarm.register_agent call.
func (v *Verifier) VerifyRegistration(msg InboundMessage, now time.Time, agentIDBytes, powNonce []byte, swarmSize int) error {
	if err := v.Verify(msg, now); err != nil {
		return err
	}
	required := identity.RequiredZeroBits(swarmSize)
	if !identity.VerifyPoW(agentIDBytes, powNonce, required) {
		return swarmerr.ErrInvalidPoW
	}
	return nil
}
