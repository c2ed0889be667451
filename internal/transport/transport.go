// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package transport declares the Transport Facade spec.md §6 requires:
// publish/subscribe, direct request/response, DHT put/get, and peer
// events, abstracting the P2P overlay (github.com/luxfi/p2p) behind a
// small interface in the teacher's networking/sender.Sender style.
package transport

import "context"

// Envelope is a signed message body published on a topic or sent
// directly to a peer.
type Envelope struct {
	Method      string `json:"method"`
	Params      []byte `json:"params"`
	AgentID     string `json:"agent_id"`
	TimestampMs int64  `json:"timestamp_ms"`
	Nonce       string `json:"nonce"`
	Signature   []byte `json:"signature"`
}

// PeerEvent reports a peer connectivity change.
type PeerEvent struct {
	PeerID    string
	Connected bool
}

// Transport is the facade every component depends on instead of the raw
// p2p overlay client, letting tests substitute an in-memory fake.
type Transport interface {
	Publish(ctx context.Context, topic string, env Envelope) error
	Subscribe(ctx context.Context, topic string) (<-chan Envelope, error)
	Request(ctx context.Context, peerID string, method string, params []byte) ([]byte, error)
	DHTPut(ctx context.Context, key string, value []byte) error
	DHTGet(ctx context.Context, key string) ([]byte, error)
	PeerEvents(ctx context.Context) (<-chan PeerEvent, error)
}

// TopicRegistry renders the wire topic names of spec.md §6:
// /wws/1.0.0/s/<swarm_id>/{hierarchy, election/tier1, proposals/<task_id>,
// voting/<task_id>, results/<task_id>, keepalive, board/<task_id>}.
type TopicRegistry struct {
	SwarmID string
}

func (r TopicRegistry) base() string { return "/wws/1.0.0/s/" + r.SwarmID }

func (r TopicRegistry) Hierarchy() string        { return r.base() + "/hierarchy" }
func (r TopicRegistry) ElectionTier1() string    { return r.base() + "/election/tier1" }
func (r TopicRegistry) Proposals(taskID string) string { return r.base() + "/proposals/" + taskID }
func (r TopicRegistry) Voting(taskID string) string    { return r.base() + "/voting/" + taskID }
func (r TopicRegistry) Results(taskID string) string   { return r.base() + "/results/" + taskID }
func (r TopicRegistry) Keepalive() string        { return r.base() + "/keepalive" }
func (r TopicRegistry) Board(taskID string) string { return r.base() + "/board/" + taskID }
