// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package transport

import (
	"context"
	"encoding/json"
	"fmt"

	p2p "github.com/luxfi/p2p"
)

// Host is the subset of github.com/luxfi/p2p's client surface this
// facade drives: topic-scoped pub/sub, a DHT, and direct peer dialing.
// Declared locally so the facade depends on a narrow interface rather
// than the full p2p.Host type, in the teacher's networking/sender.Sender
// style (one small interface per concern).
type Host interface {
	PubSub() p2p.PubSub
	DHT() p2p.DHT
	Dial(ctx context.Context, peerID string) (p2p.Stream, error)
}

// P2P adapts a Host into the Transport facade. Peer authentication is
// already handled by the overlay per spec.md §1 — this adapter only
// serializes/deserializes envelopes and routes them.
type P2P struct {
	host Host
}

// NewP2P wraps an already-bootstrapped p2p host.
func NewP2P(host Host) *P2P {
	return &P2P{host: host}
}

func (t *P2P) Publish(ctx context.Context, topic string, env Envelope) error {
	b, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("transport: marshal envelope: %w", err)
	}
	return t.host.PubSub().Publish(ctx, topic, b)
}

func (t *P2P) Subscribe(ctx context.Context, topic string) (<-chan Envelope, error) {
	raw, err := t.host.PubSub().Subscribe(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrTopicSubscribeFailed, topic, err)
	}
	out := make(chan Envelope, 64)
	go func() {
		defer close(out)
		for msg := range raw {
			var env Envelope
			if err := json.Unmarshal(msg, &env); err != nil {
				continue
			}
			select {
			case out <- env:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func (t *P2P) Request(ctx context.Context, peerID, method string, params []byte) ([]byte, error) {
	stream, err := t.host.Dial(ctx, peerID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrPeerUnreachable, peerID, err)
	}
	defer stream.Close()
	req := struct {
		Method string          `json:"method"`
		Params json.RawMessage `json:"params"`
	}{Method: method, Params: params}
	reqBytes, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	if _, err := stream.Write(reqBytes); err != nil {
		return nil, fmt.Errorf("%w: write: %v", ErrPeerUnreachable, err)
	}
	return stream.ReadResponse(ctx)
}

func (t *P2P) DHTPut(ctx context.Context, key string, value []byte) error {
	return t.host.DHT().Put(ctx, key, value)
}

func (t *P2P) DHTGet(ctx context.Context, key string) ([]byte, error) {
	v, err := t.host.DHT().Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDHTKeyNotFound, key, err)
	}
	return v, nil
}

func (t *P2P) PeerEvents(ctx context.Context) (<-chan PeerEvent, error) {
	raw := t.host.PubSub().PeerEvents(ctx)
	out := make(chan PeerEvent, 16)
	go func() {
		defer close(out)
		for evt := range raw {
			select {
			case out <- PeerEvent{PeerID: evt.PeerID, Connected: evt.Connected}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

var _ Transport = (*P2P)(nil)
