// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package transport

import (
	"context"
	"sync"
)

// Memory is an in-process Transport used by tests and single-node
// integration scenarios: publish fans out to every local subscriber of a
// topic, direct requests are resolved against registered handlers.
type Memory struct {
	mu          sync.Mutex
	subscribers map[string][]chan Envelope
	handlers    map[string]func(ctx context.Context, params []byte) ([]byte, error)
	dht         map[string][]byte
	peerEvents  chan PeerEvent
}

// NewMemory creates an empty in-memory transport.
func NewMemory() *Memory {
	return &Memory{
		subscribers: make(map[string][]chan Envelope),
		handlers:    make(map[string]func(context.Context, []byte) ([]byte, error)),
		dht:         make(map[string][]byte),
		peerEvents:  make(chan PeerEvent, 16),
	}
}

func (m *Memory) Publish(_ context.Context, topic string, env Envelope) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ch := range m.subscribers[topic] {
		select {
		case ch <- env:
		default:
			// backpressure: drop on overflow per spec.md §5, relying on
			// retransmit or the phase's fallback.
		}
	}
	return nil
}

func (m *Memory) Subscribe(_ context.Context, topic string) (<-chan Envelope, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch := make(chan Envelope, 64)
	m.subscribers[topic] = append(m.subscribers[topic], ch)
	return ch, nil
}

// RegisterHandler binds a direct-request method name to a handler,
// simulating a peer that would otherwise answer over the overlay.
func (m *Memory) RegisterHandler(peerID, method string, h func(context.Context, []byte) ([]byte, error)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[peerID+"/"+method] = h
}

func (m *Memory) Request(ctx context.Context, peerID, method string, params []byte) ([]byte, error) {
	m.mu.Lock()
	h, ok := m.handlers[peerID+"/"+method]
	m.mu.Unlock()
	if !ok {
		return nil, ErrPeerUnreachable
	}
	return h(ctx, params)
}

func (m *Memory) DHTPut(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dht[key] = value
	return nil
}

func (m *Memory) DHTGet(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.dht[key]
	if !ok {
		return nil, ErrDHTKeyNotFound
	}
	return v, nil
}

func (m *Memory) PeerEvents(_ context.Context) (<-chan PeerEvent, error) {
	return m.peerEvents, nil
}

// Emit lets a test simulate a peer connectivity change.
func (m *Memory) Emit(evt PeerEvent) {
	select {
	case m.peerEvents <- evt:
	default:
	}
}

var _ Transport = (*Memory)(nil)
