// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package identity manages the agent's Ed25519 keypair, its DID, and
// signing/verification of canonical-JSON envelopes. A process owns
// exactly one keypair handle, threaded explicitly into every component
// that needs to sign or verify rather than kept as a package singleton.
package identity

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	edwards "github.com/luxfi/crypto/ed25519"

	"github.com/Good-karma-lab/Agent-Swarm-Communication-Protocol-sub002/internal/canon"
	"github.com/Good-karma-lab/Agent-Swarm-Communication-Protocol-sub002/internal/swarmid"
)

// Handle wraps a loaded Ed25519 keypair and its derived DID.
type Handle struct {
	priv edwards.PrivateKey
	pub  edwards.PublicKey
	id   swarmid.AgentID
}

// AgentID returns the handle's derived DID.
func (h *Handle) AgentID() swarmid.AgentID { return h.id }

// PublicKey returns the raw public key bytes.
func (h *Handle) PublicKey() []byte { return []byte(h.pub) }

// LoadKeypair reads a 32-byte Ed25519 seed from path and derives the
// keypair and DID. path is expected to carry mode 0600.
func LoadKeypair(path string) (*Handle, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("identity: stat %s: %w", path, err)
	}
	if info.Mode().Perm()&0o077 != 0 {
		return nil, fmt.Errorf("identity: %s has overly permissive mode %v", path, info.Mode().Perm())
	}
	seed, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("identity: read %s: %w", path, err)
	}
	if len(seed) != edwards.SeedSize {
		return nil, fmt.Errorf("identity: %s: expected %d byte seed, got %d", path, edwards.SeedSize, len(seed))
	}
	priv := edwards.NewKeyFromSeed(seed)
	pub := priv.Public().(edwards.PublicKey)
	return &Handle{priv: priv, pub: pub, id: swarmid.AgentIDFromPublicKey(pub)}, nil
}

// CreateKeypair generates a fresh Ed25519 keypair, writes its seed to
// path with the given file mode (callers pass 0600 per spec.md §6), and
// returns the handle.
func CreateKeypair(path string, mode os.FileMode) (*Handle, error) {
	pub, priv, err := edwards.GenerateKey(nil)
	if err != nil {
		return nil, fmt.Errorf("identity: generate keypair: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("identity: mkdir for %s: %w", path, err)
	}
	seed := priv.Seed()
	if err := os.WriteFile(path, seed, mode); err != nil {
		return nil, fmt.Errorf("identity: write %s: %w", path, err)
	}
	return &Handle{priv: priv, pub: pub, id: swarmid.AgentIDFromPublicKey(pub)}, nil
}

// SignedPayload is the subset of an inbound/outbound envelope covered by
// the signature, per spec.md §4.1: {method, params, timestamp_ms, nonce}
// with keys sorted lexicographically via canonical JSON.
type SignedPayload struct {
	Method      string      `json:"method"`
	Params      interface{} `json:"params"`
	TimestampMs int64       `json:"timestamp_ms"`
	Nonce       string      `json:"nonce"`
}

// Sign produces a signature over the canonical JSON encoding of p.
func (h *Handle) Sign(p SignedPayload) ([]byte, error) {
	msg, err := canon.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("identity: canonicalize payload: %w", err)
	}
	return edwards.Sign(h.priv, msg), nil
}

// Verify checks sig against the canonical JSON encoding of p under the
// provided public key bytes.
func Verify(pubKey []byte, p SignedPayload, sig []byte) (bool, error) {
	msg, err := canon.Marshal(p)
	if err != nil {
		return false, fmt.Errorf("identity: canonicalize payload: %w", err)
	}
	if len(pubKey) != edwards.PublicKeySize {
		return false, fmt.Errorf("identity: invalid public key length %d", len(pubKey))
	}
	return edwards.Verify(edwards.PublicKey(pubKey), msg, sig), nil
}

// MarshalPublicKeyJSON is a convenience for embedding a public key in a
// registration payload.
func MarshalPublicKeyJSON(pub []byte) json.RawMessage {
	b, _ := json.Marshal(pub)
	return b
}
