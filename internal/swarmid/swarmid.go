// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package swarmid provides the content-addressed identifier types used
// across tasks, plans, artifacts and holons, plus the agent DID type.
package swarmid

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// ID is a 32-byte content-addressed identifier, mirroring the shape of
// github.com/luxfi/ids.ID used throughout the teacher's DAG/vertex types.
type ID [32]byte

// Empty is the zero ID.
var Empty ID

// FromBytes computes the SHA-256 digest of b as an ID.
func FromBytes(b []byte) ID {
	return ID(sha256.Sum256(b))
}

func (id ID) String() string {
	return hex.EncodeToString(id[:])
}

func (id ID) IsZero() bool {
	return id == Empty
}

func (id ID) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.String())
}

func (id *ID) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return fmt.Errorf("swarmid: invalid ID hex %q: %w", s, err)
	}
	if len(raw) != len(id) {
		return fmt.Errorf("swarmid: invalid ID length %d", len(raw))
	}
	copy(id[:], raw)
	return nil
}

// AgentID is the DID-form agent identifier: did:swarm:<hex(sha256(pubkey))>.
type AgentID string

const didPrefix = "did:swarm:"

// AgentIDFromPublicKey derives an AgentID from a raw Ed25519 public key.
func AgentIDFromPublicKey(pubKey []byte) AgentID {
	sum := sha256.Sum256(pubKey)
	return AgentID(didPrefix + hex.EncodeToString(sum[:]))
}

func (a AgentID) String() string { return string(a) }

// Valid reports whether a has the expected did:swarm:<64 hex chars> shape.
func (a AgentID) Valid() bool {
	s := string(a)
	if !strings.HasPrefix(s, didPrefix) {
		return false
	}
	hexPart := strings.TrimPrefix(s, didPrefix)
	if len(hexPart) != 64 {
		return false
	}
	_, err := hex.DecodeString(hexPart)
	return err == nil
}

// ID derives a content-addressed ID from the agent's DID string, useful
// wherever a generic ID-keyed container (e.g. an OR-Set) needs to key on
// an agent.
func (a AgentID) ID() ID {
	return FromBytes([]byte(a))
}
