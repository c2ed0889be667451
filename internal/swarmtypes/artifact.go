// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package swarmtypes

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/Good-karma-lab/Agent-Swarm-Communication-Protocol-sub002/internal/swarmid"
)

// Artifact is an executor's submitted result, content-addressed by
// content_cid := SHA256(content_bytes). Violating this binding is an
// immediate rejection per spec.md §3.
type Artifact struct {
	SchemaVersion int             `json:"schema_version"`
	ArtifactID    swarmid.ID      `json:"artifact_id"`
	TaskID        swarmid.ID      `json:"task_id"`
	Producer      swarmid.AgentID `json:"producer"`
	ContentCID    string          `json:"content_cid"`
	MerkleHash    swarmid.ID      `json:"merkle_hash"`
	SizeBytes     int64           `json:"size_bytes"`
	ContentType   string          `json:"content_type"`
	CreatedAt     time.Time       `json:"created_at"`
}

// ContentCID computes SHA256(content) hex-encoded.
func ContentCID(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// VerifyContentCID reports whether content hashes to the artifact's
// declared content_cid — invariant 6 of spec.md §8.
func (a *Artifact) VerifyContentCID(content []byte) bool {
	return ContentCID(content) == a.ContentCID
}

// ReputationRecord tracks an agent's positive/negative event counts and
// effective score per spec.md §3.
type ReputationRecord struct {
	SchemaVersion int             `json:"schema_version"`
	AgentID       swarmid.AgentID `json:"agent_id"`
	Positive      uint64          `json:"positive"`
	Negative      uint64          `json:"negative"`
	LastActive    time.Time       `json:"last_active"`
	Peak          uint64          `json:"peak"`
}

// decayHalfLife controls how quickly inactivity erodes effective score;
// an agent inactive for one half-life loses one full decay unit.
const decayHalfLife = 7 * 24 * time.Hour

// Decay computes decay(last_active, peak): the longer an agent has been
// inactive, the larger the decay applied against peak, capped at peak
// itself so effective score never goes below -negative-positive range
// unreasonably.
func decay(lastActive time.Time, peak uint64, now time.Time) uint64 {
	if now.Before(lastActive) {
		return 0
	}
	elapsed := now.Sub(lastActive)
	halfLives := float64(elapsed) / float64(decayHalfLife)
	d := uint64(halfLives * float64(peak) / 4.0)
	if d > peak {
		d = peak
	}
	return d
}

// EffectiveScore computes positive - negative - decay(last_active, peak)
// as of now, per spec.md §3.
func (r *ReputationRecord) EffectiveScore(now time.Time) int64 {
	d := decay(r.LastActive, r.Peak, now)
	return int64(r.Positive) - int64(r.Negative) - int64(d)
}

// RecordPositive applies a real positive event, bumping peak if the new
// raw (positive - negative) exceeds it — "never rises above peak without
// a real event" per spec.md §3.
func (r *ReputationRecord) RecordPositive(now time.Time) {
	r.Positive++
	r.LastActive = now
	if raw := int64(r.Positive) - int64(r.Negative); raw > 0 && uint64(raw) > r.Peak {
		r.Peak = uint64(raw)
	}
}

// RecordNegative applies a real negative event.
func (r *ReputationRecord) RecordNegative(now time.Time) {
	r.Negative++
	r.LastActive = now
}
