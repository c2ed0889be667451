// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package voting implements the Instant-Runoff Voting engine of
// spec.md §4.6: electorate assembly, round-by-round tallying with
// critic-score tiebreaking, and ballot/round history.
package voting

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/Good-karma-lab/Agent-Swarm-Communication-Protocol-sub002/internal/swarmid"
	"github.com/Good-karma-lab/Agent-Swarm-Communication-Protocol-sub002/utils/sampler"
)

// AssembleElectorate returns the full voter set: the board plus a senate
// sampled from tier2Pool of size min(seatCount, len(tier2Pool)/2), seeded
// deterministically from (taskID, epoch) per spec.md §4.6. Grounded on
// the same utils/sampler.NewDeterministicUniform draw used for the
// adversarial-critic selection in internal/holon.
func AssembleElectorate(board []swarmid.AgentID, tier2Pool []swarmid.AgentID, seatCount int, taskID swarmid.ID, epoch uint64) []swarmid.AgentID {
	senate := SampleSenate(tier2Pool, seatCount, taskID, epoch)
	electorate := make([]swarmid.AgentID, 0, len(board)+len(senate))
	electorate = append(electorate, board...)
	electorate = append(electorate, senate...)
	return electorate
}

// SampleSenate draws min(seatCount, len(tier2Pool)/2) members from
// tier2Pool without replacement. When tier2Pool is empty (single-holon
// deployments), the senate is empty — the Open Question resolution
// recorded in SPEC_FULL.md.
func SampleSenate(tier2Pool []swarmid.AgentID, seatCount int, taskID swarmid.ID, epoch uint64) []swarmid.AgentID {
	if len(tier2Pool) == 0 {
		return nil
	}
	size := seatCount
	if half := len(tier2Pool) / 2; half < size {
		size = half
	}
	if size <= 0 {
		return nil
	}

	u := sampler.NewDeterministicUniform(electorateSeed(taskID, epoch))
	if err := u.Initialize(len(tier2Pool)); err != nil {
		return nil
	}
	idx, ok := u.Sample(size)
	if !ok {
		return nil
	}
	out := make([]swarmid.AgentID, 0, len(idx))
	for _, i := range idx {
		out = append(out, tier2Pool[i])
	}
	return out
}

// electorateSeed derives a deterministic int64 seed from SHA256(task_id
// || epoch), the same construction internal/holon.DrawAdversarialCritic
// uses for its critic draw.
func electorateSeed(taskID swarmid.ID, epoch uint64) int64 {
	h := sha256.New()
	h.Write(taskID[:])
	var epochBytes [8]byte
	binary.BigEndian.PutUint64(epochBytes[:], epoch)
	h.Write(epochBytes[:])
	return int64(binary.BigEndian.Uint64(h.Sum(nil)[:8]))
}
