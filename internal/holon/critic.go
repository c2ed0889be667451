// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package holon

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/Good-karma-lab/Agent-Swarm-Communication-Protocol-sub002/internal/swarmid"
	"github.com/Good-karma-lab/Agent-Swarm-Communication-Protocol-sub002/utils/sampler"
)

// DrawAdversarialCritic draws uniformly at random from members \ {chair}
// using a seed derived from SHA256(task_id || epoch), per spec.md §4.4 —
// reproducible given the same task and epoch. Grounded on the teacher's
// utils/sampler.NewDeterministicUniform.
func DrawAdversarialCritic(taskID swarmid.ID, epoch uint64, members []swarmid.AgentID, chair swarmid.AgentID) swarmid.AgentID {
	pool := make([]swarmid.AgentID, 0, len(members))
	for _, m := range members {
		if m != chair {
			pool = append(pool, m)
		}
	}
	if len(pool) == 0 {
		return chair
	}

	h := sha256.New()
	h.Write(taskID[:])
	var epochBytes [8]byte
	binary.BigEndian.PutUint64(epochBytes[:], epoch)
	h.Write(epochBytes[:])
	seed := int64(binary.BigEndian.Uint64(h.Sum(nil)[:8]))

	u := sampler.NewDeterministicUniform(seed)
	if err := u.Initialize(len(pool)); err != nil {
		return pool[0]
	}
	idx, ok := u.Sample(1)
	if !ok || len(idx) == 0 {
		return pool[0]
	}
	return pool[idx[0]]
}
