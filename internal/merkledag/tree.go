// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package merkledag

import "github.com/Good-karma-lab/Agent-Swarm-Communication-Protocol-sub002/internal/swarmid"

// BuildLevel computes the branch hash over a fully resolved set of child
// hashes and returns, for each index, the PathStep needed to recompute
// this level's hash from that child's hash. Multi-level trees — e.g. a
// sub-holon's branch hash occupying one of the root's child slots — are
// built by chaining the sub-holon's own BuildLevel result as Proof.Steps[0]
// and the parent level's matching PathStep as Proof.Steps[1], since
// Proof.Steps is ordered leaf-to-root.
func BuildLevel(children []swarmid.ID) (rootHash swarmid.ID, steps []PathStep, err error) {
	b := NewBranch(len(children))
	for i, c := range children {
		if err := b.SetChild(i, c); err != nil {
			return swarmid.Empty, nil, err
		}
	}
	root, err := b.Hash()
	if err != nil {
		return swarmid.Empty, nil, err
	}
	frozen := append([]swarmid.ID(nil), children...)
	steps = make([]PathStep, len(children))
	for i := range children {
		steps[i] = PathStep{Siblings: frozen, Index: i}
	}
	return root, steps, nil
}
