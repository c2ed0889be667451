// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package merkledag builds the bottom-up hash chain binding executor
// artifacts to coordinator aggregates to a task's root, per spec.md §4.3.
// The node shape generalizes the teacher's engine/vertex.Vertex (single
// ParentIDs chain) into an ordered-children Merkle branch.
package merkledag

import (
	"crypto/sha256"
	"fmt"

	"github.com/Good-karma-lab/Agent-Swarm-Communication-Protocol-sub002/internal/swarmid"
)

// Leaf hashes content directly: hash = SHA256(content_bytes).
func Leaf(content []byte) swarmid.ID {
	return swarmid.FromBytes(content)
}

// Branch is an internal node with ordered child slots, indexed 0..k-1 to
// match the winning plan's subtask index field. A branch cannot finalize
// (Hash returns an error) while any child slot is unresolved.
type Branch struct {
	children []*swarmid.ID
}

// NewBranch allocates a branch with k unresolved child slots.
func NewBranch(k int) *Branch {
	return &Branch{children: make([]*swarmid.ID, k)}
}

// SetChild binds the result for subtask index to its slot.
func (b *Branch) SetChild(index int, hash swarmid.ID) error {
	if index < 0 || index >= len(b.children) {
		return fmt.Errorf("merkledag: child index %d out of range [0,%d)", index, len(b.children))
	}
	h := hash
	b.children[index] = &h
	return nil
}

// Resolved reports whether every child slot has been bound.
func (b *Branch) Resolved() bool {
	for _, c := range b.children {
		if c == nil {
			return false
		}
	}
	return true
}

// Hash computes SHA256(h_0 || h_1 || ... || h_{k-1}). It is an error to
// call Hash before every slot is resolved.
func (b *Branch) Hash() (swarmid.ID, error) {
	if !b.Resolved() {
		return swarmid.Empty, fmt.Errorf("merkledag: branch has unresolved child slots")
	}
	h := sha256.New()
	for _, c := range b.children {
		h.Write(c[:])
	}
	var out swarmid.ID
	copy(out[:], h.Sum(nil))
	return out, nil
}

// Proof is the path of sibling hashes from a leaf to the root, one
// PathStep per level.
type Proof struct {
	Steps []PathStep
}

// PathStep carries the sibling hashes at one level and this node's index
// among them, so VerifyProof can reconstruct the parent hash in order.
type PathStep struct {
	Siblings []swarmid.ID // full ordered sibling-hash list at this level, including the node's own slot
	Index    int          // the node's position within Siblings
}

// VerifyProof recomputes the root hash by walking proof from leafHash
// upward and compares it to root.
func VerifyProof(root swarmid.ID, proof Proof, leafHash swarmid.ID) bool {
	current := leafHash
	for _, step := range proof.Steps {
		if step.Index < 0 || step.Index >= len(step.Siblings) {
			return false
		}
		if step.Siblings[step.Index] != current {
			return false
		}
		h := sha256.New()
		for _, sib := range step.Siblings {
			h.Write(sib[:])
		}
		var next swarmid.ID
		copy(next[:], h.Sum(nil))
		current = next
	}
	return current == root
}
