// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package crdt implements the Observed-Remove Set and PN-Counter CRDTs
// that back membership, task status, and reputation replication across
// Connector partitions (spec.md §4.2). The generic element style follows
// the teacher's utils/set.Set[T] map-backed convention, extended with
// per-add tags and a tombstone set for add-wins semantics.
package crdt

import (
	"sort"
	"sync"

	"golang.org/x/exp/maps"
)

// Tag uniquely identifies one add() operation: a (node_id, counter) pair.
type Tag struct {
	NodeID  string `json:"node_id"`
	Counter uint64 `json:"counter"`
}

// entry pairs a value with the tag under which it was added.
type entry[T comparable] struct {
	Value T   `json:"value"`
	Tag   Tag `json:"tag"`
}

// ORSet is an add-wins Observed-Remove Set over comparable element type T.
type ORSet[T comparable] struct {
	mu          sync.RWMutex
	nodeID      string
	counter     uint64
	entries     map[Tag]entry[T]
	tombstones  map[Tag]struct{}
}

// NewORSet creates an empty OR-Set owned by nodeID (this replica's
// identity, used to mint unique tags).
func NewORSet[T comparable](nodeID string) *ORSet[T] {
	return &ORSet[T]{
		nodeID:     nodeID,
		entries:    make(map[Tag]entry[T]),
		tombstones: make(map[Tag]struct{}),
	}
}

// Add inserts value under a freshly minted tag and returns that tag.
func (s *ORSet[T]) Add(value T) Tag {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counter++
	tag := Tag{NodeID: s.nodeID, Counter: s.counter}
	s.entries[tag] = entry[T]{Value: value, Tag: tag}
	return tag
}

// Remove moves every currently-observed, non-tombstoned tag for value
// into the tombstone set.
func (s *ORSet[T]) Remove(value T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for tag, e := range s.entries {
		if e.Value == value {
			if _, dead := s.tombstones[tag]; !dead {
				s.tombstones[tag] = struct{}{}
			}
		}
	}
}

// Contains reports whether value has at least one live (non-tombstoned)
// tag.
func (s *ORSet[T]) Contains(value T) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for tag, e := range s.entries {
		if e.Value != value {
			continue
		}
		if _, dead := s.tombstones[tag]; !dead {
			return true
		}
	}
	return false
}

// List returns the distinct live values in the set, in a deterministic
// (sorted-by-tag) order for reproducible snapshots.
func (s *ORSet[T]) List() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tags := maps.Keys(s.entries)
	sort.Slice(tags, func(i, j int) bool {
		if tags[i].NodeID != tags[j].NodeID {
			return tags[i].NodeID < tags[j].NodeID
		}
		return tags[i].Counter < tags[j].Counter
	})
	seen := make(map[T]struct{})
	out := make([]T, 0, len(tags))
	for _, tag := range tags {
		if _, dead := s.tombstones[tag]; dead {
			continue
		}
		v := s.entries[tag].Value
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// Len returns the number of distinct live values.
func (s *ORSet[T]) Len() int {
	return len(s.List())
}

// Snapshot captures entries/tombstones for transmission as a delta or
// full-state merge input.
type Snapshot[T comparable] struct {
	Entries    []entry[T] `json:"entries"`
	Tombstones []Tag      `json:"tombstones"`
}

// Snapshot returns a copy of this replica's full state.
func (s *ORSet[T]) Snapshot() Snapshot[T] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := Snapshot[T]{
		Entries:    make([]entry[T], 0, len(s.entries)),
		Tombstones: make([]Tag, 0, len(s.tombstones)),
	}
	for _, e := range s.entries {
		snap.Entries = append(snap.Entries, e)
	}
	for tag := range s.tombstones {
		snap.Tombstones = append(snap.Tombstones, tag)
	}
	return snap
}

// Merge folds other's entries and tombstones into s:
// entries ← entries ∪ other.entries; tombstones ← tombstones ∪ other.tombstones.
// Merge is commutative, associative, and idempotent (invariant 3, spec.md §8).
func (s *ORSet[T]) Merge(other Snapshot[T]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range other.Entries {
		if _, exists := s.entries[e.Tag]; !exists {
			s.entries[e.Tag] = e
		}
	}
	for _, tag := range other.Tombstones {
		s.tombstones[tag] = struct{}{}
	}
}
