package crdt

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestORSet_AddWinsConcurrentRemove(t *testing.T) {
	// Scenario E: replica A adds "x", removes "x"; replica B concurrently
	// adds "x" with a fresh tag; merge both ways and contains("x") must be
	// true on both, since B's tag was never observed by A's remove.
	a := NewORSet[string]("A")
	a.Add("x")
	a.Remove("x")

	b := NewORSet[string]("B")
	b.Add("x")

	a.Merge(b.Snapshot())
	b.Merge(a.Snapshot())

	require.True(t, a.Contains("x"))
	require.True(t, b.Contains("x"))
}

func TestORSet_MergeCommutativeAssociativeIdempotent(t *testing.T) {
	a := NewORSet[string]("A")
	a.Add("1")
	b := NewORSet[string]("B")
	b.Add("2")
	c := NewORSet[string]("C")
	c.Add("3")

	// merge(merge(A,B), C) == merge(A, merge(B,C))
	left := NewORSet[string]("L")
	left.Merge(a.Snapshot())
	left.Merge(b.Snapshot())
	left.Merge(c.Snapshot())

	right := NewORSet[string]("R")
	right.Merge(c.Snapshot())
	right.Merge(b.Snapshot())
	right.Merge(a.Snapshot())

	require.ElementsMatch(t, left.List(), right.List())

	// idempotent: merging A with itself changes nothing observable.
	before := a.List()
	a.Merge(a.Snapshot())
	require.ElementsMatch(t, before, a.List())
}

func TestORSet_RemoveThenReAdd(t *testing.T) {
	s := NewORSet[string]("A")
	s.Add("task-1")
	s.Remove("task-1")
	require.False(t, s.Contains("task-1"))
	s.Add("task-1")
	require.True(t, s.Contains("task-1"))
}

func TestPNCounter_MergeTakesMaxPerNode(t *testing.T) {
	a := NewPNCounter("A")
	a.Increment(5)
	b := NewPNCounter("B")
	b.Increment(3)
	b.Increment(4) // B's increments["B"] = 7

	a.Merge(b.Snapshot())
	require.Equal(t, int64(12), a.Value()) // 5 (A) + 7 (B)

	// re-merging an older (smaller) snapshot must not decrease the value.
	stale := PNSnapshot{Increments: map[string]uint64{"B": 3}}
	a.Merge(stale)
	require.Equal(t, int64(12), a.Value())
}

func TestPNCounter_Value(t *testing.T) {
	c := NewPNCounter("A")
	c.Increment(10)
	c.Decrement(3)
	require.Equal(t, int64(7), c.Value())
}
