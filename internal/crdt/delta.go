// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package crdt

// DeltaKind distinguishes which CRDT a Delta carries.
type DeltaKind string

const (
	DeltaORSet     DeltaKind = "or_set"
	DeltaPNCounter DeltaKind = "pn_counter"
)

// Delta is the wire envelope published on the keepalive topic whenever a
// local mutation needs to reach remote replicas (spec.md §4.2 / §9).
type Delta struct {
	NodeID  string      `json:"node_id"`
	Kind    DeltaKind   `json:"kind"`
	SetName string      `json:"set_name"`
	ORSet   *Snapshot[string] `json:"or_set,omitempty"`
	Counter *PNSnapshot `json:"counter,omitempty"`
}
