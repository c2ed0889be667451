// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"time"

	"github.com/Good-karma-lab/Agent-Swarm-Communication-Protocol-sub002/internal/holon"
	"github.com/Good-karma-lab/Agent-Swarm-Communication-Protocol-sub002/internal/rfp"
	"github.com/Good-karma-lab/Agent-Swarm-Communication-Protocol-sub002/internal/store"
)

// Default returns the Connector's baseline configuration, matching the
// constants named throughout spec.md §4.
func Default() *Config {
	return &Config{
		IdentityDir: "./identity",
		IdentityKey: "connector",

		SwarmSize: 1,

		MaxDepth:            holon.MaxDepth,
		MaxConcurrentHolons: 64,
		FormingTimeout:      holon.FormingTimeout,
		DeliberatingRound1:  holon.DeliberatingRoundOneTimeout,
		DeliberatingRound2:  holon.DeliberatingRoundTwoTimeout,
		VotingTimeout:       holon.VotingTimeout,
		SynthesizingTimeout: holon.SynthesizingTimeout,

		CommitTimeout:   rfp.CommitTimeout,
		RevealTimeout:   rfp.RevealTimeout,
		CritiqueTimeout: rfp.CritiqueTimeout,

		SenateSeatCount: 3,

		ReplayWindow:    10 * time.Minute,
		TimestampSkew:   5 * time.Minute,
		RateLimitPerSec: 20,
		RateLimitBurst:  40,

		DataDir:          "./data",
		ArtifactDir:      "./data/artifacts",
		SnapshotInterval: 30 * time.Second,
		RetentionWindow:  store.DefaultRetentionWindow,

		MaxResultRetries: 3,

		RPCListenAddr:     "127.0.0.1:8745",
		MetricsListenAddr: "127.0.0.1:9745",
	}
}
