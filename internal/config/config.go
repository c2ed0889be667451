// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package config implements the Connector's layered configuration
// (defaults -> file -> env -> CLI), grounded on the teacher's
// config/builder.go fluent Builder and config/presets.go named presets.
package config

import "time"

// Config holds every tunable named in spec.md.
type Config struct {
	// Identity.
	IdentityDir string `json:"identity_dir"`
	IdentityKey string `json:"identity_key"`

	// Swarm membership.
	SwarmID    string `json:"swarm_id"`
	SwarmSize  int    `json:"swarm_size"`

	// Holon engine.
	MaxDepth            int           `json:"max_depth"`
	MaxConcurrentHolons int           `json:"max_concurrent_holons"`
	FormingTimeout      time.Duration `json:"forming_timeout"`
	DeliberatingRound1  time.Duration `json:"deliberating_round1_timeout"`
	DeliberatingRound2  time.Duration `json:"deliberating_round2_timeout"`
	VotingTimeout       time.Duration `json:"voting_timeout"`
	SynthesizingTimeout time.Duration `json:"synthesizing_timeout"`

	// RFP Coordinator.
	CommitTimeout   time.Duration `json:"commit_timeout"`
	RevealTimeout   time.Duration `json:"reveal_timeout"`
	CritiqueTimeout time.Duration `json:"critique_timeout"`

	// Voting engine.
	SenateSeatCount int `json:"senate_seat_count"`

	// Replay protection / rate limiting.
	ReplayWindow      time.Duration `json:"replay_window"`
	TimestampSkew     time.Duration `json:"timestamp_skew"`
	RateLimitPerSec   float64       `json:"rate_limit_per_sec"`
	RateLimitBurst    int           `json:"rate_limit_burst"`

	// Persistence.
	DataDir           string        `json:"data_dir"`
	ArtifactDir       string        `json:"artifact_dir"`
	SnapshotInterval  time.Duration `json:"snapshot_interval"`
	RetentionWindow   time.Duration `json:"retention_window"`

	// Execution.
	MaxResultRetries int `json:"max_result_retries"`

	// RPC server.
	RPCListenAddr string `json:"rpc_listen_addr"`

	// Metrics.
	MetricsListenAddr string `json:"metrics_listen_addr"`
}
