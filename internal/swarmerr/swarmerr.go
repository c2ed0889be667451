// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package swarmerr declares the sentinel error taxonomy of spec.md §7,
// in the teacher's plain errors.New + errors.Is convention
// (utils/sampler.ErrOutOfRange) rather than a bespoke error-code framework.
package swarmerr

import "errors"

// Protocol errors.
var (
	ErrInvalidSignature = errors.New("swarm: invalid signature")
	ErrStaleTimestamp    = errors.New("swarm: stale timestamp")
	ErrFutureTimestamp   = errors.New("swarm: future timestamp")
	ErrReplayDetected    = errors.New("swarm: replay detected")
	ErrInvalidPoW        = errors.New("swarm: invalid proof of work")
	ErrEpochMismatch     = errors.New("swarm: epoch mismatch")
)

// Consensus errors.
var (
	ErrHashMismatch        = errors.New("swarm: hash mismatch")
	ErrDuplicateProposal   = errors.New("swarm: duplicate proposal")
	ErrSelfVoteProhibited  = errors.New("swarm: self-vote prohibited")
	ErrNoProposals         = errors.New("swarm: no proposals")
	ErrVotingTimeout       = errors.New("swarm: voting timeout")
	ErrSubtaskTooComplex   = errors.New("swarm: subtask complexity exceeds parent estimate")
)

// Task errors.
var (
	ErrTaskNotFound           = errors.New("swarm: task not found")
	ErrResultRejected         = errors.New("swarm: result rejected")
	ErrDeadlineExceeded       = errors.New("swarm: deadline exceeded")
	ErrInsufficientReputation = errors.New("swarm: insufficient reputation")
)

// Resource errors.
var (
	ErrRateLimitExceeded = errors.New("swarm: rate limit exceeded")
	ErrContentTooLarge   = errors.New("swarm: content too large")
	ErrCapacityExceeded  = errors.New("swarm: capacity exceeded")
)

// Transport errors.
var (
	ErrPeerUnreachable    = errors.New("swarm: peer unreachable")
	ErrTopicSubscribeFailed = errors.New("swarm: topic subscribe failed")
)
