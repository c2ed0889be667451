// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package identity

import (
	"crypto/sha256"
	"math/bits"
)

// RequiredZeroBits returns the proof-of-work difficulty for the given
// swarm size, per the tier table in spec.md §4.1.
func RequiredZeroBits(swarmSize int) int {
	switch {
	case swarmSize < 100:
		return 12
	case swarmSize < 1000:
		return 14
	case swarmSize < 10000:
		return 16
	default:
		return 18
	}
}

// VerifyPoW reports whether SHA-256(agentIDBytes || powNonce) has at
// least requiredZeroBits leading zero bits.
func VerifyPoW(agentIDBytes, powNonce []byte, requiredZeroBits int) bool {
	return leadingZeroBits(agentIDBytes, powNonce) >= requiredZeroBits
}

func leadingZeroBits(agentIDBytes, powNonce []byte) int {
	h := sha256.New()
	h.Write(agentIDBytes)
	h.Write(powNonce)
	sum := h.Sum(nil)

	count := 0
	for _, b := range sum {
		if b == 0 {
			count += 8
			continue
		}
		count += bits.LeadingZeros8(b)
		break
	}
	return count
}

// SolvePoW brute-forces a nonce satisfying the required difficulty.
// Intended for test fixtures and local bootstrap, not production
// registration paths (those are driven by the agent-side runtime,
// out of scope per spec.md §1).
func SolvePoW(agentIDBytes []byte, requiredZeroBits int, maxAttempts uint64) ([]byte, bool) {
	nonce := make([]byte, 8)
	for attempt := uint64(0); attempt < maxAttempts; attempt++ {
		putUint64(nonce, attempt)
		if VerifyPoW(agentIDBytes, nonce, requiredZeroBits) {
			out := make([]byte, 8)
			copy(out, nonce)
			return out, true
		}
	}
	return nil, false
}

func putUint64(b []byte, v uint64) {
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * i))
	}
}
