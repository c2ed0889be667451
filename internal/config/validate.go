// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import "fmt"

// Validate enforces the structural constraints spec.md requires of a
// Connector configuration, mirroring the teacher's config.Validator
// Build()-time check.
func Validate(c *Config) error {
	if c.MaxDepth < 1 {
		return fmt.Errorf("config: max_depth must be >= 1, got %d", c.MaxDepth)
	}
	if c.MaxConcurrentHolons < 1 {
		return fmt.Errorf("config: max_concurrent_holons must be >= 1, got %d", c.MaxConcurrentHolons)
	}
	if c.SwarmSize < 1 {
		return fmt.Errorf("config: swarm_size must be >= 1, got %d", c.SwarmSize)
	}
	if c.SenateSeatCount < 0 {
		return fmt.Errorf("config: senate_seat_count must be >= 0, got %d", c.SenateSeatCount)
	}
	if c.RateLimitPerSec <= 0 {
		return fmt.Errorf("config: rate_limit_per_sec must be > 0, got %v", c.RateLimitPerSec)
	}
	if c.RateLimitBurst < 1 {
		return fmt.Errorf("config: rate_limit_burst must be >= 1, got %d", c.RateLimitBurst)
	}
	if c.MaxResultRetries < 0 {
		return fmt.Errorf("config: max_result_retries must be >= 0, got %d", c.MaxResultRetries)
	}
	if c.IdentityDir == "" {
		return fmt.Errorf("config: identity_dir must not be empty")
	}
	if c.DataDir == "" {
		return fmt.Errorf("config: data_dir must not be empty")
	}
	if c.RPCListenAddr == "" {
		return fmt.Errorf("config: rpc_listen_addr must not be empty")
	}
	return nil
}
