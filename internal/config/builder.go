// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Builder assembles a Config through the layered precedence of
// spec.md §6: defaults, then an optional file, then environment
// variables, then explicit overrides — each layer only replacing
// fields it actually sets, mirroring the teacher's config.Builder
// fluent accumulate-then-validate pattern.
type Builder struct {
	cfg *Config
	err error
}

// NewBuilder starts from Default().
func NewBuilder() *Builder {
	return &Builder{cfg: Default()}
}

// FromFile merges JSON-encoded fields from path over the current
// config. A missing file is not an error — file-based config is
// optional per spec.md's layering.
func (b *Builder) FromFile(path string) *Builder {
	if b.err != nil {
		return b
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return b
		}
		b.err = fmt.Errorf("config: read %s: %w", path, err)
		return b
	}
	if err := json.Unmarshal(data, b.cfg); err != nil {
		b.err = fmt.Errorf("config: parse %s: %w", path, err)
	}
	return b
}

// envBindings maps SWARM_CONNECTOR_* environment variable names to
// setters applied over the current config.
var envBindings = map[string]func(*Config, string) error{
	"SWARM_CONNECTOR_IDENTITY_DIR": func(c *Config, v string) error { c.IdentityDir = v; return nil },
	"SWARM_CONNECTOR_IDENTITY_KEY": func(c *Config, v string) error { c.IdentityKey = v; return nil },
	"SWARM_CONNECTOR_SWARM_ID":     func(c *Config, v string) error { c.SwarmID = v; return nil },
	"SWARM_CONNECTOR_DATA_DIR":     func(c *Config, v string) error { c.DataDir = v; return nil },
	"SWARM_CONNECTOR_ARTIFACT_DIR": func(c *Config, v string) error { c.ArtifactDir = v; return nil },
	"SWARM_CONNECTOR_RPC_ADDR":     func(c *Config, v string) error { c.RPCListenAddr = v; return nil },
	"SWARM_CONNECTOR_METRICS_ADDR": func(c *Config, v string) error { c.MetricsListenAddr = v; return nil },
	"SWARM_CONNECTOR_SWARM_SIZE": func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		c.SwarmSize = n
		return nil
	},
	"SWARM_CONNECTOR_MAX_CONCURRENT_HOLONS": func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		c.MaxConcurrentHolons = n
		return nil
	},
	"SWARM_CONNECTOR_RETENTION_WINDOW": func(c *Config, v string) error {
		d, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		c.RetentionWindow = d
		return nil
	},
}

// FromEnv applies every recognized SWARM_CONNECTOR_* variable present in
// the process environment.
func (b *Builder) FromEnv() *Builder {
	if b.err != nil {
		return b
	}
	for name, set := range envBindings {
		v, ok := os.LookupEnv(name)
		if !ok {
			continue
		}
		if err := set(b.cfg, v); err != nil {
			b.err = fmt.Errorf("config: env %s=%q: %w", name, v, err)
			return b
		}
	}
	return b
}

// WithSwarmID overrides the swarm identifier, e.g. from a CLI flag.
func (b *Builder) WithSwarmID(id string) *Builder {
	if b.err != nil {
		return b
	}
	if id != "" {
		b.cfg.SwarmID = id
	}
	return b
}

// WithIdentityDir overrides the identity directory.
func (b *Builder) WithIdentityDir(dir string) *Builder {
	if b.err != nil {
		return b
	}
	if dir != "" {
		b.cfg.IdentityDir = dir
	}
	return b
}

// WithDataDir overrides the persistence root.
func (b *Builder) WithDataDir(dir string) *Builder {
	if b.err != nil {
		return b
	}
	if dir != "" {
		b.cfg.DataDir = dir
		if b.cfg.ArtifactDir == Default().ArtifactDir {
			b.cfg.ArtifactDir = dir + "/artifacts"
		}
	}
	return b
}

// WithMaxConcurrentHolons overrides the holon-engine parallelism cap.
func (b *Builder) WithMaxConcurrentHolons(n int) *Builder {
	if b.err != nil {
		return b
	}
	if n > 0 {
		b.cfg.MaxConcurrentHolons = n
	}
	return b
}

// Build validates and returns the assembled Config.
func (b *Builder) Build() (*Config, error) {
	if b.err != nil {
		return nil, b.err
	}
	if err := Validate(b.cfg); err != nil {
		return nil, err
	}
	return b.cfg, nil
}
