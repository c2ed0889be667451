package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefault_PassesValidation(t *testing.T) {
	require.NoError(t, Validate(Default()))
}

func TestBuilder_DefaultsOnly(t *testing.T) {
	cfg, err := NewBuilder().Build()
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:8745", cfg.RPCListenAddr)
}

func TestBuilder_FromFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "connector.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"swarm_id":"s1","max_concurrent_holons":8}`), 0o600))

	cfg, err := NewBuilder().FromFile(path).Build()
	require.NoError(t, err)
	require.Equal(t, "s1", cfg.SwarmID)
	require.Equal(t, 8, cfg.MaxConcurrentHolons)
}

func TestBuilder_FromFileMissingIsNotAnError(t *testing.T) {
	cfg, err := NewBuilder().FromFile(filepath.Join(t.TempDir(), "missing.json")).Build()
	require.NoError(t, err)
	require.Equal(t, Default().SwarmSize, cfg.SwarmSize)
}

func TestBuilder_FromEnvOverridesFile(t *testing.T) {
	t.Setenv("SWARM_CONNECTOR_SWARM_ID", "from-env")
	t.Setenv("SWARM_CONNECTOR_MAX_CONCURRENT_HOLONS", "16")

	dir := t.TempDir()
	path := filepath.Join(dir, "connector.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"swarm_id":"from-file","max_concurrent_holons":8}`), 0o600))

	cfg, err := NewBuilder().FromFile(path).FromEnv().Build()
	require.NoError(t, err)
	require.Equal(t, "from-env", cfg.SwarmID)
	require.Equal(t, 16, cfg.MaxConcurrentHolons)
}

func TestBuilder_ExplicitOverrideWinsOverEnv(t *testing.T) {
	t.Setenv("SWARM_CONNECTOR_SWARM_ID", "from-env")

	cfg, err := NewBuilder().FromEnv().WithSwarmID("from-cli").Build()
	require.NoError(t, err)
	require.Equal(t, "from-cli", cfg.SwarmID)
}

func TestBuilder_InvalidEnvValueSurfacesAsError(t *testing.T) {
	t.Setenv("SWARM_CONNECTOR_MAX_CONCURRENT_HOLONS", "not-a-number")
	_, err := NewBuilder().FromEnv().Build()
	require.Error(t, err)
}

func TestValidate_RejectsNonPositiveMaxDepth(t *testing.T) {
	cfg := Default()
	cfg.MaxDepth = 0
	require.Error(t, Validate(cfg))
}
