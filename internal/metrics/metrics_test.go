package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestNew_RegistersEveryCollectorOnce(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	require.NotNil(t, m.HolonsFormed)

	// Registering the same collectors again against a fresh registry
	// must not error (proves New's internal Register calls succeeded
	// the first time rather than silently swallowing AlreadyRegisteredError).
	reg2 := prometheus.NewRegistry()
	require.NoError(t, reg2.Register(m.HolonsFormed))
}

func TestMetrics_CountersIncrement(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.HolonsFormed.Inc()
	m.VotesCast.Inc()
	m.ResultsRejected.WithLabelValues("hash_mismatch").Inc()

	families, err := reg.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, families)
}
