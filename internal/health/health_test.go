package health

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type stubChecker struct {
	details interface{}
	err     error
}

func (s stubChecker) HealthCheck(context.Context) (interface{}, error) {
	return s.details, s.err
}

func TestRegistry_HealthyWhenAllChecksPass(t *testing.T) {
	r := NewRegistry()
	r.Register("transport", stubChecker{details: "connected"})
	r.Register("store", stubChecker{details: "ok"})

	report := r.Check(context.Background())
	require.True(t, report.Healthy)
	require.Len(t, report.Checks, 2)
	require.Equal(t, "transport", report.Checks[0].Name)
}

func TestRegistry_UnhealthyWhenAnyCheckFails(t *testing.T) {
	r := NewRegistry()
	r.Register("transport", stubChecker{details: "connected"})
	r.Register("store", stubChecker{err: errors.New("disk full")})

	report := r.Check(context.Background())
	require.False(t, report.Healthy)
	require.False(t, report.Checks[1].Healthy)
	require.Equal(t, "disk full", report.Checks[1].Error)
}

func TestRegistry_ReRegisterPreservesOrder(t *testing.T) {
	r := NewRegistry()
	r.Register("a", stubChecker{details: 1})
	r.Register("b", stubChecker{details: 2})
	r.Register("a", stubChecker{details: 3})

	report := r.Check(context.Background())
	require.Len(t, report.Checks, 2)
	require.Equal(t, "a", report.Checks[0].Name)
	require.Equal(t, 3, report.Checks[0].Details)
}
