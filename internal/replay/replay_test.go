package replay

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWindow_DetectsReplay(t *testing.T) {
	w := NewWindow(10*time.Minute, time.Minute)
	now := time.Now()
	require.False(t, w.CheckAndRecord("agent-1", "nonce-a", now))
	require.True(t, w.CheckAndRecord("agent-1", "nonce-a", now.Add(time.Second)))
}

func TestWindow_DistinctNoncesNotReplayed(t *testing.T) {
	w := NewWindow(10*time.Minute, time.Minute)
	now := time.Now()
	require.False(t, w.CheckAndRecord("agent-1", "nonce-a", now))
	require.False(t, w.CheckAndRecord("agent-1", "nonce-b", now))
}

func TestWindow_EvictsOldBuckets(t *testing.T) {
	w := NewWindow(10*time.Minute, time.Minute)
	now := time.Now()
	require.False(t, w.CheckAndRecord("agent-1", "nonce-a", now))
	later := now.Add(11 * time.Minute)
	require.False(t, w.CheckAndRecord("agent-1", "nonce-a", later), "nonce should be replayable again once evicted")
}

func TestCheckTimestamp(t *testing.T) {
	now := time.Now()
	ok, stale, future := CheckTimestamp(now.UnixMilli(), now, 5*time.Minute)
	require.True(t, ok)
	require.False(t, stale)
	require.False(t, future)

	ok, stale, future = CheckTimestamp(now.Add(-10*time.Minute).UnixMilli(), now, 5*time.Minute)
	require.False(t, ok)
	require.True(t, stale)
	require.False(t, future)

	ok, stale, future = CheckTimestamp(now.Add(10*time.Minute).UnixMilli(), now, 5*time.Minute)
	require.False(t, ok)
	require.False(t, stale)
	require.True(t, future)
}

func TestRateLimiter_AllowsUpToBurstThenBlocks(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	now := time.Now()
	require.True(t, rl.Allow("agent-1", now))
	require.True(t, rl.Allow("agent-1", now))
	require.False(t, rl.Allow("agent-1", now))
}

func TestRateLimiter_RefillsOverTime(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	now := time.Now()
	require.True(t, rl.Allow("agent-1", now))
	require.False(t, rl.Allow("agent-1", now))
	require.True(t, rl.Allow("agent-1", now.Add(2*time.Second)))
}
