package store

import (
	"testing"
	"time"

	"github.com/luxfi/database/memdb"
	"github.com/luxfi/log"
	"github.com/stretchr/testify/require"

	"github.com/Good-karma-lab/Agent-Swarm-Communication-Protocol-sub002/internal/swarmid"
	"github.com/Good-karma-lab/Agent-Swarm-Communication-Protocol-sub002/internal/swarmtypes"
)

func TestStore_SnapshotWritesEveryRecordKind(t *testing.T) {
	taskID := swarmid.FromBytes([]byte("task-1"))
	s := New(memdb.New(), log.NewNoOpLogger())

	s.PutHolon(swarmtypes.HolonState{TaskID: taskID, Status: swarmtypes.HolonForming})
	s.AppendBallot(taskID, swarmtypes.BallotRecord{TaskID: taskID, Voter: "v1"})
	s.AppendIrvRounds(taskID, []swarmtypes.IrvRound{{TaskID: taskID, RoundNumber: 1}})
	s.AppendDeliberation(taskID, swarmtypes.DeliberationMessage{TaskID: taskID, Round: 1})

	require.NoError(t, s.Snapshot())

	got, ok := s.GetHolon(taskID)
	require.True(t, ok)
	require.Equal(t, swarmtypes.HolonForming, got.Status)
	require.Len(t, s.Ballots(taskID), 1)
	require.Len(t, s.IrvRounds(taskID), 1)
	require.Len(t, s.Deliberation(taskID), 1)
}

func TestStore_Forget(t *testing.T) {
	taskID := swarmid.FromBytes([]byte("task-2"))
	s := New(memdb.New(), log.NewNoOpLogger())
	s.PutHolon(swarmtypes.HolonState{TaskID: taskID})
	s.Forget(taskID)
	_, ok := s.GetHolon(taskID)
	require.False(t, ok)
}

func TestArtifactStore_PutRejectsMismatchedCID(t *testing.T) {
	dir := t.TempDir()
	a, err := NewArtifactStore(dir)
	require.NoError(t, err)

	content := []byte("hello world")
	err = a.Put("deadbeef", content)
	require.Error(t, err)
}

func TestArtifactStore_PutGetRoundTrip(t *testing.T) {
	dir := t.TempDir()
	a, err := NewArtifactStore(dir)
	require.NoError(t, err)

	content := []byte("hello world")
	cid := swarmtypes.ContentCID(content)
	require.NoError(t, a.Put(cid, content))
	require.True(t, a.Has(cid))

	got, err := a.Get(cid)
	require.NoError(t, err)
	require.Equal(t, content, got)
}

func TestSweeper_NeverTouchesInFlightTasks(t *testing.T) {
	taskID := swarmid.FromBytes([]byte("task-3"))
	s := New(memdb.New(), log.NewNoOpLogger())
	s.PutHolon(swarmtypes.HolonState{TaskID: taskID})

	sw := NewSweeper(s, time.Hour, log.NewNoOpLogger())
	sw.Sweep()

	_, ok := s.GetHolon(taskID)
	require.True(t, ok, "a task never marked terminal must survive any number of sweeps")
}

func TestSweeper_ReapsAfterWindowElapses(t *testing.T) {
	taskID := swarmid.FromBytes([]byte("task-4"))
	s := New(memdb.New(), log.NewNoOpLogger())
	s.PutHolon(swarmtypes.HolonState{TaskID: taskID})

	now := time.Now()
	sw := NewSweeper(s, time.Hour, log.NewNoOpLogger())
	sw.Now = func() time.Time { return now }
	sw.MarkTerminal(taskID)

	sw.Sweep()
	_, ok := s.GetHolon(taskID)
	require.True(t, ok, "window has not elapsed yet")

	sw.Now = func() time.Time { return now.Add(2 * time.Hour) }
	sw.Sweep()
	_, ok = s.GetHolon(taskID)
	require.False(t, ok, "window elapsed, record must be reaped")
}
