// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package voting

import (
	"bytes"

	"github.com/Good-karma-lab/Agent-Swarm-Communication-Protocol-sub002/internal/swarmerr"
	"github.com/Good-karma-lab/Agent-Swarm-Communication-Protocol-sub002/internal/swarmid"
	"github.com/Good-karma-lab/Agent-Swarm-Communication-Protocol-sub002/internal/swarmtypes"
	"github.com/Good-karma-lab/Agent-Swarm-Communication-Protocol-sub002/utils/bag"
)

// ValidateBallot enforces self-vote prohibition (spec.md §4.6): a
// voter's top ranking must not be their own proposed plan.
func ValidateBallot(b swarmtypes.BallotRecord, planProposer map[swarmid.ID]swarmid.AgentID) error {
	if len(b.Rankings) == 0 {
		return nil
	}
	if proposer, ok := planProposer[b.Rankings[0]]; ok && proposer == b.Voter {
		return swarmerr.ErrSelfVoteProhibited
	}
	return nil
}

// Result is the outcome of a completed IRV tally.
type Result struct {
	Winner swarmid.ID
	Rounds []swarmtypes.IrvRound
}

// Tally runs instant-runoff voting over ballots across the given plans,
// per spec.md §4.6: repeated first-choice tallying among continuing
// candidates, majority check, fewest-votes elimination with a
// critic-aggregate then lowest-hash tiebreak, and ballot redistribution
// to next continuing preference. Grounded on the teacher's
// utils/bag.Bag[T] vote multiset, mirroring poll/poll.go's per-round
// Vote() -> []bag.Bag[ids.ID] shape.
func Tally(taskID swarmid.ID, plans []swarmid.ID, ballots []swarmtypes.BallotRecord) (Result, error) {
	if len(plans) == 0 {
		return Result{}, swarmerr.ErrNoProposals
	}

	continuing := make(map[swarmid.ID]bool, len(plans))
	for _, p := range plans {
		continuing[p] = true
	}

	var rounds []swarmtypes.IrvRound
	roundNumber := 0

	for {
		roundNumber++
		tallies, totalVotes := tallyFirstChoice(ballots, continuing)

		if winner, ok := majorityWinner(tallies, totalVotes); ok {
			rounds = append(rounds, finalRound(taskID, roundNumber, tallies, winner))
			return Result{Winner: winner, Rounds: rounds}, nil
		}

		if len(continuing) == 1 {
			var only swarmid.ID
			for p := range continuing {
				only = p
			}
			rounds = append(rounds, finalRound(taskID, roundNumber, tallies, only))
			return Result{Winner: only, Rounds: rounds}, nil
		}

		eliminated := selectElimination(tallies, continuing, ballots)
		delete(continuing, eliminated)

		remaining := make([]swarmid.ID, 0, len(continuing))
		for p := range continuing {
			remaining = append(remaining, p)
		}
		sortIDs(remaining)

		elim := eliminated
		rounds = append(rounds, swarmtypes.IrvRound{
			SchemaVersion:        swarmtypes.SchemaVersion,
			TaskID:               taskID,
			RoundNumber:          roundNumber,
			Tallies:              tallies,
			Eliminated:           &elim,
			ContinuingCandidates: remaining,
		})
	}
}

// tallyFirstChoice counts, for each ballot, its highest-ranked candidate
// still in continuing.
func tallyFirstChoice(ballots []swarmtypes.BallotRecord, continuing map[swarmid.ID]bool) (map[swarmid.ID]uint32, int) {
	b := bag.New[swarmid.ID]()
	counted := 0
	for _, ballot := range ballots {
		for _, rank := range ballot.Rankings {
			if continuing[rank] {
				b.Add(rank)
				counted++
				break
			}
		}
	}
	tallies := make(map[swarmid.ID]uint32, len(continuing))
	for p := range continuing {
		tallies[p] = uint32(b.Count(p))
	}
	return tallies, counted
}

// majorityWinner reports whether some candidate holds a strict majority
// of continuing first-choice tallies.
func majorityWinner(tallies map[swarmid.ID]uint32, totalVotes int) (swarmid.ID, bool) {
	if totalVotes == 0 {
		return swarmid.Empty, false
	}
	for p, count := range tallies {
		if int(count)*2 > totalVotes {
			return p, true
		}
	}
	return swarmid.Empty, false
}

// selectElimination picks the candidate to drop this round: fewest
// first-choice votes, tied by lowest mean critic aggregate (averaged
// across every ballot that scored the plan), tied by lowest plan_id
// hash bytes.
func selectElimination(tallies map[swarmid.ID]uint32, continuing map[swarmid.ID]bool, ballots []swarmtypes.BallotRecord) swarmid.ID {
	var min uint32
	first := true
	var floor []swarmid.ID
	for p := range continuing {
		count := tallies[p]
		if first || count < min {
			min = count
			floor = []swarmid.ID{p}
			first = false
		} else if count == min {
			floor = append(floor, p)
		}
	}
	if len(floor) == 1 {
		return floor[0]
	}

	aggregates := meanCriticAggregate(floor, ballots)
	var lowestAgg float64
	var tied []swarmid.ID
	firstAgg := true
	for _, p := range floor {
		agg := aggregates[p]
		if firstAgg || agg < lowestAgg {
			lowestAgg = agg
			tied = []swarmid.ID{p}
			firstAgg = false
		} else if agg == lowestAgg {
			tied = append(tied, p)
		}
	}
	if len(tied) == 1 {
		return tied[0]
	}

	// Lowest plan_id hash wins the deterministic tie, so the candidate we
	// eliminate here is the one with the highest hash.
	sortIDs(tied)
	return tied[len(tied)-1]
}

// meanCriticAggregate averages CriticScore.Aggregate() across every
// ballot that recorded a score for each of the given plans. A plan no
// voter scored has an aggregate of 0, placing it first for elimination —
// matching the spec's "no scores to break them" fallback to hash order,
// since all unscored plans then tie at 0 and fall through to the
// lowest-hash rule below.
func meanCriticAggregate(plans []swarmid.ID, ballots []swarmtypes.BallotRecord) map[swarmid.ID]float64 {
	sums := make(map[swarmid.ID]float64, len(plans))
	counts := make(map[swarmid.ID]int, len(plans))
	for _, ballot := range ballots {
		for _, p := range plans {
			if score, ok := ballot.CriticScores[p]; ok {
				sums[p] += score.Aggregate()
				counts[p]++
			}
		}
	}
	out := make(map[swarmid.ID]float64, len(plans))
	for _, p := range plans {
		if counts[p] == 0 {
			out[p] = 0
			continue
		}
		out[p] = sums[p] / float64(counts[p])
	}
	return out
}

func finalRound(taskID swarmid.ID, roundNumber int, tallies map[swarmid.ID]uint32, winner swarmid.ID) swarmtypes.IrvRound {
	continuing := []swarmid.ID{winner}
	return swarmtypes.IrvRound{
		SchemaVersion:        swarmtypes.SchemaVersion,
		TaskID:               taskID,
		RoundNumber:          roundNumber,
		Tallies:              tallies,
		Eliminated:           nil,
		ContinuingCandidates: continuing,
	}
}

func sortIDs(ids []swarmid.ID) {
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && bytes.Compare(ids[j][:], ids[j-1][:]) < 0; j-- {
			ids[j], ids[j-1] = ids[j-1], ids[j]
		}
	}
}
