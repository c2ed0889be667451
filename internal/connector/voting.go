// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package connector

import (
	"github.com/Good-karma-lab/Agent-Swarm-Communication-Protocol-sub002/internal/swarmerr"
	"github.com/Good-karma-lab/Agent-Swarm-Communication-Protocol-sub002/internal/swarmid"
	"github.com/Good-karma-lab/Agent-Swarm-Communication-Protocol-sub002/internal/swarmtypes"
	"github.com/Good-karma-lab/Agent-Swarm-Communication-Protocol-sub002/internal/voting"
)

// buildElectorate assembles the board-plus-senate electorate for taskID,
// per spec.md §4.6.
func (c *Connector) buildElectorate(state swarmtypes.HolonState, taskID swarmid.ID) []swarmid.AgentID {
	c.mu.Lock()
	pool := append([]swarmid.AgentID(nil), c.tier2Pool...)
	seatCount := 3
	if c.Config != nil {
		seatCount = c.Config.SenateSeatCount
	}
	epoch := uint64(0)
	if t, ok := c.tasks[taskID]; ok {
		epoch = t.Epoch
	}
	c.mu.Unlock()
	return voting.AssembleElectorate(state.Members, pool, seatCount, taskID, epoch)
}

// SubmitVote handles swarm.submit_vote: validates the self-vote
// prohibition, records the ballot, and runs the IRV tally once every
// electorate member has voted.
func (c *Connector) SubmitVote(ballot swarmtypes.BallotRecord) error {
	r, ok := c.round(ballot.TaskID)
	if !ok {
		return swarmerr.ErrTaskNotFound
	}

	c.mu.Lock()
	planProposer := make(map[swarmid.ID]swarmid.AgentID, len(r.planProposer))
	for k, v := range r.planProposer {
		planProposer[k] = v
	}
	c.mu.Unlock()

	if err := voting.ValidateBallot(ballot, planProposer); err != nil {
		return err
	}

	taskID := ballot.TaskID
	ballot.OriginalRankings = append([]swarmid.ID(nil), ballot.Rankings...)
	c.Store.AppendBallot(taskID, ballot)
	if c.Metrics != nil {
		c.Metrics.VotesCast.Inc()
	}

	c.mu.Lock()
	r.votesCast[ballot.Voter] = struct{}{}
	complete := len(r.votesCast) >= len(r.electorate)
	c.mu.Unlock()

	if !complete {
		return nil
	}
	return c.tallyAndAdvance(taskID, r)
}

func (c *Connector) tallyAndAdvance(taskID swarmid.ID, r *taskRound) error {
	revealed := r.coordinator.RevealedPlans()
	planIDs := make([]swarmid.ID, 0, len(revealed))
	for _, p := range revealed {
		planIDs = append(planIDs, p.PlanID)
	}
	ballots := c.Store.Ballots(taskID)

	result, err := voting.Tally(taskID, planIDs, ballots)
	if err != nil {
		return err
	}
	c.Store.AppendIrvRounds(taskID, result.Rounds)
	if c.Metrics != nil {
		c.Metrics.IRVRoundsPerDecision.Observe(float64(len(result.Rounds)))
	}

	c.mu.Lock()
	r.winner = result.Winner
	c.mu.Unlock()
	r.coordinator.Complete()

	return c.advanceToExecuting(taskID, r, result.Winner)
}

// AdvanceVotingTimeout implements spec.md §7's voting-timeout recovery:
// elect the revealed plan with the highest aggregate critic score
// instead of waiting indefinitely for stragglers.
func (c *Connector) AdvanceVotingTimeout(taskID swarmid.ID) error {
	r, ok := c.round(taskID)
	if !ok {
		return swarmerr.ErrTaskNotFound
	}
	revealed := r.coordinator.RevealedPlans()
	if len(revealed) == 0 {
		return swarmerr.ErrVotingTimeout
	}
	ballots := c.Store.Ballots(taskID)
	scores := make(map[swarmid.ID][]swarmtypes.CriticScore)
	for _, b := range ballots {
		for planID, score := range b.CriticScores {
			scores[planID] = append(scores[planID], score)
		}
	}
	best := revealed[0].PlanID
	bestAgg := -1.0
	for _, p := range revealed {
		agg := meanAggregate(scores[p.PlanID])
		if agg > bestAgg {
			bestAgg = agg
			best = p.PlanID
		}
	}
	c.mu.Lock()
	r.winner = best
	c.mu.Unlock()
	r.coordinator.Complete()
	return c.advanceToExecuting(taskID, r, best)
}

func meanAggregate(scores []swarmtypes.CriticScore) float64 {
	if len(scores) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range scores {
		sum += s.Aggregate()
	}
	return sum / float64(len(scores))
}

// GetBallots answers swarm.get_ballots.
func (c *Connector) GetBallots(taskID swarmid.ID) []swarmtypes.BallotRecord {
	return c.Store.Ballots(taskID)
}

// GetIrvRounds answers swarm.get_irv_rounds.
func (c *Connector) GetIrvRounds(taskID swarmid.ID) []swarmtypes.IrvRound {
	return c.Store.IrvRounds(taskID)
}

// GetBoardStatus answers swarm.get_board_status.
func (c *Connector) GetBoardStatus(taskID swarmid.ID) (swarmtypes.HolonState, error) {
	if st, ok := c.Store.GetHolon(taskID); ok {
		return st, nil
	}
	return swarmtypes.HolonState{}, swarmerr.ErrTaskNotFound
}
