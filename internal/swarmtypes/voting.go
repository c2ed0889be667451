// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package swarmtypes

import (
	"github.com/Good-karma-lab/Agent-Swarm-Communication-Protocol-sub002/internal/swarmid"
)

// CriticScore is the four-dimensional score a voter assigns to a plan.
// Each field is expected to lie in [0,1].
type CriticScore struct {
	Feasibility  float64 `json:"feasibility"`
	Parallelism  float64 `json:"parallelism"`
	Completeness float64 `json:"completeness"`
	Risk         float64 `json:"risk"`
}

// Aggregate computes 0.30*feasibility + 0.25*parallelism +
// 0.30*completeness + 0.15*(1-risk), the tie-break formula of spec.md §4.6.
func (c CriticScore) Aggregate() float64 {
	return 0.30*c.Feasibility + 0.25*c.Parallelism + 0.30*c.Completeness + 0.15*(1-c.Risk)
}

// BallotRecord is a voter's ranked ballot plus critic scores.
type BallotRecord struct {
	SchemaVersion       int                             `json:"schema_version"`
	TaskID              swarmid.ID                      `json:"task_id"`
	Voter               swarmid.AgentID                 `json:"voter"`
	Rankings            []swarmid.ID                    `json:"rankings"`
	OriginalRankings    []swarmid.ID                    `json:"original_rankings"`
	CriticScores        map[swarmid.ID]CriticScore      `json:"critic_scores"`
	IRVRoundEliminated  *int                            `json:"irv_round_when_eliminated,omitempty"`
}

// IrvRound is one round of instant-runoff tallying.
type IrvRound struct {
	SchemaVersion         int                `json:"schema_version"`
	TaskID                swarmid.ID         `json:"task_id"`
	RoundNumber           int                `json:"round_number"`
	Tallies               map[swarmid.ID]uint32 `json:"tallies"`
	Eliminated            *swarmid.ID        `json:"eliminated,omitempty"`
	ContinuingCandidates  []swarmid.ID       `json:"continuing_candidates"`
}

// DeliberationMessageType enumerates the RFP discussion message kinds.
type DeliberationMessageType string

const (
	MsgProposalSubmission DeliberationMessageType = "ProposalSubmission"
	MsgCritiqueFeedback   DeliberationMessageType = "CritiqueFeedback"
	MsgRebuttal           DeliberationMessageType = "Rebuttal"
	MsgSynthesisResult    DeliberationMessageType = "SynthesisResult"
)

// DeliberationMessage is one entry in the task's audit log.
type DeliberationMessage struct {
	SchemaVersion int                        `json:"schema_version"`
	TaskID        swarmid.ID                 `json:"task_id"`
	Round         int                        `json:"round"`
	MessageType   DeliberationMessageType    `json:"message_type"`
	Speaker       swarmid.AgentID            `json:"speaker"`
	Content       string                     `json:"content"`
	TimestampMs   int64                      `json:"timestamp_ms"`
	PlanScores    map[swarmid.ID]CriticScore `json:"plan_scores,omitempty"`
}
