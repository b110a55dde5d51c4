// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "time"

// Poll status constants
const (
	StatusDraft  = "draft"
	StatusOpen   = "open"
	StatusClosed = "closed"
)

// Voting method constants
const (
	MethodSPAV = "spav"
)

// Request types

type CreatePollRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	CreatorName string `json:"creator_name"`
	Seats       int    `json:"seats"`
}

type AddOptionRequest struct {
	Label string `json:"label"`
}

type ClaimUsernameRequest struct {
	Username string `json:"username"`
}

// Approvals is the ordered list of approved option IDs. Order is kept:
// it decides ties when the poll closes.
type SubmitBallotRequest struct {
	Approvals []string `json:"approvals"`
}

// Response types

type CreatePollResponse struct {
	PollID   string `json:"poll_id"`
	AdminKey string `json:"admin_key"`
}

type AddOptionResponse struct {
	OptionID string `json:"option_id"`
}

type PublishPollResponse struct {
	ShareSlug string `json:"share_slug"`
	ShareURL  string `json:"share_url"`
}

type ClaimUsernameResponse struct {
	VoterToken string `json:"voter_token"`
}

type SubmitBallotResponse struct {
	BallotID string `json:"ballot_id"`
	Message  string `json:"message"`
}

type ClosePollResponse struct {
	ClosedAt time.Time      `json:"closed_at"`
	Snapshot ResultSnapshot `json:"snapshot"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// Domain types

type Poll struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	CreatorName     string     `json:"creator_name"`
	Method          string     `json:"method"`
	Seats           int        `json:"seats"`
	Status          string     `json:"status"`
	ShareSlug       *string    `json:"share_slug,omitempty"`
	ClosedAt        *time.Time `json:"closed_at,omitempty"`
	FinalSnapshotID *string    `json:"final_snapshot_id,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

type Option struct {
	ID     string `json:"id"`
	PollID string `json:"poll_id"`
	Label  string `json:"label"`
}

type PollWithOptions struct {
	Poll    Poll     `json:"poll"`
	Options []Option `json:"options"`
}

type Ballot struct {
	ID          string    `json:"id"`
	PollID      string    `json:"poll_id"`
	VoterToken  string    `json:"-"` // Never expose in JSON
	SubmittedAt time.Time `json:"submitted_at"`
	Approvals   []string  `json:"approvals"`
}

// SPAV result types

// OptionStanding is one row of a round's standings table. Disapprove is
// the weighted vote mass not behind the option (weighted_votes - score);
// the percentage fields are zero when the round had no weighted vote mass.
type OptionStanding struct {
	OptionID          string  `json:"option_id"`
	Label             string  `json:"label"`
	Score             float64 `json:"score"`
	Disapprove        float64 `json:"disapprove"`
	PercentApprove    float64 `json:"percent_approve"`
	PercentDisapprove float64 `json:"percent_disapprove"`
}

// RoundResult records one elected seat: the winner and the standings of
// every option still eligible that round, in descending score order.
type RoundResult struct {
	Seat          int              `json:"seat"`
	WinnerID      string           `json:"winner_id"`
	WinnerLabel   string           `json:"winner_label"`
	WeightedVotes float64          `json:"weighted_votes"`
	Standings     []OptionStanding `json:"standings"`
}

// Winner pairs an elected option with the seat it took. Winners are listed
// in election order, not alphabetical order.
type Winner struct {
	Seat     int    `json:"seat"`
	OptionID string `json:"option_id"`
	Label    string `json:"label"`
}

type ResultSnapshot struct {
	ID          string        `json:"id"`
	PollID      string        `json:"poll_id"`
	Method      string        `json:"method"`
	ComputedAt  time.Time     `json:"computed_at"`
	Winners     []Winner      `json:"winners"`
	Rounds      []RoundResult `json:"rounds"`
	BallotCount int           `json:"ballot_count"`
}
