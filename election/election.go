// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"errors"
	"fmt"
)

// ErrInsufficientCandidates is returned when no remaining ballot approves a
// non-elected candidate but seats are still unfilled.
var ErrInsufficientCandidates = errors.New("not enough candidates to fill all seats")

// Candidate is identified by its name. Two Candidate values with the same
// name are the same candidate, including as map keys.
type Candidate struct {
	Name string
}

// Ballot is an ordered list of approved candidates plus a weight that the
// engine lowers between rounds. Approval order never affects scoring, only
// which candidate is seen first when scores tie.
//
// A ballot list belongs to exactly one Elect call. Call ResetWeights before
// reusing it for an independent run.
type Ballot struct {
	Approved []Candidate
	Weight   float64
}

// NewBallot builds a ballot approving the named candidates, weight 1.0.
func NewBallot(names ...string) *Ballot {
	approved := make([]Candidate, len(names))
	for i, name := range names {
		approved[i] = Candidate{Name: name}
	}
	return &Ballot{Approved: approved, Weight: 1.0}
}

// ResetWeights restores every ballot to weight 1.0 so the list can be fed
// into another Elect call.
func ResetWeights(ballots []*Ballot) {
	for _, b := range ballots {
		b.Weight = 1.0
	}
}

// CandidateScore is one scoreboard entry: a candidate and its accumulated
// weighted score for a round.
type CandidateScore struct {
	Candidate Candidate
	Score     float64
}

// Round records one seat being filled: the winner, the score of every
// candidate still eligible that round, and the total ballot weight in play
// before reweighting.
//
// Standing holds the same scores as the map, in the order candidates were
// first seen during scoring. That order is the tie-break order.
type Round struct {
	Winner        Candidate
	Scores        map[Candidate]float64
	Standing      []CandidateScore
	WeightedVotes float64
}

// Result is the outcome of a completed election: winners in the order they
// were elected, one Round per seat, and the ballots with their final weights.
type Result struct {
	Winners []Candidate
	Rounds  []Round
	Ballots []*Ballot
}

// scoreboard accumulates weighted scores while remembering the order in
// which candidates first appeared. Native maps don't keep insertion order,
// and the tie-break depends on it.
type scoreboard struct {
	index   map[Candidate]int
	entries []CandidateScore
}

func newScoreboard() *scoreboard {
	return &scoreboard{index: make(map[Candidate]int)}
}

func (sb *scoreboard) add(c Candidate, weight float64) {
	i, ok := sb.index[c]
	if !ok {
		i = len(sb.entries)
		sb.index[c] = i
		sb.entries = append(sb.entries, CandidateScore{Candidate: c})
	}
	sb.entries[i].Score += weight
}

// leader returns the candidate with the highest score. Ties go to the
// candidate inserted first. ok is false when the board is empty.
func (sb *scoreboard) leader() (winner Candidate, ok bool) {
	if len(sb.entries) == 0 {
		return Candidate{}, false
	}
	best := sb.entries[0]
	for _, e := range sb.entries[1:] {
		if e.Score > best.Score {
			best = e
		}
	}
	return best.Candidate, true
}

func (sb *scoreboard) snapshot() (map[Candidate]float64, []CandidateScore) {
	scores := make(map[Candidate]float64, len(sb.entries))
	standing := make([]CandidateScore, len(sb.entries))
	copy(standing, sb.entries)
	for _, e := range sb.entries {
		scores[e.Candidate] = e.Score
	}
	return scores, standing
}

// Elect fills the requested number of seats from the given ballots using
// Sequential Proportional Approval Voting. With seats == 1 this is plain
// approval voting.
//
// Each round scores every non-elected candidate by summing the weights of
// the ballots approving it, elects the highest-scoring candidate, and then
// reweights every ballot to 1/(1+m), where m counts the elected candidates
// that ballot approves.
//
// Ballot order matters when scores tie: the candidate encountered first in
// ballot iteration order wins. Callers that care about tie-breaking must
// control input order deliberately.
//
// The ballots are mutated in place; their final weights are part of the
// returned Result.
func Elect(ballots []*Ballot, seats int) (*Result, error) {
	if seats < 0 {
		return nil, fmt.Errorf("seats must be non-negative, got %d", seats)
	}

	res := &Result{Ballots: ballots}
	elected := make(map[Candidate]bool, seats)

	for len(res.Winners) < seats {
		sb := newScoreboard()
		for _, ballot := range ballots {
			for _, c := range ballot.Approved {
				if elected[c] {
					continue
				}
				sb.add(c, ballot.Weight)
			}
		}

		winner, ok := sb.leader()
		if !ok {
			return nil, fmt.Errorf("seat %d of %d: %w", len(res.Winners)+1, seats, ErrInsufficientCandidates)
		}

		var weightedVotes float64
		for _, ballot := range ballots {
			weightedVotes += ballot.Weight
		}

		res.Winners = append(res.Winners, winner)
		elected[winner] = true

		scores, standing := sb.snapshot()
		res.Rounds = append(res.Rounds, Round{
			Winner:        winner,
			Scores:        scores,
			Standing:      standing,
			WeightedVotes: weightedVotes,
		})

		for _, ballot := range ballots {
			m := 0
			for _, c := range ballot.Approved {
				if elected[c] {
					m++
				}
			}
			ballot.Weight = 1.0 / float64(1+m)
		}
	}

	return res, nil
}
