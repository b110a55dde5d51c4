// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"fmt"
	"sort"

	"github.com/danielhkuo/seatpick/election"
	"github.com/danielhkuo/seatpick/models"
)

// SPAVResult is the computed outcome of a closed poll, before it is
// wrapped into a stored snapshot.
type SPAVResult struct {
	Winners     []models.Winner      `json:"winners"`
	Rounds      []models.RoundResult `json:"rounds"`
	BallotCount int                  `json:"ballot_count"`
}

// querier is the read surface shared by *sql.DB and *sql.Tx. Close-time
// computation runs on the closing transaction so the snapshot sees exactly
// the ballots sealed by it.
type querier interface {
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// ComputeSPAVResult runs the election for a poll: it loads every ballot's
// approvals in a deterministic order, feeds them to the election engine,
// and maps the engine's rounds back onto poll options.
//
// Ballots iterate in submission order and approvals in the order the voter
// listed them, so tie-breaks are stable across recomputation. Seats are
// clamped to the number of distinct approved options; a poll nobody voted
// on yields an empty result rather than an error.
func ComputeSPAVResult(conn querier, pollID string, seats int) (*SPAVResult, error) {
	labels, err := getOptionLabels(conn, pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to get option labels: %w", err)
	}

	ballots, ballotCount, err := getApprovalBallots(conn, pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to get ballots: %w", err)
	}

	// Seats beyond the distinct approved options can never be filled;
	// the engine would refuse, so clamp up front.
	distinct := make(map[election.Candidate]bool)
	for _, b := range ballots {
		for _, c := range b.Approved {
			distinct[c] = true
		}
	}
	if seats > len(distinct) {
		seats = len(distinct)
	}

	result := &SPAVResult{BallotCount: ballotCount}
	if seats == 0 {
		return result, nil
	}

	res, err := election.Elect(ballots, seats)
	if err != nil {
		return nil, fmt.Errorf("election failed: %w", err)
	}

	for i, w := range res.Winners {
		result.Winners = append(result.Winners, models.Winner{
			Seat:     i + 1,
			OptionID: w.Name,
			Label:    labels[w.Name],
		})
	}
	for i, round := range res.Rounds {
		result.Rounds = append(result.Rounds, roundResult(i+1, round, labels))
	}

	return result, nil
}

// roundResult converts one engine round into its standings table, rows in
// descending score with ties in first-seen order.
func roundResult(seat int, round election.Round, labels map[string]string) models.RoundResult {
	standing := make([]election.CandidateScore, len(round.Standing))
	copy(standing, round.Standing)
	sort.SliceStable(standing, func(i, j int) bool {
		return standing[i].Score > standing[j].Score
	})

	votes := round.WeightedVotes
	rows := make([]models.OptionStanding, len(standing))
	for i, entry := range standing {
		row := models.OptionStanding{
			OptionID:   entry.Candidate.Name,
			Label:      labels[entry.Candidate.Name],
			Score:      entry.Score,
			Disapprove: votes - entry.Score,
		}
		if votes > 0 {
			row.PercentApprove = 100 * entry.Score / votes
			row.PercentDisapprove = 100 * row.Disapprove / votes
		}
		rows[i] = row
	}

	return models.RoundResult{
		Seat:          seat,
		WinnerID:      round.Winner.Name,
		WinnerLabel:   labels[round.Winner.Name],
		WeightedVotes: votes,
		Standings:     rows,
	}
}

// getOptionLabels retrieves option labels for a poll
func getOptionLabels(conn querier, pollID string) (map[string]string, error) {
	rows, err := conn.Query(`
		SELECT id, label FROM option WHERE poll_id = $1
	`, pollID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	labels := make(map[string]string)
	for rows.Next() {
		var id, label string
		if err := rows.Scan(&id, &label); err != nil {
			return nil, err
		}
		labels[id] = label
	}

	return labels, rows.Err()
}

// getApprovalBallots loads every ballot for a poll as an election ballot
// whose candidates are option IDs. The ORDER BY is the determinism
// contract: submission order for ballots, voter order for approvals.
func getApprovalBallots(conn querier, pollID string) ([]*election.Ballot, int, error) {
	rows, err := conn.Query(`
		SELECT b.id, a.option_id
		FROM ballot b
		JOIN ballot_approval a ON a.ballot_id = b.id
		WHERE b.poll_id = $1
		ORDER BY b.submitted_at, b.id, a.position
	`, pollID)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var ballots []*election.Ballot
	var lastBallotID string
	for rows.Next() {
		var ballotID, optionID string
		if err := rows.Scan(&ballotID, &optionID); err != nil {
			return nil, 0, err
		}
		if ballotID != lastBallotID {
			ballots = append(ballots, &election.Ballot{Weight: 1.0})
			lastBallotID = ballotID
		}
		last := ballots[len(ballots)-1]
		last.Approved = append(last.Approved, election.Candidate{Name: optionID})
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	// Ballot rows with no approvals are excluded by the join; count them
	// separately so ballot_count reflects every cast ballot.
	var count int
	if err := conn.QueryRow(`
		SELECT COUNT(*) FROM ballot WHERE poll_id = $1
	`, pollID).Scan(&count); err != nil {
		return nil, 0, err
	}

	return ballots, count, nil
}
