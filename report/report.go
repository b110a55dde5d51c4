// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package report

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/seatpick/election"
)

// Write renders an election result as text: a header, one standings table
// per round, and a seat summary.
func Write(w io.Writer, res *election.Result) error {
	if _, err := fmt.Fprintf(w, "%s ballots cast\n", humanize.Comma(int64(len(res.Ballots)))); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, "Columns represent weighted preferences."); err != nil {
		return err
	}

	for i, round := range res.Rounds {
		if _, err := fmt.Fprintf(w, "Round %d:\n", i+1); err != nil {
			return err
		}
		if err := writeRound(w, round); err != nil {
			return err
		}
	}

	for i, winner := range res.Winners {
		if _, err := fmt.Fprintf(w, "Seat %d: %s wins\n", i+1, winner.Name); err != nil {
			return err
		}
	}

	return nil
}

func writeRound(w io.Writer, round election.Round) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Name\tApprove\tDo Not Approve\tPercent Approve\tPercent Do Not Approve")

	votes := round.WeightedVotes
	for _, entry := range ranked(round) {
		name := entry.Candidate.Name
		if entry.Candidate == round.Winner {
			name += " (winner)"
		}
		disapprove := votes - entry.Score
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			name,
			formatScore(entry.Score),
			formatScore(disapprove),
			formatPercent(entry.Score, votes),
			formatPercent(disapprove, votes),
		)
	}

	return tw.Flush()
}

// ranked orders a round's standing by descending score. The sort is stable,
// so tied candidates stay in first-seen order.
func ranked(round election.Round) []election.CandidateScore {
	entries := make([]election.CandidateScore, len(round.Standing))
	copy(entries, round.Standing)
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})
	return entries
}

func formatScore(score float64) string {
	return humanize.FtoaWithDigits(score, 2)
}

// formatPercent guards the zero-vote round: with no weighted vote mass
// there is no meaningful percentage.
func formatPercent(part, total float64) string {
	if total == 0 {
		return "n/a"
	}
	return fmt.Sprintf("%.2f%%", 100*part/total)
}
