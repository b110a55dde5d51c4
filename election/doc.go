// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package election implements approval voting and its multi-seat
generalization, Sequential Proportional Approval Voting (SPAV).

The same entry point serves both, since SPAV reduces to plain approval
voting when one seat is requested:

	ballots := []*election.Ballot{
		election.NewBallot("Alice", "Bob"),
		election.NewBallot("Alice"),
		election.NewBallot("Bob"),
	}
	res, err := election.Elect(ballots, 2)

# Algorithm

Each round elects exactly one candidate:

 1. Score: every ballot adds its current weight to the score of each
    approved, not-yet-elected candidate.
 2. Select: the highest score wins. Ties go to the candidate seen first
    in ballot iteration order.
 3. Record: the round keeps the winner, every eligible candidate's score,
    and the total ballot weight before reweighting.
 4. Reweight: each ballot's weight becomes 1/(1+m), where m is how many
    elected candidates it approves.

Reweighting is what makes the method proportional: a ballot that already
got one of its candidates elected counts half as much toward the next seat,
a third as much after two, and so on.

# Determinism

Elect is fully deterministic. Given the same ballots in the same order it
produces the same Result, including tie-breaks. The flip side is that
tie-breaks depend on input order, so callers must order ballots
deliberately (the HTTP service orders them by submission time).

# Failure

When no remaining ballot approves any non-elected candidate while seats are
still unfilled, Elect fails with an error wrapping
ErrInsufficientCandidates. An empty ballot list with seats > 0 fails the
same way. No partial Result is returned.

# Ballot ownership

Elect mutates ballot weights in place. A ballot list belongs to one Elect
call; use ResetWeights before reusing it.
*/
package election
