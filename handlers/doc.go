// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the Seat Pick API.

# Handler Types

Each handler is a struct with database and config dependencies:

  - PollHandler: Poll lifecycle (create, publish, close)
  - VotingHandler: Username claims and approval ballot submission
  - ResultsHandler: Poll info and results retrieval

Handlers are created via constructor functions that accept *sql.DB and Config:

	pollHandler := handlers.NewPollHandler(db, cfg)

# Poll Lifecycle

Polls progress through three states: draft → open → closed

	POST /polls              → CreatePoll (returns admin_key)
	POST /polls/{id}/options → AddOption (draft only)
	POST /polls/{id}/publish → PublishPoll (generates share_slug)
	POST /polls/{id}/close   → ClosePoll (computes SPAV winners)

Admin operations require the X-Admin-Key header.

# Voting Flow

Voters interact via the share slug:

	POST /polls/{slug}/claim-username → ClaimUsername (returns voter_token)
	POST /polls/{slug}/ballots        → SubmitBallot (create or update)
	GET  /polls/{slug}/my-ballot      → GetMyBallot (current approvals)

Voter operations require the X-Voter-Token header.

# SPAV Computation

Sequential proportional approval voting runs at close time in spav.go:

	result, err := ComputeSPAVResult(db, pollID, seats)

Seats are filled one round at a time; after each round every ballot is
reweighted to 1/(1+m) where m is how many of its approvals have been
elected. The full per-round standings are stored in an immutable result
snapshot, so results never change after a poll closes.
*/
package handlers
