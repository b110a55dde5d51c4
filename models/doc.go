// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - CreatePollRequest: title, description, creator_name, seats
  - AddOptionRequest: label
  - ClaimUsernameRequest: username
  - SubmitBallotRequest: approvals (ordered option-ID list)

# Response Types

Types for JSON responses:

  - CreatePollResponse: poll_id, admin_key
  - AddOptionResponse: option_id
  - PublishPollResponse: share_slug, share_url
  - ClaimUsernameResponse: voter_token
  - SubmitBallotResponse: ballot_id, message
  - ClosePollResponse: closed_at, snapshot
  - ErrorResponse: error, message

# Domain Types

Internal data structures:

  - Poll: poll metadata, seat count, lifecycle state
  - Option: candidate option with label
  - Ballot: a voter's ordered approval set
  - OptionStanding: one option's score in one election round
  - RoundResult: one seat being filled
  - Winner: elected option with its seat number
  - ResultSnapshot: immutable result record

# Constants

Status values:

	StatusDraft  = "draft"
	StatusOpen   = "open"
	StatusClosed = "closed"

Voting method:

	MethodSPAV = "spav"
*/
package models
