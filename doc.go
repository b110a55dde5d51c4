// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Seat Pick server and CLI.

Seat Pick is a multi-winner election service built on sequential
proportional approval voting (SPAV): voters approve any subset of the
options, and seats are filled round by round with ballots reweighted to
1/(1+m) after each win, where m is how many of the ballot's approvals
have already been elected.

# One-Shot Elections

Given a ballot CSV file, the binary runs a single election and prints a
round-by-round report to stdout:

	go run . -f ballots.csv -seats 3

Each line of the file is an optional repeat count followed by approved
candidate names:

	# 12 voters approve Alice and Bob
	12, Alice, Bob
	Carol

# Starting the Server

Without -f the binary serves the HTTP API. It requires environment
variables or CLI flags for configuration:

	DATABASE_URL=file:seatpick.db go run .

Or with flags:

	go run . -p 3319 -t sqlite -d "file:seatpick.db"

# Configuration

Required settings in server mode:

  - DATABASE_URL (-d): SQLite or PostgreSQL connection string
  - ADMIN_KEY_SALT (--admin-salt): Secret for admin key HMAC
  - POLL_SLUG_SALT (--slug-salt): Secret for share slug generation

Optional settings:

  - PORT (-p): Server port (default: 3319)
  - DATABASE_TYPE (-t): "sqlite" (default) or "postgres"

A .env file in the working directory is loaded before flags are parsed.

# Architecture

The election engine is a plain library with no I/O; the server and CLI
are thin shells around it:

  - election: SPAV rounds, scoring, and ballot reweighting
  - ballotfile: CSV ballot file parsing
  - report: plain-text round-by-round report
  - handlers: HTTP request handlers (polls, voting, results)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON helpers
  - models: Request/response types
  - auth: Token generation and validation
  - db: Driver selection and schema creation
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
