// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Modes

Seatpick runs in one of two modes:

  - Server mode (default): HTTP API backed by a database.
  - One-shot mode (-f): load a ballot CSV, run one election, print the
    result, exit. No database or secrets needed. Config.OneShot reports
    which mode applies.

# CLI Flags

	-p           Server port
	-d           Database URL
	-t           Database type (sqlite or postgres)
	-admin-salt  Admin key salt (prefer env)
	-slug-salt   Poll slug salt (prefer env)
	-f           Ballot CSV file (one-shot mode)
	-seats       Seats to fill in one-shot mode (default 1)

# Environment Variables

Flags fall back to environment variables:

	PORT           → -p
	DATABASE_URL   → -d
	DATABASE_TYPE  → -t
	ADMIN_KEY_SALT → -admin-salt
	POLL_SLUG_SALT → -slug-salt

CLI flags take precedence over environment variables.

# Validation

In server mode, ParseFlags returns an error if required values are missing:

  - DATABASE_URL must be provided
  - ADMIN_KEY_SALT must be provided
  - POLL_SLUG_SALT must be provided

DATABASE_TYPE defaults to "sqlite"; the port defaults to 3319. One-shot
mode only validates that -seats is non-negative.
*/
package cliparse
