// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database connection and schema creation.

# Connecting

Open picks the driver from the configured database type:

	conn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)

Supported types are "sqlite" (modernc.org/sqlite, pure Go) and "postgres"
(github.com/lib/pq).

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.
The DDL avoids postgres-only features (JSONB, NOW()) so one schema serves
both drivers. Queries use $1-style placeholders in ascending order, which
both drivers bind positionally.

# Tables

The schema includes:

  - poll: Poll metadata, seat count, lifecycle state
  - option: Voting options per poll
  - username_claim: Maps usernames to voter tokens
  - ballot: One ballot per voter per poll
  - ballot_approval: Ordered approved options per ballot
  - result_snapshot: Immutable SPAV results

# Relationships

	poll 1──* option
	poll 1──* username_claim
	poll 1──* ballot
	ballot 1──* ballot_approval
	poll 1──* result_snapshot

All foreign keys use ON DELETE CASCADE.
*/
package db
