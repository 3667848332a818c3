// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens the relational store and creates its schema.

# Opening

	dialect, err := db.ParseDialect(cfg.DatabaseType)
	conn, err := db.Open(ctx, dialect, cfg.DatabaseURL)

PostgreSQL is served by lib/pq, SQLite by modernc.org/sqlite (pure Go, used
for local development and the test suite).

# Schema Creation

	if err := db.CreateSchema(conn, dialect); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - party: lifecycle state, leader, capacity, selection limit
  - party_candidate: ordered candidate outcomes
  - party_winning_outcome: confirmed outcomes (written once)
  - membership: (party, member) pairs
  - selection: one row per (party, member), winner flag after resolution
  - selection_choice: the chosen outcome set of a selection
  - member_stats: lifetime win counters
  - resolution: marker recording that a party's wins were credited

# Relationships

	party 1──* party_candidate
	party 1──* party_winning_outcome
	party 1──* membership
	party 1──* selection
	selection 1──* selection_choice
	party 1──1 resolution

All foreign keys use ON DELETE CASCADE.
*/
package db
