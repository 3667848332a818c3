// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB, dialect Dialect) error {
	_, err := db.Exec(Schema(dialect))
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// Schema returns the DDL for the given dialect. The two dialects only differ
// in how the party id is generated.
func Schema(dialect Dialect) string {
	idColumn := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if dialect == Postgres {
		idColumn = "BIGSERIAL PRIMARY KEY"
	}
	return strings.Replace(schema, "{{party_id}}", idColumn, 1)
}

const schema = `
-- Parties
CREATE TABLE IF NOT EXISTS party (
    id {{party_id}},
    join_code TEXT NOT NULL UNIQUE,
    name TEXT NOT NULL,
    leader_id TEXT NOT NULL,
    capacity INTEGER NOT NULL CHECK (capacity >= 2),
    state TEXT NOT NULL DEFAULT 'waiting' CHECK (state IN ('waiting', 'started', 'ended')),
    prompt TEXT NOT NULL DEFAULT '',
    selection_limit INTEGER NOT NULL CHECK (selection_limit >= 1),
    created_at TIMESTAMP NOT NULL,
    started_at TIMESTAMP,
    ended_at TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_party_leader ON party(leader_id);

-- Candidate outcomes, in the order they were generated
CREATE TABLE IF NOT EXISTS party_candidate (
    party_id BIGINT NOT NULL REFERENCES party(id) ON DELETE CASCADE,
    position INTEGER NOT NULL,
    label TEXT NOT NULL,
    PRIMARY KEY (party_id, position)
);

-- Confirmed winning outcomes (write-once)
CREATE TABLE IF NOT EXISTS party_winning_outcome (
    party_id BIGINT NOT NULL REFERENCES party(id) ON DELETE CASCADE,
    label TEXT NOT NULL,
    PRIMARY KEY (party_id, label)
);

-- Membership
CREATE TABLE IF NOT EXISTS membership (
    party_id BIGINT NOT NULL REFERENCES party(id) ON DELETE CASCADE,
    member_id TEXT NOT NULL,
    joined_at TIMESTAMP NOT NULL,
    PRIMARY KEY (party_id, member_id)
);

CREATE INDEX IF NOT EXISTS idx_membership_member ON membership(member_id);

-- Selections: one row per (party, member)
CREATE TABLE IF NOT EXISTS selection (
    party_id BIGINT NOT NULL REFERENCES party(id) ON DELETE CASCADE,
    member_id TEXT NOT NULL,
    submitted_at TIMESTAMP NOT NULL,
    is_winner BOOLEAN,
    match_count INTEGER,
    PRIMARY KEY (party_id, member_id)
);

CREATE TABLE IF NOT EXISTS selection_choice (
    party_id BIGINT NOT NULL,
    member_id TEXT NOT NULL,
    label TEXT NOT NULL,
    PRIMARY KEY (party_id, member_id, label),
    FOREIGN KEY (party_id, member_id) REFERENCES selection(party_id, member_id) ON DELETE CASCADE
);

-- Lifetime win counters
CREATE TABLE IF NOT EXISTS member_stats (
    member_id TEXT PRIMARY KEY,
    lifetime_wins INTEGER NOT NULL DEFAULT 0
);

-- Resolution-applied marker: present once lifetime wins were credited
CREATE TABLE IF NOT EXISTS resolution (
    party_id BIGINT PRIMARY KEY REFERENCES party(id) ON DELETE CASCADE,
    resolved_at TIMESTAMP NOT NULL,
    winner_count INTEGER NOT NULL,
    max_match INTEGER NOT NULL
);
`
