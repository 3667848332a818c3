// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package engine implements the party lifecycle and bet resolution.

# Components

  - Roster: party creation, membership, leadership, the pending-selection gap
  - StateMachine: Start and ConfirmOutcome (leader only, forward only)
  - Selections: per-member upsert of chosen outcomes while a party is waiting
  - Score: pure scoring of selections against the winning outcomes
  - Coordinator: Resolve (flags + one-time lifetime credit) and GetResolution

	store := engine.NewStore(conn, db.Postgres)
	e := engine.New(store)

	party, err := e.Roster.CreateParty(ctx, models.NewParty{...})
	_, err = e.Selections.Submit(ctx, party.ID, "member-1", []string{"A"})
	err = e.States.Start(ctx, party.ID, party.LeaderID)
	err = e.States.ConfirmOutcome(ctx, party.ID, party.LeaderID, []string{"A"})
	result, err := e.Coordinator.Resolve(ctx, party.ID)

# Concurrency

Every operation is one transaction. On PostgreSQL, reads that guard a write
lock the party row (FOR UPDATE for transitions and resolution, FOR SHARE for
submissions), so a submission racing Start sees either waiting or started,
never a mix. State updates also carry the expected prior state in their
WHERE clause.

# Resolution Marker

The resolution table holds one row per credited party. Resolve inserts it
with ON CONFLICT DO NOTHING and only increments lifetime wins when the
insert took effect, so retries and concurrent calls credit exactly once.

# Errors

Operations return the sentinel errors in errors.go, wrapped with context.
Use errors.Is to classify, or Kind for a stable string code. Connection-level
failures wrap ErrStoreUnavailable and are safe to retry.
*/
package engine
