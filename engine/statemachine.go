// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/danielhkuo/party-pick/models"
)

// StateMachine owns a party's lifecycle: waiting → started → ended.
// Transitions are leader-only and strictly forward; there is no direct
// waiting → ended move.
type StateMachine struct {
	store *Store
	now   func() time.Time
}

func NewStateMachine(store *Store) *StateMachine {
	return &StateMachine{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Start closes the party for selection edits.
func (m *StateMachine) Start(ctx context.Context, partyID int64, callerID string) error {
	err := m.store.withTx(ctx, func(tx *sql.Tx) error {
		head, err := lockParty(ctx, tx, partyID, m.store.forUpdate())
		if err != nil {
			return err
		}
		if callerID != head.leaderID {
			return ErrUnauthorized
		}
		if head.state != models.StateWaiting {
			return fmt.Errorf("start from %s: %w", head.state, ErrInvalidTransition)
		}

		// The state guard doubles as an optimistic check against a racing start.
		res, err := tx.ExecContext(ctx, `
			UPDATE party SET state = $1, started_at = $2
			WHERE id = $3 AND state = $4
		`, models.StateStarted, m.now(), partyID, models.StateWaiting)
		if err != nil {
			return storeErr("start party", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("start: %w", ErrInvalidTransition)
		}
		return nil
	})
	if err != nil {
		return err
	}

	slog.Info("party started", "party_id", partyID, "caller", callerID)
	return nil
}

// ConfirmOutcome declares the winning outcomes and ends the party. The
// outcomes are written once; a second confirmation gets ErrAlreadyResolved.
func (m *StateMachine) ConfirmOutcome(ctx context.Context, partyID int64, callerID string, winning []string) error {
	var stored []string
	err := m.store.withTx(ctx, func(tx *sql.Tx) error {
		head, err := lockParty(ctx, tx, partyID, m.store.forUpdate())
		if err != nil {
			return err
		}
		if callerID != head.leaderID {
			return ErrUnauthorized
		}
		if head.state == models.StateEnded {
			return ErrAlreadyResolved
		}

		if len(winning) == 0 {
			return fmt.Errorf("no winning outcome given: %w", ErrInvalidOutcome)
		}
		candidates, err := loadCandidates(ctx, tx, partyID)
		if err != nil {
			return err
		}
		stored, err = canonicalize(candidates, winning)
		if err != nil {
			return err
		}

		if head.state != models.StateStarted {
			return fmt.Errorf("confirm from %s: %w", head.state, ErrInvalidTransition)
		}

		res, err := tx.ExecContext(ctx, `
			UPDATE party SET state = $1, ended_at = $2
			WHERE id = $3 AND state = $4
		`, models.StateEnded, m.now(), partyID, models.StateStarted)
		if err != nil {
			return storeErr("end party", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrAlreadyResolved
		}

		for _, label := range stored {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO party_winning_outcome (party_id, label)
				VALUES ($1, $2)
			`, partyID, label)
			if err != nil {
				if isUniqueViolation(err) {
					return ErrAlreadyResolved
				}
				return storeErr("insert winning outcome", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	slog.Info("outcome confirmed", "party_id", partyID, "caller", callerID, "winning", stored)
	return nil
}
