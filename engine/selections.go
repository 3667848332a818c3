// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/danielhkuo/party-pick/models"
)

// Selections stores each member's chosen outcomes, one row per (party, member).
type Selections struct {
	store *Store
	now   func() time.Time
}

func NewSelections(store *Store) *Selections {
	return &Selections{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Submit creates or replaces memberID's selection. Editing is an upsert on
// (party, member): the new set replaces the old one, it never adds a row.
func (s *Selections) Submit(ctx context.Context, partyID int64, memberID string, chosen []string) (*models.Selection, error) {
	sel := &models.Selection{PartyID: partyID, MemberID: memberID, SubmittedAt: s.now()}
	isUpdate := false

	err := s.store.withTx(ctx, func(tx *sql.Tx) error {
		// A shared lock on the party row makes a racing Start wait for us, so we
		// either see waiting and commit first or see started and fail.
		head, err := lockParty(ctx, tx, partyID, s.store.forShare())
		if err != nil {
			return err
		}

		member, err := isMember(ctx, tx, partyID, head.leaderID, memberID)
		if err != nil {
			return err
		}
		if !member {
			return ErrUnauthorized
		}

		if head.state != models.StateWaiting {
			return ErrNotOpen
		}

		if n := distinctCount(chosen); n == 0 || n > head.selectionLimit {
			return fmt.Errorf("%d chosen, limit %d: %w", n, head.selectionLimit, ErrInvalidCardinality)
		}

		candidates, err := loadCandidates(ctx, tx, partyID)
		if err != nil {
			return err
		}
		sel.Chosen, err = canonicalize(candidates, chosen)
		if err != nil {
			return err
		}

		err = tx.QueryRowContext(ctx, `
			SELECT EXISTS(
				SELECT 1 FROM selection
				WHERE party_id = $1 AND member_id = $2
			)
		`, partyID, memberID).Scan(&isUpdate)
		if err != nil {
			return storeErr("check selection", err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO selection (party_id, member_id, submitted_at)
			VALUES ($1, $2, $3)
			ON CONFLICT (party_id, member_id)
			DO UPDATE SET submitted_at = excluded.submitted_at, is_winner = NULL, match_count = NULL
		`, partyID, memberID, sel.SubmittedAt)
		if err != nil {
			return storeErr("upsert selection", err)
		}

		_, err = tx.ExecContext(ctx, `
			DELETE FROM selection_choice WHERE party_id = $1 AND member_id = $2
		`, partyID, memberID)
		if err != nil {
			return storeErr("clear choices", err)
		}

		for _, label := range sel.Chosen {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO selection_choice (party_id, member_id, label)
				VALUES ($1, $2, $3)
			`, partyID, memberID, label)
			if err != nil {
				return storeErr("insert choice", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("selection submitted", "party_id", partyID, "member", memberID, "chosen", len(sel.Chosen), "is_update", isUpdate)
	return sel, nil
}

// Get returns one member's selection.
func (s *Selections) Get(ctx context.Context, partyID int64, memberID string) (*models.Selection, error) {
	sel := &models.Selection{PartyID: partyID, MemberID: memberID}
	var isWinner sql.NullBool
	var matchCount sql.NullInt64
	err := s.store.db.QueryRowContext(ctx, `
		SELECT submitted_at, is_winner, match_count
		FROM selection
		WHERE party_id = $1 AND member_id = $2
	`, partyID, memberID).Scan(&sel.SubmittedAt, &isWinner, &matchCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("selection of %s in party %d: %w", memberID, partyID, ErrNotFound)
	}
	if err != nil {
		return nil, storeErr("query selection", err)
	}
	applyFlags(sel, isWinner, matchCount)

	choices, err := loadChoices(ctx, s.store.db, partyID)
	if err != nil {
		return nil, err
	}
	sel.Chosen = choices[memberID]
	if sel.Chosen == nil {
		sel.Chosen = []string{}
	}
	return sel, nil
}

// ListForParty returns every selection of the party, ordered by member id.
func (s *Selections) ListForParty(ctx context.Context, partyID int64) ([]models.Selection, error) {
	if _, err := lockParty(ctx, s.store.db, partyID, ""); err != nil {
		return nil, err
	}
	return listSelections(ctx, s.store.db, partyID)
}

func listSelections(ctx context.Context, q querier, partyID int64) ([]models.Selection, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT member_id, submitted_at, is_winner, match_count
		FROM selection
		WHERE party_id = $1
		ORDER BY member_id
	`, partyID)
	if err != nil {
		return nil, storeErr("query selections", err)
	}
	defer rows.Close()

	selections := []models.Selection{}
	for rows.Next() {
		sel := models.Selection{PartyID: partyID}
		var isWinner sql.NullBool
		var matchCount sql.NullInt64
		if err := rows.Scan(&sel.MemberID, &sel.SubmittedAt, &isWinner, &matchCount); err != nil {
			return nil, storeErr("scan selection", err)
		}
		applyFlags(&sel, isWinner, matchCount)
		selections = append(selections, sel)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("read selections", err)
	}
	rows.Close()

	choices, err := loadChoices(ctx, q, partyID)
	if err != nil {
		return nil, err
	}
	for i := range selections {
		selections[i].Chosen = choices[selections[i].MemberID]
		if selections[i].Chosen == nil {
			selections[i].Chosen = []string{}
		}
	}
	return selections, nil
}

// loadChoices maps member id to chosen labels in candidate order.
func loadChoices(ctx context.Context, q querier, partyID int64) (map[string][]string, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT c.member_id, c.label
		FROM selection_choice c
		LEFT JOIN party_candidate pc ON pc.party_id = c.party_id AND pc.label = c.label
		WHERE c.party_id = $1
		ORDER BY c.member_id, pc.position
	`, partyID)
	if err != nil {
		return nil, storeErr("query choices", err)
	}
	defer rows.Close()

	choices := make(map[string][]string)
	for rows.Next() {
		var memberID, label string
		if err := rows.Scan(&memberID, &label); err != nil {
			return nil, storeErr("scan choice", err)
		}
		choices[memberID] = append(choices[memberID], label)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("read choices", err)
	}
	return choices, nil
}

func applyFlags(sel *models.Selection, isWinner sql.NullBool, matchCount sql.NullInt64) {
	if isWinner.Valid {
		w := isWinner.Bool
		sel.IsWinner = &w
	}
	if matchCount.Valid {
		n := int(matchCount.Int64)
		sel.MatchCount = &n
	}
}

func deleteSelection(ctx context.Context, q querier, partyID int64, memberID string) error {
	_, err := q.ExecContext(ctx, `
		DELETE FROM selection_choice WHERE party_id = $1 AND member_id = $2
	`, partyID, memberID)
	if err != nil {
		return storeErr("delete choices", err)
	}
	_, err = q.ExecContext(ctx, `
		DELETE FROM selection WHERE party_id = $1 AND member_id = $2
	`, partyID, memberID)
	if err != nil {
		return storeErr("delete selection", err)
	}
	return nil
}
