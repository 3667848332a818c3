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

// Coordinator turns an ended party into winners and losers and credits
// lifetime wins.
type Coordinator struct {
	store *Store
	now   func() time.Time
}

func NewCoordinator(store *Store) *Coordinator {
	return &Coordinator{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Resolve scores an ended party, rewrites every selection's winner flag and
// credits each winner's lifetime counter.
//
// Resolve is safe to call any number of times. Flags are recomputed and
// overwritten on every call, but the credit step is guarded by the party's
// resolution marker: only the call that inserts the marker increments
// counters. Everything happens in one transaction, so a cancelled call leaves
// neither flags nor credits behind.
func (c *Coordinator) Resolve(ctx context.Context, partyID int64) (*models.ResolveResult, error) {
	var result models.ResolveResult

	err := c.store.withTx(ctx, func(tx *sql.Tx) error {
		head, err := lockParty(ctx, tx, partyID, c.store.forUpdate())
		if err != nil {
			return err
		}

		resolution, selections, err := computeResolution(ctx, tx, partyID, head)
		if err != nil {
			return err
		}
		result.Resolution = *resolution

		owners := make(map[string]bool, len(selections))
		for _, sel := range selections {
			owners[sel.MemberID] = true
		}
		for _, r := range resolution.Results {
			if !owners[r.MemberID] {
				continue // no row to flag
			}
			_, err := tx.ExecContext(ctx, `
				UPDATE selection SET is_winner = $1, match_count = $2
				WHERE party_id = $3 AND member_id = $4
			`, r.IsWinner, r.MatchCount, partyID, r.MemberID)
			if err != nil {
				return storeErr("write winner flag", err)
			}
		}

		res, err := tx.ExecContext(ctx, `
			INSERT INTO resolution (party_id, resolved_at, winner_count, max_match)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (party_id) DO NOTHING
		`, partyID, c.now(), len(resolution.Winners), resolution.MaxMatch)
		if err != nil {
			return storeErr("claim resolution marker", err)
		}
		claimed, err := res.RowsAffected()
		if err != nil {
			return storeErr("claim resolution marker", err)
		}
		if claimed == 0 {
			return nil
		}

		for _, memberID := range resolution.Winners {
			if err := creditWin(ctx, tx, memberID); err != nil {
				return err
			}
		}
		result.Credited = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("party resolved",
		"party_id", partyID,
		"winners", len(result.Resolution.Winners),
		"max_match", result.Resolution.MaxMatch,
		"credited", result.Credited,
	)
	return &result, nil
}

// GetResolution re-derives the results of an ended party for display. It
// never looks at the resolution marker, so its answer is the same before and
// after lifetime wins have been credited.
func (c *Coordinator) GetResolution(ctx context.Context, partyID int64) (*models.Resolution, error) {
	head, err := lockParty(ctx, c.store.db, partyID, "")
	if err != nil {
		return nil, err
	}
	resolution, _, err := computeResolution(ctx, c.store.db, partyID, head)
	if err != nil {
		return nil, err
	}
	return resolution, nil
}

// computeResolution reads the roster, the selections and the confirmed
// outcomes and scores them. Members without a selection score zero.
func computeResolution(ctx context.Context, q querier, partyID int64, head *partyHead) (*models.Resolution, []models.Selection, error) {
	if head.state != models.StateEnded {
		return nil, nil, fmt.Errorf("party %d is %s: %w", partyID, head.state, ErrInvalidTransition)
	}

	candidates, err := loadCandidates(ctx, q, partyID)
	if err != nil {
		return nil, nil, err
	}
	winning, err := loadWinning(ctx, q, partyID, candidates)
	if err != nil {
		return nil, nil, err
	}
	if len(winning) == 0 {
		return nil, nil, fmt.Errorf("party %d ended without outcomes: %w", partyID, ErrInvalidTransition)
	}

	members, err := loadMembers(ctx, q, partyID, head.leaderID)
	if err != nil {
		return nil, nil, err
	}
	selections, err := listSelections(ctx, q, partyID)
	if err != nil {
		return nil, nil, err
	}

	entries := make([]models.Entry, 0, len(members)+len(selections))
	for _, m := range members {
		entries = append(entries, models.Entry{MemberID: m.MemberID})
	}
	for _, sel := range selections {
		entries = append(entries, models.Entry{MemberID: sel.MemberID, Chosen: sel.Chosen})
	}

	return &models.Resolution{
		PartyID:         partyID,
		WinningOutcomes: winning,
		Scoreboard:      Score(winning, entries),
	}, selections, nil
}

// creditWin is a single-statement increment, safe when resolutions of
// different parties credit the same member concurrently.
func creditWin(ctx context.Context, q querier, memberID string) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO member_stats (member_id, lifetime_wins)
		VALUES ($1, 1)
		ON CONFLICT (member_id)
		DO UPDATE SET lifetime_wins = member_stats.lifetime_wins + 1
	`, memberID)
	if err != nil {
		return storeErr("credit lifetime win", err)
	}
	return nil
}
