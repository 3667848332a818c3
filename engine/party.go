// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/danielhkuo/party-pick/models"
)

const partyColumns = `id, join_code, name, leader_id, capacity, state, prompt,
	selection_limit, created_at, started_at, ended_at`

// partyHead is the part of the party row that guards mutations.
type partyHead struct {
	leaderID       string
	state          string
	capacity       int
	selectionLimit int
}

// lockParty reads the guarding columns of a party, appending lock to the query.
func lockParty(ctx context.Context, q querier, partyID int64, lock string) (*partyHead, error) {
	var h partyHead
	err := q.QueryRowContext(ctx, `
		SELECT leader_id, state, capacity, selection_limit
		FROM party
		WHERE id = $1`+lock, partyID).Scan(&h.leaderID, &h.state, &h.capacity, &h.selectionLimit)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("party %d: %w", partyID, ErrNotFound)
	}
	if err != nil {
		return nil, storeErr("query party", err)
	}
	return &h, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanParty(row rowScanner) (*models.Party, error) {
	var p models.Party
	var startedAt, endedAt sql.NullTime
	err := row.Scan(
		&p.ID, &p.JoinCode, &p.Name, &p.LeaderID, &p.Capacity, &p.State, &p.Prompt,
		&p.SelectionLimit, &p.CreatedAt, &startedAt, &endedAt,
	)
	if err != nil {
		return nil, err
	}
	if startedAt.Valid {
		p.StartedAt = &startedAt.Time
	}
	if endedAt.Valid {
		p.EndedAt = &endedAt.Time
	}
	return &p, nil
}

// loadParty reads a party together with its candidates and winning outcomes.
func loadParty(ctx context.Context, q querier, partyID int64) (*models.Party, error) {
	p, err := scanParty(q.QueryRowContext(ctx, `
		SELECT `+partyColumns+`
		FROM party
		WHERE id = $1`, partyID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("party %d: %w", partyID, ErrNotFound)
	}
	if err != nil {
		return nil, storeErr("query party", err)
	}

	if p.Candidates, err = loadCandidates(ctx, q, partyID); err != nil {
		return nil, err
	}
	if p.WinningOutcomes, err = loadWinning(ctx, q, partyID, p.Candidates); err != nil {
		return nil, err
	}
	return p, nil
}

func loadCandidates(ctx context.Context, q querier, partyID int64) ([]string, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT label FROM party_candidate
		WHERE party_id = $1
		ORDER BY position
	`, partyID)
	if err != nil {
		return nil, storeErr("query candidates", err)
	}
	defer rows.Close()

	candidates := []string{}
	for rows.Next() {
		var label string
		if err := rows.Scan(&label); err != nil {
			return nil, storeErr("scan candidate", err)
		}
		candidates = append(candidates, label)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("read candidates", err)
	}
	return candidates, nil
}

// loadWinning returns the confirmed outcomes in candidate order.
func loadWinning(ctx context.Context, q querier, partyID int64, candidates []string) ([]string, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT label FROM party_winning_outcome
		WHERE party_id = $1
	`, partyID)
	if err != nil {
		return nil, storeErr("query winning outcomes", err)
	}
	defer rows.Close()

	stored := make(map[string]bool)
	for rows.Next() {
		var label string
		if err := rows.Scan(&label); err != nil {
			return nil, storeErr("scan winning outcome", err)
		}
		stored[label] = true
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("read winning outcomes", err)
	}

	winning := []string{}
	for _, c := range candidates {
		if stored[c] {
			winning = append(winning, c)
		}
	}
	return winning, nil
}

// loadMembers lists the party's members, leader included even when the
// leader has no membership row.
func loadMembers(ctx context.Context, q querier, partyID int64, leaderID string) ([]models.Membership, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT member_id, joined_at
		FROM membership
		WHERE party_id = $1
		ORDER BY joined_at, member_id
	`, partyID)
	if err != nil {
		return nil, storeErr("query members", err)
	}
	defer rows.Close()

	members := []models.Membership{}
	hasLeader := false
	for rows.Next() {
		m := models.Membership{PartyID: partyID}
		if err := rows.Scan(&m.MemberID, &m.JoinedAt); err != nil {
			return nil, storeErr("scan member", err)
		}
		if m.MemberID == leaderID {
			m.IsLeader = true
			hasLeader = true
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("read members", err)
	}

	if !hasLeader {
		members = append([]models.Membership{{PartyID: partyID, MemberID: leaderID, IsLeader: true}}, members...)
	}
	return members, nil
}

// isMember reports whether memberID belongs to the party.
func isMember(ctx context.Context, q querier, partyID int64, leaderID, memberID string) (bool, error) {
	if memberID == leaderID {
		return true, nil
	}
	var exists bool
	err := q.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM membership
			WHERE party_id = $1 AND member_id = $2
		)
	`, partyID, memberID).Scan(&exists)
	if err != nil {
		return false, storeErr("check membership", err)
	}
	return exists, nil
}
