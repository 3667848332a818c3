// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/danielhkuo/party-pick/auth"
	"github.com/danielhkuo/party-pick/models"
)

// joinCodeAttempts bounds retries when a generated join code is already taken.
const joinCodeAttempts = 5

// Roster tracks who belongs to a party and who leads it.
type Roster struct {
	store   *Store
	newCode func() (string, error)
	now     func() time.Time
}

func NewRoster(store *Store) *Roster {
	return &Roster{
		store:   store,
		newCode: auth.GenerateJoinCode,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// CreateParty stores a new party in the waiting state with its leader as the
// first member.
func (r *Roster) CreateParty(ctx context.Context, np models.NewParty) (*models.Party, error) {
	name := strings.TrimSpace(np.Name)
	if name == "" {
		return nil, fmt.Errorf("party name is required: %w", ErrInvalidParty)
	}
	if np.LeaderID == "" {
		return nil, fmt.Errorf("leader is required: %w", ErrUnauthorized)
	}
	if np.Capacity < 2 {
		return nil, fmt.Errorf("capacity %d below 2: %w", np.Capacity, ErrInvalidParty)
	}

	candidates := make([]string, 0, len(np.Candidates))
	seen := make(map[string]bool, len(np.Candidates))
	for _, c := range np.Candidates {
		label := strings.TrimSpace(c)
		n := Normalize(label)
		if n == "" || seen[n] {
			return nil, fmt.Errorf("candidate %q empty or duplicated: %w", c, ErrInvalidOutcome)
		}
		seen[n] = true
		candidates = append(candidates, label)
	}
	if len(candidates) < 2 {
		return nil, fmt.Errorf("need at least 2 candidates: %w", ErrInvalidOutcome)
	}
	if np.SelectionLimit < 1 || np.SelectionLimit > len(candidates) {
		return nil, fmt.Errorf("selection limit %d outside 1..%d: %w", np.SelectionLimit, len(candidates), ErrInvalidCardinality)
	}

	var err error
	for attempt := 1; attempt <= joinCodeAttempts; attempt++ {
		var code string
		code, err = r.newCode()
		if err != nil {
			return nil, err
		}

		var party *models.Party
		party, err = r.insertParty(ctx, code, name, np, candidates)
		if err == nil {
			slog.Info("party created", "party_id", party.ID, "leader", party.LeaderID, "join_code", party.JoinCode)
			return party, nil
		}
		if !isUniqueViolation(err) {
			return nil, err
		}
		slog.Warn("join code collision, retrying", "attempt", attempt)
	}
	return nil, storeErr("insert party", err)
}

func (r *Roster) insertParty(ctx context.Context, code, name string, np models.NewParty, candidates []string) (*models.Party, error) {
	now := r.now()
	party := &models.Party{
		JoinCode:        code,
		Name:            name,
		LeaderID:        np.LeaderID,
		Capacity:        np.Capacity,
		State:           models.StateWaiting,
		Prompt:          np.Prompt,
		Candidates:      candidates,
		SelectionLimit:  np.SelectionLimit,
		WinningOutcomes: []string{},
		CreatedAt:       now,
	}

	err := r.store.withTx(ctx, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, `
			INSERT INTO party (join_code, name, leader_id, capacity, state, prompt, selection_limit, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING id
		`, code, name, np.LeaderID, np.Capacity, models.StateWaiting, np.Prompt, np.SelectionLimit, now).Scan(&party.ID)
		if err != nil {
			if isUniqueViolation(err) {
				return err
			}
			return storeErr("insert party", err)
		}

		for i, label := range candidates {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO party_candidate (party_id, position, label)
				VALUES ($1, $2, $3)
			`, party.ID, i, label)
			if err != nil {
				return storeErr("insert candidate", err)
			}
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO membership (party_id, member_id, joined_at)
			VALUES ($1, $2, $3)
		`, party.ID, np.LeaderID, now)
		if err != nil {
			return storeErr("insert leader membership", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return party, nil
}

// GetParty returns a party with its candidates and winning outcomes.
func (r *Roster) GetParty(ctx context.Context, partyID int64) (*models.Party, error) {
	return loadParty(ctx, r.store.db, partyID)
}

// FindByJoinCode looks a party up by its join code, ignoring case.
func (r *Roster) FindByJoinCode(ctx context.Context, code string) (*models.Party, error) {
	var partyID int64
	err := r.store.db.QueryRowContext(ctx, `
		SELECT id FROM party WHERE join_code = $1
	`, auth.NormalizeJoinCode(code)).Scan(&partyID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("join code %q: %w", code, ErrNotFound)
	}
	if err != nil {
		return nil, storeErr("query party by code", err)
	}
	return loadParty(ctx, r.store.db, partyID)
}

// Add puts memberID on the party's roster. A member already on the roster
// gets ErrAlreadyMember and the roster is left as it was. The roster is
// closed to newcomers once the party has started.
func (r *Roster) Add(ctx context.Context, partyID int64, memberID string) error {
	if memberID == "" {
		return fmt.Errorf("member id is required: %w", ErrUnauthorized)
	}

	err := r.store.withTx(ctx, func(tx *sql.Tx) error {
		head, err := lockParty(ctx, tx, partyID, r.store.forUpdate())
		if err != nil {
			return err
		}

		member, err := isMember(ctx, tx, partyID, head.leaderID, memberID)
		if err != nil {
			return err
		}
		if member {
			return ErrAlreadyMember
		}
		if head.state != models.StateWaiting {
			return fmt.Errorf("join while %s: %w", head.state, ErrNotOpen)
		}

		var others int
		err = tx.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM membership
			WHERE party_id = $1 AND member_id <> $2
		`, partyID, head.leaderID).Scan(&others)
		if err != nil {
			return storeErr("count members", err)
		}
		if others+1 >= head.capacity {
			return ErrPartyFull
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO membership (party_id, member_id, joined_at)
			VALUES ($1, $2, $3)
		`, partyID, memberID, r.now())
		if err != nil {
			if isUniqueViolation(err) {
				return ErrAlreadyMember
			}
			return storeErr("insert membership", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	slog.Info("member joined", "party_id", partyID, "member", memberID)
	return nil
}

// Join adds memberID to the party behind a join code.
func (r *Roster) Join(ctx context.Context, code, memberID string) (*models.Party, error) {
	party, err := r.FindByJoinCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if err := r.Add(ctx, party.ID, memberID); err != nil {
		return party, err
	}
	return party, nil
}

// Remove takes memberID off the roster and discards their selection. The
// leader may remove anyone else; other members may only remove themselves.
// Only a waiting party's roster can shrink, so scored selections stay put.
func (r *Roster) Remove(ctx context.Context, partyID int64, callerID, memberID string) error {
	err := r.store.withTx(ctx, func(tx *sql.Tx) error {
		head, err := lockParty(ctx, tx, partyID, r.store.forUpdate())
		if err != nil {
			return err
		}

		if callerID != head.leaderID && callerID != memberID {
			return ErrUnauthorized
		}
		if memberID == head.leaderID {
			return fmt.Errorf("leader must transfer leadership before leaving: %w", ErrInvalidTransition)
		}
		if head.state != models.StateWaiting {
			return fmt.Errorf("remove while %s: %w", head.state, ErrInvalidTransition)
		}

		res, err := tx.ExecContext(ctx, `
			DELETE FROM membership WHERE party_id = $1 AND member_id = $2
		`, partyID, memberID)
		if err != nil {
			return storeErr("delete membership", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("member %s: %w", memberID, ErrNotFound)
		}

		return deleteSelection(ctx, tx, partyID, memberID)
	})
	if err != nil {
		return err
	}

	if callerID == memberID {
		slog.Info("member left", "party_id", partyID, "member", memberID)
	} else {
		slog.Info("member kicked", "party_id", partyID, "member", memberID, "by", callerID)
	}
	return nil
}

// TransferLeadership hands the party to another existing member.
func (r *Roster) TransferLeadership(ctx context.Context, partyID int64, callerID, newLeaderID string) error {
	err := r.store.withTx(ctx, func(tx *sql.Tx) error {
		head, err := lockParty(ctx, tx, partyID, r.store.forUpdate())
		if err != nil {
			return err
		}
		if callerID != head.leaderID {
			return ErrUnauthorized
		}
		if newLeaderID == head.leaderID {
			return nil
		}

		member, err := isMember(ctx, tx, partyID, head.leaderID, newLeaderID)
		if err != nil {
			return err
		}
		if !member {
			return fmt.Errorf("member %s: %w", newLeaderID, ErrNotFound)
		}

		// The outgoing leader stays on the roster as a regular member.
		_, err = tx.ExecContext(ctx, `
			INSERT INTO membership (party_id, member_id, joined_at)
			VALUES ($1, $2, $3)
			ON CONFLICT (party_id, member_id) DO NOTHING
		`, partyID, head.leaderID, r.now())
		if err != nil {
			return storeErr("keep outgoing leader", err)
		}

		res, err := tx.ExecContext(ctx, `
			UPDATE party SET leader_id = $1
			WHERE id = $2 AND leader_id = $3
		`, newLeaderID, partyID, head.leaderID)
		if err != nil {
			return storeErr("update leader", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrUnauthorized
		}
		return nil
	})
	if err != nil {
		return err
	}

	slog.Info("leadership transferred", "party_id", partyID, "from", callerID, "to", newLeaderID)
	return nil
}

// Members lists the party's roster in join order.
func (r *Roster) Members(ctx context.Context, partyID int64) ([]models.Membership, error) {
	head, err := lockParty(ctx, r.store.db, partyID, "")
	if err != nil {
		return nil, err
	}
	return loadMembers(ctx, r.store.db, partyID, head.leaderID)
}

// IsMember reports whether memberID is on the party's roster.
func (r *Roster) IsMember(ctx context.Context, partyID int64, memberID string) (bool, error) {
	head, err := lockParty(ctx, r.store.db, partyID, "")
	if err != nil {
		return false, err
	}
	return isMember(ctx, r.store.db, partyID, head.leaderID, memberID)
}

// PendingSelectionGap lists members who have not submitted a selection yet.
func (r *Roster) PendingSelectionGap(ctx context.Context, partyID int64) ([]string, error) {
	members, err := r.Members(ctx, partyID)
	if err != nil {
		return nil, err
	}

	rows, err := r.store.db.QueryContext(ctx, `
		SELECT member_id FROM selection WHERE party_id = $1
	`, partyID)
	if err != nil {
		return nil, storeErr("query selections", err)
	}
	defer rows.Close()

	submitted := make(map[string]bool)
	for rows.Next() {
		var memberID string
		if err := rows.Scan(&memberID); err != nil {
			return nil, storeErr("scan selection", err)
		}
		submitted[memberID] = true
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("read selections", err)
	}

	pending := []string{}
	for _, m := range members {
		if !submitted[m.MemberID] {
			pending = append(pending, m.MemberID)
		}
	}
	return pending, nil
}

// DeleteParty removes a party and everything hanging off it. Leader only.
// Lifetime win counters already credited are kept.
func (r *Roster) DeleteParty(ctx context.Context, partyID int64, callerID string) error {
	err := r.store.withTx(ctx, func(tx *sql.Tx) error {
		head, err := lockParty(ctx, tx, partyID, r.store.forUpdate())
		if err != nil {
			return err
		}
		if callerID != head.leaderID {
			return ErrUnauthorized
		}

		for _, stmt := range []string{
			`DELETE FROM selection_choice WHERE party_id = $1`,
			`DELETE FROM selection WHERE party_id = $1`,
			`DELETE FROM membership WHERE party_id = $1`,
			`DELETE FROM party_winning_outcome WHERE party_id = $1`,
			`DELETE FROM party_candidate WHERE party_id = $1`,
			`DELETE FROM resolution WHERE party_id = $1`,
			`DELETE FROM party WHERE id = $1`,
		} {
			if _, err := tx.ExecContext(ctx, stmt, partyID); err != nil {
				return storeErr("delete party", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	slog.Info("party deleted", "party_id", partyID, "by", callerID)
	return nil
}

// PartiesForMember lists the parties memberID leads or belongs to, newest first.
func (r *Roster) PartiesForMember(ctx context.Context, memberID string) ([]models.Party, error) {
	rows, err := r.store.db.QueryContext(ctx, `
		SELECT id FROM party WHERE leader_id = $1
		UNION
		SELECT party_id FROM membership WHERE member_id = $1
		ORDER BY 1 DESC
	`, memberID)
	if err != nil {
		return nil, storeErr("query member parties", err)
	}

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, storeErr("scan party id", err)
		}
		ids = append(ids, id)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, storeErr("read member parties", err)
	}

	parties := make([]models.Party, 0, len(ids))
	for _, id := range ids {
		p, err := loadParty(ctx, r.store.db, id)
		if errors.Is(err, ErrNotFound) {
			continue // deleted in between
		}
		if err != nil {
			return nil, err
		}
		parties = append(parties, *p)
	}
	return parties, nil
}

// LifetimeWins returns how many resolved parties memberID has won.
func (r *Roster) LifetimeWins(ctx context.Context, memberID string) (int, error) {
	var wins int
	err := r.store.db.QueryRowContext(ctx, `
		SELECT lifetime_wins FROM member_stats WHERE member_id = $1
	`, memberID).Scan(&wins)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, storeErr("query lifetime wins", err)
	}
	return wins, nil
}
