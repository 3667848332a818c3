// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countSelections(t *testing.T, conn *sql.DB, partyID int64) int {
	t.Helper()
	var n int
	require.NoError(t, conn.QueryRow(`SELECT COUNT(*) FROM selection WHERE party_id = $1`, partyID).Scan(&n))
	return n
}

func TestSubmit_ReplacesPrevious(t *testing.T) {
	e, conn := setupEngine(t)
	ctx := context.Background()
	party := createParty(t, e, 4, "m1")

	first, err := e.Selections.Submit(ctx, party.ID, "m1", []string{"A", "B"})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, first.Chosen)

	_, err = e.Selections.Submit(ctx, party.ID, "m1", []string{"c"})
	require.NoError(t, err)

	assert.Equal(t, 1, countSelections(t, conn, party.ID))

	got, err := e.Selections.Get(ctx, party.ID, "m1")
	require.NoError(t, err)
	assert.Equal(t, []string{"C"}, got.Chosen)
	assert.Nil(t, got.IsWinner)
	assert.Nil(t, got.MatchCount)
}

func TestSubmit_CanonicalizesAndDedupes(t *testing.T) {
	e, _ := setupEngine(t)
	ctx := context.Background()
	party := createParty(t, e, 4, "m1")

	// "b" and " B " collapse to one choice, within the limit of 2.
	sel, err := e.Selections.Submit(ctx, party.ID, "m1", []string{"b", "a", " B "})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, sel.Chosen)
}

func TestSubmit_Errors(t *testing.T) {
	e, conn := setupEngine(t)
	ctx := context.Background()
	party := createParty(t, e, 4, "m1")

	tests := []struct {
		name    string
		partyID int64
		member  string
		chosen  []string
		wantErr error
	}{
		{"too many chosen", party.ID, "m1", []string{"A", "B", "C"}, ErrInvalidCardinality},
		{"nothing chosen", party.ID, "m1", nil, ErrInvalidCardinality},
		{"unknown outcome", party.ID, "m1", []string{"A", "Z"}, ErrInvalidOutcome},
		{"not a member", party.ID, "stranger", []string{"A"}, ErrUnauthorized},
		{"unknown party", 9999, "m1", []string{"A"}, ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Selections.Submit(ctx, tt.partyID, tt.member, tt.chosen)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	assert.Equal(t, 0, countSelections(t, conn, party.ID))
}

func TestSubmit_ClosedAfterStart(t *testing.T) {
	e, conn := setupEngine(t)
	ctx := context.Background()
	party := createParty(t, e, 4, "m1", "m2")

	_, err := e.Selections.Submit(ctx, party.ID, "m1", []string{"A"})
	require.NoError(t, err)
	require.NoError(t, e.States.Start(ctx, party.ID, "leader"))

	_, err = e.Selections.Submit(ctx, party.ID, "m2", []string{"B"})
	assert.ErrorIs(t, err, ErrNotOpen)

	_, err = e.Selections.Submit(ctx, party.ID, "m1", []string{"B"})
	assert.ErrorIs(t, err, ErrNotOpen)

	got, err := e.Selections.Get(ctx, party.ID, "m1")
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, got.Chosen)
	assert.Equal(t, 1, countSelections(t, conn, party.ID))
}

func TestSubmit_LeaderMayBet(t *testing.T) {
	e, _ := setupEngine(t)
	ctx := context.Background()
	party := createParty(t, e, 4)

	_, err := e.Selections.Submit(ctx, party.ID, "leader", []string{"A"})
	require.NoError(t, err)
}

func TestGet_NotFound(t *testing.T) {
	e, _ := setupEngine(t)
	party := createParty(t, e, 4, "m1")

	_, err := e.Selections.Get(context.Background(), party.ID, "m1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListForParty(t *testing.T) {
	e, _ := setupEngine(t)
	ctx := context.Background()
	party := createParty(t, e, 4, "m2", "m1")

	_, err := e.Selections.Submit(ctx, party.ID, "m2", []string{"C", "A"})
	require.NoError(t, err)
	_, err = e.Selections.Submit(ctx, party.ID, "m1", []string{"B"})
	require.NoError(t, err)

	list, err := e.Selections.ListForParty(ctx, party.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "m1", list[0].MemberID)
	assert.Equal(t, []string{"B"}, list[0].Chosen)
	assert.Equal(t, "m2", list[1].MemberID)
	assert.Equal(t, []string{"A", "C"}, list[1].Chosen)

	_, err = e.Selections.ListForParty(ctx, 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}
