// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/party-pick/models"
)

func sampleResolution(partyID int64) *models.Resolution {
	return &models.Resolution{
		PartyID:         partyID,
		WinningOutcomes: []string{"A"},
		Scoreboard: models.Scoreboard{
			MaxMatch: 1,
			Results: []models.ScoreResult{
				{MemberID: "m1", Chosen: []string{"A"}, MatchCount: 1, IsWinner: true},
				{MemberID: "m2", Chosen: []string{"B"}, MatchCount: 0, IsWinner: false},
			},
			Winners: []string{"m1"},
			Losers:  []string{"m2"},
		},
	}
}

func TestNop(t *testing.T) {
	ctx := context.Background()
	c, closeFn, err := New(ctx, "", time.Minute)
	require.NoError(t, err)
	defer closeFn()

	c.Set(ctx, sampleResolution(1))
	_, ok := c.Get(ctx, 1)
	assert.False(t, ok)
	c.Invalidate(ctx, 1)
}

func TestNew_InvalidURL(t *testing.T) {
	_, _, err := New(context.Background(), "not a url", time.Minute)
	assert.Error(t, err)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "resolution:42", key(42))
}

// setupRedis connects to TEST_REDIS_URL and skips when it is not set.
func setupRedis(t *testing.T) *Redis {
	t.Helper()

	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}
	opts, err := redis.ParseURL(url)
	require.NoError(t, err)

	client := redis.NewClient(opts)
	require.NoError(t, client.Ping(context.Background()).Err())
	t.Cleanup(func() { client.Close() })

	return NewRedis(client, time.Minute)
}

func TestRedis_RoundTrip(t *testing.T) {
	c := setupRedis(t)
	ctx := context.Background()
	partyID := time.Now().UnixNano()
	t.Cleanup(func() { c.Invalidate(ctx, partyID) })

	_, ok := c.Get(ctx, partyID)
	assert.False(t, ok)

	want := sampleResolution(partyID)
	c.Set(ctx, want)

	got, ok := c.Get(ctx, partyID)
	require.True(t, ok)
	assert.Equal(t, want, got)

	ttl, err := c.client.TTL(ctx, key(partyID)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	c.Invalidate(ctx, partyID)
	_, ok = c.Get(ctx, partyID)
	assert.False(t, ok)
}

func TestRedis_CorruptEntryIsDropped(t *testing.T) {
	c := setupRedis(t)
	ctx := context.Background()
	partyID := time.Now().UnixNano()

	require.NoError(t, c.client.Set(ctx, key(partyID), "{not json", time.Minute).Err())

	_, ok := c.Get(ctx, partyID)
	assert.False(t, ok)

	exists, err := c.client.Exists(ctx, key(partyID)).Result()
	require.NoError(t, err)
	assert.Zero(t, exists)
}
