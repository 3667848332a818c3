// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/danielhkuo/party-pick/models"
)

// opTimeout bounds every cache round trip; a slow cache must not slow reads.
const opTimeout = 500 * time.Millisecond

// ResolutionCache holds computed resolutions of ended parties.
type ResolutionCache interface {
	// Get returns the cached resolution and whether it was found.
	Get(ctx context.Context, partyID int64) (*models.Resolution, bool)
	Set(ctx context.Context, res *models.Resolution)
	Invalidate(ctx context.Context, partyID int64)
}

// Nop caches nothing. It is used when no Redis URL is configured.
type Nop struct{}

func (Nop) Get(context.Context, int64) (*models.Resolution, bool) { return nil, false }
func (Nop) Set(context.Context, *models.Resolution)               {}
func (Nop) Invalidate(context.Context, int64)                     {}

// Redis stores resolutions as JSON strings under resolution:<party id>.
// Cache failures are logged and treated as misses.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

// New returns a Redis-backed cache for url, or Nop when url is empty.
// The connection is checked with a PING before it is used.
func New(ctx context.Context, url string, ttl time.Duration) (ResolutionCache, func() error, error) {
	if url == "" {
		return Nop{}, func() error { return nil }, nil
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid redis url: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return NewRedis(client, ttl), client.Close, nil
}

func key(partyID int64) string {
	return "resolution:" + strconv.FormatInt(partyID, 10)
}

func (c *Redis) Get(ctx context.Context, partyID int64) (*models.Resolution, bool) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	data, err := c.client.Get(ctx, key(partyID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		slog.Warn("resolution cache read failed", "party_id", partyID, "error", err)
		return nil, false
	}

	var res models.Resolution
	if err := json.Unmarshal(data, &res); err != nil {
		slog.Warn("dropping undecodable cached resolution", "party_id", partyID, "error", err)
		c.Invalidate(ctx, partyID)
		return nil, false
	}
	return &res, true
}

func (c *Redis) Set(ctx context.Context, res *models.Resolution) {
	data, err := json.Marshal(res)
	if err != nil {
		slog.Error("failed to encode resolution", "party_id", res.PartyID, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	if err := c.client.Set(ctx, key(res.PartyID), data, c.ttl).Err(); err != nil {
		slog.Warn("resolution cache write failed", "party_id", res.PartyID, "error", err)
	}
}

func (c *Redis) Invalidate(ctx context.Context, partyID int64) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	if err := c.client.Del(ctx, key(partyID)).Err(); err != nil {
		slog.Warn("resolution cache delete failed", "party_id", partyID, "error", err)
	}
}
