// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

LoadDotEnv reads a local .env file, then ParseFlags returns a Config struct
with all settings:

	cliparse.LoadDotEnv()
	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 3318)
  - DatabaseURL: PostgreSQL connection string or SQLite file (required)
  - DatabaseType: sqlite or postgres (default: sqlite)
  - TokenSecret: HMAC secret for member tokens (required)
  - TokenTTL: Member token lifetime (default: 720h)
  - RedisURL: Resolution cache; empty disables caching
  - CacheTTL: How long cached resolutions live (default: 10m)

# CLI Flags

	-p              Server port
	-d              Database URL
	-t              Database type
	--token-secret  Member token secret
	--token-ttl     Member token lifetime
	--redis-url     Redis URL
	--cache-ttl     Resolution cache TTL

# Environment Variables

Flags fall back to environment variables:

	PORT          → -p
	DATABASE_URL  → -d
	DATABASE_TYPE → -t
	TOKEN_SECRET  → --token-secret
	TOKEN_TTL     → --token-ttl
	REDIS_URL     → --redis-url
	CACHE_TTL     → --cache-ttl

CLI flags take precedence over environment variables, and variables already
in the environment take precedence over .env.

# Validation

ParseFlags returns an error if required values are missing or malformed:

  - DATABASE_URL must be provided
  - TOKEN_SECRET must be provided
  - DATABASE_TYPE must be sqlite or postgres
  - TTLs must be positive Go durations
*/
package cliparse
