// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the party-pick API server.

party-pick runs betting parties: a leader opens a party over a set of
candidate outcomes, members pick outcomes while the party is waiting, the
leader starts and later confirms the winning outcomes, and the members whose
picks overlap the winners most are credited a lifetime win exactly once.

# Starting the Server

The server reads environment variables (optionally from .env) or CLI flags:

	DATABASE_URL=party.db TOKEN_SECRET=... go run .

Or with flags:

	go run . -p 3318 -t postgres -d "postgres://..." -token-secret ...

# Configuration

Required settings:

  - DATABASE_URL (-d): Connection string or SQLite file path
  - TOKEN_SECRET (-token-secret): HMAC secret for member tokens

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - TOKEN_TTL (-token-ttl): Member token lifetime (default: 720h)
  - REDIS_URL (-redis-url): Enables the resolution cache
  - CACHE_TTL (-cache-ttl): Resolution cache lifetime (default: 10m)
  - SESSION_ISSUER_KEY (-session-issuer-key): Lets the identity service mint
    member tokens through POST /sessions (X-Issuer-Key header). Unset disables
    the route; tokens must then be signed with TOKEN_SECRET elsewhere.

# Architecture

  - engine: Roster, state machine, selections, scoring and resolution
  - handlers: HTTP request handlers
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, member auth, JSON helpers
  - cache: Optional Redis cache for resolutions
  - models: Domain and request/response types
  - auth: Member token issuing and parsing
  - db: Connection setup and schema creation
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
