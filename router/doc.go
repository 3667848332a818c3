// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the party-pick API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(e, c, cfg)

# Endpoints

Public:

	GET  /health   - Liveness
	GET  /         - Banner
	POST /sessions - Issue a member token (requires X-Issuer-Key)

Parties (requires Authorization: Bearer <token>):

	POST   /parties                        - Create party
	POST   /parties/join                   - Join by code
	GET    /parties/{id}                   - Party view
	DELETE /parties/{id}                   - Delete (leader)
	DELETE /parties/{id}/members/{member}  - Kick or leave
	POST   /parties/{id}/leader            - Transfer leadership
	GET    /parties/{id}/pending           - Members without a selection
	POST   /parties/{id}/start             - Close selections
	POST   /parties/{id}/confirm           - Confirm outcome and resolve

Selections:

	PUT /parties/{id}/selection  - Submit or replace own selection
	GET /parties/{id}/selection  - Own selection
	GET /parties/{id}/selections - All selections (after start)

Resolution and members:

	POST /parties/{id}/resolve    - Resolve (idempotent)
	GET  /parties/{id}/resolution - Cached resolution
	GET  /members/me              - Lifetime wins
	GET  /members/me/parties      - Party history

API routes are wrapped with middleware.WithLogging.
*/
package router
