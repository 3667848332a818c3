// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the party-pick API.

# Handler Types

Each handler is a struct holding the engine (and, where results are served,
the resolution cache):

  - SessionHandler: Issues member tokens
  - PartyHandler: Party lifecycle and roster (create, join, start, confirm)
  - SelectionHandler: Submitting and reading selections
  - ResultsHandler: Resolution and cached results
  - MemberHandler: Member profile and party history

	partyHandler := handlers.NewPartyHandler(e, c)

# Authentication

Every route except POST /sessions runs behind middleware.RequireMember, which
puts the member id from the bearer token into the request context. Handlers
read it with middleware.MemberID.

# Party Lifecycle

Parties progress through three states: waiting → started → ended

	POST /parties                → CreateParty (caller becomes leader)
	POST /parties/join           → JoinParty (by join code)
	PUT  /parties/{id}/selection → SubmitSelection (waiting only)
	POST /parties/{id}/start     → StartParty (closes selections)
	POST /parties/{id}/confirm   → ConfirmOutcome (ends and resolves)
	POST /parties/{id}/resolve   → Resolve (safe to retry)

# Errors

Engine errors are mapped by kind (see errors.go) to a status and a machine
readable code in the error body, for example 409 "not_open" or 503
"store_unavailable" with Retry-After.
*/
package handlers
