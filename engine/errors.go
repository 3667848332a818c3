// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import "errors"

var (
	ErrUnauthorized       = errors.New("caller lacks the required role")
	ErrInvalidTransition  = errors.New("invalid party state transition")
	ErrAlreadyResolved    = errors.New("party already resolved")
	ErrNotOpen            = errors.New("party is not accepting selections")
	ErrInvalidCardinality = errors.New("number of chosen outcomes out of range")
	ErrInvalidOutcome     = errors.New("outcome not among the party's candidates")
	ErrPartyFull          = errors.New("party is full")
	ErrAlreadyMember      = errors.New("already a member of the party")
	ErrNotFound           = errors.New("not found")
	ErrStoreUnavailable   = errors.New("store unavailable")

	// ErrInvalidParty rejects party settings at creation (name, capacity).
	ErrInvalidParty = errors.New("invalid party settings")
)

// Kind returns a stable identifier for the error kind wrapped in err, or ""
// when err is not one of the engine's kinds.
func Kind(err error) string {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.code
		}
	}
	return ""
}

var kinds = []struct {
	err  error
	code string
}{
	{ErrUnauthorized, "unauthorized"},
	{ErrInvalidTransition, "invalid_transition"},
	{ErrAlreadyResolved, "already_resolved"},
	{ErrNotOpen, "not_open"},
	{ErrInvalidCardinality, "invalid_cardinality"},
	{ErrInvalidOutcome, "invalid_outcome"},
	{ErrPartyFull, "party_full"},
	{ErrAlreadyMember, "already_member"},
	{ErrNotFound, "not_found"},
	{ErrStoreUnavailable, "store_unavailable"},
	{ErrInvalidParty, "invalid_party"},
}
