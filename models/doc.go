// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines the domain types and the request/response shapes of
the Party Pick API.

# Domain Types

  - Party: a group wager with a candidate pool, a selection limit and a lifecycle state
  - Membership: a (party, member) pair; the leader is always a member
  - Selection: one member's chosen outcomes, plus the winner flag after resolution
  - Scoreboard / Resolution: derived results, never the source of truth

# Lifecycle

Parties move strictly forward:

	waiting → started → ended

Selections can only be edited while a party is waiting. Winning outcomes
are written once, together with the move to ended.

# Constants

State values:

	StateWaiting = "waiting"
	StateStarted = "started"
	StateEnded   = "ended"

# Winner Flag

Selection.IsWinner is a pointer so that the three states survive JSON:
omitted (not resolved yet), true, false.
*/
package models
