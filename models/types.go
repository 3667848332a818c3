package models

import "time"

// Party lifecycle states
const (
	StateWaiting = "waiting"
	StateStarted = "started"
	StateEnded   = "ended"
)

// Domain types

type Party struct {
	ID              int64      `json:"id"`
	JoinCode        string     `json:"join_code"`
	Name            string     `json:"name"`
	LeaderID        string     `json:"leader_id"`
	Capacity        int        `json:"capacity"`
	State           string     `json:"state"`
	Prompt          string     `json:"prompt"`
	Candidates      []string   `json:"candidates"`
	SelectionLimit  int        `json:"selection_limit"`
	WinningOutcomes []string   `json:"winning_outcomes"`
	CreatedAt       time.Time  `json:"created_at"`
	StartedAt       *time.Time `json:"started_at,omitempty"`
	EndedAt         *time.Time `json:"ended_at,omitempty"`
}

// NewParty carries the leader-supplied attributes of a party about to be created.
// Candidates come from the external text-completion collaborator.
type NewParty struct {
	Name           string
	LeaderID       string
	Capacity       int
	Prompt         string
	Candidates     []string
	SelectionLimit int
}

type Membership struct {
	PartyID  int64     `json:"party_id"`
	MemberID string    `json:"member_id"`
	IsLeader bool      `json:"is_leader"`
	JoinedAt time.Time `json:"joined_at"`
}

// Selection is one member's committed pick for a party.
// IsWinner is nil until the party has been resolved.
type Selection struct {
	PartyID     int64     `json:"party_id"`
	MemberID    string    `json:"member_id"`
	Chosen      []string  `json:"chosen"`
	SubmittedAt time.Time `json:"submitted_at"`
	IsWinner    *bool     `json:"is_winner,omitempty"`
	MatchCount  *int      `json:"match_count,omitempty"`
}

// Entry is a scoring input: a member and whatever they chose (possibly nothing).
type Entry struct {
	MemberID string
	Chosen   []string
}

type ScoreResult struct {
	MemberID   string   `json:"member_id"`
	Chosen     []string `json:"chosen"`
	MatchCount int      `json:"match_count"`
	IsWinner   bool     `json:"is_winner"`
}

// Scoreboard is the output of a scoring pass, ordered by member id.
type Scoreboard struct {
	MaxMatch int           `json:"max_match"`
	Results  []ScoreResult `json:"results"`
	Winners  []string      `json:"winners"`
	Losers   []string      `json:"losers"`
}

type Resolution struct {
	PartyID         int64    `json:"party_id"`
	WinningOutcomes []string `json:"winning_outcomes"`
	Scoreboard
}

// ResolveResult is what a resolve call reports back. Credited is true only for
// the call that issued the lifetime-win increments.
type ResolveResult struct {
	Resolution Resolution `json:"resolution"`
	Credited   bool       `json:"credited"`
}

// Request types

type CreateSessionRequest struct {
	MemberID string `json:"member_id"`
}

type CreatePartyRequest struct {
	Name           string   `json:"name"`
	Capacity       int      `json:"capacity"`
	Prompt         string   `json:"prompt"`
	Candidates     []string `json:"candidates"`
	SelectionLimit int      `json:"selection_limit"`
}

type JoinPartyRequest struct {
	JoinCode string `json:"join_code"`
}

type TransferLeadershipRequest struct {
	NewLeaderID string `json:"new_leader_id"`
}

type SubmitSelectionRequest struct {
	Chosen []string `json:"chosen"`
}

type ConfirmOutcomeRequest struct {
	WinningOutcomes []string `json:"winning_outcomes"`
}

// Response types

type CreateSessionResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type PartyView struct {
	Party      Party        `json:"party"`
	Members    []Membership `json:"members"`
	CreatedAgo string       `json:"created_ago"`
}

type PendingResponse struct {
	Pending []string `json:"pending"`
	Count   int      `json:"count"`
}

type SelectionsResponse struct {
	Selections []Selection `json:"selections"`
}

type ConfirmOutcomeResponse struct {
	State      string      `json:"state"`
	Resolved   bool        `json:"resolved"`
	Resolution *Resolution `json:"resolution,omitempty"`
}

type MemberProfile struct {
	MemberID     string `json:"member_id"`
	LifetimeWins int    `json:"lifetime_wins"`
}

type MemberParty struct {
	Party      Party  `json:"party"`
	IsLeader   bool   `json:"is_leader"`
	CreatedAgo string `json:"created_ago"`
}

type MemberPartiesResponse struct {
	Parties []MemberParty `json:"parties"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
}
