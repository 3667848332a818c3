// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/danielhkuo/party-pick/models"
)

// Normalize folds an outcome string into the form used for comparison:
// compatibility-normalized, case-folded, with surrounding whitespace removed
// and inner whitespace runs collapsed to a single space.
func Normalize(s string) string {
	s = norm.NFKC.String(s)
	s = strings.Join(strings.Fields(s), " ")
	// Casers keep state; one per call keeps Normalize safe for concurrent use.
	return cases.Fold().String(s)
}

// Score computes every member's match count against the winning outcomes and
// splits members into winners and losers.
//
// A member wins when their match count equals the highest count in the party
// and that count is above zero. Ties all win. When nobody matched anything
// there are no winners. Entries sharing a member id are merged.
//
// Score has no side effects and its output is ordered by member id, so two
// calls with the same inputs return identical scoreboards.
func Score(winning []string, entries []models.Entry) models.Scoreboard {
	winSet := make(map[string]bool, len(winning))
	for _, w := range winning {
		winSet[Normalize(w)] = true
	}

	type tally struct {
		chosen []string
		seen   map[string]bool
	}
	byMember := make(map[string]*tally, len(entries))
	for _, e := range entries {
		t, ok := byMember[e.MemberID]
		if !ok {
			t = &tally{seen: make(map[string]bool)}
			byMember[e.MemberID] = t
		}
		for _, c := range e.Chosen {
			n := Normalize(c)
			if t.seen[n] {
				continue
			}
			t.seen[n] = true
			t.chosen = append(t.chosen, c)
		}
	}

	memberIDs := make([]string, 0, len(byMember))
	for id := range byMember {
		memberIDs = append(memberIDs, id)
	}
	sort.Strings(memberIDs)

	board := models.Scoreboard{
		Results: make([]models.ScoreResult, 0, len(memberIDs)),
		Winners: []string{},
		Losers:  []string{},
	}

	for _, id := range memberIDs {
		t := byMember[id]
		matches := 0
		for n := range t.seen {
			if winSet[n] {
				matches++
			}
		}
		chosen := t.chosen
		if chosen == nil {
			chosen = []string{}
		}
		board.Results = append(board.Results, models.ScoreResult{
			MemberID:   id,
			Chosen:     chosen,
			MatchCount: matches,
		})
		if matches > board.MaxMatch {
			board.MaxMatch = matches
		}
	}

	for i := range board.Results {
		r := &board.Results[i]
		r.IsWinner = board.MaxMatch > 0 && r.MatchCount == board.MaxMatch
		if r.IsWinner {
			board.Winners = append(board.Winners, r.MemberID)
		} else {
			board.Losers = append(board.Losers, r.MemberID)
		}
	}

	return board
}

// canonicalize maps caller-supplied outcome strings onto the party's candidate
// labels. The result is deduplicated and kept in candidate order.
func canonicalize(candidates, values []string) ([]string, error) {
	position := make(map[string]int, len(candidates))
	for i, c := range candidates {
		position[Normalize(c)] = i
	}

	picked := make(map[int]bool, len(values))
	for _, v := range values {
		i, ok := position[Normalize(v)]
		if !ok {
			return nil, ErrInvalidOutcome
		}
		picked[i] = true
	}

	out := make([]string, 0, len(picked))
	for i, c := range candidates {
		if picked[i] {
			out = append(out, c)
		}
	}
	return out, nil
}

// distinctCount counts values after normalization.
func distinctCount(values []string) int {
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		seen[Normalize(v)] = true
	}
	return len(seen)
}
