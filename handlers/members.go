// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/party-pick/engine"
	"github.com/danielhkuo/party-pick/middleware"
	"github.com/danielhkuo/party-pick/models"
)

type MemberHandler struct {
	engine *engine.Engine
}

func NewMemberHandler(e *engine.Engine) *MemberHandler {
	return &MemberHandler{engine: e}
}

// GetMe handles GET /members/me
// Returns the caller's lifetime win count.
func (h *MemberHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	memberID, ok := caller(w, r)
	if !ok {
		return
	}

	wins, err := h.engine.Roster.LifetimeWins(r.Context(), memberID)
	if err != nil {
		writeEngineError(w, r, "lifetime wins", err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.MemberProfile{
		MemberID:     memberID,
		LifetimeWins: wins,
	})
}

// GetMyParties handles GET /members/me/parties
// Returns parties the caller leads or belongs to, newest first.
func (h *MemberHandler) GetMyParties(w http.ResponseWriter, r *http.Request) {
	memberID, ok := caller(w, r)
	if !ok {
		return
	}

	parties, err := h.engine.Roster.PartiesForMember(r.Context(), memberID)
	if err != nil {
		writeEngineError(w, r, "member parties", err)
		return
	}

	resp := models.MemberPartiesResponse{Parties: make([]models.MemberParty, 0, len(parties))}
	for _, p := range parties {
		resp.Parties = append(resp.Parties, models.MemberParty{
			Party:      p,
			IsLeader:   p.LeaderID == memberID,
			CreatedAgo: humanize.Time(p.CreatedAt),
		})
	}

	middleware.JSONResponse(w, http.StatusOK, resp)
}
