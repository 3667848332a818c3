// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/party-pick/cache"
	"github.com/danielhkuo/party-pick/engine"
	"github.com/danielhkuo/party-pick/middleware"
	"github.com/danielhkuo/party-pick/models"
)

type PartyHandler struct {
	engine *engine.Engine
	cache  cache.ResolutionCache
}

func NewPartyHandler(e *engine.Engine, c cache.ResolutionCache) *PartyHandler {
	return &PartyHandler{engine: e, cache: c}
}

// partyView loads a party with its roster.
func (h *PartyHandler) partyView(ctx context.Context, partyID int64) (*models.PartyView, error) {
	party, err := h.engine.Roster.GetParty(ctx, partyID)
	if err != nil {
		return nil, err
	}
	members, err := h.engine.Roster.Members(ctx, partyID)
	if err != nil {
		return nil, err
	}
	return &models.PartyView{
		Party:      *party,
		Members:    members,
		CreatedAgo: humanize.Time(party.CreatedAt),
	}, nil
}

// CreateParty handles POST /parties
// The caller becomes the leader.
func (h *PartyHandler) CreateParty(w http.ResponseWriter, r *http.Request) {
	memberID, ok := caller(w, r)
	if !ok {
		return
	}

	var req models.CreatePartyRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	party, err := h.engine.Roster.CreateParty(r.Context(), models.NewParty{
		Name:           req.Name,
		LeaderID:       memberID,
		Capacity:       req.Capacity,
		Prompt:         req.Prompt,
		Candidates:     req.Candidates,
		SelectionLimit: req.SelectionLimit,
	})
	if err != nil {
		writeEngineError(w, r, "create party", err)
		return
	}

	view, err := h.partyView(r.Context(), party.ID)
	if err != nil {
		writeEngineError(w, r, "load party", err)
		return
	}
	middleware.JSONResponse(w, http.StatusCreated, view)
}

// JoinParty handles POST /parties/join
func (h *PartyHandler) JoinParty(w http.ResponseWriter, r *http.Request) {
	memberID, ok := caller(w, r)
	if !ok {
		return
	}

	var req models.JoinPartyRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if strings.TrimSpace(req.JoinCode) == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "join_code is required")
		return
	}

	party, err := h.engine.Roster.Join(r.Context(), req.JoinCode, memberID)
	if err != nil {
		writeEngineError(w, r, "join party", err)
		return
	}

	view, err := h.partyView(r.Context(), party.ID)
	if err != nil {
		writeEngineError(w, r, "load party", err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, view)
}

// GetParty handles GET /parties/{id}
func (h *PartyHandler) GetParty(w http.ResponseWriter, r *http.Request) {
	memberID, ok := caller(w, r)
	if !ok {
		return
	}
	id, ok := partyID(w, r)
	if !ok {
		return
	}
	if !requireMembership(w, r, h.engine, id, memberID) {
		return
	}

	view, err := h.partyView(r.Context(), id)
	if err != nil {
		writeEngineError(w, r, "load party", err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, view)
}

// DeleteParty handles DELETE /parties/{id}
// Leader only.
func (h *PartyHandler) DeleteParty(w http.ResponseWriter, r *http.Request) {
	memberID, ok := caller(w, r)
	if !ok {
		return
	}
	id, ok := partyID(w, r)
	if !ok {
		return
	}

	if err := h.engine.Roster.DeleteParty(r.Context(), id, memberID); err != nil {
		writeEngineError(w, r, "delete party", err)
		return
	}
	h.cache.Invalidate(r.Context(), id)

	w.WriteHeader(http.StatusNoContent)
}

// RemoveMember handles DELETE /parties/{id}/members/{member}
// The leader may kick anyone else; members may remove themselves.
func (h *PartyHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	memberID, ok := caller(w, r)
	if !ok {
		return
	}
	id, ok := partyID(w, r)
	if !ok {
		return
	}

	target := r.PathValue("member")
	if target == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "member is required")
		return
	}

	if err := h.engine.Roster.Remove(r.Context(), id, memberID, target); err != nil {
		writeEngineError(w, r, "remove member", err)
		return
	}
	h.cache.Invalidate(r.Context(), id)

	w.WriteHeader(http.StatusNoContent)
}

// TransferLeadership handles POST /parties/{id}/leader
func (h *PartyHandler) TransferLeadership(w http.ResponseWriter, r *http.Request) {
	memberID, ok := caller(w, r)
	if !ok {
		return
	}
	id, ok := partyID(w, r)
	if !ok {
		return
	}

	var req models.TransferLeadershipRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.NewLeaderID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "new_leader_id is required")
		return
	}

	if err := h.engine.Roster.TransferLeadership(r.Context(), id, memberID, req.NewLeaderID); err != nil {
		writeEngineError(w, r, "transfer leadership", err)
		return
	}

	view, err := h.partyView(r.Context(), id)
	if err != nil {
		writeEngineError(w, r, "load party", err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, view)
}

// GetPending handles GET /parties/{id}/pending
// Lists members who still owe a selection.
func (h *PartyHandler) GetPending(w http.ResponseWriter, r *http.Request) {
	memberID, ok := caller(w, r)
	if !ok {
		return
	}
	id, ok := partyID(w, r)
	if !ok {
		return
	}
	if !requireMembership(w, r, h.engine, id, memberID) {
		return
	}

	pending, err := h.engine.Roster.PendingSelectionGap(r.Context(), id)
	if err != nil {
		writeEngineError(w, r, "pending selections", err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.PendingResponse{
		Pending: pending,
		Count:   len(pending),
	})
}

// StartParty handles POST /parties/{id}/start
// Closes selections. Leader only.
func (h *PartyHandler) StartParty(w http.ResponseWriter, r *http.Request) {
	memberID, ok := caller(w, r)
	if !ok {
		return
	}
	id, ok := partyID(w, r)
	if !ok {
		return
	}

	if err := h.engine.States.Start(r.Context(), id, memberID); err != nil {
		writeEngineError(w, r, "start party", err)
		return
	}

	view, err := h.partyView(r.Context(), id)
	if err != nil {
		writeEngineError(w, r, "load party", err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, view)
}

// ConfirmOutcome handles POST /parties/{id}/confirm
// Ends the party with the given winning outcomes and resolves it. When the
// resolution step fails the party stays ended and the response carries
// resolved=false; POST /parties/{id}/resolve finishes the job.
func (h *PartyHandler) ConfirmOutcome(w http.ResponseWriter, r *http.Request) {
	memberID, ok := caller(w, r)
	if !ok {
		return
	}
	id, ok := partyID(w, r)
	if !ok {
		return
	}

	var req models.ConfirmOutcomeRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if err := h.engine.States.ConfirmOutcome(r.Context(), id, memberID, req.WinningOutcomes); err != nil {
		writeEngineError(w, r, "confirm outcome", err)
		return
	}

	resp := models.ConfirmOutcomeResponse{State: models.StateEnded}
	result, err := h.engine.Coordinator.Resolve(r.Context(), id)
	if err != nil {
		slog.Error("resolve after confirm failed",
			"request_id", middleware.RequestID(r.Context()),
			"party_id", id,
			"error", err,
		)
	} else {
		resp.Resolved = true
		resp.Resolution = &result.Resolution
		h.cache.Set(r.Context(), &result.Resolution)
	}

	middleware.JSONResponse(w, http.StatusOK, resp)
}
