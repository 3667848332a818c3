// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/party-pick/engine"
	"github.com/danielhkuo/party-pick/middleware"
	"github.com/danielhkuo/party-pick/models"
)

type SelectionHandler struct {
	engine *engine.Engine
}

func NewSelectionHandler(e *engine.Engine) *SelectionHandler {
	return &SelectionHandler{engine: e}
}

// SubmitSelection handles PUT /parties/{id}/selection
// Creates or replaces the caller's selection while the party is waiting.
func (h *SelectionHandler) SubmitSelection(w http.ResponseWriter, r *http.Request) {
	memberID, ok := caller(w, r)
	if !ok {
		return
	}
	id, ok := partyID(w, r)
	if !ok {
		return
	}

	var req models.SubmitSelectionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	sel, err := h.engine.Selections.Submit(r.Context(), id, memberID, req.Chosen)
	if err != nil {
		writeEngineError(w, r, "submit selection", err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, sel)
}

// GetMySelection handles GET /parties/{id}/selection
func (h *SelectionHandler) GetMySelection(w http.ResponseWriter, r *http.Request) {
	memberID, ok := caller(w, r)
	if !ok {
		return
	}
	id, ok := partyID(w, r)
	if !ok {
		return
	}

	sel, err := h.engine.Selections.Get(r.Context(), id, memberID)
	if err != nil {
		writeEngineError(w, r, "get selection", err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, sel)
}

// ListSelections handles GET /parties/{id}/selections
// Sealed while the party is waiting so members cannot copy each other.
func (h *SelectionHandler) ListSelections(w http.ResponseWriter, r *http.Request) {
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

	party, err := h.engine.Roster.GetParty(r.Context(), id)
	if err != nil {
		writeEngineError(w, r, "load party", err)
		return
	}
	if party.State == models.StateWaiting {
		middleware.ErrorWithCode(w, http.StatusForbidden, "sealed", "Selections are hidden until the party starts")
		return
	}

	selections, err := h.engine.Selections.ListForParty(r.Context(), id)
	if err != nil {
		writeEngineError(w, r, "list selections", err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.SelectionsResponse{Selections: selections})
}
