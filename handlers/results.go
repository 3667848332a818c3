// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/party-pick/cache"
	"github.com/danielhkuo/party-pick/engine"
	"github.com/danielhkuo/party-pick/middleware"
)

type ResultsHandler struct {
	engine *engine.Engine
	cache  cache.ResolutionCache
}

func NewResultsHandler(e *engine.Engine, c cache.ResolutionCache) *ResultsHandler {
	return &ResultsHandler{engine: e, cache: c}
}

// Resolve handles POST /parties/{id}/resolve
// Safe to retry: lifetime wins are credited once per party.
func (h *ResultsHandler) Resolve(w http.ResponseWriter, r *http.Request) {
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

	result, err := h.engine.Coordinator.Resolve(r.Context(), id)
	if err != nil {
		writeEngineError(w, r, "resolve", err)
		return
	}
	h.cache.Set(r.Context(), &result.Resolution)

	middleware.JSONResponse(w, http.StatusOK, result)
}

// GetResolution handles GET /parties/{id}/resolution
// Served from the cache when possible; X-Cache reports HIT or MISS.
func (h *ResultsHandler) GetResolution(w http.ResponseWriter, r *http.Request) {
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

	if res, hit := h.cache.Get(r.Context(), id); hit {
		w.Header().Set("X-Cache", "HIT")
		middleware.JSONResponse(w, http.StatusOK, res)
		return
	}

	res, err := h.engine.Coordinator.GetResolution(r.Context(), id)
	if err != nil {
		writeEngineError(w, r, "get resolution", err)
		return
	}
	h.cache.Set(r.Context(), res)

	w.Header().Set("X-Cache", "MISS")
	middleware.JSONResponse(w, http.StatusOK, res)
}
