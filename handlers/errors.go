// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/danielhkuo/party-pick/engine"
	"github.com/danielhkuo/party-pick/middleware"
)

// engineErrors maps engine error kinds to a status and a client message.
var engineErrors = map[string]struct {
	status  int
	message string
}{
	"unauthorized":        {http.StatusForbidden, "Not allowed for this member"},
	"not_found":           {http.StatusNotFound, "Not found"},
	"invalid_cardinality": {http.StatusBadRequest, "Wrong number of outcomes chosen"},
	"invalid_outcome":     {http.StatusBadRequest, "Outcome is not one of the party's candidates"},
	"invalid_party":       {http.StatusBadRequest, "Invalid party settings"},
	"invalid_transition":  {http.StatusConflict, "Not allowed in the party's current state"},
	"already_resolved":    {http.StatusConflict, "Party outcome already confirmed"},
	"not_open":            {http.StatusConflict, "Party is no longer accepting selections"},
	"party_full":          {http.StatusConflict, "Party is full"},
	"already_member":      {http.StatusConflict, "Already a member of this party"},
	"store_unavailable":   {http.StatusServiceUnavailable, "Storage temporarily unavailable, retry"},
}

// writeEngineError translates an engine error into an HTTP error response.
func writeEngineError(w http.ResponseWriter, r *http.Request, op string, err error) {
	kind := engine.Kind(err)
	mapped, ok := engineErrors[kind]
	if !ok {
		slog.Error(op+" failed", "request_id", middleware.RequestID(r.Context()), "error", err)
		middleware.ErrorWithCode(w, http.StatusInternalServerError, "internal", "Internal error")
		return
	}

	if mapped.status == http.StatusServiceUnavailable {
		slog.Warn(op+" failed", "request_id", middleware.RequestID(r.Context()), "error", err)
		w.Header().Set("Retry-After", "1")
	} else {
		slog.Debug(op+" rejected", "request_id", middleware.RequestID(r.Context()), "kind", kind, "error", err)
	}

	message := mapped.message
	if mapped.status == http.StatusBadRequest {
		message = err.Error()
	}
	middleware.ErrorWithCode(w, mapped.status, kind, message)
}

// partyID parses the {id} path value.
func partyID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		middleware.ErrorWithCode(w, http.StatusBadRequest, "invalid_request", "Invalid party id")
		return 0, false
	}
	return id, true
}

// caller returns the authenticated member, answering 401 when there is none.
func caller(w http.ResponseWriter, r *http.Request) (string, bool) {
	memberID, ok := middleware.MemberID(r.Context())
	if !ok {
		middleware.ErrorWithCode(w, http.StatusUnauthorized, "unauthenticated", "Missing member token")
	}
	return memberID, ok
}

// requireMembership answers 403 unless memberID belongs to the party.
func requireMembership(w http.ResponseWriter, r *http.Request, e *engine.Engine, partyID int64, memberID string) bool {
	ok, err := e.Roster.IsMember(r.Context(), partyID, memberID)
	if err != nil {
		writeEngineError(w, r, "membership check", err)
		return false
	}
	if !ok {
		writeEngineError(w, r, "membership check", engine.ErrUnauthorized)
		return false
	}
	return true
}
