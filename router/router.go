// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/danielhkuo/party-pick/cache"
	"github.com/danielhkuo/party-pick/cliparse"
	"github.com/danielhkuo/party-pick/engine"
	"github.com/danielhkuo/party-pick/handlers"
	"github.com/danielhkuo/party-pick/middleware"
)

func NewRouter(e *engine.Engine, c cache.ResolutionCache, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	sessionHandler := handlers.NewSessionHandler(cfg)
	partyHandler := handlers.NewPartyHandler(e, c)
	selectionHandler := handlers.NewSelectionHandler(e)
	resultsHandler := handlers.NewResultsHandler(e, c)
	memberHandler := handlers.NewMemberHandler(e)

	// member wraps a handler with logging and bearer-token authentication.
	member := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.WithLogging(middleware.RequireMember(cfg.TokenSecret, h))
	}

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Sessions (public)
	mux.HandleFunc("POST /sessions", middleware.WithLogging(sessionHandler.CreateSession))

	// Party lifecycle and roster
	mux.HandleFunc("POST /parties", member(partyHandler.CreateParty))
	mux.HandleFunc("POST /parties/join", member(partyHandler.JoinParty))
	mux.HandleFunc("GET /parties/{id}", member(partyHandler.GetParty))
	mux.HandleFunc("DELETE /parties/{id}", member(partyHandler.DeleteParty))
	mux.HandleFunc("DELETE /parties/{id}/members/{member}", member(partyHandler.RemoveMember))
	mux.HandleFunc("POST /parties/{id}/leader", member(partyHandler.TransferLeadership))
	mux.HandleFunc("GET /parties/{id}/pending", member(partyHandler.GetPending))
	mux.HandleFunc("POST /parties/{id}/start", member(partyHandler.StartParty))
	mux.HandleFunc("POST /parties/{id}/confirm", member(partyHandler.ConfirmOutcome))

	// Selections (sealed until the party starts)
	mux.HandleFunc("PUT /parties/{id}/selection", member(selectionHandler.SubmitSelection))
	mux.HandleFunc("GET /parties/{id}/selection", member(selectionHandler.GetMySelection))
	mux.HandleFunc("GET /parties/{id}/selections", member(selectionHandler.ListSelections))

	// Resolution
	mux.HandleFunc("POST /parties/{id}/resolve", member(resultsHandler.Resolve))
	mux.HandleFunc("GET /parties/{id}/resolution", member(resultsHandler.GetResolution))

	// Member profile
	mux.HandleFunc("GET /members/me", member(memberHandler.GetMe))
	mux.HandleFunc("GET /members/me/parties", member(memberHandler.GetMyParties))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("party-pick API v1"))
	})

	return mux
}
