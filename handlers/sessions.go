// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielhkuo/party-pick/auth"
	"github.com/danielhkuo/party-pick/cliparse"
	"github.com/danielhkuo/party-pick/middleware"
	"github.com/danielhkuo/party-pick/models"
)

const maxMemberIDLength = 64

// IssuerKeyHeader carries the identity service's credential on POST /sessions.
const IssuerKeyHeader = "X-Issuer-Key"

type SessionHandler struct {
	cfg cliparse.Config
}

func NewSessionHandler(cfg cliparse.Config) *SessionHandler {
	return &SessionHandler{cfg: cfg}
}

// CreateSession handles POST /sessions
// Binds a member id to a signed token; identity itself is managed elsewhere.
// Only the identity service holding the issuer key may call it.
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	if h.cfg.SessionIssuerKey == "" {
		middleware.ErrorWithCode(w, http.StatusForbidden, "sessions_disabled", "Session issuing is not enabled")
		return
	}
	if err := auth.ValidateIssuerKey(r.Header.Get(IssuerKeyHeader), h.cfg.SessionIssuerKey); err != nil {
		slog.Warn("rejected session request", "request_id", middleware.RequestID(r.Context()), "client_ip", middleware.GetClientIP(r))
		middleware.ErrorWithCode(w, http.StatusUnauthorized, "unauthenticated", "Invalid issuer key")
		return
	}

	var req models.CreateSessionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	memberID := strings.TrimSpace(req.MemberID)
	if memberID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "member_id is required")
		return
	}
	if len(memberID) > maxMemberIDLength {
		middleware.ErrorResponse(w, http.StatusBadRequest, "member_id is too long")
		return
	}

	token, expiresAt, err := auth.IssueMemberToken(memberID, h.cfg.TokenSecret, h.cfg.TokenTTL)
	if err != nil {
		slog.Error("failed to issue member token", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	slog.Info("session created", "member", memberID, "expires_at", expiresAt)

	middleware.JSONResponse(w, http.StatusCreated, models.CreateSessionResponse{
		Token:     token,
		ExpiresAt: expiresAt,
	})
}
