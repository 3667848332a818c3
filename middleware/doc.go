// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /health", middleware.WithLogging(handler))

Every request gets an id (the client's X-Request-ID, or a fresh UUID) that
is echoed in the response and attached to the start and completion log
lines along with the client IP, status and duration_ms.

# Member Authentication

Routes that act on behalf of a member require a bearer token:

	mux.HandleFunc("GET /members/me",
		middleware.WithLogging(middleware.RequireMember(secret, h.GetMe)))

	memberID, _ := middleware.MemberID(r.Context())

Missing or invalid tokens get 401 with code "unauthenticated".

# CORS Middleware

Enable cross-origin requests for frontend access:

	server := http.Server{
		Handler: middleware.CORS(mux),
	}

Allows methods GET, POST, PUT, DELETE, OPTIONS with headers
Content-Type, Authorization, X-Request-ID.

# JSON Helpers

Write JSON responses:

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")
	middleware.ErrorWithCode(w, http.StatusConflict, "party_full", "Party is full")

Parse JSON request bodies:

	var req models.CreatePartyRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

# Client IP Extraction

Get the original client IP (handles X-Forwarded-For, X-Real-IP):

	ip := middleware.GetClientIP(r)
*/
package middleware
