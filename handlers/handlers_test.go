// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/danielhkuo/party-pick/db"
	"github.com/danielhkuo/party-pick/engine"
	"github.com/danielhkuo/party-pick/middleware"
	"github.com/danielhkuo/party-pick/models"
	"github.com/danielhkuo/party-pick/testutil"
)

// memoryCache is an in-process ResolutionCache for handler tests.
type memoryCache struct {
	mu      sync.Mutex
	entries map[int64]*models.Resolution
	sets    int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[int64]*models.Resolution)}
}

func (c *memoryCache) Get(_ context.Context, partyID int64) (*models.Resolution, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	res, ok := c.entries[partyID]
	return res, ok
}

func (c *memoryCache) Set(_ context.Context, res *models.Resolution) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[res.PartyID] = res
	c.sets++
}

func (c *memoryCache) Invalidate(_ context.Context, partyID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, partyID)
}

type testEnv struct {
	db         *sql.DB
	engine     *engine.Engine
	cache      *memoryCache
	parties    *PartyHandler
	selections *SelectionHandler
	results    *ResultsHandler
	members    *MemberHandler
	sessions   *SessionHandler
}

func setupHandlers(t *testing.T) *testEnv {
	t.Helper()

	conn := testutil.SetupTestDB(t)
	e := engine.New(engine.NewStore(conn, db.SQLite))
	c := newMemoryCache()

	return &testEnv{
		db:         conn,
		engine:     e,
		cache:      c,
		parties:    NewPartyHandler(e, c),
		selections: NewSelectionHandler(e),
		results:    NewResultsHandler(e, c),
		members:    NewMemberHandler(e),
		sessions:   NewSessionHandler(testutil.GetTestConfig()),
	}
}

// asMember builds a request authenticated as memberID with {id} set.
func asMember(method, path, memberID string, partyID int64, body interface{}) *http.Request {
	req := testutil.MakeRequest(method, path, body, nil)
	if partyID != 0 {
		req.SetPathValue("id", strconv.FormatInt(partyID, 10))
	}
	if memberID != "" {
		req = req.WithContext(middleware.WithMemberID(req.Context(), memberID))
	}
	return req
}

func serve(h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h(w, req)
	return w
}

func assertCode(t *testing.T, w *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	testutil.AssertStatus(t, w, status)

	var resp models.ErrorResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.Code != code {
		t.Errorf("Expected error code %q, got %q (%s)", code, resp.Code, resp.Message)
	}
}
