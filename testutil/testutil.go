// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielhkuo/party-pick/auth"
	"github.com/danielhkuo/party-pick/cliparse"
	"github.com/danielhkuo/party-pick/db"
)

// TestTokenSecret signs member tokens in tests.
const TestTokenSecret = "test-token-secret"

// TestIssuerKey authorizes POST /sessions in tests.
const TestIssuerKey = "test-issuer-key"

// SetupTestDB creates a fresh SQLite database with the full schema in the
// test's temp dir. It is closed when the test ends.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "party.db")
	conn, err := db.Open(context.Background(), db.SQLite, "file:"+path)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn, db.SQLite); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:         3318,
		DatabaseURL:  "file::memory:",
		DatabaseType: db.SQLite,
		TokenSecret:  TestTokenSecret,
		TokenTTL:     time.Hour,
		CacheTTL:     time.Minute,

		SessionIssuerKey: TestIssuerKey,
	}
}

// TestParty describes a party fixture.
type TestParty struct {
	Leader         string
	Capacity       int
	State          string
	Candidates     []string
	SelectionLimit int
}

// DefaultTestParty is a waiting party led by "leader" with candidates A, B, C.
func DefaultTestParty() TestParty {
	return TestParty{
		Leader:         "leader",
		Capacity:       8,
		State:          "waiting",
		Candidates:     []string{"A", "B", "C"},
		SelectionLimit: 2,
	}
}

// CreateTestParty inserts a party directly and returns its ID and join code.
func CreateTestParty(t *testing.T, conn *sql.DB, p TestParty) (partyID int64, joinCode string) {
	t.Helper()

	joinCode, err := auth.GenerateJoinCode()
	if err != nil {
		t.Fatalf("Failed to generate join code: %v", err)
	}

	now := time.Now().UTC()
	var startedAt, endedAt *time.Time
	if p.State == "started" || p.State == "ended" {
		startedAt = &now
	}
	if p.State == "ended" {
		endedAt = &now
	}

	err = conn.QueryRow(`
		INSERT INTO party (join_code, name, leader_id, capacity, state, prompt, selection_limit, created_at, started_at, ended_at)
		VALUES ($1, 'Test Party', $2, $3, $4, 'Who wins?', $5, $6, $7, $8)
		RETURNING id
	`, joinCode, p.Leader, p.Capacity, p.State, p.SelectionLimit, now, startedAt, endedAt).Scan(&partyID)
	if err != nil {
		t.Fatalf("Failed to create test party: %v", err)
	}

	for i, label := range p.Candidates {
		_, err := conn.Exec(`
			INSERT INTO party_candidate (party_id, position, label)
			VALUES ($1, $2, $3)
		`, partyID, i, label)
		if err != nil {
			t.Fatalf("Failed to create test candidate: %v", err)
		}
	}

	AddTestMember(t, conn, partyID, p.Leader)
	return partyID, joinCode
}

// AddTestMember puts a member on a party's roster.
func AddTestMember(t *testing.T, conn *sql.DB, partyID int64, memberID string) {
	t.Helper()

	_, err := conn.Exec(`
		INSERT INTO membership (party_id, member_id, joined_at)
		VALUES ($1, $2, $3)
	`, partyID, memberID, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to add test member: %v", err)
	}
}

// SubmitTestSelection stores a selection without any state checks.
func SubmitTestSelection(t *testing.T, conn *sql.DB, partyID int64, memberID string, chosen ...string) {
	t.Helper()

	_, err := conn.Exec(`
		INSERT INTO selection (party_id, member_id, submitted_at)
		VALUES ($1, $2, $3)
	`, partyID, memberID, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test selection: %v", err)
	}

	for _, label := range chosen {
		_, err := conn.Exec(`
			INSERT INTO selection_choice (party_id, member_id, label)
			VALUES ($1, $2, $3)
		`, partyID, memberID, label)
		if err != nil {
			t.Fatalf("Failed to create test choice: %v", err)
		}
	}
}

// SetTestState moves a party to state, recording winning outcomes when given.
func SetTestState(t *testing.T, conn *sql.DB, partyID int64, state string, winning ...string) {
	t.Helper()

	if _, err := conn.Exec(`UPDATE party SET state = $1 WHERE id = $2`, state, partyID); err != nil {
		t.Fatalf("Failed to set party state: %v", err)
	}
	for _, label := range winning {
		_, err := conn.Exec(`
			INSERT INTO party_winning_outcome (party_id, label)
			VALUES ($1, $2)
		`, partyID, label)
		if err != nil {
			t.Fatalf("Failed to add winning outcome: %v", err)
		}
	}
}

// TestToken issues a member token signed with TestTokenSecret.
func TestToken(t *testing.T, memberID string) string {
	t.Helper()

	token, _, err := auth.IssueMemberToken(memberID, TestTokenSecret, time.Hour)
	if err != nil {
		t.Fatalf("Failed to issue test token: %v", err)
	}
	return token
}

// AuthHeader returns the Authorization header for memberID.
func AuthHeader(t *testing.T, memberID string) map[string]string {
	t.Helper()
	return map[string]string{"Authorization": "Bearer " + TestToken(t, memberID)}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
