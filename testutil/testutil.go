// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/danielhkuo/tapvote/cliparse"
	"github.com/danielhkuo/tapvote/db"
)

// TestSecretKey signs tokens in tests
const TestSecretKey = "test-secret-key"

// SetupTestDB creates a fresh SQLite test database with the full schema.
// Each test gets its own file under t.TempDir, so tests can run in
// parallel without sharing state.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	conn, err := db.Open("sqlite", "file:"+path)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn, "sqlite"); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:         5000,
		DatabaseType: "sqlite",
		SecretKey:    TestSecretKey,
		TokenMaxAge:  300 * time.Second,
		ScanCooldown: 2 * time.Second,
		ReaderRetry:  5 * time.Second,
		SyncDebounce: 30 * time.Second,
	}
}

// CreateTestSession creates a session open around now and returns its ID.
// Pass active=false for a session that exists but cannot accept votes.
func CreateTestSession(t *testing.T, conn *sql.DB, question string, active bool) int64 {
	t.Helper()

	start := time.Now().Add(-time.Hour)
	end := time.Now().Add(time.Hour)
	return CreateTestSessionWindow(t, conn, question, start, end, active)
}

// CreateTestSessionWindow creates a session with an explicit voting window.
func CreateTestSessionWindow(t *testing.T, conn *sql.DB, question string, start, end time.Time, active bool) int64 {
	t.Helper()

	var id int64
	err := conn.QueryRow(`
		INSERT INTO sessions (question, option_a, option_b, start_time, end_time, is_active, created_at)
		VALUES ($1, 'Pizza', 'Tacos', $2, $3, $4, $5)
		RETURNING id
	`, question, start, end, active, time.Now()).Scan(&id)
	if err != nil {
		t.Fatalf("Failed to create test session: %v", err)
	}

	return id
}

// EnrollTestCard enrolls a card and returns its row ID
func EnrollTestCard(t *testing.T, conn *sql.DB, uid, label string) int64 {
	t.Helper()

	if err := db.EnrollCard(conn, uid, label); err != nil {
		t.Fatalf("Failed to enroll test card: %v", err)
	}

	var id int64
	if err := conn.QueryRow(`SELECT id FROM cards WHERE uid = $1`, uid).Scan(&id); err != nil {
		t.Fatalf("Failed to look up test card: %v", err)
	}
	return id
}

// RecordTestVote records a vote, failing the test on any error
// including a duplicate.
func RecordTestVote(t *testing.T, conn *sql.DB, sessionID int64, uid, option string) {
	t.Helper()

	if err := db.RecordVote(conn, sessionID, uid, option); err != nil {
		t.Fatalf("Failed to record test vote: %v", err)
	}
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
