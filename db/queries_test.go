// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/danielhkuo/tapvote/models"
)

// setupDB opens a fresh SQLite database for one test. Kept local
// instead of using testutil: testutil imports this package.
func setupDB(t *testing.T) *sql.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	conn, err := Open("sqlite", "file:"+path)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := CreateSchema(conn, "sqlite"); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}
	return conn
}

func createSession(t *testing.T, conn *sql.DB, start, end time.Time, active bool) int64 {
	t.Helper()

	var id int64
	err := conn.QueryRow(`
		INSERT INTO sessions (question, option_a, option_b, start_time, end_time, is_active, created_at)
		VALUES ('Lunch?', 'Pizza', 'Tacos', $1, $2, $3, $4)
		RETURNING id
	`, start, end, active, time.Now()).Scan(&id)
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	return id
}

func TestActiveSession(t *testing.T) {
	conn := setupDB(t)
	now := time.Now()

	t.Run("no sessions", func(t *testing.T) {
		if _, err := ActiveSessionAt(conn, now); !errors.Is(err, ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	past := createSession(t, conn, now.Add(-3*time.Hour), now.Add(-2*time.Hour), true)
	_ = past

	t.Run("window elapsed", func(t *testing.T) {
		if _, err := ActiveSessionAt(conn, now); !errors.Is(err, ErrNotFound) {
			t.Errorf("Expected ErrNotFound for elapsed session, got %v", err)
		}
	})

	inactive := createSession(t, conn, now.Add(-time.Hour), now.Add(time.Hour), false)
	_ = inactive

	t.Run("flag cleared", func(t *testing.T) {
		if _, err := ActiveSessionAt(conn, now); !errors.Is(err, ErrNotFound) {
			t.Errorf("Expected ErrNotFound for inactive session, got %v", err)
		}
	})

	open := createSession(t, conn, now.Add(-time.Hour), now.Add(time.Hour), true)

	t.Run("open session found", func(t *testing.T) {
		s, err := ActiveSessionAt(conn, now)
		if err != nil {
			t.Fatalf("ActiveSessionAt failed: %v", err)
		}
		if s.ID != open {
			t.Errorf("Expected session %d, got %d", open, s.ID)
		}
	})

	t.Run("boundary instants are inclusive", func(t *testing.T) {
		s, err := GetSession(conn, open)
		if err != nil {
			t.Fatalf("GetSession failed: %v", err)
		}
		if _, err := ActiveSessionAt(conn, s.StartTime); err != nil {
			t.Errorf("Expected start instant to count as open, got %v", err)
		}
		if _, err := ActiveSessionAt(conn, s.EndTime); err != nil {
			t.Errorf("Expected end instant to count as open, got %v", err)
		}
	})

	// Overlapping open sessions: admin data-entry mistake, the most
	// recently created one wins.
	newer := createSession(t, conn, now.Add(-time.Hour), now.Add(time.Hour), true)

	t.Run("overlap resolves to newest", func(t *testing.T) {
		s, err := ActiveSessionAt(conn, now)
		if err != nil {
			t.Fatalf("ActiveSessionAt failed: %v", err)
		}
		if s.ID != newer {
			t.Errorf("Expected newest session %d, got %d", newer, s.ID)
		}
	})
}

func TestCreateAndUpdateSession(t *testing.T) {
	conn := setupDB(t)
	now := time.Now()

	id, err := CreateSession(conn, models.CreateSessionRequest{
		Question:  "Best mascot?",
		OptionA:   "Gopher",
		OptionB:   "Ferris",
		OptionC:   "Duke",
		StartTime: now,
		EndTime:   now.Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	s, err := GetSession(conn, id)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if s.Question != "Best mascot?" {
		t.Errorf("Unexpected question %q", s.Question)
	}
	if len(s.Options()) != 3 {
		t.Errorf("Expected 3 options, got %d", len(s.Options()))
	}
	if s.OptionD != nil {
		t.Error("Expected option D to be absent")
	}

	err = UpdateSession(conn, id, models.UpdateSessionRequest{
		CreateSessionRequest: models.CreateSessionRequest{
			Question:  "Best mascot?",
			OptionA:   "Gopher",
			OptionB:   "Ferris",
			StartTime: now,
			EndTime:   now.Add(time.Hour),
		},
		IsActive: false,
	})
	if err != nil {
		t.Fatalf("UpdateSession failed: %v", err)
	}

	s, err = GetSession(conn, id)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if s.IsActive {
		t.Error("Expected session to be deactivated")
	}
	if s.OptionC != nil {
		t.Error("Expected option C to be cleared")
	}

	if err := UpdateSession(conn, 9999, models.UpdateSessionRequest{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for missing session, got %v", err)
	}
}

func TestEnrollCard(t *testing.T) {
	conn := setupDB(t)

	if err := EnrollCard(conn, "04:A1:B2", "Alice"); err != nil {
		t.Fatalf("EnrollCard failed: %v", err)
	}

	registered, err := CardIsRegistered(conn, "04:A1:B2")
	if err != nil {
		t.Fatalf("CardIsRegistered failed: %v", err)
	}
	if !registered {
		t.Error("Expected card to be registered")
	}

	// Deactivate, then re-enroll the same UID with a new label
	var cardID int64
	if err := conn.QueryRow(`SELECT id FROM cards WHERE uid = '04:A1:B2'`).Scan(&cardID); err != nil {
		t.Fatalf("Failed to look up card: %v", err)
	}
	if err := DeactivateCard(conn, cardID); err != nil {
		t.Fatalf("DeactivateCard failed: %v", err)
	}

	registered, _ = CardIsRegistered(conn, "04:A1:B2")
	if registered {
		t.Error("Expected deactivated card to not be registered")
	}
	exists, _ := CardExists(conn, "04:A1:B2")
	if !exists {
		t.Error("Expected deactivated card to still exist")
	}

	if err := EnrollCard(conn, "04:A1:B2", "Alice 2"); err != nil {
		t.Fatalf("Re-enroll failed: %v", err)
	}

	cards, err := AllCards(conn)
	if err != nil {
		t.Fatalf("AllCards failed: %v", err)
	}
	if len(cards) != 1 {
		t.Fatalf("Expected 1 card after re-enroll, got %d", len(cards))
	}
	if !cards[0].IsActive {
		t.Error("Expected re-enrolled card to be active")
	}
	if cards[0].Label == nil || *cards[0].Label != "Alice 2" {
		t.Error("Expected re-enroll to update the label")
	}

	if err := DeactivateCard(conn, 9999); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for missing card, got %v", err)
	}
}

func TestRecordVote(t *testing.T) {
	conn := setupDB(t)
	now := time.Now()
	sessionID := createSession(t, conn, now.Add(-time.Hour), now.Add(time.Hour), true)

	if err := RecordVote(conn, sessionID, "04:A1:B2", "A"); err != nil {
		t.Fatalf("RecordVote failed: %v", err)
	}

	voted, err := HasVoted(conn, sessionID, "04:A1:B2")
	if err != nil {
		t.Fatalf("HasVoted failed: %v", err)
	}
	if !voted {
		t.Error("Expected HasVoted to report true")
	}

	// Second vote from the same card, different option: rejected, and
	// the first choice stands.
	if err := RecordVote(conn, sessionID, "04:A1:B2", "B"); !errors.Is(err, ErrDuplicateVote) {
		t.Errorf("Expected ErrDuplicateVote, got %v", err)
	}

	counts, err := VoteCounts(conn, sessionID)
	if err != nil {
		t.Fatalf("VoteCounts failed: %v", err)
	}
	if len(counts) != 2 {
		t.Fatalf("Expected 2 option counts, got %d", len(counts))
	}
	if counts[0].Option != "A" || counts[0].Count != 1 {
		t.Errorf("Expected A=1, got %s=%d", counts[0].Option, counts[0].Count)
	}
	if counts[1].Option != "B" || counts[1].Count != 0 {
		t.Errorf("Expected B=0 (zero option included), got %s=%d", counts[1].Option, counts[1].Count)
	}

	// Same card, different session: allowed
	otherSession := createSession(t, conn, now.Add(-time.Hour), now.Add(time.Hour), true)
	if err := RecordVote(conn, otherSession, "04:A1:B2", "B"); err != nil {
		t.Errorf("Expected vote in a different session to succeed, got %v", err)
	}

	total, err := TotalVotes(conn, sessionID)
	if err != nil {
		t.Fatalf("TotalVotes failed: %v", err)
	}
	if total != 1 {
		t.Errorf("Expected 1 vote in first session, got %d", total)
	}
}

func TestRecordVoteConcurrent(t *testing.T) {
	conn := setupDB(t)
	now := time.Now()
	sessionID := createSession(t, conn, now.Add(-time.Hour), now.Add(time.Hour), true)

	const attempts = 10
	var successes, duplicates atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			option := "A"
			if n%2 == 1 {
				option = "B"
			}
			err := RecordVote(conn, sessionID, "04:A1:B2", option)
			switch {
			case err == nil:
				successes.Add(1)
			case errors.Is(err, ErrDuplicateVote):
				duplicates.Add(1)
			default:
				t.Errorf("Unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if successes.Load() != 1 {
		t.Errorf("Expected exactly 1 success, got %d", successes.Load())
	}
	if duplicates.Load() != attempts-1 {
		t.Errorf("Expected %d duplicates, got %d", attempts-1, duplicates.Load())
	}

	total, err := TotalVotes(conn, sessionID)
	if err != nil {
		t.Fatalf("TotalVotes failed: %v", err)
	}
	if total != 1 {
		t.Errorf("Expected 1 recorded vote, got %d", total)
	}
}

func TestVotesForExport(t *testing.T) {
	conn := setupDB(t)
	now := time.Now()
	sessionID := createSession(t, conn, now.Add(-time.Hour), now.Add(time.Hour), true)

	if err := RecordVote(conn, sessionID, "04:A1:B2", "A"); err != nil {
		t.Fatalf("RecordVote failed: %v", err)
	}
	if err := RecordVote(conn, sessionID, "04:C3:D4", "B"); err != nil {
		t.Fatalf("RecordVote failed: %v", err)
	}

	votes, err := VotesForExport(conn, sessionID)
	if err != nil {
		t.Fatalf("VotesForExport failed: %v", err)
	}
	if len(votes) != 2 {
		t.Fatalf("Expected 2 export rows, got %d", len(votes))
	}
	for _, v := range votes {
		if v.Option != "A" && v.Option != "B" {
			t.Errorf("Unexpected option %q", v.Option)
		}
	}
}

func TestSettings(t *testing.T) {
	conn := setupDB(t)

	// Schema seeds the sheets settings with empty defaults
	value, err := GetSetting(conn, models.SettingSheetsEnabled)
	if err != nil {
		t.Fatalf("GetSetting failed: %v", err)
	}
	if value != "0" {
		t.Errorf("Expected sheets sync disabled by default, got %q", value)
	}

	if err := SetSetting(conn, models.SettingSpreadsheetID, "sheet-123"); err != nil {
		t.Fatalf("SetSetting failed: %v", err)
	}
	value, err = GetSetting(conn, models.SettingSpreadsheetID)
	if err != nil {
		t.Fatalf("GetSetting failed: %v", err)
	}
	if value != "sheet-123" {
		t.Errorf("Expected sheet-123, got %q", value)
	}

	// Unknown keys read as empty, not as errors
	value, err = GetSetting(conn, "nonexistent")
	if err != nil || value != "" {
		t.Errorf("Expected empty value for unknown key, got %q, %v", value, err)
	}
}

func TestAdminPassword(t *testing.T) {
	conn := setupDB(t)

	if _, err := AdminPasswordHash(conn); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound before setup, got %v", err)
	}

	if err := SetAdminPassword(conn, "hash-one"); err != nil {
		t.Fatalf("SetAdminPassword failed: %v", err)
	}
	hash, err := AdminPasswordHash(conn)
	if err != nil {
		t.Fatalf("AdminPasswordHash failed: %v", err)
	}
	if hash != "hash-one" {
		t.Errorf("Expected hash-one, got %q", hash)
	}

	// Setting again overwrites the single row
	if err := SetAdminPassword(conn, "hash-two"); err != nil {
		t.Fatalf("SetAdminPassword failed: %v", err)
	}
	hash, _ = AdminPasswordHash(conn)
	if hash != "hash-two" {
		t.Errorf("Expected hash-two, got %q", hash)
	}
}
