// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package sheets

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/danielhkuo/tapvote/db"
	"github.com/danielhkuo/tapvote/models"
)

// networkTimeout bounds every sheet write; a timeout is an ordinary
// failure, corrected by the next trigger.
const networkTimeout = 30 * time.Second

// Result is what a manual sync reports back to the administrator.
type Result struct {
	Success bool
	Total   int
	Error   string
}

// Uploader performs the actual overwrite of the two sheet regions.
// Separate from the debounce logic so tests can count attempts without
// a network.
type Uploader interface {
	Overwrite(ctx context.Context, spreadsheetID string, summary, detail [][]any) error
}

// Syncer replicates a session's tallies to a Google spreadsheet,
// best-effort. The local store is always the source of truth; a
// skipped or failed sync is a freshness lag, never a correctness loss.
type Syncer struct {
	db              *sql.DB
	credentialsPath string
	debounce        time.Duration
	uploader        Uploader

	// Guards lastAttempt so two concurrent triggers cannot both pass
	// the elapsed-time check.
	mu          sync.Mutex
	lastAttempt time.Time

	now func() time.Time
}

// New creates a Syncer writing through the real Sheets API.
func New(database *sql.DB, credentialsPath string, debounce time.Duration) *Syncer {
	return &Syncer{
		db:              database,
		credentialsPath: credentialsPath,
		debounce:        debounce,
		uploader:        &sheetsUploader{credentialsPath: credentialsPath},
		now:             time.Now,
	}
}

// TriggerAsync fires a debounced background sync and returns
// immediately. Within the debounce window of the last attempt it is a
// no-op; the next vote's trigger catches up.
func (s *Syncer) TriggerAsync(sessionID int64) {
	go func() {
		result := s.sync(sessionID, false)
		if !result.Success {
			slog.Debug("background sheet sync skipped", "session_id", sessionID, "reason", result.Error)
		}
	}()
}

// TriggerBlocking resets the debounce window and syncs synchronously,
// for the admin export button. The forced run does not count as an
// attempt, so the next automatic trigger is not suppressed either.
func (s *Syncer) TriggerBlocking(sessionID int64) Result {
	s.mu.Lock()
	s.lastAttempt = time.Time{}
	s.mu.Unlock()
	return s.sync(sessionID, true)
}

func (s *Syncer) sync(sessionID int64, force bool) Result {
	if !force {
		s.mu.Lock()
		if s.now().Sub(s.lastAttempt) < s.debounce {
			s.mu.Unlock()
			return Result{Error: "debounced"}
		}
		s.lastAttempt = s.now()
		s.mu.Unlock()
	}

	enabled, err := db.GetSetting(s.db, models.SettingSheetsEnabled)
	if err != nil {
		return Result{Error: err.Error()}
	}
	if enabled != "1" {
		return Result{Error: "sheet sync is disabled in settings"}
	}

	spreadsheetID, err := db.GetSetting(s.db, models.SettingSpreadsheetID)
	if err != nil {
		return Result{Error: err.Error()}
	}
	if spreadsheetID == "" {
		return Result{Error: "no spreadsheet ID configured in settings"}
	}

	if s.credentialsPath == "" {
		return Result{Error: "no credentials file configured"}
	}
	if _, err := os.Stat(s.credentialsPath); err != nil {
		return Result{Error: fmt.Sprintf("credentials file not found: %s", s.credentialsPath)}
	}

	summary, detail, total, err := s.buildRegions(sessionID)
	if err != nil {
		return Result{Error: err.Error()}
	}

	ctx, cancel := context.WithTimeout(context.Background(), networkTimeout)
	defer cancel()

	if err := s.uploader.Overwrite(ctx, spreadsheetID, summary, detail); err != nil {
		slog.Error("sheet sync failed", "session_id", sessionID, "error", err)
		return Result{Error: err.Error()}
	}

	slog.Info("sheet sync complete", "session_id", sessionID, "total", total)
	return Result{Success: true, Total: total}
}

// buildRegions renders the full contents of the Summary and Detail
// regions. Full overwrite, not incremental patches: idempotent, so
// retries and missed syncs cannot drift.
func (s *Syncer) buildRegions(sessionID int64) (summary, detail [][]any, total int, err error) {
	session, err := db.GetSession(s.db, sessionID)
	if err != nil {
		return nil, nil, 0, err
	}
	counts, err := db.VoteCounts(s.db, sessionID)
	if err != nil {
		return nil, nil, 0, err
	}
	votes, err := db.VotesForExport(s.db, sessionID)
	if err != nil {
		return nil, nil, 0, err
	}

	for _, c := range counts {
		total += c.Count
	}

	summary = [][]any{
		{"Question", session.Question},
		{"Option", "Label", "Count", "Percentage"},
	}
	for _, c := range counts {
		summary = append(summary, []any{c.Option, c.Label, c.Count, percentage(c.Count, total)})
	}
	summary = append(summary, []any{"", "TOTAL", total, ""})

	detail = [][]any{{"Timestamp", "Option"}}
	for _, v := range votes {
		detail = append(detail, []any{v.VotedAt.Format(time.DateTime), v.Option})
	}

	return summary, detail, total, nil
}

func percentage(count, total int) string {
	if total == 0 {
		return "0.0%"
	}
	return fmt.Sprintf("%.1f%%", float64(count)/float64(total)*100)
}
