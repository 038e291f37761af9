// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/tapvote/models"
)

var (
	// ErrDuplicateVote means the (session, card) pair already voted.
	// Expected outcome, not a failure.
	ErrDuplicateVote = errors.New("card already voted in this session")

	// ErrNotFound means the requested row does not exist.
	ErrNotFound = errors.New("not found")
)

const sessionColumns = `id, question, option_a, option_b, option_c, option_d,
	start_time, end_time, is_active, created_at`

func scanSession(row interface{ Scan(...any) error }) (models.Session, error) {
	var s models.Session
	err := row.Scan(&s.ID, &s.Question, &s.OptionA, &s.OptionB, &s.OptionC, &s.OptionD,
		&s.StartTime, &s.EndTime, &s.IsActive, &s.CreatedAt)
	return s, err
}

// ActiveSession returns the session currently open for voting, or
// ErrNotFound. Open means is_active and now within [start, end]
// inclusive. If overlapping sessions qualify (admin data-entry
// mistake), the most recently created wins.
func ActiveSession(db *sql.DB) (models.Session, error) {
	return ActiveSessionAt(db, time.Now())
}

// ActiveSessionAt is ActiveSession evaluated at an explicit instant.
// The window check runs in Go so it behaves identically on sqlite and
// postgres; the kiosk never holds more than a handful of sessions.
func ActiveSessionAt(db *sql.DB, now time.Time) (models.Session, error) {
	rows, err := db.Query(`
		SELECT ` + sessionColumns + ` FROM sessions
		WHERE is_active = TRUE
		ORDER BY id DESC
	`)
	if err != nil {
		return models.Session{}, fmt.Errorf("failed to query active sessions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return models.Session{}, fmt.Errorf("failed to scan session: %w", err)
		}
		if !now.Before(s.StartTime) && !now.After(s.EndTime) {
			return s, nil
		}
	}
	if err := rows.Err(); err != nil {
		return models.Session{}, err
	}
	return models.Session{}, ErrNotFound
}

// GetSession returns a session by ID, or ErrNotFound.
func GetSession(db *sql.DB, id int64) (models.Session, error) {
	row := db.QueryRow(`SELECT `+sessionColumns+` FROM sessions WHERE id = $1`, id)
	s, err := scanSession(row)
	if err == sql.ErrNoRows {
		return models.Session{}, ErrNotFound
	}
	if err != nil {
		return models.Session{}, fmt.Errorf("failed to query session: %w", err)
	}
	return s, nil
}

// AllSessions returns every session, newest first.
func AllSessions(db *sql.DB) ([]models.Session, error) {
	rows, err := db.Query(`SELECT ` + sessionColumns + ` FROM sessions ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []models.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// CreateSession inserts a session and returns its ID.
func CreateSession(db *sql.DB, req models.CreateSessionRequest) (int64, error) {
	var id int64
	err := db.QueryRow(`
		INSERT INTO sessions (question, option_a, option_b, option_c, option_d,
			start_time, end_time, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, TRUE, $8)
		RETURNING id
	`, req.Question, req.OptionA, req.OptionB, nullable(req.OptionC), nullable(req.OptionD),
		req.StartTime, req.EndTime, time.Now()).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert session: %w", err)
	}
	return id, nil
}

// UpdateSession overwrites an existing session's fields, including the
// active flag.
func UpdateSession(db *sql.DB, id int64, req models.UpdateSessionRequest) error {
	res, err := db.Exec(`
		UPDATE sessions
		SET question = $1, option_a = $2, option_b = $3, option_c = $4, option_d = $5,
			start_time = $6, end_time = $7, is_active = $8
		WHERE id = $9
	`, req.Question, req.OptionA, req.OptionB, nullable(req.OptionC), nullable(req.OptionD),
		req.StartTime, req.EndTime, req.IsActive, id)
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// CardIsRegistered reports whether a card exists and is active.
func CardIsRegistered(db *sql.DB, uid string) (bool, error) {
	var exists bool
	err := db.QueryRow(`
		SELECT EXISTS(SELECT 1 FROM cards WHERE uid = $1 AND is_active = TRUE)
	`, uid).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to query card: %w", err)
	}
	return exists, nil
}

// CardExists reports whether a card exists at all, active or not.
// Used by the enrollment view to tag raw scans.
func CardExists(db *sql.DB, uid string) (bool, error) {
	var exists bool
	err := db.QueryRow(`SELECT EXISTS(SELECT 1 FROM cards WHERE uid = $1)`, uid).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to query card: %w", err)
	}
	return exists, nil
}

// AllCards returns every card, newest enrollment first.
func AllCards(db *sql.DB) ([]models.Card, error) {
	rows, err := db.Query(`
		SELECT id, uid, label, enrolled_at, is_active FROM cards ORDER BY enrolled_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query cards: %w", err)
	}
	defer rows.Close()

	var cards []models.Card
	for rows.Next() {
		var c models.Card
		if err := rows.Scan(&c.ID, &c.UID, &c.Label, &c.EnrolledAt, &c.IsActive); err != nil {
			return nil, fmt.Errorf("failed to scan card: %w", err)
		}
		cards = append(cards, c)
	}
	return cards, rows.Err()
}

// EnrollCard inserts a card, or re-activates an existing UID and
// updates its label. A UID permanently identifies one physical card,
// so re-enrollment must never duplicate it.
func EnrollCard(db *sql.DB, uid, label string) error {
	_, err := db.Exec(`
		INSERT INTO cards (uid, label, enrolled_at, is_active)
		VALUES ($1, $2, $3, TRUE)
		ON CONFLICT (uid) DO UPDATE SET label = excluded.label, is_active = TRUE
	`, uid, nullable(label), time.Now())
	if err != nil {
		return fmt.Errorf("failed to enroll card: %w", err)
	}
	return nil
}

// DeactivateCard soft-deletes a card by ID.
func DeactivateCard(db *sql.DB, cardID int64) error {
	res, err := db.Exec(`UPDATE cards SET is_active = FALSE WHERE id = $1`, cardID)
	if err != nil {
		return fmt.Errorf("failed to deactivate card: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// HasVoted reports whether a tracker entry exists for (session, uid).
// Advisory only: the race-safe check is the conflict clause inside
// RecordVote.
func HasVoted(db *sql.DB, sessionID int64, uid string) (bool, error) {
	var exists bool
	err := db.QueryRow(`
		SELECT EXISTS(SELECT 1 FROM vote_tracker WHERE session_id = $1 AND card_uid = $2)
	`, sessionID, uid).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to query vote tracker: %w", err)
	}
	return exists, nil
}

// RecordVote atomically records a vote for (sessionID, uid). The
// tracker insert and the vote append share one transaction: either the
// card's allowance is consumed and the vote exists, or neither.
// Returns ErrDuplicateVote when the pair already voted; under
// concurrent calls for the same pair exactly one caller succeeds.
func RecordVote(db *sql.DB, sessionID int64, uid, option string) error {
	now := time.Now()

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
		INSERT INTO vote_tracker (session_id, card_uid, voted_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (session_id, card_uid) DO NOTHING
	`, sessionID, uid, now)
	if err != nil {
		return fmt.Errorf("failed to insert tracker entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read tracker insert result: %w", err)
	}
	if n == 0 {
		return ErrDuplicateVote
	}

	_, err = tx.Exec(`
		INSERT INTO votes (id, session_id, option, voted_at)
		VALUES ($1, $2, $3, $4)
	`, uuid.NewString(), sessionID, option, now)
	if err != nil {
		return fmt.Errorf("failed to insert vote: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit vote: %w", err)
	}
	return nil
}

// VoteCounts returns per-option tallies for a session, including
// zero-vote options, in display order.
func VoteCounts(db *sql.DB, sessionID int64) ([]models.OptionCount, error) {
	session, err := GetSession(db, sessionID)
	if err != nil {
		return nil, err
	}

	rows, err := db.Query(`
		SELECT option, COUNT(*) FROM votes WHERE session_id = $1 GROUP BY option
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query vote counts: %w", err)
	}
	defer rows.Close()

	raw := make(map[string]int)
	for rows.Next() {
		var option string
		var count int
		if err := rows.Scan(&option, &count); err != nil {
			return nil, fmt.Errorf("failed to scan vote count: %w", err)
		}
		raw[option] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var counts []models.OptionCount
	for _, opt := range session.Options() {
		counts = append(counts, models.OptionCount{
			Option: opt.Key,
			Label:  opt.Label,
			Count:  raw[opt.Key],
		})
	}
	return counts, nil
}

// TotalVotes returns the number of votes recorded for a session.
func TotalVotes(db *sql.DB, sessionID int64) (int, error) {
	var total int
	err := db.QueryRow(`SELECT COUNT(*) FROM votes WHERE session_id = $1`, sessionID).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to count votes: %w", err)
	}
	return total, nil
}

// VotesForExport returns the anonymized detail rows for a session,
// oldest first.
func VotesForExport(db *sql.DB, sessionID int64) ([]models.ExportVote, error) {
	rows, err := db.Query(`
		SELECT voted_at, option FROM votes WHERE session_id = $1 ORDER BY voted_at, id
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query votes for export: %w", err)
	}
	defer rows.Close()

	var votes []models.ExportVote
	for rows.Next() {
		var v models.ExportVote
		if err := rows.Scan(&v.VotedAt, &v.Option); err != nil {
			return nil, fmt.Errorf("failed to scan vote: %w", err)
		}
		votes = append(votes, v)
	}
	return votes, rows.Err()
}

// GetSetting returns a settings value, or "" when the key is absent.
func GetSetting(db *sql.DB, key string) (string, error) {
	var value string
	err := db.QueryRow(`SELECT value FROM settings WHERE key = $1`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to query setting: %w", err)
	}
	return value, nil
}

// SetSetting upserts a settings value.
func SetSetting(db *sql.DB, key, value string) error {
	_, err := db.Exec(`
		INSERT INTO settings (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set setting: %w", err)
	}
	return nil
}

// SetAdminPassword stores the bcrypt hash of the admin password.
func SetAdminPassword(db *sql.DB, passwordHash string) error {
	_, err := db.Exec(`
		INSERT INTO admin (id, password_hash) VALUES (1, $1)
		ON CONFLICT (id) DO UPDATE SET password_hash = excluded.password_hash
	`, passwordHash)
	if err != nil {
		return fmt.Errorf("failed to set admin password: %w", err)
	}
	return nil
}

// AdminPasswordHash returns the stored admin hash, or ErrNotFound when
// setup has not run.
func AdminPasswordHash(db *sql.DB) (string, error) {
	var hash string
	err := db.QueryRow(`SELECT password_hash FROM admin WHERE id = 1`).Scan(&hash)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to query admin password: %w", err)
	}
	return hash, nil
}
