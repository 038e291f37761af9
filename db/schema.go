// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Open connects to the configured database and applies the pragmas the
// voting path depends on. For sqlite, WAL mode lets the sheet sync
// goroutine read while a vote commit writes, and busy_timeout keeps
// concurrent submissions from failing with SQLITE_BUSY.
func Open(databaseType, databaseURL string) (*sql.DB, error) {
	switch databaseType {
	case "sqlite":
		sep := "?"
		if strings.Contains(databaseURL, "?") {
			sep = "&"
		}
		dsn := databaseURL + sep +
			"_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
		return sql.Open("sqlite", dsn)
	case "postgres":
		return sql.Open("postgres", databaseURL)
	default:
		return nil, fmt.Errorf("unsupported database type %q", databaseType)
	}
}

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB, databaseType string) error {
	schema := sqliteSchema
	if databaseType == "postgres" {
		schema = postgresSchema
	}
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	// Default settings rows so reads never miss
	_, err := db.Exec(`
		INSERT INTO settings (key, value) VALUES ('sheets_spreadsheet_id', '')
		ON CONFLICT (key) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("failed to seed settings: %w", err)
	}
	_, err = db.Exec(`
		INSERT INTO settings (key, value) VALUES ('sheets_enabled', '0')
		ON CONFLICT (key) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("failed to seed settings: %w", err)
	}

	return nil
}

const sqliteSchema = `
-- Voting sessions
CREATE TABLE IF NOT EXISTS sessions (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    question TEXT NOT NULL,
    option_a TEXT NOT NULL,
    option_b TEXT NOT NULL,
    option_c TEXT,
    option_d TEXT,
    start_time TIMESTAMP NOT NULL,
    end_time TIMESTAMP NOT NULL,
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMP NOT NULL
);

-- Enrolled NFC cards
CREATE TABLE IF NOT EXISTS cards (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    uid TEXT NOT NULL UNIQUE,
    label TEXT,
    enrolled_at TIMESTAMP NOT NULL,
    is_active BOOLEAN NOT NULL DEFAULT TRUE
);

-- Anonymized votes; no card UID, ever
CREATE TABLE IF NOT EXISTS votes (
    id TEXT PRIMARY KEY,
    session_id INTEGER NOT NULL REFERENCES sessions(id),
    option TEXT NOT NULL,
    voted_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_votes_session_id ON votes(session_id);

-- One row per (session, card); the uniqueness constraint IS the
-- one-vote-per-card rule
CREATE TABLE IF NOT EXISTS vote_tracker (
    session_id INTEGER NOT NULL REFERENCES sessions(id),
    card_uid TEXT NOT NULL,
    voted_at TIMESTAMP NOT NULL,
    PRIMARY KEY (session_id, card_uid)
);

-- Single-row admin credential
CREATE TABLE IF NOT EXISTS admin (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    password_hash TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS settings (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`

const postgresSchema = `
CREATE TABLE IF NOT EXISTS sessions (
    id BIGSERIAL PRIMARY KEY,
    question TEXT NOT NULL,
    option_a TEXT NOT NULL,
    option_b TEXT NOT NULL,
    option_c TEXT,
    option_d TEXT,
    start_time TIMESTAMP NOT NULL,
    end_time TIMESTAMP NOT NULL,
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS cards (
    id BIGSERIAL PRIMARY KEY,
    uid TEXT NOT NULL UNIQUE,
    label TEXT,
    enrolled_at TIMESTAMP NOT NULL,
    is_active BOOLEAN NOT NULL DEFAULT TRUE
);

CREATE TABLE IF NOT EXISTS votes (
    id TEXT PRIMARY KEY,
    session_id BIGINT NOT NULL REFERENCES sessions(id),
    option TEXT NOT NULL,
    voted_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_votes_session_id ON votes(session_id);

CREATE TABLE IF NOT EXISTS vote_tracker (
    session_id BIGINT NOT NULL REFERENCES sessions(id),
    card_uid TEXT NOT NULL,
    voted_at TIMESTAMP NOT NULL,
    PRIMARY KEY (session_id, card_uid)
);

CREATE TABLE IF NOT EXISTS admin (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    password_hash TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS settings (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`
