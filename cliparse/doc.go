// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 5000)
  - DatabaseURL: SQLite file or PostgreSQL URL (default: file:voting.db)
  - DatabaseType: "sqlite" or "postgres" (default: sqlite)
  - SecretKey: HMAC secret for ballot and admin tokens (required)
  - ReaderDevice: NFC reader path; empty means no hardware
  - SheetsCredentials: Google service account JSON path
  - TokenMaxAge, ScanCooldown, ReaderRetry, SyncDebounce: timing knobs
  - Setup: run first-time setup and exit

# CLI Flags

	-p                  Server port
	-d                  Database URL
	-t                  Database type
	-secret             Token signing secret (prefer env)
	-reader             NFC reader device path
	-sheets-credentials Google service account JSON path
	-setup              Run first-time setup and exit

# Environment Variables

Flags fall back to environment variables:

	PORT               → -p
	DATABASE_URL       → -d
	DATABASE_TYPE      → -t
	VOTING_SECRET_KEY  → -secret
	NFC_DEVICE         → -reader
	SHEETS_CREDENTIALS → -sheets-credentials

Timing knobs are environment-only, parsed as Go durations:
TOKEN_MAX_AGE (default 300s), SCAN_COOLDOWN (2s), READER_RETRY (5s),
SYNC_DEBOUNCE (30s).

CLI flags take precedence over environment variables.

# Validation

ParseFlags returns an error if required values are missing:

  - VOTING_SECRET_KEY must be provided
  - DATABASE_TYPE must be sqlite or postgres
*/
package cliparse
