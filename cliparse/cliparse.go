// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import (
	"errors"
	"flag"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port         int
	DatabaseURL  string
	DatabaseType string

	// Secret used to sign capability and admin tokens
	SecretKey string

	// Token and hardware timing
	TokenMaxAge  time.Duration
	ScanCooldown time.Duration
	ReaderRetry  time.Duration

	// NFC reader device path; empty means no hardware present
	ReaderDevice string

	// Google Sheets replication
	SheetsCredentials string
	SyncDebounce      time.Duration

	// Setup runs the first-time setup (schema + admin password) and exits
	Setup bool
}

// ParseFlags validates flags, falling back to environment variables
func ParseFlags(args []string) (Config, error) {
	var cfg Config

	fs := flag.NewFlagSet("tapvote", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.SecretKey, "secret", "", "Token signing secret (prefer env)")

	// Hardware and sync
	fs.StringVar(&cfg.ReaderDevice, "reader", "", "NFC reader device path (empty = no hardware)")
	fs.StringVar(&cfg.SheetsCredentials, "sheets-credentials", "", "Google service account JSON path")

	fs.BoolVar(&cfg.Setup, "setup", false, "Run first-time setup and exit")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = 5000 // default
		}
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = "file:voting.db"
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = "sqlite"
		}
	}
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, errors.New("database type must be sqlite or postgres")
	}

	// Secrets - MUST be provided
	if cfg.SecretKey == "" {
		cfg.SecretKey = os.Getenv("VOTING_SECRET_KEY")
	}
	if cfg.SecretKey == "" {
		return Config{}, errors.New("VOTING_SECRET_KEY required")
	}

	if cfg.ReaderDevice == "" {
		cfg.ReaderDevice = os.Getenv("NFC_DEVICE")
	}
	if cfg.SheetsCredentials == "" {
		cfg.SheetsCredentials = os.Getenv("SHEETS_CREDENTIALS")
	}

	// Timing defaults; tuned for a kiosk with a PN532 reader
	cfg.TokenMaxAge = durationEnv("TOKEN_MAX_AGE", 300*time.Second)
	cfg.ScanCooldown = durationEnv("SCAN_COOLDOWN", 2*time.Second)
	cfg.ReaderRetry = durationEnv("READER_RETRY", 5*time.Second)
	cfg.SyncDebounce = durationEnv("SYNC_DEBOUNCE", 30*time.Second)

	return cfg, nil
}

// durationEnv reads a duration env var (e.g. "45s"), returning def when
// unset or unparseable.
func durationEnv(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
