// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import (
	"testing"
	"time"
)

func TestParseFlags(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DATABASE_TYPE", "")
	t.Setenv("VOTING_SECRET_KEY", "")
	t.Setenv("NFC_DEVICE", "")
	t.Setenv("SHEETS_CREDENTIALS", "")

	t.Run("defaults with secret from flag", func(t *testing.T) {
		cfg, err := ParseFlags([]string{"-secret", "s3cret"})
		if err != nil {
			t.Fatalf("ParseFlags failed: %v", err)
		}
		if cfg.Port != 5000 {
			t.Errorf("Expected default port 5000, got %d", cfg.Port)
		}
		if cfg.DatabaseURL != "file:voting.db" {
			t.Errorf("Expected default database URL, got %s", cfg.DatabaseURL)
		}
		if cfg.DatabaseType != "sqlite" {
			t.Errorf("Expected sqlite, got %s", cfg.DatabaseType)
		}
		if cfg.TokenMaxAge != 300*time.Second {
			t.Errorf("Expected 300s token max age, got %v", cfg.TokenMaxAge)
		}
		if cfg.ScanCooldown != 2*time.Second {
			t.Errorf("Expected 2s scan cooldown, got %v", cfg.ScanCooldown)
		}
		if cfg.ReaderRetry != 5*time.Second {
			t.Errorf("Expected 5s reader retry, got %v", cfg.ReaderRetry)
		}
		if cfg.SyncDebounce != 30*time.Second {
			t.Errorf("Expected 30s sync debounce, got %v", cfg.SyncDebounce)
		}
		if cfg.ReaderDevice != "" {
			t.Errorf("Expected no reader device, got %s", cfg.ReaderDevice)
		}
	})

	t.Run("missing secret", func(t *testing.T) {
		if _, err := ParseFlags(nil); err == nil {
			t.Error("Expected error when secret is missing")
		}
	})

	t.Run("flags override env", func(t *testing.T) {
		t.Setenv("PORT", "9999")
		t.Setenv("VOTING_SECRET_KEY", "env-secret")

		cfg, err := ParseFlags([]string{"-p", "8080"})
		if err != nil {
			t.Fatalf("ParseFlags failed: %v", err)
		}
		if cfg.Port != 8080 {
			t.Errorf("Expected flag port 8080, got %d", cfg.Port)
		}
		if cfg.SecretKey != "env-secret" {
			t.Errorf("Expected secret from env, got %s", cfg.SecretKey)
		}
	})

	t.Run("env fallbacks", func(t *testing.T) {
		t.Setenv("PORT", "7000")
		t.Setenv("DATABASE_URL", "postgres://localhost/votes")
		t.Setenv("DATABASE_TYPE", "postgres")
		t.Setenv("VOTING_SECRET_KEY", "env-secret")
		t.Setenv("NFC_DEVICE", "/dev/nfc0")
		t.Setenv("TOKEN_MAX_AGE", "45s")

		cfg, err := ParseFlags(nil)
		if err != nil {
			t.Fatalf("ParseFlags failed: %v", err)
		}
		if cfg.Port != 7000 {
			t.Errorf("Expected port 7000, got %d", cfg.Port)
		}
		if cfg.DatabaseType != "postgres" {
			t.Errorf("Expected postgres, got %s", cfg.DatabaseType)
		}
		if cfg.ReaderDevice != "/dev/nfc0" {
			t.Errorf("Expected /dev/nfc0, got %s", cfg.ReaderDevice)
		}
		if cfg.TokenMaxAge != 45*time.Second {
			t.Errorf("Expected 45s token max age, got %v", cfg.TokenMaxAge)
		}
	})

	t.Run("invalid port env", func(t *testing.T) {
		t.Setenv("PORT", "not-a-number")
		t.Setenv("VOTING_SECRET_KEY", "env-secret")

		if _, err := ParseFlags(nil); err == nil {
			t.Error("Expected error for invalid PORT")
		}
	})

	t.Run("invalid database type", func(t *testing.T) {
		t.Setenv("VOTING_SECRET_KEY", "env-secret")

		if _, err := ParseFlags([]string{"-t", "mysql"}); err == nil {
			t.Error("Expected error for unsupported database type")
		}
	})

	t.Run("setup flag", func(t *testing.T) {
		t.Setenv("VOTING_SECRET_KEY", "env-secret")

		cfg, err := ParseFlags([]string{"-setup"})
		if err != nil {
			t.Fatalf("ParseFlags failed: %v", err)
		}
		if !cfg.Setup {
			t.Error("Expected setup flag to be set")
		}
	})

	t.Run("unparseable duration falls back", func(t *testing.T) {
		t.Setenv("VOTING_SECRET_KEY", "env-secret")
		t.Setenv("SYNC_DEBOUNCE", "half a minute")

		cfg, err := ParseFlags(nil)
		if err != nil {
			t.Fatalf("ParseFlags failed: %v", err)
		}
		if cfg.SyncDebounce != 30*time.Second {
			t.Errorf("Expected default 30s, got %v", cfg.SyncDebounce)
		}
	})
}
