// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"errors"
	"testing"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("correct-horse")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if hash == "correct-horse" {
		t.Error("Hash must not equal the plaintext password")
	}

	if err := CheckPassword(hash, "correct-horse"); err != nil {
		t.Errorf("Expected password to verify, got %v", err)
	}
	if err := CheckPassword(hash, "wrong-password"); !errors.Is(err, ErrWrongPassword) {
		t.Errorf("Expected ErrWrongPassword, got %v", err)
	}
}

func TestHashPasswordRejectsShort(t *testing.T) {
	if _, err := HashPassword("abc"); err == nil {
		t.Error("Expected error for password below minimum length")
	}
}

func TestFormatUID(t *testing.T) {
	tests := []struct {
		name     string
		raw      []byte
		expected string
	}{
		{"typical 4-byte UID", []byte{0x04, 0xA1, 0xB2, 0xC3}, "04:A1:B2:C3"},
		{"7-byte UID", []byte{0x04, 0x12, 0x34, 0x56, 0x78, 0x9A, 0xBC}, "04:12:34:56:78:9A:BC"},
		{"single byte", []byte{0x00}, "00"},
		{"empty", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatUID(tt.raw); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestNormalizeUID(t *testing.T) {
	if got := NormalizeUID("  04:a1:b2 "); got != "04:A1:B2" {
		t.Errorf("Expected 04:A1:B2, got %q", got)
	}
}
