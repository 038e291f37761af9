// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package token

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestIssueAndVerify(t *testing.T) {
	codec := New("test-secret", 300*time.Second)

	tokenString, err := codec.Issue("04:A1:B2", 42)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if tokenString == "" {
		t.Fatal("Expected non-empty token")
	}

	uid, sessionID, err := codec.Verify(tokenString)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if uid != "04:A1:B2" {
		t.Errorf("Expected UID 04:A1:B2, got %s", uid)
	}
	if sessionID != 42 {
		t.Errorf("Expected session ID 42, got %d", sessionID)
	}
}

func TestVerifyRejectsTamperedToken(t *testing.T) {
	codec := New("test-secret", 300*time.Second)

	tokenString, err := codec.Issue("04:A1:B2", 42)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	// Flip a character in the payload segment
	parts := strings.Split(tokenString, ".")
	if len(parts) != 3 {
		t.Fatalf("Expected 3 token segments, got %d", len(parts))
	}
	payload := []byte(parts[1])
	if payload[0] == 'A' {
		payload[0] = 'B'
	} else {
		payload[0] = 'A'
	}
	tampered := parts[0] + "." + string(payload) + "." + parts[2]

	if _, _, err := codec.Verify(tampered); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken for tampered token, got %v", err)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	issuer := New("secret-one", 300*time.Second)
	verifier := New("secret-two", 300*time.Second)

	tokenString, err := issuer.Issue("04:A1:B2", 1)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if _, _, err := verifier.Verify(tokenString); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken across secrets, got %v", err)
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	// Negative max age makes every issued token already expired
	codec := &Codec{secret: []byte("test-secret"), maxAge: -time.Minute}

	tokenString, err := codec.Issue("04:A1:B2", 1)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if _, _, err := codec.Verify(tokenString); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	codec := New("test-secret", 300*time.Second)

	for _, tokenString := range []string{"", "not-a-token", "a.b.c"} {
		if _, _, err := codec.Verify(tokenString); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Expected ErrInvalidToken for %q, got %v", tokenString, err)
		}
	}
}

func TestAdminTokenRoundTrip(t *testing.T) {
	codec := New("test-secret", 300*time.Second)

	adminToken, err := codec.IssueAdmin()
	if err != nil {
		t.Fatalf("IssueAdmin failed: %v", err)
	}
	if err := codec.VerifyAdmin(adminToken); err != nil {
		t.Errorf("VerifyAdmin failed: %v", err)
	}
}

func TestAdminAndVoteTokensAreDistinct(t *testing.T) {
	codec := New("test-secret", 300*time.Second)

	voteToken, err := codec.Issue("04:A1:B2", 1)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	adminToken, err := codec.IssueAdmin()
	if err != nil {
		t.Fatalf("IssueAdmin failed: %v", err)
	}

	// A vote token must not unlock admin routes
	if err := codec.VerifyAdmin(voteToken); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Expected admin verification to reject vote token, got %v", err)
	}

	// An admin token must not redeem a ballot (no uid/session bound)
	if _, _, err := codec.Verify(adminToken); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Expected vote verification to reject admin token, got %v", err)
	}
}

func TestNewDefaultsMaxAge(t *testing.T) {
	codec := New("test-secret", 0)
	if codec.maxAge != DefaultMaxAge {
		t.Errorf("Expected default max age %v, got %v", DefaultMaxAge, codec.maxAge)
	}
}
