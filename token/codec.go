// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for every verification failure: bad
// signature, malformed payload, or expiry. Callers must not learn
// which, so a stale kiosk tab and a forged token look identical.
var ErrInvalidToken = errors.New("invalid token")

// DefaultMaxAge bounds how long a displayed redemption link stays
// usable after a card tap.
const DefaultMaxAge = 300 * time.Second

const adminSubject = "admin"

// VoteClaims binds a card UID to a voting session for the window
// between the hardware scan and the ballot submission.
type VoteClaims struct {
	UID       string `json:"uid"`
	SessionID int64  `json:"session_id"`
	jwt.RegisteredClaims
}

// Codec issues and verifies the signed capability tokens that bridge a
// card scan to a later vote submission, plus longer-lived admin tokens.
// Tokens are stateless values; nothing is stored at issuance and
// nothing needs cleanup at expiry.
type Codec struct {
	secret      []byte
	maxAge      time.Duration
	adminMaxAge time.Duration
}

// New creates a Codec. maxAge <= 0 falls back to DefaultMaxAge.
func New(secret string, maxAge time.Duration) *Codec {
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	return &Codec{
		secret:      []byte(secret),
		maxAge:      maxAge,
		adminMaxAge: 12 * time.Hour,
	}
}

// Issue creates a signed capability token authorizing uid to vote once
// in sessionID.
func (c *Codec) Issue(uid string, sessionID int64) (string, error) {
	now := time.Now()
	claims := VoteClaims{
		UID:       uid,
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.maxAge)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

// Verify checks signature and expiry and returns the bound (uid,
// session) pair. All failures collapse to ErrInvalidToken.
func (c *Codec) Verify(tokenString string) (uid string, sessionID int64, err error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &VoteClaims{}, c.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", 0, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*VoteClaims)
	if !ok || !parsed.Valid || claims.UID == "" || claims.SessionID == 0 {
		return "", 0, ErrInvalidToken
	}
	return claims.UID, claims.SessionID, nil
}

// IssueAdmin creates a signed admin session token after a successful
// password check.
func (c *Codec) IssueAdmin() (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   adminSubject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(c.adminMaxAge)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

// VerifyAdmin checks an admin session token.
func (c *Codec) VerifyAdmin(tokenString string) error {
	parsed, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, c.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithSubject(adminSubject))
	if err != nil || !parsed.Valid {
		return ErrInvalidToken
	}
	return nil
}

func (c *Codec) keyFunc(t *jwt.Token) (interface{}, error) {
	return c.secret, nil
}
