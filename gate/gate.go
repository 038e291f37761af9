// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package gate

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/danielhkuo/tapvote/db"
	"github.com/danielhkuo/tapvote/fanout"
	"github.com/danielhkuo/tapvote/models"
	"github.com/danielhkuo/tapvote/token"
)

// Rejection reason codes, most specific cause first. The check order
// in HandleScan is deliberate and must not be rearranged: a card that
// is unregistered AND taps while voting is closed is told voting is
// closed, not that it is unregistered.
const (
	ReasonVotingClosed  = "voting_closed"
	ReasonNotRegistered = "not_registered"
	ReasonAlreadyVoted  = "already_voted"
)

// Messages shown on the kiosk display for each rejection.
var rejectionMessages = map[string]string{
	ReasonVotingClosed:  "Voting is not open right now.",
	ReasonNotRegistered: "Card not registered. Please see an administrator.",
	ReasonAlreadyVoted:  "You have already voted this week!",
}

// Result is the outcome of one card scan.
type Result struct {
	Authorized bool
	Reason     string // rejection reason code when not authorized
	VotePath   string // redemption path when authorized
}

// Gate decides what a card tap means right now: rejection with a
// specific reason, or a short-lived authorization to vote. It never
// consumes the card's vote allowance; only submission does that.
type Gate struct {
	db    *sql.DB
	codec *token.Codec
	hub   *fanout.Hub
}

func New(database *sql.DB, codec *token.Codec, hub *fanout.Hub) *Gate {
	return &Gate{db: database, codec: codec, hub: hub}
}

// HandleScan processes one UID from the reader. It always emits a
// raw_scan event to the admin channel (live enrollment works even when
// voting is closed), then runs the voting gates in order,
// short-circuiting on the first failure so the kiosk shows the most
// specific cause. Exactly one kiosk event is published per scan.
//
// Errors are infrastructure failures (store unreachable, signer
// misconfigured); policy rejections are ordinary Results.
func (g *Gate) HandleScan(uid string) (Result, error) {
	enrolled, err := db.CardExists(g.db, uid)
	if err != nil {
		return Result{}, fmt.Errorf("failed to check enrollment: %w", err)
	}
	g.hub.Publish(models.EventRawScan, fanout.RawScanPayload{
		UID:             uid,
		AlreadyEnrolled: enrolled,
	}, fanout.AudienceAdmin)

	// Gate 1: is voting open?
	session, err := db.ActiveSession(g.db)
	if errors.Is(err, db.ErrNotFound) {
		return g.reject(uid, ReasonVotingClosed), nil
	}
	if err != nil {
		return Result{}, fmt.Errorf("failed to resolve active session: %w", err)
	}

	// Gate 2: is the card registered and active?
	registered, err := db.CardIsRegistered(g.db, uid)
	if err != nil {
		return Result{}, fmt.Errorf("failed to check registration: %w", err)
	}
	if !registered {
		return g.reject(uid, ReasonNotRegistered), nil
	}

	// Gate 3: already voted? Advisory only; the commit path re-checks
	// atomically.
	voted, err := db.HasVoted(g.db, session.ID, uid)
	if err != nil {
		return Result{}, fmt.Errorf("failed to check vote history: %w", err)
	}
	if voted {
		return g.reject(uid, ReasonAlreadyVoted), nil
	}

	t, err := g.codec.Issue(uid, session.ID)
	if err != nil {
		return Result{}, fmt.Errorf("failed to issue vote token: %w", err)
	}

	votePath := "/vote/" + t
	g.hub.Publish(models.EventScanAuthorized, fanout.ScanAuthorizedPayload{
		VotePath: votePath,
	}, fanout.AudienceKiosk)

	slog.Info("card authorized", "uid", uid, "session_id", session.ID)
	return Result{Authorized: true, VotePath: votePath}, nil
}

func (g *Gate) reject(uid, reason string) Result {
	g.hub.Publish(models.EventScanRejected, fanout.ScanRejectedPayload{
		Reason:  reason,
		Message: rejectionMessages[reason],
	}, fanout.AudienceKiosk)

	slog.Info("card rejected", "uid", uid, "reason", reason)
	return Result{Reason: reason}
}
