// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielhkuo/tapvote/db"
	"github.com/danielhkuo/tapvote/fanout"
	"github.com/danielhkuo/tapvote/middleware"
	"github.com/danielhkuo/tapvote/models"
	"github.com/danielhkuo/tapvote/sheets"
	"github.com/danielhkuo/tapvote/token"
)

type VotingHandler struct {
	db     *sql.DB
	codec  *token.Codec
	hub    *fanout.Hub
	syncer *sheets.Syncer
}

func NewVotingHandler(database *sql.DB, codec *token.Codec, hub *fanout.Hub, syncer *sheets.Syncer) *VotingHandler {
	return &VotingHandler{db: database, codec: codec, hub: hub, syncer: syncer}
}

// GetBallot handles GET /vote/{token}
//
// Redeems a capability token for the ballot to render. All checks here
// are advisory: the authoritative duplicate check happens at
// submission.
func (h *VotingHandler) GetBallot(w http.ResponseWriter, r *http.Request) {
	tokenString := r.PathValue("token")
	if tokenString == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "token is required")
		return
	}

	uid, sessionID, err := h.codec.Verify(tokenString)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Your session has expired. Please tap your card again.")
		return
	}

	// The token is only good for the session that was open at scan
	// time; a changed session means tap again.
	active, err := db.ActiveSession(h.db)
	if errors.Is(err, db.ErrNotFound) || (err == nil && active.ID != sessionID) {
		middleware.ErrorResponse(w, http.StatusConflict, "The voting session changed. Please tap your card again.")
		return
	}
	if err != nil {
		slog.Error("failed to resolve active session", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	voted, err := db.HasVoted(h.db, active.ID, uid)
	if err != nil {
		slog.Error("failed to check vote history", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if voted {
		middleware.ErrorResponse(w, http.StatusConflict, "You have already voted this week!")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.BallotResponse{
		Session: active,
		Options: active.Options(),
		Token:   tokenString,
	})
}

// SubmitVote handles POST /submit-vote
//
// The race-safe checkpoint: verifies the token, validates the option,
// and commits through db.RecordVote. Exactly one submission per
// (session, card) succeeds no matter how many race.
func (h *VotingHandler) SubmitVote(w http.ResponseWriter, r *http.Request) {
	var req models.SubmitVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	req.Option = strings.ToUpper(strings.TrimSpace(req.Option))
	if req.Token == "" || req.Option == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "token and option are required")
		return
	}

	uid, sessionID, err := h.codec.Verify(req.Token)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Your session has expired. Please tap your card again.")
		return
	}

	session, err := db.GetSession(h.db, sessionID)
	if errors.Is(err, db.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Voting session not found")
		return
	}
	if err != nil {
		slog.Error("failed to query session", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if !session.HasOption(req.Option) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid option selected")
		return
	}

	// Atomic duplicate-safe vote record
	err = db.RecordVote(h.db, session.ID, uid, req.Option)
	if errors.Is(err, db.ErrDuplicateVote) {
		middleware.ErrorResponse(w, http.StatusConflict, "You have already voted this week!")
		return
	}
	if err != nil {
		slog.Error("failed to record vote", "error", err, "session_id", session.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to record vote")
		return
	}

	slog.Info("vote recorded", "session_id", session.ID, "option", req.Option)

	h.publishTally(session.ID)
	h.syncer.TriggerAsync(session.ID)

	middleware.JSONResponse(w, http.StatusCreated, models.SubmitVoteResponse{
		SessionID: session.ID,
		Message:   "Vote recorded",
	})
}

// publishTally pushes the updated counts to any open result views.
// Best-effort: a failure to read the tally only costs the push.
func (h *VotingHandler) publishTally(sessionID int64) {
	counts, err := db.VoteCounts(h.db, sessionID)
	if err != nil {
		slog.Error("failed to load tally for notification", "error", err, "session_id", sessionID)
		return
	}
	total := 0
	for _, c := range counts {
		total += c.Count
	}
	h.hub.Publish(models.EventVoteCommitted, fanout.VoteCommittedPayload{
		SessionID: sessionID,
		Total:     total,
		Counts:    counts,
	}, fanout.AudienceKiosk, fanout.AudienceAdmin)
}
