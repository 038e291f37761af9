// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/danielhkuo/tapvote/db"
	"github.com/danielhkuo/tapvote/middleware"
	"github.com/danielhkuo/tapvote/models"
)

type SessionHandler struct {
	db *sql.DB
}

func NewSessionHandler(database *sql.DB) *SessionHandler {
	return &SessionHandler{db: database}
}

// GetActive handles GET /active-session
//
// Public: the kiosk welcome screen uses it to decide between the
// welcome and closed views.
func (h *SessionHandler) GetActive(w http.ResponseWriter, r *http.Request) {
	session, err := db.ActiveSession(h.db)
	if errors.Is(err, db.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "No voting session is open")
		return
	}
	if err != nil {
		slog.Error("failed to resolve active session", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, session)
}

// Get handles GET /sessions/{id}
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	session, err := db.GetSession(h.db, id)
	if errors.Is(err, db.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Session not found")
		return
	}
	if err != nil {
		slog.Error("failed to query session", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, session)
}

// List handles GET /sessions (admin)
func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	sessions, err := db.AllSessions(h.db)
	if err != nil {
		slog.Error("failed to list sessions", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, sessions)
}

// Create handles POST /sessions (admin)
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateSessionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if msg := validateSessionRequest(req); msg != "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, msg)
		return
	}

	id, err := db.CreateSession(h.db, req)
	if err != nil {
		slog.Error("failed to create session", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	slog.Info("session created", "session_id", id, "question", req.Question)

	session, err := db.GetSession(h.db, id)
	if err != nil {
		slog.Error("failed to reload session", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	middleware.JSONResponse(w, http.StatusCreated, session)
}

// Update handles PUT /sessions/{id} (admin)
//
// Overwrites all fields including the active flag, which is how the
// admin closes a session early.
func (h *SessionHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req models.UpdateSessionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if msg := validateSessionRequest(req.CreateSessionRequest); msg != "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, msg)
		return
	}

	err := db.UpdateSession(h.db, id, req)
	if errors.Is(err, db.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Session not found")
		return
	}
	if err != nil {
		slog.Error("failed to update session", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update session")
		return
	}

	slog.Info("session updated", "session_id", id)

	session, err := db.GetSession(h.db, id)
	if err != nil {
		slog.Error("failed to reload session", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, session)
}

func validateSessionRequest(req models.CreateSessionRequest) string {
	if req.Question == "" || req.OptionA == "" || req.OptionB == "" {
		return "question, option_a and option_b are required"
	}
	if req.StartTime.IsZero() || req.EndTime.IsZero() {
		return "start_time and end_time are required"
	}
	if !req.EndTime.After(req.StartTime) {
		return "end_time must be after start_time"
	}
	// Option D without C would leave a hole in the displayed choices
	if req.OptionD != "" && req.OptionC == "" {
		return "option_d requires option_c"
	}
	return ""
}

// pathID parses the {id} path segment, writing a 400 on failure.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}
