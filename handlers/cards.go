// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/tapvote/auth"
	"github.com/danielhkuo/tapvote/db"
	"github.com/danielhkuo/tapvote/middleware"
	"github.com/danielhkuo/tapvote/models"
)

type CardHandler struct {
	db *sql.DB
}

func NewCardHandler(database *sql.DB) *CardHandler {
	return &CardHandler{db: database}
}

// List handles GET /cards (admin)
func (h *CardHandler) List(w http.ResponseWriter, r *http.Request) {
	cards, err := db.AllCards(h.db)
	if err != nil {
		slog.Error("failed to list cards", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, cards)
}

// Enroll handles POST /cards (admin)
//
// Inserting an already-known UID updates its label and re-activates it
// rather than duplicating the card. The admin console typically fills
// the UID from a raw_scan event while in enrollment mode.
func (h *CardHandler) Enroll(w http.ResponseWriter, r *http.Request) {
	var req models.EnrollCardRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	uid := auth.NormalizeUID(req.UID)
	if uid == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "uid is required")
		return
	}

	if err := db.EnrollCard(h.db, uid, req.Label); err != nil {
		slog.Error("failed to enroll card", "error", err, "uid", uid)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to enroll card")
		return
	}

	slog.Info("card enrolled", "uid", uid, "label", req.Label)
	middleware.JSONResponse(w, http.StatusCreated, map[string]string{
		"uid":   uid,
		"label": req.Label,
	})
}

// Deactivate handles POST /cards/{id}/deactivate (admin)
func (h *CardHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	err := db.DeactivateCard(h.db, id)
	if errors.Is(err, db.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Card not found")
		return
	}
	if err != nil {
		slog.Error("failed to deactivate card", "error", err, "card_id", id)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to deactivate card")
		return
	}

	slog.Info("card deactivated", "card_id", id)
	w.WriteHeader(http.StatusNoContent)
}
