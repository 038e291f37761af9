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
	"github.com/danielhkuo/tapvote/token"
)

type AuthHandler struct {
	db    *sql.DB
	codec *token.Codec
}

func NewAuthHandler(database *sql.DB, codec *token.Codec) *AuthHandler {
	return &AuthHandler{db: database, codec: codec}
}

// Login handles POST /admin/login
//
// Verifies the admin password against the bcrypt hash stored at setup
// time and issues a signed admin token for subsequent requests.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.AdminLoginRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Password == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "password is required")
		return
	}

	hash, err := db.AdminPasswordHash(h.db)
	if errors.Is(err, db.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusConflict, "Admin password not set. Run with -setup first.")
		return
	}
	if err != nil {
		slog.Error("failed to load admin password hash", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if err := auth.CheckPassword(hash, req.Password); err != nil {
		slog.Info("admin login rejected", "remote", r.RemoteAddr)
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Incorrect password")
		return
	}

	adminToken, err := h.codec.IssueAdmin()
	if err != nil {
		slog.Error("failed to issue admin token", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to log in")
		return
	}

	slog.Info("admin logged in", "remote", r.RemoteAddr)
	middleware.JSONResponse(w, http.StatusOK, models.AdminLoginResponse{AdminToken: adminToken})
}
