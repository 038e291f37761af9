// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielhkuo/tapvote/db"
	"github.com/danielhkuo/tapvote/middleware"
	"github.com/danielhkuo/tapvote/models"
)

type SettingsHandler struct {
	db *sql.DB
}

func NewSettingsHandler(database *sql.DB) *SettingsHandler {
	return &SettingsHandler{db: database}
}

// Get handles GET /settings (admin)
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	spreadsheetID, err := db.GetSetting(h.db, models.SettingSpreadsheetID)
	if err != nil {
		slog.Error("failed to read settings", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	enabled, err := db.GetSetting(h.db, models.SettingSheetsEnabled)
	if err != nil {
		slog.Error("failed to read settings", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.SettingsResponse{
		SpreadsheetID: spreadsheetID,
		SheetsEnabled: enabled == "1",
	})
}

// Update handles PUT /settings (admin)
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateSettingsRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	enabled := "0"
	if req.SheetsEnabled {
		enabled = "1"
	}

	if err := db.SetSetting(h.db, models.SettingSpreadsheetID, strings.TrimSpace(req.SpreadsheetID)); err != nil {
		slog.Error("failed to save settings", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to save settings")
		return
	}
	if err := db.SetSetting(h.db, models.SettingSheetsEnabled, enabled); err != nil {
		slog.Error("failed to save settings", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to save settings")
		return
	}

	slog.Info("settings updated", "sheets_enabled", req.SheetsEnabled)
	h.Get(w, r)
}
