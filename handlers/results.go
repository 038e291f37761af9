// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/danielhkuo/tapvote/db"
	"github.com/danielhkuo/tapvote/middleware"
	"github.com/danielhkuo/tapvote/models"
	"github.com/danielhkuo/tapvote/sheets"
)

type ResultsHandler struct {
	db     *sql.DB
	syncer *sheets.Syncer
}

func NewResultsHandler(database *sql.DB, syncer *sheets.Syncer) *ResultsHandler {
	return &ResultsHandler{db: database, syncer: syncer}
}

// GetResults handles GET /sessions/{id}/results
//
// Public: the kiosk thank-you screen polls it for the live tally, and
// push events only hint at when to re-fetch.
func (h *ResultsHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	counts, err := db.VoteCounts(h.db, id)
	if errors.Is(err, db.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Session not found")
		return
	}
	if err != nil {
		slog.Error("failed to load vote counts", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	total := 0
	for _, c := range counts {
		total += c.Count
	}

	middleware.JSONResponse(w, http.StatusOK, models.ResultsResponse{
		SessionID: id,
		Counts:    counts,
		Total:     total,
	})
}

// ExportCSV handles GET /sessions/{id}/export.csv (admin)
//
// Same summary + detail layout as the spreadsheet sync; no card UIDs.
func (h *ResultsHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
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

	counts, err := db.VoteCounts(h.db, id)
	if err != nil {
		slog.Error("failed to load vote counts", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	votes, err := db.VotesForExport(h.db, id)
	if err != nil {
		slog.Error("failed to load votes for export", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	total := 0
	for _, c := range counts {
		total += c.Count
	}

	filename := fmt.Sprintf("votes_%s_%s.csv",
		safeFilename(session.Question), time.Now().Format("20060102"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"Voting System Export"})
	_ = cw.Write([]string{"Question:", session.Question})
	_ = cw.Write([]string{"Session Start:", session.StartTime.Format(time.DateTime)})
	_ = cw.Write([]string{"Session End:", session.EndTime.Format(time.DateTime)})
	_ = cw.Write(nil)
	_ = cw.Write([]string{"=== SUMMARY ==="})
	_ = cw.Write([]string{"Option", "Label", "Count", "Percentage"})
	for _, c := range counts {
		pct := "0.0%"
		if total > 0 {
			pct = fmt.Sprintf("%.1f%%", float64(c.Count)/float64(total)*100)
		}
		_ = cw.Write([]string{c.Option, c.Label, strconv.Itoa(c.Count), pct})
	}
	_ = cw.Write([]string{"", "TOTAL", strconv.Itoa(total), ""})
	_ = cw.Write(nil)
	_ = cw.Write([]string{"=== DETAIL ==="})
	_ = cw.Write([]string{"Timestamp", "Option"})
	for _, v := range votes {
		_ = cw.Write([]string{v.VotedAt.Format(time.DateTime), v.Option})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		slog.Error("failed to write CSV export", "error", err)
	}
}

// Sync handles POST /sessions/{id}/sync (admin)
//
// Manual, blocking spreadsheet sync; bypasses the debounce window and
// reports the outcome to the administrator.
func (h *ResultsHandler) Sync(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	result := h.syncer.TriggerBlocking(id)
	status := http.StatusOK
	if !result.Success {
		status = http.StatusBadGateway
	}
	middleware.JSONResponse(w, status, models.SyncResponse{
		Success: result.Success,
		Total:   result.Total,
		Error:   result.Error,
	})
}

// safeFilename trims the question down to something usable as a file
// name.
func safeFilename(question string) string {
	if len(question) > 30 {
		question = question[:30]
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, question)
}
