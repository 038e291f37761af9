// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/danielhkuo/tapvote/fanout"
	"github.com/danielhkuo/tapvote/handlers"
	"github.com/danielhkuo/tapvote/middleware"
	"github.com/danielhkuo/tapvote/sheets"
	"github.com/danielhkuo/tapvote/token"
)

func NewRouter(db *sql.DB, codec *token.Codec, hub *fanout.Hub, syncer *sheets.Syncer) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	votingHandler := handlers.NewVotingHandler(db, codec, hub, syncer)
	sessionHandler := handlers.NewSessionHandler(db)
	cardHandler := handlers.NewCardHandler(db)
	resultsHandler := handlers.NewResultsHandler(db, syncer)
	settingsHandler := handlers.NewSettingsHandler(db)
	authHandler := handlers.NewAuthHandler(db, codec)

	admin := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.WithLogging(middleware.RequireAdmin(codec, h))
	}

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Kiosk voting flow (public)
	mux.HandleFunc("GET /active-session", middleware.WithLogging(sessionHandler.GetActive))
	mux.HandleFunc("GET /vote/{token}", middleware.WithLogging(votingHandler.GetBallot))
	mux.HandleFunc("POST /submit-vote", middleware.WithLogging(votingHandler.SubmitVote))
	mux.HandleFunc("GET /sessions/{id}", middleware.WithLogging(sessionHandler.Get))
	mux.HandleFunc("GET /sessions/{id}/results", middleware.WithLogging(resultsHandler.GetResults))

	// Event streams for the kiosk display and admin console
	mux.Handle("/ws/kiosk", fanout.WSHandler(hub, fanout.AudienceKiosk))
	mux.Handle("/ws/admin", fanout.WSHandler(hub, fanout.AudienceAdmin))

	// Admin auth
	mux.HandleFunc("POST /admin/login", middleware.WithLogging(authHandler.Login))

	// Session management (admin)
	mux.HandleFunc("GET /sessions", admin(sessionHandler.List))
	mux.HandleFunc("POST /sessions", admin(sessionHandler.Create))
	mux.HandleFunc("PUT /sessions/{id}", admin(sessionHandler.Update))

	// Card management (admin)
	mux.HandleFunc("GET /cards", admin(cardHandler.List))
	mux.HandleFunc("POST /cards", admin(cardHandler.Enroll))
	mux.HandleFunc("POST /cards/{id}/deactivate", admin(cardHandler.Deactivate))

	// Export and settings (admin)
	mux.HandleFunc("GET /sessions/{id}/export.csv", admin(resultsHandler.ExportCSV))
	mux.HandleFunc("POST /sessions/{id}/sync", admin(resultsHandler.Sync))
	mux.HandleFunc("GET /settings", admin(settingsHandler.Get))
	mux.HandleFunc("PUT /settings", admin(settingsHandler.Update))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("tapvote API v1"))
	})

	return mux
}
