// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the Tap Vote API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(db, codec, hub, syncer)

# Endpoints

Health:

	GET /health

Kiosk voting flow (public):

	GET  /active-session          - Currently open session, if any
	GET  /vote/{token}            - Redeem a scan token for the ballot
	POST /submit-vote             - Commit a vote
	GET  /sessions/{id}           - Session details
	GET  /sessions/{id}/results   - Live tally

Event streams (websocket):

	/ws/kiosk - scan_rejected, scan_authorized, vote_committed
	/ws/admin - raw_scan, vote_committed

Admin (requires X-Admin-Token):

	POST /admin/login                 - Exchange password for a token
	GET  /sessions                    - List sessions
	POST /sessions                    - Create session
	PUT  /sessions/{id}               - Update session
	GET  /cards                       - List cards
	POST /cards                       - Enroll or relabel a card
	POST /cards/{id}/deactivate       - Deactivate a card
	GET  /sessions/{id}/export.csv    - CSV export
	POST /sessions/{id}/sync          - Manual spreadsheet sync
	GET  /settings                    - Sheets sync settings
	PUT  /settings                    - Update sheets sync settings

# Handler Initialization

The router creates handler instances with dependency injection:

	votingHandler := handlers.NewVotingHandler(db, codec, hub, syncer)
	sessionHandler := handlers.NewSessionHandler(db)
	cardHandler := handlers.NewCardHandler(db)
	resultsHandler := handlers.NewResultsHandler(db, syncer)

All handlers receive the database connection plus the collaborators
they need.
*/
package router
