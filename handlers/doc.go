// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the Tap Vote API.

# Handler Types

Each handler is a struct with database and collaborator dependencies:

  - VotingHandler: ballot redemption and vote submission
  - SessionHandler: session lifecycle (create, update, active lookup)
  - CardHandler: card enrollment and deactivation
  - ResultsHandler: tallies, CSV export, manual sheet sync
  - SettingsHandler: spreadsheet sync settings
  - AuthHandler: admin login

# Voting Flow

A card tap (handled by the gate package, not HTTP) displays a
/vote/{token} link on the kiosk:

	GET  /vote/{token} → GetBallot (question + options)
	POST /submit-vote  → SubmitVote (commits, returns duplicate on re-use)

Policy rejections (expired token, session changed, already voted,
invalid option) come back as JSON errors with 4xx statuses; they are
expected outcomes, not failures.

# Admin Operations

Admin routes require the X-Admin-Token header issued by
POST /admin/login. Card enrollment is driven by raw_scan events on the
admin websocket: the console sees each tapped UID and posts it to
POST /cards with a label.
*/
package handlers
