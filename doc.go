// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Tap Vote kiosk server.

Tap Vote is an NFC card voting system: members tap a registered card on
a kiosk reader, receive a short-lived ballot link on the kiosk display,
and pick one of up to four options. Each card gets exactly one vote per
session, enforced by a database constraint rather than application
locking.

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	VOTING_SECRET_KEY=... go run .

Or with flags:

	go run . -p 5000 -d "file:voting.db" -reader /dev/nfc0

First-time setup (creates the schema and prompts for the admin password):

	VOTING_SECRET_KEY=... go run . -setup

# Configuration

Required settings:

  - VOTING_SECRET_KEY (-secret): HMAC secret for ballot and admin tokens

Optional settings:

  - PORT (-p): Server port (default: 5000)
  - DATABASE_URL (-d): SQLite file or PostgreSQL URL (default: file:voting.db)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - NFC_DEVICE (-reader): NFC reader device path; empty runs without hardware
  - SHEETS_CREDENTIALS (-sheets-credentials): Google service account JSON

# Architecture

The server uses a handler-based architecture with dependency injection:

  - handlers: HTTP request handlers (voting, sessions, cards, results)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, admin auth, JSON helpers
  - models: Request/response and domain types
  - gate: Card scan policy (closed / unregistered / already voted)
  - scanner: NFC reader poll loop with cooldown and reconnect
  - fanout: Websocket event hub for the kiosk and admin console
  - token: Signed ballot and admin tokens
  - sheets: Debounced Google Sheets replication
  - db: Schema creation and queries
  - auth: Password hashing and UID formatting
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
