// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP helpers shared by all handlers.

  - WithLogging: request start/completion logging via slog
  - RequireAdmin: admin token guard for admin-only routes
  - CORS: cross-origin support for the kiosk and admin front ends
  - JSONResponse / ErrorResponse / ParseJSONBody: JSON plumbing

Admin routes are wrapped at registration time:

	mux.HandleFunc("POST /cards", middleware.WithLogging(
		middleware.RequireAdmin(codec, cardHandler.Enroll)))
*/
package middleware
