// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package fanout

import (
	"io"
	"log/slog"
	"net/http"

	"golang.org/x/net/websocket"
)

// WSHandler serves one audience's event stream over a websocket.
// Events are written as JSON frames; inbound frames are drained and
// discarded so client closes are noticed promptly.
func WSHandler(hub *Hub, audience Audience) http.Handler {
	wsHandler := websocket.Handler(func(conn *websocket.Conn) {
		serveConn(conn, hub, audience)
	})

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		wsHandler.ServeHTTP(w, r)
	})
}

func serveConn(conn *websocket.Conn, hub *Hub, audience Audience) {
	defer func() {
		_ = conn.Close()
	}()

	sub := hub.Subscribe(audience)
	defer sub.Close()

	slog.Info("observer connected", "audience", audience)

	// Drain inbound frames; a read error means the client went away.
	go func() {
		defer sub.Close()
		for {
			var discard string
			if err := websocket.Message.Receive(conn, &discard); err != nil {
				if err != io.EOF {
					slog.Debug("observer read ended", "audience", audience, "error", err)
				}
				return
			}
		}
	}()

	for event := range sub.C {
		if err := websocket.JSON.Send(conn, event); err != nil {
			slog.Debug("observer write failed", "audience", audience, "error", err)
			return
		}
	}
}
