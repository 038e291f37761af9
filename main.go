// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/danielhkuo/tapvote/auth"
	"github.com/danielhkuo/tapvote/cliparse"
	"github.com/danielhkuo/tapvote/db"
	"github.com/danielhkuo/tapvote/fanout"
	"github.com/danielhkuo/tapvote/gate"
	"github.com/danielhkuo/tapvote/middleware"
	"github.com/danielhkuo/tapvote/router"
	"github.com/danielhkuo/tapvote/scanner"
	"github.com/danielhkuo/tapvote/sheets"
	"github.com/danielhkuo/tapvote/token"
)

func main() {
	// Load .env if present; real env variables win
	_ = godotenv.Load()

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	// Connect to the database (sqlite file by default, postgres via -t)
	dbConn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer dbConn.Close()

	// Verify connection
	if err := dbConn.Ping(); err != nil {
		slog.Error("database ping failed", "error", err)
		os.Exit(1)
	}

	// Create schema (tables + default settings)
	if err := db.CreateSchema(dbConn, cfg.DatabaseType); err != nil {
		slog.Error("schema creation failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database schema ready")

	if cfg.Setup {
		if err := runSetup(dbConn); err != nil {
			slog.Error("setup failed", "error", err)
			os.Exit(1)
		}
		slog.Info("Setup complete")
		return
	}

	// Wire up the core collaborators
	codec := token.New(cfg.SecretKey, cfg.TokenMaxAge)
	hub := fanout.NewHub()
	syncer := sheets.New(dbConn, cfg.SheetsCredentials, cfg.SyncDebounce)
	cardGate := gate.New(dbConn, codec, hub)

	// Background scan loop; inert when no reader is configured
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	source := scanner.NewSource(scanner.Connector(cfg.ReaderDevice), func(uid string) {
		if _, err := cardGate.HandleScan(uid); err != nil {
			slog.Error("scan handling failed", "uid", uid, "error", err)
		}
	}, cfg.ScanCooldown, cfg.ReaderRetry)
	go source.Run(ctx)

	// Create router
	mux := router.NewRouter(dbConn, codec, hub, syncer)

	// Create server
	server := http.Server{
		Handler: middleware.CORS(mux),
		Addr:    ":" + strconv.Itoa(cfg.Port),
	}

	go func() {
		// Wait for Ctrl-C signal
		<-ctx.Done()
		server.Close()
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed", "error", err)
	}
}

// runSetup prompts for the admin password on stdin and stores its
// bcrypt hash. Run once before first use; login refuses until then.
func runSetup(database *sql.DB) error {
	fmt.Print("Admin password: ")
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	password := strings.TrimSpace(line)
	if len(password) < auth.MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters", auth.MinPasswordLength)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return db.SetAdminPassword(database, hash)
}
