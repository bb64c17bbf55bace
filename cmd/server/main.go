// Command server runs the comment desk API.
//
// MAIN STAYS SMALL:
// main only reads configuration, builds the logger and hands both to
// server.New. Everything else (store, Instagram clients, routes) is wired in
// internal/server so it can be exercised from tests without a process.
//
// Configuration comes from the environment; a .env file in the working
// directory is loaded first when present. See internal/config for the
// variables.
package main

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/sakif/commentdesk/internal/config"
	"github.com/sakif/commentdesk/internal/server"
)

func main() {
	// === 1. LOAD .env ===
	// godotenv copies KEY=value lines into the process environment without
	// overriding variables that are already set. A missing .env is normal in
	// production, so the error is only reported once a logger exists.
	envErr := godotenv.Load()

	// === 2. READ CONFIGURATION ===
	// The logger level itself comes from config, so a bad config is
	// reported through the default slog logger.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// === 3. SET UP LOGGING ===
	// One text logger for the whole process; every constructor receives it
	// explicitly instead of reaching for slog.Default.
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	if envErr != nil && !errors.Is(envErr, fs.ErrNotExist) {
		logger.Warn("could not read .env", slog.String("error", envErr.Error()))
	}
	if missing := cfg.MissingInstagram(); len(missing) > 0 {
		logger.Warn("Instagram credentials not set, login will fail",
			slog.String("missing", strings.Join(missing, ",")),
		)
	}

	// === 4. CREATE AND START THE SERVER ===
	// New only fails on configuration mistakes (bad secrets). An unreachable
	// store is logged inside New and the server still comes up.
	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start blocks until SIGINT/SIGTERM
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
