package main

import (
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/peisong-zhang/Human-AI-comparison/cliparse"
	"github.com/peisong-zhang/Human-AI-comparison/db"
	"github.com/peisong-zhang/Human-AI-comparison/experiment"
	"github.com/peisong-zhang/Human-AI-comparison/middleware"
	"github.com/peisong-zhang/Human-AI-comparison/router"
)

func main() {
	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	// Connect to the database
	dbConn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer dbConn.Close()

	// Apply pending schema migrations
	if err := db.Migrate(dbConn); err != nil {
		slog.Error("schema migration failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database schema ready", "type", cfg.DatabaseType)

	// Load and validate the experiment definition up front so a broken
	// document fails the deploy, not the first participant.
	loader := experiment.NewLoader(cfg.ConfigPath, cfg.ProjectRoot)
	expCfg, err := loader.Load()
	if err != nil {
		slog.Error("experiment config invalid", "path", cfg.ConfigPath, "error", err)
		os.Exit(1)
	}
	slog.Info("Experiment config loaded",
		"batch_id", expCfg.BatchID,
		"groups", len(expCfg.Groups),
		"modes", len(expCfg.Modes),
		"subsets", len(expCfg.Subsets),
	)

	// Create router
	mux := router.NewRouter(dbConn, cfg, loader)

	// Create server
	server := http.Server{
		Handler: middleware.CORS(cfg.AllowOrigins, mux),
		Addr:    ":" + strconv.Itoa(cfg.Port),
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		// Wait for Ctrl-C signal
		<-ctrlc
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
