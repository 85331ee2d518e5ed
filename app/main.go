package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/novaire/signal-feed/app/api"
	"github.com/novaire/signal-feed/app/cfg"
	"github.com/novaire/signal-feed/app/database"
	"github.com/novaire/signal-feed/app/feed"
	"github.com/novaire/signal-feed/app/roster"
	"github.com/novaire/signal-feed/app/tasks"
)

func main() {
	// .env values feed the env tags of the flag parser
	_ = godotenv.Load()

	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	setupLogger(appCfg.Debug)
	slog.Info("Starting Signal Feed server", "version", appCfg.Version)

	accountRoster, err := roster.Load(appCfg.RosterFile)
	if err != nil {
		slog.Error("Failed to load roster", "error", err)
		os.Exit(1)
	}
	slog.Info("Roster loaded", "accounts", accountRoster.Size())

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		slog.Error("Failed to open database", "path", appCfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "migration_version", version, "dirty", dirty)

	snapshotRepo := database.NewSnapshotRepository(db)

	fetcher := feed.NewFetcher(
		&http.Client{},
		appCfg.SyndicationURL,
		appCfg.RSSURL,
		appCfg.UserAgent,
		time.Duration(appCfg.FetchTimeout)*time.Second,
		appCfg.RateLimitRetries,
		time.Duration(appCfg.RetryBackoff)*time.Millisecond,
	)
	parser := feed.NewParser(appCfg.MaxEntriesPerAccount)
	normalizer := feed.NewNormalizer()
	pipeline := feed.NewPipeline(fetcher, parser, normalizer,
		appCfg.BatchSize, time.Duration(appCfg.BatchPacing)*time.Millisecond)
	aggregator := feed.NewAggregator(accountRoster,
		time.Duration(appCfg.FreshWindow)*time.Hour,
		time.Duration(appCfg.StaleWindow)*time.Hour,
		appCfg.MaxPosts, appCfg.PerHandleCap)
	service := feed.NewService(pipeline, aggregator, accountRoster)

	scheduler := tasks.NewScheduler(service, snapshotRepo)
	scheduler.Start()
	defer scheduler.Stop()
	slog.Info("Background refresher started", "interval_seconds", appCfg.RefreshInterval, "workers", appCfg.WorkerCount)

	handler := api.NewHandler(service, snapshotRepo)
	server := api.NewServer(handler)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("Shutdown complete")
}

func setupLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}
