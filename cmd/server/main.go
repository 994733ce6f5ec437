package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lysyi3m/feed-norm/app/api"
	"github.com/lysyi3m/feed-norm/app/cfg"
	"github.com/lysyi3m/feed-norm/app/database"
	"github.com/lysyi3m/feed-norm/app/feed"
	"github.com/lysyi3m/feed-norm/app/logging"
	"github.com/lysyi3m/feed-norm/app/parser"
	_ "time/tzdata"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	appCfg, err := cfg.Load()
	if err != nil {
		return err
	}
	if appCfg == nil {
		// Help was shown
		return nil
	}

	logCloser, err := logging.Setup(logging.Config{
		Level: appCfg.LogLevel,
		File:  appCfg.LogFile,
		JSON:  appCfg.LogJSON,
	})
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	defer logCloser.Close()

	slog.Info("Starting feed-norm server", "version", appCfg.Version)

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		return err
	}
	slog.Info("Database ready", "path", db.Path(), "schema_version", version, "dirty", dirty)

	profileCache := feed.NewProfileCache(appCfg.ProfilesDir)
	if err := profileCache.Run(); err != nil {
		return fmt.Errorf("failed to load profiles: %w", err)
	}
	slog.Info("Profiles loaded", "dir", appCfg.ProfilesDir, "count", profileCache.GetProfileCount())

	var parserOpts []parser.Option
	if appCfg.HTMLEntities {
		parserOpts = append(parserOpts, parser.WithHTMLEntities())
	}
	if appCfg.StrictTimestamps {
		parserOpts = append(parserOpts, parser.WithStrictTimestamps())
	}

	handler := api.NewHandler(
		parser.NewParser(parserOpts...),
		database.NewFeedRepository(db),
		profileCache,
		feed.NewFilterer(),
		api.HandlerConfig{
			BaseUrl:      appCfg.BaseUrl,
			MaxBodyBytes: appCfg.MaxBodyBytes,
			Version:      appCfg.Version,
		},
	)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      api.NewServer(handler, appCfg.APIAccessKey),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		return err
	}

	slog.Info("Shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTP server shutdown error: %w", err)
	}

	slog.Info("Server shutdown complete")
	return nil
}
