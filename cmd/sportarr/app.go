// Copyright (c) 2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/autobrr/sportarr/internal/api"
	"github.com/autobrr/sportarr/internal/buildinfo"
	"github.com/autobrr/sportarr/internal/config"
	"github.com/autobrr/sportarr/internal/database"
	"github.com/autobrr/sportarr/internal/metrics"
	"github.com/autobrr/sportarr/internal/models"
	"github.com/autobrr/sportarr/internal/services/acquisition"
	"github.com/autobrr/sportarr/internal/services/downloads"
	"github.com/autobrr/sportarr/pkg/releases"
)

type Application struct {
	configDir string
	dataDir   string
	logPath   string
}

func NewApplication(configDir, dataDir, logPath string) *Application {
	return &Application{
		configDir: configDir,
		dataDir:   dataDir,
		logPath:   logPath,
	}
}

func (app *Application) runServer() {
	// Initialize configuration
	cfg, err := config.New(app.configDir, buildinfo.Version)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize configuration")
	}

	// Override with CLI flags if provided
	if app.dataDir != "" {
		os.Setenv("SPORTARR__DATA_DIR", app.dataDir)
		cfg.SetDataDir(app.dataDir)
	}
	if app.logPath != "" {
		os.Setenv("SPORTARR__LOG_PATH", app.logPath)
		cfg.Config.LogPath = app.logPath
	}

	cfg.ApplyLogConfig()

	log.Info().Str("version", buildinfo.Version).Msg("Starting sportarr")

	// Initialize database
	db, err := database.New(cfg.GetDatabasePath())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	// Initialize stores
	indexerStore, err := models.NewIndexerStore(db, cfg.GetEncryptionKey())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize indexer store")
	}

	eventStore := models.NewEventStore(db)
	queueStore := models.NewQueueStore(db)
	downloadClientStore := models.NewDownloadClientStore(db)

	stores := acquisition.Stores{
		Events:          eventStore,
		Files:           models.NewMediaFileStore(db),
		Queue:           queueStore,
		History:         models.NewHistoryStore(db),
		Blocklist:       models.NewBlocklistStore(db),
		QualityProfiles: models.NewQualityProfileStore(db),
		CustomFormats:   models.NewCustomFormatStore(db),
		ReleaseProfiles: models.NewReleaseProfileStore(db),
		Indexers:        indexerStore,
	}

	// Initialize services
	downloadService := downloads.NewService(downloadClientStore)

	parser := releases.NewDefaultParser()
	defer parser.Close()

	searchCache := acquisition.NewSearchCache(cfg.Config.SearchCacheTTL())
	defer searchCache.Close()

	// Settings are read per cycle so config reloads take effect without a
	// restart.
	settings := func() acquisition.Settings {
		return acquisition.Settings{
			MultiPartEnabled:     cfg.Config.EnableMultiPartEpisodes,
			MaxResultsPerIndexer: cfg.Config.MaxRssReleasesPerIndexer,
			CacheTTL:             cfg.Config.SearchCacheTTL(),
		}
	}

	engineCtx, engineCancel := context.WithCancel(context.Background())
	defer engineCancel()

	engine := acquisition.NewEngine(engineCtx, stores, downloadService, searchCache, parser, settings, acquisition.EngineOptions{})
	defer engine.Close()

	metricsManager := metrics.NewManager()

	scheduler := acquisition.NewScheduler(cfg, engine, metricsManager)

	errorChannel := make(chan error)

	schedulerCtx, schedulerCancel := context.WithCancel(context.Background())
	defer schedulerCancel()
	go func() {
		if err := scheduler.Run(schedulerCtx); err != nil && !errors.Is(err, context.Canceled) {
			errorChannel <- err
		}
	}()

	// Start server in goroutine
	httpServer := api.NewServer(&api.Dependencies{
		Config:       cfg,
		Version:      buildinfo.Version,
		Searcher:     engine,
		SyncStatus:   scheduler,
		EventStore:   eventStore,
		QueueStore:   queueStore,
		IndexerStore: indexerStore,
	})

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errorChannel <- err
		}
	}()

	if cfg.Config.MetricsEnabled {
		metricsCtx, metricsCancel := context.WithCancel(context.Background())
		defer metricsCancel()

		go func() {
			metricsServer := metrics.NewServer(metricsManager, cfg.Config.MetricsHost, cfg.Config.MetricsPort)
			if err := metricsServer.Open(metricsCtx); err != nil {
				errorChannel <- err
			}
		}()
	}

	// Wait for interrupt signal to gracefully shutdown the server
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGHUP, syscall.SIGINT, syscall.SIGQUIT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info().Msgf("got signal %v, shutting down server", sig.String())
	case err := <-errorChannel:
		log.Error().Err(err).Msg("got unexpected error from server")
	}

	schedulerCancel()
	engineCancel()

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("got error during graceful http shutdown")
		os.Exit(1)
	}
}
