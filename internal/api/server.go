// Copyright (c) 2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/CAFxX/httpcompression"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/autobrr/sportarr/internal/api/handlers"
	"github.com/autobrr/sportarr/internal/config"
	"github.com/autobrr/sportarr/internal/models"
)

type Server struct {
	server  *http.Server
	logger  zerolog.Logger
	config  *config.AppConfig
	version string

	searcher     handlers.ReleaseSearcher
	syncStatus   handlers.SyncStatus
	eventStore   *models.EventStore
	queueStore   *models.QueueStore
	indexerStore *models.IndexerStore
}

type Dependencies struct {
	Config       *config.AppConfig
	Version      string
	Searcher     handlers.ReleaseSearcher
	SyncStatus   handlers.SyncStatus
	EventStore   *models.EventStore
	QueueStore   *models.QueueStore
	IndexerStore *models.IndexerStore
}

func NewServer(deps *Dependencies) *Server {
	return &Server{
		server: &http.Server{
			ReadHeaderTimeout: time.Second * 15,
			ReadTimeout:       60 * time.Second,
			WriteTimeout:      120 * time.Second,
			IdleTimeout:       180 * time.Second,
		},
		logger:       log.Logger.With().Str("module", "api").Logger(),
		config:       deps.Config,
		version:      deps.Version,
		searcher:     deps.Searcher,
		syncStatus:   deps.SyncStatus,
		eventStore:   deps.EventStore,
		queueStore:   deps.QueueStore,
		indexerStore: deps.IndexerStore,
	}
}

func (s *Server) ListenAndServe() error {
	addr := fmt.Sprintf("%s:%d", s.config.Config.Host, s.config.Config.Port)

	var lastErr error
	for _, proto := range []string{"tcp", "tcp4", "tcp6"} {
		err := s.tryToServe(addr, proto)
		if err == nil {
			return nil
		}

		if errors.Is(err, http.ErrServerClosed) {
			return err
		}

		s.logger.Error().Err(err).Str("addr", addr).Str("proto", proto).Msg("Failed to start server")
		lastErr = err
	}

	return lastErr
}

func (s *Server) tryToServe(addr, protocol string) error {
	listener, err := net.Listen(protocol, addr)
	if err != nil {
		return err
	}

	host := listener.Addr().String()
	// Replace 0.0.0.0 or :: with localhost for clickable links
	if strings.HasPrefix(host, "0.0.0.0:") || strings.HasPrefix(host, "[::]:") {
		host = strings.Replace(host, "0.0.0.0:", "localhost:", 1)
		host = strings.Replace(host, "[::]:", "localhost:", 1)
	}

	s.logger.Info().
		Str("protocol", protocol).
		Str("addr", listener.Addr().String()).
		Msgf("Starting API server - Open: http://%s", host)

	s.server.Handler = s.Handler()

	return s.server.Serve(listener)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) Handler() *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	// Only compress responses worth compressing; fast gzip level keeps
	// latency flat for the queue snapshot.
	compressor, err := httpcompression.DefaultAdapter(
		httpcompression.MinSize(1024),
		httpcompression.GzipCompressionLevel(2),
		httpcompression.Prefer(httpcompression.PreferServer),
	)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to create HTTP compression adapter")
	} else {
		r.Use(compressor)
	}

	corsMiddleware := cors.New(cors.Options{
		AllowCredentials: true,
		AllowedMethods:   []string{"HEAD", "OPTIONS", "GET", "POST"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowOriginFunc:  func(origin string) bool { return true },
		MaxAge:           300,
	})
	r.Use(corsMiddleware.Handler)

	healthHandler := handlers.NewHealthHandler(s.version, s.syncStatus)
	queueHandler := handlers.NewQueueHandler(s.queueStore)
	eventsHandler := handlers.NewEventsHandler(s.eventStore)
	searchHandler := handlers.NewSearchHandler(s.searcher)
	indexersHandler := handlers.NewIndexersHandler(s.indexerStore)

	r.Route("/api", func(r chi.Router) {
		r.Get("/healthz", healthHandler.HandleHealth)
		r.Get("/queue", queueHandler.ListQueue)
		r.Get("/events", eventsHandler.ListEvents)
		r.Get("/events/{eventID}", eventsHandler.GetEvent)
		r.Get("/indexers", indexersHandler.ListIndexers)
		r.Post("/search/{eventID}", searchHandler.TriggerSearch)
	})

	return r
}
