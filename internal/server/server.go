// Package server provides the HTTP server for the mercadito API.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/rpampin/mercadito/pkg/assets"
	"github.com/rpampin/mercadito/pkg/catalog"
)

// Server holds the HTTP server state and dependencies.
type Server struct {
	repo      *catalog.Repository
	assets    *assets.Manager
	logger    *zerolog.Logger
	config    Config
	version   string
	http      *http.Server
	startTime time.Time
}

// New creates a new server instance with the given configuration.
func New(repo *catalog.Repository, mgr *assets.Manager, logger *zerolog.Logger, cfg Config, version string) *Server {
	s := &Server{
		repo:      repo,
		assets:    mgr,
		logger:    logger,
		config:    cfg,
		version:   version,
		startTime: time.Now(),
	}
	s.http = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      s.setupRouter(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return s
}

// Handler returns the configured http.Handler with middleware chain applied.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Addr returns the address the server listens on.
func (s *Server) Addr() string {
	return s.http.Addr
}

// ListenAndServe starts serving requests. It blocks until the server is
// shut down or fails.
func (s *Server) ListenAndServe() error {
	s.logger.Info().
		Str("addr", s.http.Addr).
		Str("prefix", s.config.PathPrefix).
		Bool("admin_enabled", s.config.AdminToken != "").
		Msg("Starting API server")

	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("Shutting down server")
	return s.http.Shutdown(ctx)
}

// StartTime returns the server start time for uptime calculations.
func (s *Server) StartTime() time.Time {
	return s.startTime
}
