// Package app provides the application context and dependency management
// for the mercadito CLI. It centralizes configuration, logging, and the
// client instance behind a single injectable type.
package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/rpampin/mercadito"
	"github.com/rpampin/mercadito/internal/server"
	"github.com/rpampin/mercadito/pkg/errors"
)

// App represents the mercadito application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string

	// Configuration
	config *Config

	// Logger
	logger *zerolog.Logger

	// Client instance (lazy-initialized, singleton)
	mu     sync.RWMutex
	client mercadito.Client
}

// New creates a new App instance with the given version information.
func New(version, commit, date string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
	}

	config, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// OutputFormat returns the configured output format.
func (a *App) OutputFormat() string {
	return a.config.Output
}

// ServerConfig returns the HTTP server configuration.
func (a *App) ServerConfig() server.Config {
	return a.config.ServerConfig()
}

// Client returns the mercadito client, creating it lazily if needed.
// This is thread-safe and ensures only one instance is created.
func (a *App) Client() (mercadito.Client, error) {
	a.mu.RLock()
	if a.client != nil {
		c := a.client
		a.mu.RUnlock()
		return c, nil
	}
	a.mu.RUnlock()

	a.mu.Lock()
	defer a.mu.Unlock()

	// Double-check after acquiring write lock
	if a.client != nil {
		return a.client, nil
	}

	opts, err := a.buildClientOptions()
	if err != nil {
		return nil, err
	}
	c, err := mercadito.New(opts...)
	if err != nil {
		return nil, err
	}

	a.client = c
	return c, nil
}

// Shutdown performs graceful shutdown of the application.
func (a *App) Shutdown(_ context.Context) error {
	return nil
}

// buildClientOptions constructs client options from the app configuration.
func (a *App) buildClientOptions() ([]mercadito.Option, error) {
	cfg := a.config

	var opts []mercadito.Option
	switch cfg.Backend {
	case BackendGitHub:
		opts = append(opts, mercadito.WithGitHub(cfg.GitHubOwner, cfg.GitHubRepo, cfg.GitHubBranch, cfg.GitHubToken))
	case BackendLocal:
		opts = append(opts, mercadito.WithLocal(cfg.LocalPath))
	default:
		return nil, errors.NewValidationError("backend", cfg.Backend, "must be github or local")
	}

	opts = append(opts,
		mercadito.WithDocumentPath(cfg.DocumentPath),
		mercadito.WithImagesRoot(cfg.ImagesRoot),
		mercadito.WithLogger(a.logger),
	)
	return opts, nil
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithClient sets a custom client instance (useful for testing).
func WithClient(c mercadito.Client) Option {
	return func(a *App) error {
		a.client = c
		return nil
	}
}
