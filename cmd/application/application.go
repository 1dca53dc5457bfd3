// Package application provides the application interface for mercadito commands.
//
// The Application interface defines the contract between the application
// layer and command implementations, enabling dependency injection and
// testability. Commands accept this interface rather than the concrete App
// type, so tests can substitute a mock.
package application

import (
	"github.com/rs/zerolog"

	"github.com/rpampin/mercadito"
	"github.com/rpampin/mercadito/internal/server"
)

// Application provides the application interface that commands need.
// The App struct from cmd/mercadito/app implements this interface.
//
// Thread Safety: All methods must be safe for concurrent access.
type Application interface {
	// Client returns the mercadito client for the configured backend.
	// It is lazy-initialized and cached; repeated calls return the same
	// instance.
	Client() (mercadito.Client, error)

	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// OutputFormat returns the configured output format (table, json, yaml).
	OutputFormat() string

	// ServerConfig returns the HTTP server configuration.
	ServerConfig() server.Config

	// Version returns the application version string.
	Version() string
}
