// Package handlers implements the HTTP endpoints of the mercadito API:
// the public storefront read API and the authenticated admin API that
// edits the catalog document.
package handlers

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/rpampin/mercadito/pkg/assets"
	"github.com/rpampin/mercadito/pkg/catalog"
)

// Handlers holds the dependencies shared by all endpoints.
//
// The catalog repository allows at most one in-flight mutation, so every
// admin write takes mu for its whole upload-then-commit sequence.
type Handlers struct {
	mu      sync.Mutex
	repo    *catalog.Repository
	assets  *assets.Manager
	logger  *zerolog.Logger
	version string
}

// New creates a handlers instance.
func New(repo *catalog.Repository, assets *assets.Manager, logger *zerolog.Logger, version string) *Handlers {
	return &Handlers{
		repo:    repo,
		assets:  assets,
		logger:  logger,
		version: version,
	}
}
