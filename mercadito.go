// Package mercadito is a small personal-marketplace catalog client. The
// catalog is a single JSON document stored in a version-controlled content
// repository; the repository is the database, and each write is a commit
// guarded by an optimistic version token.
//
// Example usage:
//
//	// Hosted backend (production)
//	client, err := mercadito.New(
//	    mercadito.WithGitHub("rpampin", "second-hand-comm", "main", token),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if _, err := client.Catalog().Load(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
//	// Local filesystem backend (development)
//	client, err := mercadito.New(mercadito.WithLocal("./devdata"))
package mercadito

import (
	"github.com/rpampin/mercadito/internal/contentstore/local"
	"github.com/rpampin/mercadito/pkg/assets"
	"github.com/rpampin/mercadito/pkg/catalog"
	"github.com/rpampin/mercadito/pkg/contentstore"
	"github.com/rpampin/mercadito/pkg/errors"
)

// Client bundles the catalog repository and asset manager sharing one
// content store backend. A single instance per running process is the
// intended deployment shape, owned by the composition root and passed to
// whatever presentation layer needs it.
type Client interface {
	// Catalog returns the document repository.
	Catalog() *catalog.Repository

	// Assets returns the image asset manager.
	Assets() *assets.Manager

	// Store returns the underlying content store backend.
	Store() contentstore.Store
}

// New creates a client. Exactly one backend option is required:
// WithGitHub, WithLocal, or WithStore.
func New(opts ...Option) (Client, error) {
	cfg := defaults()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	if cfg.store == nil {
		return nil, errors.NewValidationError("store", nil, "a backend is required: WithGitHub, WithLocal, or WithStore")
	}
	return newClient(cfg), nil
}

// NewLocal creates a client backed by a local directory, the development
// stand-in for the hosted backend.
func NewLocal(path string, opts ...Option) (Client, error) {
	if path == "" {
		return nil, errors.NewValidationError("path", path, "path is required for the local backend")
	}
	return New(append([]Option{WithStore(local.New(path))}, opts...)...)
}
