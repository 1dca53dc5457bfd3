package mercadito

import (
	"github.com/rpampin/mercadito/pkg/assets"
	"github.com/rpampin/mercadito/pkg/catalog"
	"github.com/rpampin/mercadito/pkg/contentstore"
)

// client is the single concrete implementation of the Client interface.
type client struct {
	store      contentstore.Store
	repository *catalog.Repository
	assets     *assets.Manager
}

// Compile-time interface check.
var _ Client = (*client)(nil)

func newClient(cfg *config) *client {
	return &client{
		store: cfg.store,
		repository: catalog.NewRepository(cfg.store,
			catalog.WithDocumentPath(cfg.documentPath),
			catalog.WithLogger(cfg.logger),
			catalog.WithMaxAttempts(cfg.maxAttempts),
		),
		assets: assets.NewManager(cfg.store,
			assets.WithImagesRoot(cfg.imagesRoot),
			assets.WithProcessor(cfg.processor),
			assets.WithLogger(cfg.logger),
		),
	}
}

// Catalog returns the document repository.
func (c *client) Catalog() *catalog.Repository {
	return c.repository
}

// Assets returns the image asset manager.
func (c *client) Assets() *assets.Manager {
	return c.assets
}

// Store returns the underlying content store backend.
func (c *client) Store() contentstore.Store {
	return c.store
}
