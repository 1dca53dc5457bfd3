package mercadito

import (
	"github.com/rs/zerolog"

	"github.com/rpampin/mercadito/internal/contentstore/github"
	"github.com/rpampin/mercadito/internal/contentstore/local"
	"github.com/rpampin/mercadito/pkg/assets"
	"github.com/rpampin/mercadito/pkg/catalog"
	"github.com/rpampin/mercadito/pkg/contentstore"
	"github.com/rpampin/mercadito/pkg/errors"
	"github.com/rpampin/mercadito/pkg/logging"
)

// Option configures a Client.
type Option func(*config) error

type config struct {
	store        contentstore.Store
	documentPath string
	imagesRoot   string
	processor    assets.Processor
	logger       *zerolog.Logger
	maxAttempts  int
}

func defaults() *config {
	return &config{
		documentPath: catalog.DefaultDocumentPath,
		imagesRoot:   assets.DefaultImagesRoot,
		processor:    assets.Passthrough{},
		logger:       logging.Default(),
		maxAttempts:  catalog.DefaultMaxAttempts,
	}
}

// WithGitHub selects the hosted backend: a GitHub repository's contents
// API, authenticated with a personal access token.
func WithGitHub(owner, repo, branch, token string) Option {
	return func(c *config) error {
		if owner == "" || repo == "" || branch == "" {
			return errors.NewValidationError("github", nil, "owner, repo, and branch are required")
		}
		c.store = github.New(owner, repo, branch, token)
		return nil
	}
}

// WithLocal selects the filesystem backend rooted at path.
func WithLocal(path string) Option {
	return func(c *config) error {
		if path == "" {
			return errors.NewValidationError("path", path, "path is required for the local backend")
		}
		c.store = local.New(path)
		return nil
	}
}

// WithStore selects a custom content store backend.
func WithStore(store contentstore.Store) Option {
	return func(c *config) error {
		if store == nil {
			return errors.NewValidationError("store", nil, "store must not be nil")
		}
		c.store = store
		return nil
	}
}

// WithDocumentPath overrides where the catalog document lives in the store.
func WithDocumentPath(path string) Option {
	return func(c *config) error {
		if path == "" {
			return errors.NewValidationError("documentPath", path, "document path must not be empty")
		}
		c.documentPath = path
		return nil
	}
}

// WithImagesRoot overrides the directory holding per-product image folders.
func WithImagesRoot(root string) Option {
	return func(c *config) error {
		if root == "" {
			return errors.NewValidationError("imagesRoot", root, "images root must not be empty")
		}
		c.imagesRoot = root
		return nil
	}
}

// WithProcessor sets the image processor applied before uploads.
func WithProcessor(p assets.Processor) Option {
	return func(c *config) error {
		if p == nil {
			return errors.NewValidationError("processor", nil, "processor must not be nil")
		}
		c.processor = p
		return nil
	}
}

// WithLogger sets the logger shared by the repository and asset manager.
func WithLogger(logger *zerolog.Logger) Option {
	return func(c *config) error {
		if logger == nil {
			return errors.NewValidationError("logger", nil, "logger must not be nil")
		}
		c.logger = logger
		return nil
	}
}

// WithMaxAttempts overrides the mutation retry budget.
func WithMaxAttempts(n int) Option {
	return func(c *config) error {
		if n < 1 {
			return errors.NewValidationError("maxAttempts", n, "retry budget must be at least 1")
		}
		c.maxAttempts = n
		return nil
	}
}
