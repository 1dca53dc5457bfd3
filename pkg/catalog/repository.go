// Package catalog owns the in-memory marketplace document and the
// optimistic-concurrency protocol that persists it through a versioned
// content store. The repository is the only writer of the document path;
// every mutation is a read-modify-write cycle guarded by a version-token
// precondition with bounded retries.
package catalog

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/rpampin/mercadito/pkg/contentstore"
	"github.com/rpampin/mercadito/pkg/errors"
	"github.com/rpampin/mercadito/pkg/logging"
)

// DefaultDocumentPath is where the catalog document lives in the store.
const DefaultDocumentPath = "data/products.json"

// DefaultMaxAttempts bounds the write retries absorbed per mutation.
// Retries exist to ride out benign races (two tabs, a stale token after an
// external edit) without looping forever or silently dropping a change.
const DefaultMaxAttempts = 3

// Transform mutates a working copy of the document. It must be pure — no
// I/O, no side effects outside the copy — because on a version conflict it
// is re-applied against a freshly loaded document.
type Transform func(doc *Document) error

// Repository owns the authoritative in-memory document and its version
// token. It is not safe for concurrent use: callers must serialize Load
// and Mutate, with at most one in-flight Mutate per instance.
type Repository struct {
	store       contentstore.Store
	path        string
	logger      *zerolog.Logger
	maxAttempts int

	doc     Document
	version contentstore.Version
	loaded  bool
}

// RepositoryOption configures a Repository.
type RepositoryOption func(*Repository)

// WithDocumentPath overrides the document path in the store.
func WithDocumentPath(path string) RepositoryOption {
	return func(r *Repository) {
		r.path = path
	}
}

// WithLogger sets the logger used for retry and recovery events.
func WithLogger(logger *zerolog.Logger) RepositoryOption {
	return func(r *Repository) {
		r.logger = logger
	}
}

// WithMaxAttempts overrides the write retry budget.
func WithMaxAttempts(n int) RepositoryOption {
	return func(r *Repository) {
		if n > 0 {
			r.maxAttempts = n
		}
	}
}

// NewRepository creates a repository backed by the given content store.
func NewRepository(store contentstore.Store, opts ...RepositoryOption) *Repository {
	r := &Repository{
		store:       store,
		path:        DefaultDocumentPath,
		logger:      logging.Default(),
		maxAttempts: DefaultMaxAttempts,
		doc:         EmptyDocument(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Document returns a copy of the current in-memory document. Callers get a
// disposable snapshot; the only way changes flow back is through Mutate.
func (r *Repository) Document() Document {
	return r.doc.Copy()
}

// Version returns the version token of the last successfully read or
// written document. None means the document does not exist yet.
func (r *Repository) Version() contentstore.Version {
	return r.version
}

// Loaded reports whether an initial Load has completed.
func (r *Repository) Loaded() bool {
	return r.loaded
}

// DocumentPath returns the store path of the catalog document.
func (r *Repository) DocumentPath() string {
	return r.path
}

// Load reads the document from the store, replacing the in-memory state
// and version token. A missing document is the normal first-run state, not
// an error: it loads as an empty catalog with version None, and the first
// successful Mutate creates it. Any other failure leaves prior state
// untouched.
func (r *Repository) Load(ctx context.Context) (Document, error) {
	file, err := r.store.Read(ctx, r.path)
	if err != nil {
		if errors.IsNotFound(err) {
			r.logger.Info().Str("path", r.path).Msg("Catalog document missing, starting empty")
			r.doc = EmptyDocument()
			r.version = contentstore.None
			r.loaded = true
			return r.doc.Copy(), nil
		}
		return Document{}, err
	}

	doc, err := Decode(file.Content)
	if err != nil {
		return Document{}, err
	}

	r.doc = doc
	r.version = file.Version
	r.loaded = true
	r.logger.Debug().
		Str("path", r.path).
		Str("version", string(file.Version)).
		Int("products", len(doc.Products)).
		Msg("Catalog document loaded")
	return r.doc.Copy(), nil
}

// Mutate applies transform to a copy of the current document and commits
// the result guarded by the current version token. On a version conflict
// it reloads and re-applies the transform against the latest store state,
// up to the retry budget; last writer wins at the transform level without
// blind overwrites at the byte level. On success the transformed document
// and new token become current. On failure the in-memory state is exactly
// what it was before the call — the repository never adopts a document it
// could not confirm was durably written.
//
// message tags the commit in backends that keep history.
func (r *Repository) Mutate(ctx context.Context, transform Transform, message string) (Document, error) {
	var lastErr error
	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		working := r.doc.Copy()
		if err := transform(&working); err != nil {
			return Document{}, err
		}

		encoded, err := Encode(working)
		if err != nil {
			return Document{}, err
		}

		version, err := r.store.Write(ctx, r.path, encoded, r.version, message)
		if err == nil {
			r.doc = working
			r.version = version
			r.logger.Info().
				Str("path", r.path).
				Str("version", string(version)).
				Str("change", message).
				Msg("Catalog document saved")
			return r.doc.Copy(), nil
		}

		// Retry is reserved for version conflicts. Blind retry of any
		// other failure risks duplicate side effects on a write whose
		// outcome is unknown.
		if !errors.IsConflict(err) {
			return Document{}, err
		}
		lastErr = err
		if attempt == r.maxAttempts {
			break
		}

		r.logger.Warn().
			Str("path", r.path).
			Int("attempt", attempt).
			Msg("Version conflict, reloading catalog and retrying")
		if _, err := r.Load(ctx); err != nil {
			return Document{}, err
		}
	}
	return Document{}, lastErr
}
