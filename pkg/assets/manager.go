// Package assets manages the per-product image files that live alongside
// the catalog document. Uploads run to completion before the document
// mutation that references them is submitted, so a committed document never
// points at a path that was not durably written. Deletion is best-effort:
// the document mutation has already committed independently and is not
// rolled back when cleanup partially fails.
package assets

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/rpampin/mercadito/pkg/contentstore"
	"github.com/rpampin/mercadito/pkg/errors"
	"github.com/rpampin/mercadito/pkg/logging"
)

// DefaultImagesRoot is the store directory holding per-product image folders.
const DefaultImagesRoot = "data/images"

// MaxFileBytes is the largest raw image accepted for upload.
const MaxFileBytes = 4 * 1024 * 1024

// acceptedTypes are the content types an admin may submit. The Processor
// decides the stored format.
var acceptedTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/webp": true,
	"image/avif": true,
}

// PendingFile is one queued image waiting to be uploaded. TempID is the
// caller's handle for resolving the final path after upload.
type PendingFile struct {
	TempID      string
	Name        string
	ContentType string
	Content     []byte
}

// Manager uploads and deletes product image assets in the content store.
type Manager struct {
	store     contentstore.Store
	processor Processor
	root      string
	logger    *zerolog.Logger
	now       func() time.Time
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithImagesRoot overrides the image directory root.
func WithImagesRoot(root string) ManagerOption {
	return func(m *Manager) {
		m.root = root
	}
}

// WithProcessor sets the image processor used before upload.
func WithProcessor(p Processor) ManagerOption {
	return func(m *Manager) {
		m.processor = p
	}
}

// WithLogger sets the logger for best-effort cleanup events.
func WithLogger(logger *zerolog.Logger) ManagerOption {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithClock overrides the time source used in generated filenames.
func WithClock(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.now = now
	}
}

// NewManager creates an asset manager backed by the given content store.
func NewManager(store contentstore.Store, opts ...ManagerOption) *Manager {
	m := &Manager{
		store:     store,
		processor: Passthrough{},
		root:      DefaultImagesRoot,
		logger:    logging.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Dir returns the image directory for a product slug.
func (m *Manager) Dir(slug string) string {
	return m.root + "/" + slug
}

// UploadPending processes and uploads each queued file sequentially,
// returning a mapping from TempID to the final stored path. Sequential
// uploads bound concurrent write load on the backend and keep per-file
// error attribution unambiguous. The first failure aborts the whole batch:
// the caller must not commit a document referencing a path that failed to
// upload.
func (m *Manager) UploadPending(ctx context.Context, slug string, queue []PendingFile) (map[string]string, error) {
	paths := make(map[string]string, len(queue))
	for i, file := range queue {
		if err := m.validate(file); err != nil {
			return nil, errors.NewUploadError(file.Name, "", err)
		}

		processed, err := m.processor.Process(ctx, file.Name, file.Content)
		if err != nil {
			return nil, errors.NewUploadError(file.Name, "", err)
		}

		name := fmt.Sprintf("%s-%d-%d.%s", slug, m.now().UnixMilli(), i, processed.Ext)
		path := m.Dir(slug) + "/" + name
		message := fmt.Sprintf("feat(admin): upload image %s/%s", slug, name)
		if _, err := m.store.Write(ctx, path, processed.Content, contentstore.None, message); err != nil {
			return nil, errors.NewUploadError(file.Name, path, err)
		}

		m.logger.Debug().Str("path", path).Int("bytes", len(processed.Content)).Msg("Image uploaded")
		paths[file.TempID] = path
	}
	return paths, nil
}

// DeleteAssets removes every file in a product's image directory and
// returns how many were removed. A missing directory means nothing to
// delete. Individual failures are logged and skipped so one stuck file
// does not abandon the rest of the cleanup.
func (m *Manager) DeleteAssets(ctx context.Context, slug string) int {
	dir := m.Dir(slug)
	entries, err := m.store.List(ctx, dir)
	if err != nil {
		if !errors.IsNotFound(err) {
			m.logger.Error().Err(err).Str("dir", dir).Msg("Failed to list product images")
		}
		return 0
	}

	removed := 0
	for _, entry := range entries {
		if entry.Kind != contentstore.EntryFile {
			continue
		}
		message := fmt.Sprintf("chore(admin): delete image %s", entry.Path)
		if err := m.store.Remove(ctx, entry.Path, entry.Version, message); err != nil {
			if errors.IsNotFound(err) {
				continue
			}
			m.logger.Error().Err(err).Str("path", entry.Path).Msg("Failed to delete product image")
			continue
		}
		removed++
	}
	return removed
}

func (m *Manager) validate(file PendingFile) error {
	if len(file.Content) == 0 {
		return errors.NewValidationError("file", file.Name, "file is empty")
	}
	if len(file.Content) > MaxFileBytes {
		return errors.NewValidationError("file", file.Name, fmt.Sprintf("file exceeds %d MB", MaxFileBytes/(1024*1024)))
	}
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if !acceptedTypes[contentType] {
		return errors.NewValidationError("file", file.Name, "unsupported image type "+contentType)
	}
	return nil
}
