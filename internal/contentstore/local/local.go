// Package local implements the content store against a local directory,
// the development stand-in for the hosted backend. There is no commit
// history, so change descriptions are ignored; versions are hashes of file
// bytes computed at read and write time, which preserves the same
// optimistic-concurrency semantics the hosted backend provides.
package local

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"

	"github.com/rpampin/mercadito/pkg/contentstore"
	"github.com/rpampin/mercadito/pkg/errors"
)

// Store is a contentstore.Store backed by a directory on disk.
type Store struct {
	root string
}

// Compile-time interface check.
var _ contentstore.Store = (*Store)(nil)

// New creates a store rooted at the given directory.
func New(root string) *Store {
	return &Store{root: root}
}

// Root returns the directory the store reads and writes under.
func (s *Store) Root() string {
	return s.root
}

// Read implements the Store interface.
func (s *Store) Read(_ context.Context, path string) (contentstore.File, error) {
	content, err := os.ReadFile(s.resolve(path))
	if err != nil {
		if os.IsNotExist(err) {
			return contentstore.File{}, errors.NewNotFoundError("file", path)
		}
		return contentstore.File{}, errors.WrapIO("read", path, err)
	}
	return contentstore.File{
		Path:    path,
		Content: content,
		Version: hash(content),
	}, nil
}

// Write implements the Store interface. The precondition check and the
// write are not atomic against other processes; for the single-editor
// development loop this backend serves, that is acceptable.
func (s *Store) Write(_ context.Context, path string, content []byte, expected contentstore.Version, _ string) (contentstore.Version, error) {
	target := s.resolve(path)

	current, err := os.ReadFile(target)
	switch {
	case err == nil:
		if expected == contentstore.None {
			return contentstore.None, errors.NewConflictError(path, "", nil)
		}
		if hash(current) != expected {
			return contentstore.None, errors.NewConflictError(path, string(expected), nil)
		}
	case os.IsNotExist(err):
		if expected != contentstore.None {
			return contentstore.None, errors.NewConflictError(path, string(expected), nil)
		}
	default:
		return contentstore.None, errors.WrapIO("read", path, err)
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return contentstore.None, errors.WrapIO("create", filepath.Dir(path), err)
	}
	if err := os.WriteFile(target, content, 0o644); err != nil {
		return contentstore.None, errors.WrapIO("write", path, err)
	}
	return hash(content), nil
}

// Remove implements the Store interface.
func (s *Store) Remove(_ context.Context, path string, expected contentstore.Version, _ string) error {
	target := s.resolve(path)

	current, err := os.ReadFile(target)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.NewNotFoundError("file", path)
		}
		return errors.WrapIO("read", path, err)
	}
	if expected != contentstore.None && hash(current) != expected {
		return errors.NewConflictError(path, string(expected), nil)
	}

	if err := os.Remove(target); err != nil {
		return errors.WrapIO("delete", path, err)
	}
	return nil
}

// List implements the Store interface.
func (s *Store) List(_ context.Context, dir string) ([]contentstore.Entry, error) {
	items, err := os.ReadDir(s.resolve(dir))
	if err != nil {
		if os.IsNotExist(err) {
			return []contentstore.Entry{}, nil
		}
		return nil, errors.WrapIO("list", dir, err)
	}

	entries := make([]contentstore.Entry, 0, len(items))
	for _, item := range items {
		entryPath := strings.TrimPrefix(dir+"/"+item.Name(), "/")
		if item.IsDir() {
			entries = append(entries, contentstore.Entry{
				Path: entryPath,
				Kind: contentstore.EntryDir,
			})
			continue
		}
		content, err := os.ReadFile(s.resolve(entryPath))
		if err != nil {
			return nil, errors.WrapIO("read", entryPath, err)
		}
		entries = append(entries, contentstore.Entry{
			Path:    entryPath,
			Kind:    contentstore.EntryFile,
			Version: hash(content),
		})
	}
	return entries, nil
}

// resolve joins a store path to the root, normalizing separators and
// refusing to escape the root.
func (s *Store) resolve(path string) string {
	clean := filepath.Clean("/" + filepath.FromSlash(path))
	return filepath.Join(s.root, clean)
}

func hash(content []byte) contentstore.Version {
	sum := sha1.Sum(content)
	return contentstore.Version(hex.EncodeToString(sum[:]))
}
