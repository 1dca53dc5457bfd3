// Package memory implements the content store in process memory. It is
// used by tests and throwaway demos; it keeps the same version-precondition
// semantics as the real backends so the retry protocol can be exercised
// without I/O.
package memory

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"sort"
	"strings"
	"sync"

	"github.com/rpampin/mercadito/pkg/contentstore"
	"github.com/rpampin/mercadito/pkg/errors"
)

// Store is an in-memory contentstore.Store.
type Store struct {
	mu    sync.Mutex
	files map[string][]byte
}

// Compile-time interface check.
var _ contentstore.Store = (*Store)(nil)

// New creates an empty in-memory store.
func New() *Store {
	return &Store{files: make(map[string][]byte)}
}

// Read implements the Store interface.
func (s *Store) Read(_ context.Context, path string) (contentstore.File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	content, ok := s.files[path]
	if !ok {
		return contentstore.File{}, errors.NewNotFoundError("file", path)
	}
	cp := make([]byte, len(content))
	copy(cp, content)
	return contentstore.File{Path: path, Content: cp, Version: hash(content)}, nil
}

// Write implements the Store interface.
func (s *Store) Write(_ context.Context, path string, content []byte, expected contentstore.Version, _ string) (contentstore.Version, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, exists := s.files[path]
	if exists {
		if expected == contentstore.None {
			return contentstore.None, errors.NewConflictError(path, "", nil)
		}
		if hash(current) != expected {
			return contentstore.None, errors.NewConflictError(path, string(expected), nil)
		}
	} else if expected != contentstore.None {
		return contentstore.None, errors.NewConflictError(path, string(expected), nil)
	}

	cp := make([]byte, len(content))
	copy(cp, content)
	s.files[path] = cp
	return hash(content), nil
}

// Remove implements the Store interface.
func (s *Store) Remove(_ context.Context, path string, expected contentstore.Version, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.files[path]
	if !ok {
		return errors.NewNotFoundError("file", path)
	}
	if expected != contentstore.None && hash(current) != expected {
		return errors.NewConflictError(path, string(expected), nil)
	}
	delete(s.files, path)
	return nil
}

// List implements the Store interface. Direct children only; nested paths
// surface as a single dir entry each.
func (s *Store) List(_ context.Context, dir string) ([]contentstore.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prefix := strings.TrimSuffix(dir, "/") + "/"
	seen := make(map[string]contentstore.Entry)
	for path, content := range s.files {
		if !strings.HasPrefix(path, prefix) {
			continue
		}
		rest := strings.TrimPrefix(path, prefix)
		if name, _, nested := strings.Cut(rest, "/"); nested {
			seen[name] = contentstore.Entry{Path: prefix + name, Kind: contentstore.EntryDir}
		} else {
			seen[name] = contentstore.Entry{Path: path, Kind: contentstore.EntryFile, Version: hash(content)}
		}
	}

	entries := make([]contentstore.Entry, 0, len(seen))
	for _, entry := range seen {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	return entries, nil
}

// Len returns the number of stored files.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.files)
}

func hash(content []byte) contentstore.Version {
	sum := sha1.Sum(content)
	return contentstore.Version(hex.EncodeToString(sum[:]))
}
