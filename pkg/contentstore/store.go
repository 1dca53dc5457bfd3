// Package contentstore defines the path-addressed versioned storage
// interface the catalog system persists through. Two interchangeable
// backends implement it: the hosted repository contents API and a local
// filesystem shim for development. Selection happens once at startup;
// callers only ever see this interface.
package contentstore

import "context"

// Version is an opaque token identifying the exact byte content of a path
// at a point in time. The hosted backend uses the content hash reported by
// the repository; the filesystem shim hashes file bytes itself. The zero
// value None means "no version known" — on a write it asserts the path
// does not exist yet.
type Version string

// None is the empty version token, used for paths that do not exist yet.
const None Version = ""

// EntryKind distinguishes files from directories in listings.
type EntryKind string

// Entry kinds returned by List.
const (
	EntryFile EntryKind = "file"
	EntryDir  EntryKind = "dir"
)

// File is the result of reading a path.
type File struct {
	Path    string
	Content []byte
	Version Version
}

// Entry is a single directory listing item.
type Entry struct {
	Path    string
	Kind    EntryKind
	Version Version
}

// Store is the capability interface for a versioned content backend.
//
// Every write and remove carries an expected version as an optimistic-lock
// precondition. A write with expected == None must fail with a version
// conflict if the path already exists, so an unseen document is never
// silently clobbered. The message tags the change for backends that keep
// history (the hosted backend uses it as a commit message); backends
// without history ignore it.
type Store interface {
	// Read returns the content and current version of a path.
	// Fails with a not-found error if the path does not exist.
	Read(ctx context.Context, path string) (File, error)

	// Write stores content at a path guarded by the expected version and
	// returns the new version. Fails with a version conflict if the store
	// holds a different version, or if expected is None and the path exists.
	Write(ctx context.Context, path string, content []byte, expected Version, message string) (Version, error)

	// Remove deletes a path guarded by the expected version. Fails with a
	// not-found error if the path is absent and a version conflict if the
	// given version is stale.
	Remove(ctx context.Context, path string, expected Version, message string) error

	// List returns the direct children of a directory. A missing directory
	// yields an empty slice, not an error.
	List(ctx context.Context, dir string) ([]Entry, error)
}
