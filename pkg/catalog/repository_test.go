package catalog

import (
	"context"
	"fmt"
	"testing"

	"github.com/rpampin/mercadito/pkg/contentstore"
	"github.com/rpampin/mercadito/pkg/errors"
)

// stubStore is a scriptable content store for exercising the repository's
// retry protocol.
type stubStore struct {
	content []byte
	version contentstore.Version

	reads         int
	writes        int
	conflictsLeft int
	writeErr      error
}

func (s *stubStore) Read(_ context.Context, path string) (contentstore.File, error) {
	s.reads++
	if s.version == contentstore.None {
		return contentstore.File{}, errors.NewNotFoundError("file", path)
	}
	return contentstore.File{Path: path, Content: s.content, Version: s.version}, nil
}

func (s *stubStore) Write(_ context.Context, path string, content []byte, expected contentstore.Version, _ string) (contentstore.Version, error) {
	s.writes++
	if s.writeErr != nil {
		return contentstore.None, s.writeErr
	}
	if s.conflictsLeft > 0 {
		s.conflictsLeft--
		return contentstore.None, errors.NewConflictError(path, string(expected), nil)
	}
	if expected != s.version {
		return contentstore.None, errors.NewConflictError(path, string(expected), nil)
	}
	s.content = content
	s.version = contentstore.Version(fmt.Sprintf("v%d", s.writes))
	return s.version, nil
}

func (s *stubStore) Remove(_ context.Context, _ string, _ contentstore.Version, _ string) error {
	return nil
}

func (s *stubStore) List(_ context.Context, _ string) ([]contentstore.Entry, error) {
	return nil, nil
}

func addProduct(id, slug, title string) Transform {
	return func(doc *Document) error {
		doc.Products = append(doc.Products, Product{ID: id, Slug: slug, Title: title})
		return nil
	}
}

func TestRepositoryLoadMissingDocument(t *testing.T) {
	store := &stubStore{}
	repo := NewRepository(store)

	doc, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(doc.Products) != 0 {
		t.Errorf("expected empty catalog, got %d products", len(doc.Products))
	}
	if repo.Version() != contentstore.None {
		t.Errorf("expected version None, got %q", repo.Version())
	}
	if !repo.Loaded() {
		t.Error("repository should report loaded")
	}
}

func TestRepositoryFirstMutateCreatesDocument(t *testing.T) {
	store := &stubStore{}
	repo := NewRepository(store)

	if _, err := repo.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	doc, err := repo.Mutate(context.Background(), addProduct("1", "silla", "Silla"), "feat(admin): create product silla")
	if err != nil {
		t.Fatalf("Mutate failed: %v", err)
	}
	if len(doc.Products) != 1 {
		t.Fatalf("expected 1 product, got %d", len(doc.Products))
	}
	if repo.Version() == contentstore.None {
		t.Error("version token should be set after first save")
	}
	if store.writes != 1 {
		t.Errorf("expected 1 write, got %d", store.writes)
	}
}

func TestRepositoryRetryConvergence(t *testing.T) {
	// Seed the store with one product committed by "someone else".
	seed, err := Encode(Document{
		Products: []Product{{ID: "other", Slug: "mesa", Title: "Mesa"}},
		Meta:     DefaultMeta(),
	})
	if err != nil {
		t.Fatal(err)
	}
	store := &stubStore{content: seed, version: "v-external", conflictsLeft: 1}

	repo := NewRepository(store)
	if _, err := repo.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	doc, err := repo.Mutate(context.Background(), addProduct("1", "silla", "Silla"), "feat(admin): create product silla")
	if err != nil {
		t.Fatalf("Mutate failed after retry: %v", err)
	}

	// The transform was re-applied on the reloaded document, so both the
	// external product and the new one are present.
	if len(doc.Products) != 2 {
		t.Fatalf("expected 2 products after converged retry, got %d", len(doc.Products))
	}
	if store.writes != 2 {
		t.Errorf("expected 2 write attempts, got %d", store.writes)
	}
}

func TestRepositoryRetryExhaustion(t *testing.T) {
	seed, err := Encode(EmptyDocument())
	if err != nil {
		t.Fatal(err)
	}
	store := &stubStore{content: seed, version: "v1", conflictsLeft: 100}

	repo := NewRepository(store)
	if _, err := repo.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	before := repo.Document()

	_, err = repo.Mutate(context.Background(), addProduct("1", "silla", "Silla"), "feat(admin): create product silla")
	if !errors.IsConflict(err) {
		t.Fatalf("expected conflict error after exhaustion, got %v", err)
	}
	if store.writes != DefaultMaxAttempts {
		t.Errorf("expected exactly %d write attempts, got %d", DefaultMaxAttempts, store.writes)
	}

	// In-memory state must match the last loaded store state, not the
	// failed transform result.
	after := repo.Document()
	if len(after.Products) != len(before.Products) {
		t.Errorf("document changed after failed mutation: %d vs %d products", len(after.Products), len(before.Products))
	}
}

func TestRepositoryNonConflictErrorDoesNotRetry(t *testing.T) {
	seed, err := Encode(EmptyDocument())
	if err != nil {
		t.Fatal(err)
	}
	store := &stubStore{content: seed, version: "v1"}
	store.writeErr = errors.NewAPIError(500, "/contents", "boom")

	repo := NewRepository(store)
	if _, err := repo.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	_, err = repo.Mutate(context.Background(), addProduct("1", "silla", "Silla"), "feat(admin): create product silla")
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.IsConflict(err) {
		t.Fatal("a server error must not be reported as a conflict")
	}
	if store.writes != 1 {
		t.Errorf("expected exactly 1 write attempt, got %d", store.writes)
	}
}

func TestRepositoryTransformErrorAbortsBeforeWrite(t *testing.T) {
	store := &stubStore{}
	repo := NewRepository(store)
	if _, err := repo.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	wantErr := errors.NewValidationError("title", "", "title is required")
	_, err := repo.Mutate(context.Background(), func(*Document) error {
		return wantErr
	}, "fix(admin): update product silla")
	if !errors.IsValidationError(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if store.writes != 0 {
		t.Errorf("transform failure must not reach the store, got %d writes", store.writes)
	}
}

func TestRepositoryMutateKeepsStateOnFailure(t *testing.T) {
	seed, err := Encode(Document{
		Products: []Product{{ID: "1", Slug: "silla", Title: "Silla"}},
		Meta:     DefaultMeta(),
	})
	if err != nil {
		t.Fatal(err)
	}
	store := &stubStore{content: seed, version: "v1"}
	store.writeErr = errors.NewAPIError(502, "/contents", "bad gateway")

	repo := NewRepository(store)
	if _, err := repo.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	versionBefore := repo.Version()

	_, err = repo.Mutate(context.Background(), addProduct("2", "mesa", "Mesa"), "feat(admin): create product mesa")
	if err == nil {
		t.Fatal("expected error")
	}
	if repo.Version() != versionBefore {
		t.Error("version token changed after failed write")
	}
	if got := repo.Document(); len(got.Products) != 1 {
		t.Errorf("document adopted unconfirmed write: %d products", len(got.Products))
	}
}
