package github

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpampin/mercadito/pkg/contentstore"
	"github.com/rpampin/mercadito/pkg/errors"
)

func newTestStore(t *testing.T, handler http.HandlerFunc) *Store {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return New("rpampin", "mercadito-content", "main", "test-token", WithBaseURL(server.URL))
}

func TestRead(t *testing.T) {
	content := []byte(`{"products":[]}`)
	encoded := base64.StdEncoding.EncodeToString(content)
	// The API wraps base64 content; the client must tolerate newlines.
	wrapped := encoded[:8] + "\n" + encoded[8:]

	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/repos/rpampin/mercadito-content/contents/data/products.json", r.URL.Path)
		assert.Equal(t, "main", r.URL.Query().Get("ref"))
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "2022-11-28", r.Header.Get("X-GitHub-Api-Version"))

		_ = json.NewEncoder(w).Encode(contentFile{
			Type:    "file",
			Path:    "data/products.json",
			SHA:     "abc123",
			Content: wrapped,
		})
	})

	file, err := store.Read(context.Background(), "data/products.json")
	require.NoError(t, err)
	assert.Equal(t, content, file.Content)
	assert.Equal(t, contentstore.Version("abc123"), file.Version)
}

func TestReadNotFound(t *testing.T) {
	store := newTestStore(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"Not Found"}`))
	})

	_, err := store.Read(context.Background(), "data/products.json")
	assert.True(t, errors.IsNotFound(err), "expected not-found, got %v", err)
}

func TestWriteCreate(t *testing.T) {
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)

		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "feat(admin): create product silla", payload["message"])
		assert.Equal(t, "main", payload["branch"])
		assert.NotEmpty(t, payload["content"])
		// A create asserts the path does not exist: no sha precondition.
		_, hasSHA := payload["sha"]
		assert.False(t, hasSHA)

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"content":{"sha":"newsha"}}`))
	})

	version, err := store.Write(context.Background(), "data/products.json", []byte("{}"), contentstore.None, "feat(admin): create product silla")
	require.NoError(t, err)
	assert.Equal(t, contentstore.Version("newsha"), version)
}

func TestWriteUpdateSendsSHA(t *testing.T) {
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "oldsha", payload["sha"])

		_, _ = w.Write([]byte(`{"content":{"sha":"newsha"}}`))
	})

	version, err := store.Write(context.Background(), "data/products.json", []byte("{}"), "oldsha", "fix(admin): update product silla")
	require.NoError(t, err)
	assert.Equal(t, contentstore.Version("newsha"), version)
}

func TestWriteConflicts(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{"stale sha", http.StatusConflict},
		{"missing sha over existing path", http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newTestStore(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"message":"precondition failed"}`))
			})

			_, err := store.Write(context.Background(), "data/products.json", []byte("{}"), "stale", "fix(admin): update product silla")
			require.Error(t, err)
			assert.True(t, errors.IsConflict(err), "status %d should map to a conflict, got %v", tt.status, err)

			var conflict *errors.ConflictError
			require.ErrorAs(t, err, &conflict)
			assert.Equal(t, "data/products.json", conflict.Path)
		})
	}
}

func TestWriteUnauthorized(t *testing.T) {
	store := newTestStore(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Bad credentials"}`))
	})

	_, err := store.Write(context.Background(), "data/products.json", []byte("{}"), contentstore.None, "feat(admin): create product silla")
	assert.True(t, errors.IsUnauthorized(err), "expected unauthorized, got %v", err)
}

func TestRemove(t *testing.T) {
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)

		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "abc123", payload["sha"])
		assert.Equal(t, "chore(admin): delete image data/images/silla/a.jpg", payload["message"])

		_, _ = w.Write([]byte(`{"content":null}`))
	})

	err := store.Remove(context.Background(), "data/images/silla/a.jpg", "abc123", "chore(admin): delete image data/images/silla/a.jpg")
	require.NoError(t, err)
}

func TestList(t *testing.T) {
	t.Run("maps files and dirs", func(t *testing.T) {
		store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/repos/rpampin/mercadito-content/contents/data/images/silla", r.URL.Path)
			_, _ = w.Write([]byte(`[
				{"type":"file","path":"data/images/silla/a.jpg","sha":"s1"},
				{"type":"dir","path":"data/images/silla/old","sha":""}
			]`))
		})

		entries, err := store.List(context.Background(), "data/images/silla")
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, contentstore.EntryFile, entries[0].Kind)
		assert.Equal(t, contentstore.Version("s1"), entries[0].Version)
		assert.Equal(t, contentstore.EntryDir, entries[1].Kind)
	})

	t.Run("missing dir is empty", func(t *testing.T) {
		store := newTestStore(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message":"Not Found"}`))
		})

		entries, err := store.List(context.Background(), "data/images/nope")
		require.NoError(t, err)
		assert.Empty(t, entries)
	})
}

func TestVerify(t *testing.T) {
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/user", r.URL.Path)
		_, _ = w.Write([]byte(`{"login":"rpampin","name":"R"}`))
	})

	user, err := store.Verify(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "rpampin", user.Login)
}

func TestContentsURLEscapesSegments(t *testing.T) {
	store := New("owner", "repo", "main", "tok")
	got := store.contentsURL("data/images/lámpara vieja/a.jpg")
	assert.Equal(t, DefaultBaseURL+"/repos/owner/repo/contents/data/images/l%C3%A1mpara%20vieja/a.jpg", got)
}
