package handlers

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpampin/mercadito/internal/contentstore/memory"
	"github.com/rpampin/mercadito/pkg/assets"
	"github.com/rpampin/mercadito/pkg/catalog"
	"github.com/rpampin/mercadito/pkg/contentstore"
	"github.com/rpampin/mercadito/pkg/logging"
)

func newTestHandlers(t *testing.T) (*Handlers, *memory.Store) {
	t.Helper()
	store := memory.New()
	repo := catalog.NewRepository(store, catalog.WithLogger(&logging.Nop))
	mgr := assets.NewManager(store, assets.WithLogger(&logging.Nop))
	_, err := repo.Load(context.Background())
	require.NoError(t, err)
	return New(repo, mgr, &logging.Nop, "test"), store
}

func seedProduct(t *testing.T, h *Handlers, slug, title string, price int, status catalog.Status) string {
	t.Helper()
	id := "id-" + slug
	_, err := h.repo.Mutate(context.Background(), func(doc *catalog.Document) error {
		doc.Products = append(doc.Products, catalog.Product{
			ID:     id,
			Slug:   slug,
			Title:  title,
			Price:  price,
			Status: status,
			Images: []string{},
		})
		return nil
	}, "seed")
	require.NoError(t, err)
	return id
}

func decodeData(t *testing.T, body *bytes.Buffer, target any) {
	t.Helper()
	var envelope struct {
		Data  json.RawMessage `json:"data"`
		Error json.RawMessage `json:"error"`
	}
	require.NoError(t, json.Unmarshal(body.Bytes(), &envelope))
	require.NoError(t, json.Unmarshal(envelope.Data, target))
}

// jpegBase64 returns base64 bytes that sniff as image/jpeg once decoded.
func jpegBase64(n int) string {
	content := bytes.Repeat([]byte{0xAB}, n)
	copy(content, []byte{0xFF, 0xD8, 0xFF, 0xE0})
	return base64.StdEncoding.EncodeToString(content)
}

func TestHandleListProducts(t *testing.T) {
	h, _ := newTestHandlers(t)
	seedProduct(t, h, "mesa", "Mesa", 2500, catalog.StatusSold)
	seedProduct(t, h, "silla", "Silla", 1000, catalog.StatusAvailable)
	seedProduct(t, h, "banco", "Banco", 500, catalog.StatusAvailable)

	t.Run("available first, then alpha", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.HandleListProducts(w, httptest.NewRequest(http.MethodGet, "/api/v1/products", nil))
		require.Equal(t, http.StatusOK, w.Code)

		var payload struct {
			Products []struct {
				Slug   string `json:"slug"`
				Status string `json:"status"`
			} `json:"products"`
		}
		decodeData(t, w.Body, &payload)
		require.Len(t, payload.Products, 3)
		assert.Equal(t, "banco", payload.Products[0].Slug)
		assert.Equal(t, "silla", payload.Products[1].Slug)
		assert.Equal(t, "mesa", payload.Products[2].Slug)
	})

	t.Run("price descending", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.HandleListProducts(w, httptest.NewRequest(http.MethodGet, "/api/v1/products?sort=price-desc", nil))

		var payload struct {
			Products []struct {
				Slug string `json:"slug"`
			} `json:"products"`
		}
		decodeData(t, w.Body, &payload)
		assert.Equal(t, "silla", payload.Products[0].Slug)
		assert.Equal(t, "banco", payload.Products[1].Slug)
		// Sold trails regardless of price.
		assert.Equal(t, "mesa", payload.Products[2].Slug)
	})
}

func TestHandleGetProduct(t *testing.T) {
	h, _ := newTestHandlers(t)
	seedProduct(t, h, "silla", "Silla", 1000, catalog.StatusAvailable)

	t.Run("found", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.HandleGetProduct(w, httptest.NewRequest(http.MethodGet, "/api/v1/products/silla", nil), "silla")
		require.Equal(t, http.StatusOK, w.Code)

		var view struct {
			Slug            string `json:"slug"`
			Currency        string `json:"currency"`
			DescriptionHTML string `json:"description_html"`
		}
		decodeData(t, w.Body, &view)
		assert.Equal(t, "silla", view.Slug)
		// Document currency fills in records without their own.
		assert.Equal(t, "ARS", view.Currency)
		assert.Equal(t, "<p>Sin descripcion</p>", view.DescriptionHTML)
	})

	t.Run("missing slug is 404", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.HandleGetProduct(w, httptest.NewRequest(http.MethodGet, "/api/v1/products/nope", nil), "nope")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestHandleCreateProduct(t *testing.T) {
	h, store := newTestHandlers(t)

	body := `{
		"title": "Lámpara Vintage",
		"price": 1500,
		"currency": "ARS",
		"description": "Muy **buena**",
		"images": [
			{"name": "frente.jpg", "contentType": "image/jpeg", "data": "` + jpegBase64(64) + `"}
		]
	}`
	w := httptest.NewRecorder()
	h.HandleCreateProduct(w, httptest.NewRequest(http.MethodPost, "/api/v1/admin/products", strings.NewReader(body)))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var view struct {
		ID     string   `json:"id"`
		Slug   string   `json:"slug"`
		Images []string `json:"images"`
	}
	decodeData(t, w.Body, &view)
	assert.NotEmpty(t, view.ID)
	assert.Equal(t, "lampara-vintage", view.Slug)
	require.Len(t, view.Images, 1)
	assert.True(t, strings.HasPrefix(view.Images[0], "data/images/lampara-vintage/"), view.Images[0])

	// The image upload committed before the document write.
	_, err := store.Read(context.Background(), view.Images[0])
	require.NoError(t, err)

	// The committed document matches the response.
	doc := h.repo.Document()
	require.Len(t, doc.Products, 1)
	assert.Equal(t, view.ID, doc.Products[0].ID)
}

func TestHandleCreateProductValidation(t *testing.T) {
	h, store := newTestHandlers(t)

	t.Run("missing title", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.HandleCreateProduct(w, httptest.NewRequest(http.MethodPost, "/api/v1/admin/products", strings.NewReader(`{"price": 10}`)))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("bad image aborts before commit", func(t *testing.T) {
		body := `{
			"title": "Silla",
			"images": [{"name": "x.gif", "contentType": "image/gif", "data": "` + jpegBase64(16) + `"}]
		}`
		w := httptest.NewRecorder()
		h.HandleCreateProduct(w, httptest.NewRequest(http.MethodPost, "/api/v1/admin/products", strings.NewReader(body)))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Len(t, h.repo.Document().Products, 0)
		assert.Equal(t, 0, store.Len())
	})

	t.Run("duplicate title gets suffixed slug", func(t *testing.T) {
		for range 2 {
			w := httptest.NewRecorder()
			h.HandleCreateProduct(w, httptest.NewRequest(http.MethodPost, "/api/v1/admin/products", strings.NewReader(`{"title": "Banco"}`)))
			require.Equal(t, http.StatusCreated, w.Code)
		}
		doc := h.repo.Document()
		require.Len(t, doc.Products, 2)
		assert.Equal(t, "banco", doc.Products[0].Slug)
		assert.Equal(t, "banco-2", doc.Products[1].Slug)
	})
}

func TestHandleUpdateProduct(t *testing.T) {
	h, _ := newTestHandlers(t)
	id := seedProduct(t, h, "silla", "Silla", 1000, catalog.StatusAvailable)

	body := `{"title": "Silla restaurada", "slug": "otra-cosa", "price": 1200, "status": "available", "images": []}`
	w := httptest.NewRecorder()
	h.HandleUpdateProduct(w, httptest.NewRequest(http.MethodPut, "/api/v1/admin/products/"+id, strings.NewReader(body)), id)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var view struct {
		Slug  string `json:"slug"`
		Title string `json:"title"`
		Price int    `json:"price"`
	}
	decodeData(t, w.Body, &view)
	assert.Equal(t, "Silla restaurada", view.Title)
	assert.Equal(t, 1200, view.Price)
	// The slug is immutable after creation.
	assert.Equal(t, "silla", view.Slug)

	t.Run("unknown id is 404", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.HandleUpdateProduct(w, httptest.NewRequest(http.MethodPut, "/api/v1/admin/products/nope", strings.NewReader(body)), "nope")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestHandleToggleStatus(t *testing.T) {
	h, _ := newTestHandlers(t)
	id := seedProduct(t, h, "silla", "Silla", 1000, catalog.StatusAvailable)

	for _, want := range []string{"sold", "available"} {
		w := httptest.NewRecorder()
		h.HandleToggleStatus(w, httptest.NewRequest(http.MethodPost, "/api/v1/admin/products/"+id+"/toggle", nil), id)
		require.Equal(t, http.StatusOK, w.Code)

		var view struct {
			Status string `json:"status"`
		}
		decodeData(t, w.Body, &view)
		assert.Equal(t, want, view.Status)
	}
}

func TestHandleDeleteProduct(t *testing.T) {
	h, store := newTestHandlers(t)
	id := seedProduct(t, h, "silla", "Silla", 1000, catalog.StatusAvailable)

	// Seed an image file for the product.
	_, err := store.Write(context.Background(), "data/images/silla/silla-1-0.jpg", []byte{0xFF, 0xD8, 0xFF, 0xE0}, contentstore.None, "seed")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	h.HandleDeleteProduct(w, httptest.NewRequest(http.MethodDelete, "/api/v1/admin/products/"+id+"?assets=true", nil), id)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result struct {
		Deleted       string `json:"deleted"`
		AssetsRemoved int    `json:"assetsRemoved"`
	}
	decodeData(t, w.Body, &result)
	assert.Equal(t, id, result.Deleted)
	assert.Equal(t, 1, result.AssetsRemoved)

	assert.Len(t, h.repo.Document().Products, 0)

	t.Run("second delete is 404", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.HandleDeleteProduct(w, httptest.NewRequest(http.MethodDelete, "/api/v1/admin/products/"+id, nil), id)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestHandleReadiness(t *testing.T) {
	store := memory.New()
	repo := catalog.NewRepository(store, catalog.WithLogger(&logging.Nop))
	mgr := assets.NewManager(store, assets.WithLogger(&logging.Nop))
	h := New(repo, mgr, &logging.Nop, "test")

	w := httptest.NewRecorder()
	h.HandleReady(w, httptest.NewRequest(http.MethodGet, "/api/v1/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	_, err := repo.Load(context.Background())
	require.NoError(t, err)

	w = httptest.NewRecorder()
	h.HandleReady(w, httptest.NewRequest(http.MethodGet, "/api/v1/ready", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
