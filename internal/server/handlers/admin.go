package handlers

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/rpampin/mercadito/internal/server/response"
	"github.com/rpampin/mercadito/pkg/assets"
	"github.com/rpampin/mercadito/pkg/catalog"
	"github.com/rpampin/mercadito/pkg/errors"
)

// imageInput is one entry of a submitted image list, in display order.
// Existing assets carry their store path; new ones carry base64 content
// that must be uploaded before the document commit references it.
type imageInput struct {
	Path        string `json:"path,omitempty"`
	Name        string `json:"name,omitempty"`
	ContentType string `json:"contentType,omitempty"`
	Data        string `json:"data,omitempty"`
}

// productRequest is the admin create/update payload.
type productRequest struct {
	Title       string       `json:"title"`
	Slug        string       `json:"slug"`
	Price       int          `json:"price"`
	Currency    string       `json:"currency"`
	Status      string       `json:"status"`
	Description string       `json:"description"`
	Images      []imageInput `json:"images"`
}

// HandleCreateProduct creates a product: new images are uploaded first,
// then the document mutation referencing their final paths is committed.
func (h *Handlers) HandleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", err.Error())
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	doc := h.repo.Document()
	now := time.Now().UTC()
	slug := catalog.UniqueSlug(firstNonEmpty(req.Slug, req.Title), "", doc.Products)

	product := catalog.Product{
		ID:          uuid.NewString(),
		Slug:        slug,
		Title:       req.Title,
		Price:       req.Price,
		Currency:    catalog.Currency(req.Currency),
		Status:      statusOf(req.Status),
		Images:      []string{},
		Description: req.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := doc.Validate(product, ""); err != nil {
		response.FromError(w, err)
		return
	}

	images, err := h.resolveImages(r, slug, req.Images)
	if err != nil {
		response.FromError(w, err)
		return
	}
	product.Images = images

	saved, err := h.repo.Mutate(r.Context(), func(doc *catalog.Document) error {
		product.Slug = catalog.UniqueSlug(product.Slug, "", doc.Products)
		doc.Products = append(doc.Products, product)
		return nil
	}, fmt.Sprintf("feat(admin): create product %s", slug))
	if err != nil {
		response.FromError(w, err)
		return
	}

	created, err := saved.Product(product.ID)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Created(w, viewOf(created, saved.Meta))
}

// HandleUpdateProduct edits an existing product. The slug is immutable
// after creation; submitted slug changes are ignored.
func (h *Handlers) HandleUpdateProduct(w http.ResponseWriter, r *http.Request, id string) {
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", err.Error())
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	doc := h.repo.Document()
	current, err := doc.Product(id)
	if err != nil {
		response.FromError(w, err)
		return
	}

	draft := current
	draft.Title = req.Title
	draft.Price = req.Price
	draft.Currency = catalog.Currency(req.Currency)
	draft.Status = statusOf(req.Status)
	draft.Description = req.Description
	if err := doc.Validate(draft, id); err != nil {
		response.FromError(w, err)
		return
	}

	images, err := h.resolveImages(r, current.Slug, req.Images)
	if err != nil {
		response.FromError(w, err)
		return
	}

	saved, err := h.repo.Mutate(r.Context(), func(doc *catalog.Document) error {
		i := doc.FindByID(id)
		if i < 0 {
			return errors.NewNotFoundError("product", id)
		}
		p := &doc.Products[i]
		p.Title = draft.Title
		p.Price = draft.Price
		p.Currency = draft.Currency
		p.Status = draft.Status
		p.Description = draft.Description
		p.Images = images
		p.Touch(time.Now())
		return nil
	}, fmt.Sprintf("fix(admin): update product %s", current.Slug))
	if err != nil {
		response.FromError(w, err)
		return
	}

	updated, err := saved.Product(id)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.OK(w, viewOf(updated, saved.Meta))
}

// HandleToggleStatus flips a product between available and sold.
func (h *Handlers) HandleToggleStatus(w http.ResponseWriter, r *http.Request, id string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	doc := h.repo.Document()
	current, err := doc.Product(id)
	if err != nil {
		response.FromError(w, err)
		return
	}

	saved, err := h.repo.Mutate(r.Context(), func(doc *catalog.Document) error {
		i := doc.FindByID(id)
		if i < 0 {
			return errors.NewNotFoundError("product", id)
		}
		doc.Products[i].Status = doc.Products[i].Status.Toggle()
		doc.Products[i].Touch(time.Now())
		return nil
	}, fmt.Sprintf("fix(admin): toggle product %s", current.Slug))
	if err != nil {
		response.FromError(w, err)
		return
	}

	toggled, err := saved.Product(id)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.OK(w, viewOf(toggled, saved.Meta))
}

// HandleDeleteProduct removes a product from the document and, when
// ?assets=true, best-effort deletes its image folder afterwards. The
// document commit is authoritative: partial asset-cleanup failures are
// logged, never surfaced.
func (h *Handlers) HandleDeleteProduct(w http.ResponseWriter, r *http.Request, id string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	doc := h.repo.Document()
	current, err := doc.Product(id)
	if err != nil {
		response.FromError(w, err)
		return
	}

	_, err = h.repo.Mutate(r.Context(), func(doc *catalog.Document) error {
		i := doc.FindByID(id)
		if i < 0 {
			return errors.NewNotFoundError("product", id)
		}
		doc.Products = append(doc.Products[:i], doc.Products[i+1:]...)
		return nil
	}, fmt.Sprintf("chore(admin): delete product %s", current.Slug))
	if err != nil {
		response.FromError(w, err)
		return
	}

	removed := 0
	if r.URL.Query().Get("assets") == "true" {
		removed = h.assets.DeleteAssets(r.Context(), current.Slug)
	}
	response.OK(w, map[string]any{
		"deleted":       id,
		"assetsRemoved": removed,
	})
}

// HandleReload re-reads the document from the store, refreshing state and
// version token after external edits.
func (h *Handlers) HandleReload(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	doc, err := h.repo.Load(r.Context())
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.OK(w, map[string]any{
		"products": len(doc.Products),
		"version":  string(h.repo.Version()),
	})
}

// resolveImages uploads the new entries of a submitted image list and
// returns the final ordered paths. Uploads run strictly before the
// document mutation; any failure aborts the whole operation.
func (h *Handlers) resolveImages(r *http.Request, slug string, inputs []imageInput) ([]string, error) {
	queue := make([]assets.PendingFile, 0, len(inputs))
	for i, input := range inputs {
		if input.Path != "" {
			continue
		}
		content, err := base64.StdEncoding.DecodeString(input.Data)
		if err != nil {
			return nil, errors.NewUploadError(input.Name, "", errors.WrapParse("base64", input.Name, err))
		}
		queue = append(queue, assets.PendingFile{
			TempID:      fmt.Sprintf("upload-%d", i),
			Name:        input.Name,
			ContentType: input.ContentType,
			Content:     content,
		})
	}

	uploaded := map[string]string{}
	if len(queue) > 0 {
		var err error
		uploaded, err = h.assets.UploadPending(r.Context(), slug, queue)
		if err != nil {
			return nil, err
		}
	}

	paths := make([]string, 0, len(inputs))
	for i, input := range inputs {
		if input.Path != "" {
			paths = append(paths, input.Path)
		} else if path, ok := uploaded[fmt.Sprintf("upload-%d", i)]; ok {
			paths = append(paths, path)
		}
	}
	return paths, nil
}

func statusOf(value string) catalog.Status {
	if value == string(catalog.StatusSold) {
		return catalog.StatusSold
	}
	return catalog.StatusAvailable
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
