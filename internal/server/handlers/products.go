package handlers

import (
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/rpampin/mercadito/internal/server/response"
	"github.com/rpampin/mercadito/pkg/catalog"
	"github.com/rpampin/mercadito/pkg/render"
)

// productView is a product as the storefront consumes it: the raw
// description is replaced with sanitized HTML, and the document-level
// currency fills in records without their own.
type productView struct {
	ID              string    `json:"id"`
	Slug            string    `json:"slug"`
	Title           string    `json:"title"`
	Price           int       `json:"price"`
	Currency        string    `json:"currency"`
	Status          string    `json:"status"`
	Images          []string  `json:"images"`
	DescriptionHTML string    `json:"description_html"`
	CreatedAt       time.Time `json:"createdAt,omitzero"`
	UpdatedAt       time.Time `json:"updatedAt,omitzero"`
}

func viewOf(p catalog.Product, meta catalog.Meta) productView {
	currency := p.Currency
	if currency == "" {
		currency = meta.Currency
	}
	return productView{
		ID:              p.ID,
		Slug:            p.Slug,
		Title:           p.Title,
		Price:           p.Price,
		Currency:        string(currency),
		Status:          string(p.Status),
		Images:          p.Images,
		DescriptionHTML: render.RichText(p.Description),
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

// HandleListProducts serves the public product grid. Sort orders: alpha
// (default), price-asc, price-desc; sold products always trail available
// ones.
func (h *Handlers) HandleListProducts(w http.ResponseWriter, r *http.Request) {
	doc := h.repo.Document()

	views := make([]productView, 0, len(doc.Products))
	for _, p := range doc.Products {
		views = append(views, viewOf(p, doc.Meta))
	}
	sortViews(views, r.URL.Query().Get("sort"))

	response.OK(w, map[string]any{
		"products": views,
		"meta":     doc.Meta,
	})
}

// HandleGetProduct serves the public product detail by slug.
func (h *Handlers) HandleGetProduct(w http.ResponseWriter, _ *http.Request, slug string) {
	doc := h.repo.Document()
	i := doc.FindBySlug(slug)
	if i < 0 {
		response.NotFound(w, "Product not found", slug)
		return
	}
	response.OK(w, viewOf(doc.Products[i], doc.Meta))
}

func sortViews(views []productView, order string) {
	less := func(a, b productView) bool {
		return strings.ToLower(a.Title) < strings.ToLower(b.Title)
	}
	switch order {
	case "price-asc":
		less = func(a, b productView) bool { return a.Price < b.Price }
	case "price-desc":
		less = func(a, b productView) bool { return a.Price > b.Price }
	}

	sort.SliceStable(views, func(i, j int) bool {
		a, b := views[i], views[j]
		if a.Status != b.Status {
			return a.Status == string(catalog.StatusAvailable)
		}
		return less(a, b)
	})
}
