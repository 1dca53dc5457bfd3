package catalog

import (
	"github.com/rpampin/mercadito/pkg/errors"
)

// Default store-wide metadata values, filled in for documents that omit them.
const (
	DefaultCurrency = CurrencyARS
	DefaultLocale   = "es-AR"
)

// Contact is the store's optional contact-link configuration.
type Contact struct {
	Type  string `json:"type"`
	Value string `json:"value"`
	Label string `json:"label,omitempty"`
}

// Meta holds store-wide defaults and contact configuration.
type Meta struct {
	Currency Currency `json:"currency"`
	Locale   string   `json:"locale"`
	Contact  *Contact `json:"contact"`
}

// DefaultMeta returns the metadata used when a document omits it.
func DefaultMeta() Meta {
	return Meta{
		Currency: DefaultCurrency,
		Locale:   DefaultLocale,
		Contact:  nil,
	}
}

// Document is the whole catalog: an ordered list of product records plus
// store metadata. It is read and written wholesale; there are no
// field-level partial writes.
type Document struct {
	Products []Product `json:"products"`
	Meta     Meta      `json:"meta"`
}

// EmptyDocument returns a document with no products and default metadata,
// the normal first-run state before anything has been saved.
func EmptyDocument() Document {
	return Document{
		Products: []Product{},
		Meta:     DefaultMeta(),
	}
}

// Copy returns a deep copy of the document. Mutations always operate on a
// copy so a failed save never leaves the in-memory document half-changed.
func (d Document) Copy() Document {
	cp := d
	cp.Products = make([]Product, len(d.Products))
	for i, p := range d.Products {
		cp.Products[i] = p.Copy()
	}
	if d.Meta.Contact != nil {
		contact := *d.Meta.Contact
		cp.Meta.Contact = &contact
	}
	return cp
}

// FindByID returns the index of the product with the given ID, or -1.
func (d Document) FindByID(id string) int {
	for i, p := range d.Products {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// FindBySlug returns the index of the product with the given slug, or -1.
func (d Document) FindBySlug(slug string) int {
	for i, p := range d.Products {
		if p.Slug == slug {
			return i
		}
	}
	return -1
}

// Product returns the product with the given ID.
func (d Document) Product(id string) (Product, error) {
	if i := d.FindByID(id); i >= 0 {
		return d.Products[i].Copy(), nil
	}
	return Product{}, errors.NewNotFoundError("product", id)
}

// Validate checks the fields an admin submits before any store I/O.
// Slug uniqueness is checked against every record except excludeID, so an
// edit does not collide with itself.
func (d Document) Validate(p Product, excludeID string) error {
	if p.Title == "" {
		return errors.NewValidationError("title", p.Title, "title is required")
	}
	if p.Slug == "" {
		return errors.NewValidationError("slug", p.Slug, "slug is required")
	}
	if p.Price < 0 {
		return errors.NewValidationError("price", p.Price, "price must be a non-negative integer")
	}
	if p.Currency != "" && !p.Currency.Valid() {
		return errors.NewValidationError("currency", p.Currency, "unsupported currency")
	}
	for _, existing := range d.Products {
		if existing.Slug == p.Slug && existing.ID != excludeID {
			return errors.NewValidationError("slug", p.Slug, "a product with this slug already exists")
		}
	}
	return nil
}
