package catalog

import (
	"encoding/json"
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/rpampin/mercadito/pkg/errors"
)

// Encode serializes a document as pretty-printed UTF-8 JSON. The backing
// store is a version-controlled repository, so human-reviewable diffs are a
// design goal, not cosmetics.
func Encode(doc Document) ([]byte, error) {
	if doc.Products == nil {
		doc.Products = []Product{}
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, errors.WrapParse("json", "", err)
	}
	return append(data, '\n'), nil
}

// Decode parses document bytes, tolerating missing optional fields and
// malformed records. A hand-edited or partially-migrated document must
// remain loadable: invalid prices coerce to 0, unknown statuses to
// available, non-array images to empty, and records that are not objects
// are dropped. Only bytes that are not JSON at all are an error.
func Decode(data []byte) (Document, error) {
	if len(data) == 0 {
		return EmptyDocument(), nil
	}

	var wire struct {
		Products []json.RawMessage `json:"products"`
		Meta     wireMeta          `json:"meta"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return Document{}, errors.WrapParse("json", "", err)
	}

	doc := Document{
		Products: make([]Product, 0, len(wire.Products)),
		Meta:     wire.Meta.sanitize(),
	}
	for _, raw := range wire.Products {
		var wp wireProduct
		if err := json.Unmarshal(raw, &wp); err != nil {
			continue
		}
		if p, ok := wp.sanitize(); ok {
			doc.Products = append(doc.Products, p)
		}
	}
	return doc, nil
}

// Sanitize normalizes a document the same way Decode does, so that
// Decode(Encode(d)) and Sanitize(d) agree.
func Sanitize(doc Document) Document {
	out := Document{
		Products: make([]Product, 0, len(doc.Products)),
		Meta:     sanitizeMeta(doc.Meta),
	}
	for _, p := range doc.Products {
		out.Products = append(out.Products, sanitizeProduct(p))
	}
	return out
}

// wireMeta reads metadata with loosely typed fields.
type wireMeta struct {
	Currency string   `json:"currency"`
	Locale   string   `json:"locale"`
	Contact  *Contact `json:"contact"`
}

func (m wireMeta) sanitize() Meta {
	return sanitizeMeta(Meta{
		Currency: Currency(m.Currency),
		Locale:   m.Locale,
		Contact:  m.Contact,
	})
}

func sanitizeMeta(m Meta) Meta {
	if !m.Currency.Valid() {
		m.Currency = DefaultCurrency
	}
	if m.Locale == "" {
		m.Locale = DefaultLocale
	}
	if m.Contact != nil && m.Contact.Value == "" {
		m.Contact = nil
	}
	return m
}

// wireProduct reads a record with loosely typed fields so one malformed
// value never rejects the whole document.
type wireProduct struct {
	ID          any `json:"id"`
	Slug        any `json:"slug"`
	Title       any `json:"title"`
	Price       any `json:"price"`
	Currency    any `json:"currency"`
	Status      any `json:"status"`
	Images      any `json:"images"`
	Description any `json:"description"`
	CreatedAt   any `json:"createdAt"`
	UpdatedAt   any `json:"updatedAt"`
}

func (w wireProduct) sanitize() (Product, bool) {
	// null array entries decode to a zero wireProduct
	if w.ID == nil && w.Slug == nil && w.Title == nil {
		return Product{}, false
	}
	return sanitizeProduct(Product{
		ID:          asString(w.ID),
		Slug:        asString(w.Slug),
		Title:       asString(w.Title),
		Price:       asPrice(w.Price),
		Currency:    Currency(asString(w.Currency)),
		Status:      Status(asString(w.Status)),
		Images:      asStrings(w.Images),
		Description: asString(w.Description),
		CreatedAt:   asTime(w.CreatedAt),
		UpdatedAt:   asTime(w.UpdatedAt),
	}), true
}

func sanitizeProduct(p Product) Product {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.Slug = Slugify(p.Slug)
	if p.Slug == "" {
		p.Slug = Slugify(p.Title)
	}
	if p.Title == "" {
		p.Title = "Producto sin titulo"
	}
	if p.Price < 0 {
		p.Price = 0
	}
	if !p.Currency.Valid() {
		p.Currency = ""
	}
	if p.Status != StatusSold {
		p.Status = StatusAvailable
	}
	if p.Images == nil {
		p.Images = []string{}
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = p.CreatedAt
	}
	return p
}

func asString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	}
	return ""
}

func asPrice(v any) int {
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) || n < 0 {
			return 0
		}
		return int(math.Round(n))
	case string:
		parsed, err := strconv.ParseFloat(n, 64)
		if err != nil || parsed < 0 {
			return 0
		}
		return int(math.Round(parsed))
	}
	return 0
}

func asStrings(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s := asString(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func asTime(v any) time.Time {
	s, ok := v.(string)
	if !ok {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}
