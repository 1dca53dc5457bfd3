package catalog

import (
	"time"
)

// Status is a product's availability state.
type Status string

// Product statuses.
const (
	StatusAvailable Status = "available"
	StatusSold      Status = "sold"
)

// Valid reports whether the status is one of the known values.
func (s Status) Valid() bool {
	return s == StatusAvailable || s == StatusSold
}

// Toggle returns the opposite status.
func (s Status) Toggle() Status {
	if s == StatusSold {
		return StatusAvailable
	}
	return StatusSold
}

// Currency is an ISO 4217 currency code from the small set the store
// supports. Prices are whole units with no fractional currency.
type Currency string

// Supported currencies.
const (
	CurrencyARS Currency = "ARS"
	CurrencyUSD Currency = "USD"
)

// Valid reports whether the currency is one of the supported codes.
func (c Currency) Valid() bool {
	return c == CurrencyARS || c == CurrencyUSD
}

// Product is one record within the catalog document.
//
// ID is opaque and immutable once created. Slug is URL-safe, unique within
// the document, and keeps its original value across edits. Images are
// ordered; the first entry is the cover image.
type Product struct {
	ID          string    `json:"id"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Price       int       `json:"price"`
	Currency    Currency  `json:"currency,omitempty"`
	Status      Status    `json:"status"`
	Images      []string  `json:"images"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt,omitzero"`
	UpdatedAt   time.Time `json:"updatedAt,omitzero"`
}

// Copy returns a deep copy of the product.
func (p Product) Copy() Product {
	cp := p
	cp.Images = make([]string, len(p.Images))
	copy(cp.Images, p.Images)
	return cp
}

// Touch refreshes the record's update timestamp.
func (p *Product) Touch(now time.Time) {
	p.UpdatedAt = now.UTC()
}
