package catalog

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks folds accented characters to their base form: decompose,
// drop combining marks, recompose. "Lámpara" becomes "Lampara".
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slugify converts a title or manual slug into its URL-safe form:
// diacritics folded, anything outside [a-z0-9-] dropped, runs of spaces
// and hyphens collapsed to a single hyphen.
func Slugify(value string) string {
	folded, _, err := transform.String(stripMarks, value)
	if err != nil {
		folded = value
	}

	var b strings.Builder
	b.Grow(len(folded))
	pendingHyphen := false
	for _, r := range folded {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(unicode.ToLower(r))
		case r == ' ' || r == '-' || r == '\t':
			pendingHyphen = true
		}
	}
	return b.String()
}

// UniqueSlug returns slug, or slug-2, slug-3, ... until it does not collide
// with any product other than excludeID. An empty input falls back to
// "producto" so a record never ends up with an empty slug.
func UniqueSlug(slug, excludeID string, products []Product) string {
	sanitized := Slugify(slug)
	if sanitized == "" {
		sanitized = "producto"
	}

	taken := make(map[string]bool, len(products))
	for _, p := range products {
		if p.ID != excludeID {
			taken[p.Slug] = true
		}
	}

	if !taken[sanitized] {
		return sanitized
	}
	for suffix := 2; ; suffix++ {
		candidate := fmt.Sprintf("%s-%d", sanitized, suffix)
		if !taken[candidate] {
			return candidate
		}
	}
}
