// Package format provides output helpers shared by CLI commands: price
// formatting with locale-aware digit grouping and structured output
// rendering in json or yaml.
package format

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/goccy/go-yaml"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/rpampin/mercadito/pkg/catalog"
)

// Price renders an integer amount with the locale's digit grouping and the
// currency's customary prefix, e.g. "$ 1.500" for 1500 ARS under es-AR.
func Price(locale string, currency catalog.Currency, amount int) string {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.Make(catalog.DefaultLocale)
	}
	grouped := message.NewPrinter(tag).Sprintf("%d", amount)

	switch currency {
	case catalog.CurrencyUSD:
		return "US$ " + grouped
	case catalog.CurrencyARS:
		return "$ " + grouped
	default:
		return grouped
	}
}

// JSON writes v as indented JSON.
func JSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// YAML writes v as YAML.
func YAML(w io.Writer, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// Render writes v in the requested output format. An empty format means
// the caller's table renderer should be used instead; Render reports that
// by returning false.
func Render(w io.Writer, format string, v any) (bool, error) {
	switch format {
	case "json":
		return true, JSON(w, v)
	case "yaml":
		return true, YAML(w, v)
	case "", "table":
		return false, nil
	default:
		return false, fmt.Errorf("unsupported output format: %s", format)
	}
}
