// Package list implements the list command, which prints the catalog
// contents.
package list

import (
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rpampin/mercadito/cmd/application"
	"github.com/rpampin/mercadito/internal/cmd/format"
	"github.com/rpampin/mercadito/pkg/catalog"
)

// NewCommand creates the list command with app dependencies.
func NewCommand(app application.Application) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all products in the catalog",
		Long: `List displays every product in the catalog document, available
products first.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, app)
		},
	}

	cmd.Flags().Bool("sold", false, "Include sold products (included by default; --sold=false hides them)")

	return cmd
}

func run(cmd *cobra.Command, app application.Application) error {
	client, err := app.Client()
	if err != nil {
		return fmt.Errorf("creating client: %w", err)
	}

	doc, err := client.Catalog().Load(cmd.Context())
	if err != nil {
		return fmt.Errorf("loading catalog: %w", err)
	}

	includeSold := true
	if cmd.Flags().Changed("sold") {
		includeSold, _ = cmd.Flags().GetBool("sold")
	}

	products := make([]catalog.Product, 0, len(doc.Products))
	for _, p := range doc.Products {
		if !includeSold && p.Status == catalog.StatusSold {
			continue
		}
		products = append(products, p)
	}

	sort.SliceStable(products, func(i, j int) bool {
		a, b := products[i], products[j]
		if a.Status != b.Status {
			return a.Status == catalog.StatusAvailable
		}
		return strings.ToLower(a.Title) < strings.ToLower(b.Title)
	})

	if done, err := format.Render(cmd.OutOrStdout(), app.OutputFormat(), products); done || err != nil {
		return err
	}

	if len(products) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No products in catalog")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SLUG\tTITLE\tPRICE\tSTATUS\tIMAGES")
	for _, p := range products {
		currency := p.Currency
		if currency == "" {
			currency = doc.Meta.Currency
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n",
			p.Slug,
			p.Title,
			format.Price(doc.Meta.Locale, currency, p.Price),
			p.Status,
			len(p.Images),
		)
	}
	return w.Flush()
}
