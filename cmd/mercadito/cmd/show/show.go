// Package show implements the show command, which prints a single
// product's details.
package show

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rpampin/mercadito/cmd/application"
	"github.com/rpampin/mercadito/internal/cmd/format"
)

// NewCommand creates the show command with app dependencies.
func NewCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:   "show <slug>",
		Short: "Show one product by slug",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, app, args[0])
		},
	}
}

func run(cmd *cobra.Command, app application.Application, slug string) error {
	client, err := app.Client()
	if err != nil {
		return fmt.Errorf("creating client: %w", err)
	}

	doc, err := client.Catalog().Load(cmd.Context())
	if err != nil {
		return fmt.Errorf("loading catalog: %w", err)
	}

	i := doc.FindBySlug(slug)
	if i < 0 {
		return fmt.Errorf("product %q not found", slug)
	}
	p := doc.Products[i]

	if done, err := format.Render(cmd.OutOrStdout(), app.OutputFormat(), p); done || err != nil {
		return err
	}

	currency := p.Currency
	if currency == "" {
		currency = doc.Meta.Currency
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s\n", p.Title)
	fmt.Fprintf(out, "  id:       %s\n", p.ID)
	fmt.Fprintf(out, "  slug:     %s\n", p.Slug)
	fmt.Fprintf(out, "  price:    %s\n", format.Price(doc.Meta.Locale, currency, p.Price))
	fmt.Fprintf(out, "  status:   %s\n", p.Status)
	if !p.CreatedAt.IsZero() {
		fmt.Fprintf(out, "  created:  %s\n", p.CreatedAt.Format("2006-01-02"))
	}
	if !p.UpdatedAt.IsZero() {
		fmt.Fprintf(out, "  updated:  %s\n", p.UpdatedAt.Format("2006-01-02"))
	}
	for _, img := range p.Images {
		fmt.Fprintf(out, "  image:    %s\n", img)
	}
	if p.Description != "" {
		fmt.Fprintf(out, "\n%s\n", p.Description)
	}
	return nil
}
