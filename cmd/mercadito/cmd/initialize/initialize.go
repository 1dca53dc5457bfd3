// Package initialize implements the init command, which creates the
// catalog document in the content repository.
package initialize

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rpampin/mercadito/cmd/application"
	"github.com/rpampin/mercadito/pkg/catalog"
	"github.com/rpampin/mercadito/pkg/errors"
)

// NewCommand creates the init command with app dependencies.
func NewCommand(app application.Application) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create an empty catalog document in the content repository",
		Long: `Init commits an empty catalog document to the configured backend.

The write asserts the document does not exist yet, so running init
against a repository that already has a catalog fails instead of
overwriting it.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, app)
		},
	}

	cmd.Flags().String("contact-type", "", "Contact channel type (whatsapp, instagram, email)")
	cmd.Flags().String("contact-value", "", "Contact channel address or handle")
	cmd.Flags().String("contact-label", "", "Optional label shown for the contact link")

	return cmd
}

func run(cmd *cobra.Command, app application.Application) error {
	client, err := app.Client()
	if err != nil {
		return fmt.Errorf("creating client: %w", err)
	}

	repo := client.Catalog()
	if _, err := repo.Load(cmd.Context()); err != nil {
		return fmt.Errorf("loading catalog: %w", err)
	}
	if repo.Version() != "" {
		return fmt.Errorf("catalog document already exists at %s", repo.DocumentPath())
	}

	contactType, _ := cmd.Flags().GetString("contact-type")
	contactValue, _ := cmd.Flags().GetString("contact-value")
	contactLabel, _ := cmd.Flags().GetString("contact-label")

	_, err = repo.Mutate(cmd.Context(), func(doc *catalog.Document) error {
		if contactType != "" && contactValue != "" {
			doc.Meta.Contact = &catalog.Contact{
				Type:  contactType,
				Value: contactValue,
				Label: contactLabel,
			}
		}
		return nil
	}, "chore(admin): initialize catalog")
	if err != nil {
		if errors.IsConflict(err) {
			return fmt.Errorf("catalog document already exists at %s", repo.DocumentPath())
		}
		return fmt.Errorf("initializing catalog: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created %s (version %s)\n", repo.DocumentPath(), repo.Version())
	return nil
}
