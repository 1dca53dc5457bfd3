// Package serve implements the serve command, which runs the mercadito
// HTTP API server.
package serve

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rpampin/mercadito/cmd/application"
	"github.com/rpampin/mercadito/internal/server"
)

// NewCommand creates the serve command with app dependencies.
func NewCommand(app application.Application) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the storefront and admin REST API",
		Long: `Start the mercadito API server.

The server exposes the public storefront endpoints (product list and
detail) and the bearer-token protected admin endpoints (create, update,
toggle status, delete). Every admin write is committed to the content
repository with an optimistic-concurrency precondition.`,
		Example: `  # Start on default port 8080
  mercadito serve

  # Custom bind address
  mercadito serve --port 3000 --host 0.0.0.0

  # Restrict CORS to the storefront origin
  mercadito serve --cors-origins "https://mercadito.example.com"`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, app)
		},
	}

	cmd.Flags().IntP("port", "p", 0, "Server port (overrides config)")
	cmd.Flags().String("host", "", "Bind address (overrides config)")
	cmd.Flags().StringSlice("cors-origins", nil, "Allowed CORS origins (comma-separated)")
	cmd.Flags().String("prefix", "", "API path prefix (overrides config)")

	return cmd
}

func run(cmd *cobra.Command, app application.Application) error {
	logger := app.Logger()

	cfg := app.ServerConfig()
	if port, _ := cmd.Flags().GetInt("port"); port != 0 {
		cfg.Port = port
	}
	if host, _ := cmd.Flags().GetString("host"); host != "" {
		cfg.Host = host
	}
	if origins, _ := cmd.Flags().GetStringSlice("cors-origins"); len(origins) > 0 {
		cfg.CORSOrigins = origins
	}
	if prefix, _ := cmd.Flags().GetString("prefix"); prefix != "" {
		cfg.PathPrefix = prefix
	}

	client, err := app.Client()
	if err != nil {
		return fmt.Errorf("creating client: %w", err)
	}

	// Load the catalog before accepting traffic. A missing document is
	// fine; the first save creates it.
	loadCtx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()
	doc, err := client.Catalog().Load(loadCtx)
	if err != nil {
		return fmt.Errorf("loading catalog: %w", err)
	}
	logger.Info().
		Int("products", len(doc.Products)).
		Str("version", string(client.Catalog().Version())).
		Msg("Catalog loaded")

	srv := server.New(client.Catalog(), client.Assets(), logger, cfg, app.Version())

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil {
			serverErr <- err
		}
	}()

	fmt.Printf("Serving on http://%s\n", srv.Addr())
	fmt.Println("Press Ctrl+C to stop")

	select {
	case err := <-serverErr:
		return err
	case <-cmd.Context().Done():
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		logger.Info().Msg("Server stopped gracefully")
		return nil
	}
}
