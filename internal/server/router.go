package server

import (
	"net/http"
	"strings"

	"github.com/rpampin/mercadito/internal/server/handlers"
	"github.com/rpampin/mercadito/internal/server/middleware"
	"github.com/rpampin/mercadito/internal/server/response"
)

// setupRouter creates the HTTP handler with routes and middleware.
func (s *Server) setupRouter() http.Handler {
	mux := http.NewServeMux()

	h := handlers.New(s.repo, s.assets, s.logger, s.version)

	s.registerRoutes(mux, h)

	return s.applyMiddleware(mux)
}

// registerRoutes registers all HTTP routes.
func (s *Server) registerRoutes(mux *http.ServeMux, h *handlers.Handlers) {
	prefix := s.config.PathPrefix
	admin := s.config.AdminPrefix()

	// Favicon handler (return 204 No Content to avoid 404 logs)
	mux.HandleFunc("/favicon.ico", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	// Public health endpoints (no auth required)
	mux.HandleFunc("/health", h.HandleHealth)
	mux.HandleFunc(prefix+"/health", h.HandleHealth)
	mux.HandleFunc(prefix+"/ready", h.HandleReady)

	// Public storefront endpoints
	mux.HandleFunc(prefix+"/products", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			h.HandleListProducts(w, r)
			return
		}
		response.MethodNotAllowed(w, r.Method)
	})

	mux.HandleFunc(prefix+"/products/", func(w http.ResponseWriter, r *http.Request) {
		slug := extractPathParam(r.URL.Path, prefix+"/products/")
		if slug != "" && r.Method == http.MethodGet {
			h.HandleGetProduct(w, r, slug)
			return
		}
		response.NotFound(w, "Not found", r.URL.Path)
	})

	// Admin endpoints (bearer token required)
	mux.HandleFunc(admin+"/products", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			h.HandleCreateProduct(w, r)
			return
		}
		response.MethodNotAllowed(w, r.Method)
	})

	mux.HandleFunc(admin+"/products/", func(w http.ResponseWriter, r *http.Request) {
		parts := splitPath(strings.TrimPrefix(r.URL.Path, admin+"/products/"))
		if len(parts) == 0 {
			response.BadRequest(w, "Product ID required", "")
			return
		}

		id := parts[0]

		if len(parts) == 1 {
			switch r.Method {
			case http.MethodPut:
				h.HandleUpdateProduct(w, r, id)
			case http.MethodDelete:
				h.HandleDeleteProduct(w, r, id)
			default:
				response.MethodNotAllowed(w, r.Method)
			}
			return
		}

		if len(parts) == 2 && parts[1] == "toggle" {
			if r.Method == http.MethodPost {
				h.HandleToggleStatus(w, r, id)
				return
			}
			response.MethodNotAllowed(w, r.Method)
			return
		}

		response.NotFound(w, "Not found", r.URL.Path)
	})

	mux.HandleFunc(admin+"/reload", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			h.HandleReload(w, r)
			return
		}
		response.MethodNotAllowed(w, r.Method)
	})
}

// applyMiddleware wraps handler with middleware chain.
func (s *Server) applyMiddleware(handler http.Handler) http.Handler {
	cfg := s.config

	chain := []func(http.Handler) http.Handler{
		middleware.Recovery(s.logger),
		middleware.Logger(s.logger),
	}
	if cfg.CORSEnabled {
		corsConfig := middleware.DefaultCORSConfig()
		if len(cfg.CORSOrigins) > 0 {
			corsConfig.AllowedOrigins = cfg.CORSOrigins
		}
		chain = append(chain, middleware.CORS(corsConfig))
	}
	chain = append(chain, middleware.Auth(middleware.AuthConfig{
		Token:           cfg.AdminToken,
		ProtectedPrefix: cfg.AdminPrefix(),
	}, s.logger))

	return middleware.Chain(chain...)(handler)
}

// extractPathParam extracts the first path segment after prefix.
func extractPathParam(path, prefix string) string {
	trimmed := strings.TrimPrefix(path, prefix)
	parts := strings.Split(trimmed, "/")
	if len(parts) > 0 {
		return parts[0]
	}
	return ""
}

// splitPath splits a URL path into parts, removing empty strings.
func splitPath(path string) []string {
	parts := []string{}
	for _, part := range strings.Split(path, "/") {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return parts
}
