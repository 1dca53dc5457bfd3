package handlers

import (
	"net/http"

	"github.com/rpampin/mercadito/internal/server/response"
)

// HandleHealth reports liveness.
func (h *Handlers) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	response.OK(w, map[string]string{
		"status":  "ok",
		"version": h.version,
	})
}

// HandleReady reports readiness: the catalog must have completed its
// initial load.
func (h *Handlers) HandleReady(w http.ResponseWriter, _ *http.Request) {
	if !h.repo.Loaded() {
		response.JSON(w, http.StatusServiceUnavailable,
			response.Fail("NOT_READY", "Catalog not loaded yet", ""))
		return
	}
	response.OK(w, map[string]string{"status": "ready"})
}
