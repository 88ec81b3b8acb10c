// internal/app/features/home/handler.go
package home

import (
	"net/http"

	"github.com/mongang/mongang/internal/app/features/shared/respond"
)

// Handler serves the root service banner.
type Handler struct {
	Version string
}

// NewHandler creates a new home Handler.
func NewHandler(version string) *Handler {
	return &Handler{Version: version}
}

// Serve handles GET /: a small JSON banner listing the API surface.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, map[string]any{
		"service": "mongang",
		"status":  "running",
		"version": h.Version,
		"endpoints": map[string]string{
			"health":      "/health",
			"gangs":       "/api/gangs",
			"users":       "/api/users",
			"leaderboard": "/api/leaderboard",
			"activity":    "/api/activity",
		},
	})
}
