// internal/app/features/leaderboard/routes.go
package leaderboard

import (
	"github.com/go-chi/chi/v5"
)

// Routes returns the router for the leaderboard API.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/users", h.ServeUsers)
	r.Get("/gangs", h.ServeGangs)

	return r
}
