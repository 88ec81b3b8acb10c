// internal/app/features/gangs/routes.go
package gangs

import (
	"github.com/go-chi/chi/v5"
)

// Routes returns the router for the gang API.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServeList)
	r.Get("/{gangID}", h.ServeDetail)
	r.Get("/{gangID}/members", h.ServeMembers)
	r.Get("/{gangID}/stats", h.ServeStats)
	r.Get("/{gangID}/activity", h.ServeActivity)
	r.Post("/{gangID}/recompute", h.ServeRecompute)

	return r
}
