// internal/app/features/users/routes.go
package users

import (
	"github.com/go-chi/chi/v5"
)

// Routes returns the router for the user API.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServeList)
	r.Get("/{discordID}", h.ServeDetail)
	r.Get("/{discordID}/activity", h.ServeActivity)
	r.Post("/{discordID}/points", h.ServeAwardPoints)
	r.Post("/{discordID}/gang", h.ServeSwitchGang)

	return r
}
