// internal/app/features/leaderboard/routes.go
package leaderboard

import (
	"github.com/gamifystation/pointsboard/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns a subrouter that serves the leaderboard endpoint.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)
	r.Get("/", h.Serve) // mounted under /leaderboard
	return r
}
