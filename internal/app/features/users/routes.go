// internal/app/features/users/routes.go
package users

import (
	"github.com/gamifystation/pointsboard/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns a subrouter that serves per-user detail endpoints.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)
	r.Get("/{id}/transactions", h.ServeTransactions)
	r.Get("/{id}/badges", h.ServeBadges)
	return r
}
