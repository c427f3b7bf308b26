// internal/app/features/profile/routes.go
package profile

import (
	"github.com/gamifystation/pointsboard/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns a subrouter that serves the profile endpoints.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)
	r.Get("/", h.ServeProfile)
	r.Put("/image", h.HandleSetImage)
	return r
}
