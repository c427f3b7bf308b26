// internal/app/features/points/routes.go
package points

import (
	"github.com/gamifystation/pointsboard/internal/app/system/auth"
	"github.com/gamifystation/pointsboard/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes returns a subrouter that serves the points endpoints. Awarding
// is mentor/council only; the reason list is open to any signed-in
// user.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.With(auth.RequireRole(models.RoleMentor, models.RoleCouncil)).Post("/", h.HandleAward)
	r.With(auth.RequireSignedIn).Get("/reasons", h.ServeReasons)
	return r
}
