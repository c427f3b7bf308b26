// internal/app/features/tasks/routes.go
package tasks

import (
	"github.com/gamifystation/pointsboard/internal/app/system/auth"
	"github.com/gamifystation/pointsboard/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes returns a subrouter that serves the task endpoints. Listing
// and volunteering are open to any signed-in user; creation and the
// approval lifecycle are mentor/council only.
func Routes(h *Handler) chi.Router {
	manage := auth.RequireRole(models.RoleMentor, models.RoleCouncil)

	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)
	r.Get("/", h.ServeList)
	r.With(manage).Post("/", h.HandleCreate)
	r.Post("/{id}/volunteer", h.HandleVolunteer)
	r.With(manage).Post("/{id}/approve", h.HandleApprove)
	r.With(manage).Post("/{id}/reject", h.HandleReject)
	r.With(manage).Delete("/{id}", h.HandleDelete)
	return r
}
