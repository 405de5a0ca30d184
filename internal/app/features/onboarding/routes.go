// internal/app/features/onboarding/routes.go
package onboarding

import (
	"github.com/dalemusser/hrportal/internal/app/system/auth"
	"github.com/dalemusser/hrportal/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts under /onboarding.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireRole(models.RoleEmployee, models.RoleHR))
		pr.Get("/form", h.ServeForm)
		pr.Post("/form", h.HandleFormPost)
		pr.Get("/submitted", h.ServeSubmitted)
		pr.Get("/rejected", h.ServeRejected)
	})
	return r
}
