// internal/app/features/hr/routes.go
package hr

import (
	"github.com/dalemusser/hrportal/internal/app/system/auth"
	"github.com/dalemusser/hrportal/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts under /hr.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireRole(models.RoleHR))

		pr.Get("/home", h.ServeHome)

		pr.Get("/employees", h.ServeEmployees)
		pr.Get("/employees/{id}", h.ServeEmployee)

		pr.Get("/onboarding", h.ServeOnboarding)
		pr.Post("/onboarding/{id}/approve", h.HandleOnboardingApprove)
		pr.Post("/onboarding/{id}/reject", h.HandleOnboardingReject)

		pr.Get("/visa", h.ServeVisa)
		pr.Post("/visa/{id}/approve", h.HandleVisaApprove)
		pr.Post("/visa/{id}/reject", h.HandleVisaReject)
		pr.Get("/documents/{id}", h.ServeDocument)

		pr.Get("/houses", h.ServeHouses)
		pr.Get("/houses/{id}", h.ServeHouse)
	})
	return r
}
