// internal/app/features/employee/routes.go
package employee

import (
	"github.com/dalemusser/hrportal/internal/app/system/auth"
	"github.com/dalemusser/hrportal/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts under /employee. HR staff may use the self-service pages
// for their own employee record.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireRole(models.RoleEmployee, models.RoleHR))
		pr.Get("/home", h.ServeHome)
		pr.Get("/personal-info", h.ServePersonalInfo)
		pr.Post("/personal-info", h.HandlePersonalInfoPost)
		pr.Get("/visa", h.ServeVisa)
		pr.Post("/visa", h.HandleVisaUpload)
		pr.Get("/documents/{id}", h.ServeDocument)
		pr.Get("/housing", h.ServeHousing)
		pr.Post("/housing/reports", h.HandleReportPost)
	})
	return r
}
