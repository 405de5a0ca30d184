// internal/app/features/logout/routes.go
package logout

import "github.com/go-chi/chi/v5"

// Routes is open to everyone: signing out without a session still clears
// whatever cookie the browser holds.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeLogout)
	r.Post("/", h.ServeLogout)
	return r
}
