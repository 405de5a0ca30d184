// internal/app/features/errors/errors.go
package errors

import (
	"net/http"

	"github.com/dalemusser/hrportal/internal/app/system/auth"
	"github.com/dalemusser/hrportal/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
)

// pageData is the basic view model for error pages.
type pageData struct {
	viewdata.BaseVM
	Message string
	Home    string
}

// Handler is the errors feature handler.
// No backend needed; it just renders templates.
type Handler struct {
	SessionMgr *auth.SessionManager
}

// NewHandler constructs an errors Handler.
func NewHandler(sm *auth.SessionManager) *Handler {
	return &Handler{SessionMgr: sm}
}

// Forbidden renders a friendly "access denied" page.
// GET /forbidden
func (h *Handler) Forbidden(w http.ResponseWriter, r *http.Request) {
	RenderError(w, r, h.SessionMgr, http.StatusForbidden, "Access denied",
		"You don't have permission to view this page.")
}

// RenderError shows the generic error page with a status code. The back
// link points at the user's home route.
func RenderError(w http.ResponseWriter, r *http.Request, sm *auth.SessionManager, status int, title, msg string) {
	home := auth.LoginPath
	if role, ok := auth.EffectiveRole(r); ok {
		home = auth.HomeFor(role)
	}

	data := pageData{
		BaseVM:  viewdata.NewBaseVM(w, r, sm, title, home),
		Message: msg,
		Home:    home,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	templates.Render(w, r, "error_page", data)
}
