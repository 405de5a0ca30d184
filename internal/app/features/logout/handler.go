// internal/app/features/logout/handler.go
package logout

import (
	"context"
	"net/http"

	"github.com/dalemusser/hrportal/internal/app/system/auditlog"
	"github.com/dalemusser/hrportal/internal/app/system/auth"
	"go.uber.org/zap"
)

// API invalidates the token on the backend.
type API interface {
	Logout(ctx context.Context) error
}

type Handler struct {
	API        API
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	AuditLog   *auditlog.Logger
}

func NewHandler(api API, sessionMgr *auth.SessionManager, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		API:        api,
		Log:        logger,
		SessionMgr: sessionMgr,
		AuditLog:   audit,
	}
}

// ServeLogout handles GET and POST /logout. The backend logout is
// best-effort; the local session is cleared whatever it answers.
func (h *Handler) ServeLogout(w http.ResponseWriter, r *http.Request) {
	userID := ""
	if u, ok := auth.CurrentUser(r); ok {
		userID = u.ID
		if err := h.API.Logout(r.Context()); err != nil {
			h.Log.Warn("backend logout failed, clearing session anyway",
				zap.String("user_id", userID), zap.Error(err))
		}
	}

	if err := h.SessionMgr.Logout(w, r); err != nil {
		h.Log.Error("logout: save session", zap.Error(err))
	}
	if userID != "" {
		h.AuditLog.Logout(r.Context(), r, userID)
	}

	// HTMX handling: use HX-Redirect to force a client-side navigation.
	if r.Header.Get("HX-Request") != "" {
		w.Header().Set("HX-Redirect", auth.LoginPath)
		w.WriteHeader(http.StatusOK)
		return
	}

	http.Redirect(w, r, auth.LoginPath, http.StatusSeeOther)
}
