// internal/app/features/onboarding/status.go
package onboarding

import (
	"net/http"

	"github.com/dalemusser/hrportal/internal/app/system/auth"
	"github.com/dalemusser/hrportal/internal/app/system/htmlsanitize"
	"github.com/dalemusser/hrportal/internal/app/system/landing"
	"github.com/dalemusser/hrportal/internal/app/system/viewdata"
	"github.com/dalemusser/hrportal/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

type statusData struct {
	viewdata.BaseVM
	ApplicationID string
	Status        models.ApplicationStatus
	HRComment     string
	FormURL       string
}

// ServeSubmitted handles GET /onboarding/submitted.
func (h *Handler) ServeSubmitted(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)

	templates.Render(w, r, "onboarding_submitted", statusData{
		BaseVM:        viewdata.NewBaseVM(w, r, h.SessionMgr, "Application submitted", auth.HomeFor(u.Role)),
		ApplicationID: u.Application.ID,
		Status:        models.StatusPending,
	})
}

// ServeRejected handles GET /onboarding/rejected. The HR comment comes from
// the session snapshot taken at sign-in; it is only fetched again when the
// snapshot has none (e.g. a session from before the rejection).
func (h *Handler) ServeRejected(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)

	snap := u.Application
	if snap.Comment == "" && u.EmployeeID != "" {
		app, err := h.latest(r.Context(), u.EmployeeID)
		switch {
		case isUnauthorized(err):
			h.ErrLog.HandleAPIError(w, r, "rejected page: load applications", err, "")
			return
		case err != nil:
			// The page still makes sense without the comment.
			h.Log.Warn("rejected page: load applications", zap.String("user_id", u.ID), zap.Error(err))
		case app != nil:
			snap = auth.AppSnapshot{ID: app.ID, Status: app.Status, Comment: app.Comment}
		}
	}

	templates.Render(w, r, "onboarding_rejected", statusData{
		BaseVM:        viewdata.NewBaseVM(w, r, h.SessionMgr, "Application rejected", landing.OnboardingForm),
		ApplicationID: snap.ID,
		Status:        models.StatusRejected,
		HRComment:     htmlsanitize.PlainText(snap.Comment),
		FormURL:       landing.OnboardingForm,
	})
}
