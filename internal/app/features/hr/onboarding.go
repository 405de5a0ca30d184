// internal/app/features/hr/onboarding.go
package hr

import (
	"errors"
	"net/http"

	"github.com/dalemusser/hrportal/internal/app/system/auth"
	"github.com/dalemusser/hrportal/internal/app/system/backend"
	"github.com/dalemusser/hrportal/internal/app/system/htmlsanitize"
	"github.com/dalemusser/hrportal/internal/app/system/limits"
	"github.com/dalemusser/hrportal/internal/app/system/navigation"
	"github.com/dalemusser/hrportal/internal/app/system/normalize"
	"github.com/dalemusser/hrportal/internal/app/system/viewdata"
	"github.com/dalemusser/hrportal/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// statusFilters are the choices of the onboarding list filter, in display order.
var statusFilters = []models.ApplicationStatus{
	models.StatusPending,
	models.StatusRejected,
	models.StatusApproved,
}

type onboardingRow struct {
	ID         string
	EmployeeID string
	Name       string
	Email      string
	Status     models.ApplicationStatus
	Comment    string
	Submitted  string
	Reviewable bool
}

type onboardingData struct {
	viewdata.BaseVM
	Status   string // "" means all
	Statuses []models.ApplicationStatus
	Rows     []onboardingRow
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /hr/onboarding                                                          |
*─────────────────────────────────────────────────────────────────────────────*/

// ServeOnboarding lists onboarding applications. Without a status filter
// the pending ones are shown; "all" lists every status.
func (h *Handler) ServeOnboarding(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	status := models.StatusPending
	if raw := query.Get(r, "status"); raw != "" {
		status = parseStatusFilter(raw)
	}

	apps, err := h.API.Applications(ctx, models.ApplicationOnboarding, status)
	if err != nil {
		h.ErrLog.HandleAPIError(w, r, "hr onboarding: load applications", err, "")
		return
	}
	newestFirst(apps)
	idx, err := h.employeeIndex(ctx)
	if err != nil {
		h.ErrLog.HandleAPIError(w, r, "hr onboarding: load employees", err, "")
		return
	}

	rows := make([]onboardingRow, 0, len(apps))
	for _, a := range apps {
		rows = append(rows, onboardingRow{
			ID:         a.ID,
			EmployeeID: a.EmployeeID,
			Name:       idx.name(a.EmployeeID),
			Email:      idx[a.EmployeeID].Email,
			Status:     a.Status,
			Comment:    htmlsanitize.PlainText(a.Comment),
			Submitted:  formatDate(&a.CreatedAt),
			Reviewable: a.Status == models.StatusPending,
		})
	}

	data := onboardingData{Status: string(status), Statuses: statusFilters, Rows: rows}
	data.BaseVM = viewdata.NewBaseVM(w, r, h.SessionMgr, "Onboarding applications", auth.HRHome)
	templates.Render(w, r, "hr_onboarding", data)
}

// parseStatusFilter maps a query value onto a status; "all" and unknown
// values mean no filter.
func parseStatusFilter(raw string) models.ApplicationStatus {
	s := models.ApplicationStatus(normalize.Status(raw))
	for _, known := range statusFilters {
		if s == known {
			return s
		}
	}
	return ""
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /hr/onboarding/{id}/approve | /reject                                  |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleOnboardingApprove(w http.ResponseWriter, r *http.Request) {
	h.reviewOnboarding(w, r, true)
}

func (h *Handler) HandleOnboardingReject(w http.ResponseWriter, r *http.Request) {
	h.reviewOnboarding(w, r, false)
}

// reviewOnboarding approves or rejects a pending onboarding application.
// A rejection needs a comment; it is what the employee sees.
func (h *Handler) reviewOnboarding(w http.ResponseWriter, r *http.Request, approve bool) {
	u, _ := auth.CurrentUser(r)
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxFormSize)
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "hr onboarding review: parse", err, "Invalid form submission.", navigation.HROnboardingBackURL.Fallback)
		return
	}
	back := navigation.SafeBackURL(r, navigation.HROnboardingBackURL)

	comment := htmlsanitize.PlainText(r.PostFormValue("comment"))
	if !approve && comment == "" {
		h.SessionMgr.AddNotice(w, r, auth.NoticeError, "Add a comment explaining what the employee must fix.")
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}
	if len(comment) > maxCommentLen {
		h.SessionMgr.AddNotice(w, r, auth.NoticeError, "The comment is too long.")
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}

	pending, err := h.API.Applications(ctx, models.ApplicationOnboarding, models.StatusPending)
	if err != nil {
		h.ErrLog.HandleAPIError(w, r, "hr onboarding review: load applications", err, back)
		return
	}
	var app *models.Application
	for i := range pending {
		if pending[i].ID == id {
			app = &pending[i]
			break
		}
	}
	if app == nil {
		h.SessionMgr.AddNotice(w, r, auth.NoticeError, "That application is no longer waiting for review.")
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}

	req := models.ReviewRequest{Comment: comment}
	if approve {
		_, err = h.API.ApproveApplication(ctx, app.ID, req)
	} else {
		_, err = h.API.RejectApplication(ctx, app.ID, req)
	}
	if err != nil {
		var apiErr *backend.APIError
		if errors.As(err, &apiErr) && apiErr.Status < http.StatusInternalServerError {
			h.SessionMgr.AddNotice(w, r, auth.NoticeError, backend.UserMessage(err))
			http.Redirect(w, r, back, http.StatusSeeOther)
			return
		}
		h.ErrLog.HandleAPIError(w, r, "hr onboarding review: submit", err, back)
		return
	}

	h.AuditLog.OnboardingReviewed(ctx, r, u.ID, app.EmployeeID, app.ID, approve, comment)
	h.Log.Info("onboarding application reviewed",
		zap.String("actor_id", u.ID),
		zap.String("application_id", app.ID),
		zap.Bool("approved", approve))

	msg := "Application rejected. The employee has been notified."
	if approve {
		msg = "Application approved. The employee has been notified."
	}
	h.SessionMgr.AddNotice(w, r, auth.NoticeSuccess, msg)
	http.Redirect(w, r, back, http.StatusSeeOther)
}
