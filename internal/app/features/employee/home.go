// internal/app/features/employee/home.go
package employee

import (
	"net/http"

	"github.com/dalemusser/hrportal/internal/app/system/auth"
	"github.com/dalemusser/hrportal/internal/app/system/htmlsanitize"
	"github.com/dalemusser/hrportal/internal/app/system/landing"
	"github.com/dalemusser/hrportal/internal/app/system/viewdata"
	"github.com/dalemusser/hrportal/internal/app/system/visaflow"
	"github.com/dalemusser/hrportal/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
)

type homeData struct {
	viewdata.BaseVM
	Employee *models.Employee
	Name     string

	Onboarding *models.Application
	HRComment  string
	NextURL    string // where to continue onboarding, empty when approved

	VisaStep models.VisaStep
	VisaDone bool
	HasVisa  bool
}

// ServeHome handles GET /employee/home.
func (h *Handler) ServeHome(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)
	ctx := r.Context()

	emp, err := h.employee(ctx, u)
	if err != nil {
		h.ErrLog.HandleAPIError(w, r, "employee home: load employee", err, "")
		return
	}

	data := homeData{Employee: emp, Name: u.Username}
	if emp != nil {
		if n := emp.DisplayName(); n != "" {
			data.Name = n
		}
		apps, err := h.API.ApplicationsByEmployeeID(ctx, emp.ID)
		if err != nil {
			h.ErrLog.HandleAPIError(w, r, "employee home: load applications", err, "")
			return
		}
		data.Onboarding = latestOfType(apps, models.ApplicationOnboarding)
		if opt := latestOfType(apps, models.ApplicationOPT); opt != nil {
			data.HasVisa = true
			data.VisaStep = visaflow.CurrentStep(*opt)
			data.VisaDone = visaflow.Done(*opt)
		}
	}

	switch {
	case emp == nil && u.IsHR():
		// HR staff without an employee record have nothing to continue.
	case data.Onboarding == nil:
		data.NextURL = landing.OnboardingForm
	case data.Onboarding.Status != models.StatusApproved:
		data.NextURL = landing.TargetFor(data.Onboarding.Status)
		data.HRComment = htmlsanitize.PlainText(data.Onboarding.Comment)
	}

	data.BaseVM = viewdata.NewBaseVM(w, r, h.SessionMgr, "Home", auth.EmployeeHome)
	templates.Render(w, r, "employee_home", data)
}

// latestOfType returns a copy of the newest application of typ. On equal
// creation times the one listed first wins, matching landing.Latest.
func latestOfType(apps []models.Application, typ models.ApplicationType) *models.Application {
	var best *models.Application
	for _, a := range apps {
		if a.Type != typ {
			continue
		}
		if best == nil || a.CreatedAt.After(best.CreatedAt) {
			c := a
			best = &c
		}
	}
	return best
}
