// internal/app/features/hr/home.go
package hr

import (
	"net/http"

	"github.com/dalemusser/hrportal/internal/app/system/auth"
	"github.com/dalemusser/hrportal/internal/app/system/viewdata"
	"github.com/dalemusser/hrportal/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
)

type homeData struct {
	viewdata.BaseVM
	Employees         int
	PendingOnboarding int
	VisaInProgress    int
	VisaAwaitingHR    int
}

// ServeHome handles GET /hr/home: counts of work waiting for HR.
func (h *Handler) ServeHome(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	emps, err := h.API.Employees(ctx, "")
	if err != nil {
		h.ErrLog.HandleAPIError(w, r, "hr home: load employees", err, "")
		return
	}
	pending, err := h.API.Applications(ctx, models.ApplicationOnboarding, models.StatusPending)
	if err != nil {
		h.ErrLog.HandleAPIError(w, r, "hr home: load onboarding", err, "")
		return
	}
	rows, err := h.visaRows(ctx)
	if err != nil {
		h.ErrLog.HandleAPIError(w, r, "hr home: load visa workflows", err, "")
		return
	}

	data := homeData{Employees: len(emps), PendingOnboarding: len(pending)}
	for _, row := range rows {
		if row.Done() {
			continue
		}
		data.VisaInProgress++
		if row.Actionable && row.Document.Status == models.DocumentPending {
			data.VisaAwaitingHR++
		}
	}

	data.BaseVM = viewdata.NewBaseVM(w, r, h.SessionMgr, "HR home", auth.HRHome)
	templates.Render(w, r, "hr_home", data)
}

