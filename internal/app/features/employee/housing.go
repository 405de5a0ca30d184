// internal/app/features/employee/housing.go
package employee

import (
	"errors"
	"net/http"
	"sort"
	"strings"

	"github.com/dalemusser/hrportal/internal/app/system/auth"
	"github.com/dalemusser/hrportal/internal/app/system/backend"
	"github.com/dalemusser/hrportal/internal/app/system/htmlsanitize"
	"github.com/dalemusser/hrportal/internal/app/system/limits"
	"github.com/dalemusser/hrportal/internal/app/system/viewdata"
	"github.com/dalemusser/hrportal/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

const housingPath = "/employee/housing"

const (
	maxReportTitle       = 120
	maxReportDescription = 2000
)

type roommate struct {
	Name  string
	Phone string
	Email string
}

type housingData struct {
	viewdata.BaseVM
	Error string

	House     *models.House
	Roommates []roommate
	Reports   []models.FacilityReport

	// Report form values on re-render
	Title       string
	Description string
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /employee/housing                                                       |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeHousing(w http.ResponseWriter, r *http.Request) {
	data, ok := h.loadHousing(w, r, "")
	if !ok {
		return
	}
	h.renderHousing(w, r, http.StatusOK, data)
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /employee/housing/reports                                              |
*─────────────────────────────────────────────────────────────────────────────*/

// HandleReportPost files a facility report against the employee's house.
func (h *Handler) HandleReportPost(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxFormSize)
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "facility report: parse", err, "Invalid form submission.", housingPath)
		return
	}

	title := htmlsanitize.PlainText(r.PostFormValue("title"))
	desc := htmlsanitize.PlainText(r.PostFormValue("description"))

	data, ok := h.loadHousing(w, r, housingPath)
	if !ok {
		return
	}
	if data.House == nil {
		h.SessionMgr.AddNotice(w, r, auth.NoticeError, "You are not assigned to a house.")
		http.Redirect(w, r, housingPath, http.StatusSeeOther)
		return
	}
	data.Title, data.Description = title, desc

	if msg := validateReport(title, desc); msg != "" {
		data.Error = msg
		h.renderHousing(w, r, http.StatusUnprocessableEntity, data)
		return
	}

	emp, err := h.employee(ctx, u)
	if err != nil {
		h.ErrLog.HandleAPIError(w, r, "facility report: load employee", err, housingPath)
		return
	}
	rep := models.FacilityReport{HouseID: data.House.ID, Title: title, Description: desc}
	if emp != nil {
		rep.EmployeeID = emp.ID
	}

	created, err := h.API.CreateFacilityReport(ctx, rep)
	if err != nil {
		var apiErr *backend.APIError
		if errors.As(err, &apiErr) && apiErr.Status < http.StatusInternalServerError {
			data.Error = backend.UserMessage(err)
			h.renderHousing(w, r, http.StatusUnprocessableEntity, data)
			return
		}
		h.ErrLog.HandleAPIError(w, r, "facility report: create", err, housingPath)
		return
	}

	h.Log.Info("facility report filed",
		zap.String("user_id", u.ID),
		zap.String("house_id", data.House.ID),
		zap.String("report_id", created.ID))
	h.SessionMgr.AddNotice(w, r, auth.NoticeSuccess, "Your report was sent to HR.")
	http.Redirect(w, r, housingPath, http.StatusSeeOther)
}

func validateReport(title, desc string) string {
	switch {
	case title == "":
		return "A title is required."
	case len(title) > maxReportTitle:
		return "The title is too long."
	case desc == "":
		return "Describe the problem."
	case len(desc) > maxReportDescription:
		return "The description is too long."
	}
	return ""
}

// loadHousing gathers the house, roommates and reports for the signed-in
// user. A user without a house gets an empty page. On failure the error has
// been handled and ok is false.
func (h *Handler) loadHousing(w http.ResponseWriter, r *http.Request, backURL string) (housingData, bool) {
	u, _ := auth.CurrentUser(r)
	ctx := r.Context()

	var data housingData
	houseID := u.HouseID
	if houseID == "" {
		emp, err := h.employee(ctx, u)
		if err != nil {
			h.ErrLog.HandleAPIError(w, r, "housing: load employee", err, backURL)
			return data, false
		}
		if emp != nil {
			houseID = emp.HouseID
		}
	}
	if houseID == "" {
		return data, true
	}

	house, err := h.API.House(ctx, houseID)
	if backend.IsNotFound(err) {
		return data, true
	}
	if err != nil {
		h.ErrLog.HandleAPIError(w, r, "housing: load house", err, backURL)
		return data, false
	}
	reports, err := h.API.FacilityReports(ctx, houseID)
	if err != nil {
		h.ErrLog.HandleAPIError(w, r, "housing: load reports", err, backURL)
		return data, false
	}
	sort.SliceStable(reports, func(i, j int) bool {
		return reports[i].CreatedAt.After(reports[j].CreatedAt)
	})

	data.House = house
	data.Reports = reports
	data.Roommates = roommates(house.Residents, u.EmployeeID)
	return data, true
}

// roommates lists the residents other than self, sorted by name.
func roommates(residents []models.Employee, self string) []roommate {
	out := make([]roommate, 0, len(residents))
	for _, e := range residents {
		if self != "" && e.ID == self {
			continue
		}
		out = append(out, roommate{Name: e.DisplayName(), Phone: e.CellPhone, Email: e.Email})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out
}

func (h *Handler) renderHousing(w http.ResponseWriter, r *http.Request, status int, data housingData) {
	data.BaseVM = viewdata.NewBaseVM(w, r, h.SessionMgr, "Housing", auth.EmployeeHome)
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	templates.Render(w, r, "employee_housing", data)
}
