// internal/app/features/hr/employees.go
package hr

import (
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/hrportal/internal/app/features/errors"
	"github.com/dalemusser/hrportal/internal/app/system/auth"
	"github.com/dalemusser/hrportal/internal/app/system/backend"
	"github.com/dalemusser/hrportal/internal/app/system/htmlsanitize"
	"github.com/dalemusser/hrportal/internal/app/system/navigation"
	"github.com/dalemusser/hrportal/internal/app/system/normalize"
	"github.com/dalemusser/hrportal/internal/app/system/paging"
	"github.com/dalemusser/hrportal/internal/app/system/viewdata"
	"github.com/dalemusser/hrportal/internal/app/system/visaflow"
	"github.com/dalemusser/hrportal/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
)

type employeeRow struct {
	ID                string
	Name              string
	Email             string
	Phone             string
	WorkAuthorization string
	VisaTitle         string
}

type employeesData struct {
	viewdata.BaseVM
	Query string
	Rows  []employeeRow
	Page  paging.Range
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /hr/employees                                                           |
*─────────────────────────────────────────────────────────────────────────────*/

// ServeEmployees lists employees, optionally filtered by a name search.
func (h *Handler) ServeEmployees(w http.ResponseWriter, r *http.Request) {
	q := normalize.QueryParam(query.Get(r, "q"))

	emps, err := h.API.Employees(r.Context(), q)
	if err != nil {
		h.ErrLog.HandleAPIError(w, r, "hr employees: search", err, "")
		return
	}
	sortEmployees(emps)

	page, rg := paging.Window(emps, paging.ParseStart(r))
	rows := make([]employeeRow, 0, len(page))
	for _, e := range page {
		rows = append(rows, employeeRow{
			ID:                e.ID,
			Name:              fullName(e),
			Email:             e.Email,
			Phone:             e.CellPhone,
			WorkAuthorization: e.WorkAuthorization,
			VisaTitle:         e.VisaTitle,
		})
	}

	data := employeesData{Query: q, Rows: rows, Page: rg}
	data.BaseVM = viewdata.NewBaseVM(w, r, h.SessionMgr, "Employees", auth.HRHome)
	templates.Render(w, r, "hr_employees", data)
}

// fullName is "Last, First" with the preferred name in parentheses.
func fullName(e models.Employee) string {
	n := strings.TrimSpace(e.LastName + ", " + e.FirstName)
	n = strings.Trim(n, ", ")
	if e.PreferredName != "" && e.PreferredName != e.FirstName {
		n += " (" + e.PreferredName + ")"
	}
	return n
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /hr/employees/{id}                                                      |
*─────────────────────────────────────────────────────────────────────────────*/

type applicationView struct {
	models.Application
	Step    models.VisaStep
	Comment string
}

type employeeData struct {
	viewdata.BaseVM
	Employee     *models.Employee
	Name         string
	DOB          string
	VisaStart    string
	VisaEnd      string
	Applications []applicationView
	Documents    []models.Document
	House        *models.House
}

func (h *Handler) ServeEmployee(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	emp, err := h.API.EmployeeByID(ctx, id)
	if backend.IsNotFound(err) {
		uierrors.RenderError(w, r, h.SessionMgr, http.StatusNotFound, "Not found", "That employee does not exist.")
		return
	}
	if err != nil {
		h.ErrLog.HandleAPIError(w, r, "hr employee: load", err, "")
		return
	}

	apps, err := h.API.ApplicationsByEmployeeID(ctx, emp.ID)
	if err != nil {
		h.ErrLog.HandleAPIError(w, r, "hr employee: load applications", err, "")
		return
	}
	newestFirst(apps)
	docs, err := h.API.DocumentsByEmployeeID(ctx, emp.ID)
	if err != nil {
		h.ErrLog.HandleAPIError(w, r, "hr employee: load documents", err, "")
		return
	}

	data := employeeData{
		Employee:  emp,
		Name:      fullName(*emp),
		DOB:       formatDate(emp.DOB),
		VisaStart: formatDate(emp.VisaStart),
		VisaEnd:   formatDate(emp.VisaEnd),
		Documents: docs,
	}
	for _, a := range apps {
		v := applicationView{Application: a, Comment: htmlsanitize.PlainText(a.Comment)}
		if a.Type == models.ApplicationOPT {
			v.Step = visaflow.CurrentStep(a)
		}
		data.Applications = append(data.Applications, v)
	}

	if emp.HouseID != "" {
		house, err := h.API.House(ctx, emp.HouseID)
		switch {
		case err == nil:
			data.House = house
		case backend.IsNotFound(err):
		default:
			h.ErrLog.HandleAPIError(w, r, "hr employee: load house", err, "")
			return
		}
	}

	data.BaseVM = viewdata.NewBaseVM(w, r, h.SessionMgr, data.Name, navigation.SafeBackURL(r, navigation.HREmployeesBackURL))
	templates.Render(w, r, "hr_employee", data)
}
