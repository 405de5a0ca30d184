// internal/app/features/employee/personal.go
package employee

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dalemusser/hrportal/internal/app/system/auth"
	"github.com/dalemusser/hrportal/internal/app/system/backend"
	"github.com/dalemusser/hrportal/internal/app/system/inputval"
	"github.com/dalemusser/hrportal/internal/app/system/landing"
	"github.com/dalemusser/hrportal/internal/app/system/limits"
	"github.com/dalemusser/hrportal/internal/app/system/normalize"
	"github.com/dalemusser/hrportal/internal/app/system/viewdata"
	"github.com/dalemusser/hrportal/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

const personalInfoPath = landing.PersonalInfo

type personalData struct {
	viewdata.BaseVM
	Error    string
	Employee *models.Employee
	Editing  bool

	// Display values
	DOB       string
	VisaStart string
	VisaEnd   string
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /employee/personal-info                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServePersonalInfo(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)

	emp, err := h.employee(r.Context(), u)
	if err != nil {
		h.ErrLog.HandleAPIError(w, r, "personal info: load employee", err, "")
		return
	}

	data := personalData{Employee: emp, Editing: r.URL.Query().Get("edit") == "1"}
	h.renderPersonal(w, r, http.StatusOK, data)
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /employee/personal-info                                                |
*─────────────────────────────────────────────────────────────────────────────*/

// HandlePersonalInfoPost updates the contact fields an employee may change
// on their own. Identity and work authorization go through HR.
func (h *Handler) HandlePersonalInfoPost(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxFormSize)
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "personal info: parse", err, "Invalid form submission.", personalInfoPath)
		return
	}

	emp, err := h.employee(ctx, u)
	if err != nil {
		h.ErrLog.HandleAPIError(w, r, "personal info: load employee", err, personalInfoPath)
		return
	}
	if emp == nil {
		h.SessionMgr.AddNotice(w, r, auth.NoticeError, "Complete onboarding before editing your profile.")
		http.Redirect(w, r, landing.OnboardingForm, http.StatusSeeOther)
		return
	}

	upd := *emp
	upd.PreferredName = normalize.Name(r.PostFormValue("preferredName"))
	upd.Email = normalize.Email(r.PostFormValue("email"))
	upd.CellPhone = normalize.Phone(r.PostFormValue("cellPhone"))
	upd.WorkPhone = normalize.Phone(r.PostFormValue("workPhone"))
	upd.Address = strings.TrimSpace(r.PostFormValue("address"))

	if msg := validateContact(upd); msg != "" {
		h.renderPersonal(w, r, http.StatusUnprocessableEntity, personalData{Employee: &upd, Editing: true, Error: msg})
		return
	}

	if _, err := h.API.UpdateEmployee(ctx, upd); err != nil {
		var apiErr *backend.APIError
		if errors.As(err, &apiErr) && apiErr.Status < http.StatusInternalServerError {
			h.renderPersonal(w, r, http.StatusUnprocessableEntity, personalData{Employee: &upd, Editing: true, Error: backend.UserMessage(err)})
			return
		}
		h.ErrLog.HandleAPIError(w, r, "personal info: update employee", err, personalInfoPath)
		return
	}

	h.Log.Info("employee updated contact info",
		zap.String("user_id", u.ID),
		zap.String("employee_id", emp.ID))
	h.SessionMgr.AddNotice(w, r, auth.NoticeSuccess, "Your information was saved.")
	http.Redirect(w, r, personalInfoPath, http.StatusSeeOther)
}

func validateContact(e models.Employee) string {
	switch {
	case !inputval.IsValidEmail(e.Email):
		return "A valid email address is required."
	case !inputval.IsValidPhone(e.CellPhone):
		return "A valid cell phone number is required."
	case e.WorkPhone != "" && !inputval.IsValidPhone(e.WorkPhone):
		return "Work phone number is not valid."
	case e.Address == "":
		return "Current address is required."
	}
	return ""
}

func (h *Handler) renderPersonal(w http.ResponseWriter, r *http.Request, status int, data personalData) {
	if e := data.Employee; e != nil {
		data.DOB = formatDate(e.DOB)
		data.VisaStart = formatDate(e.VisaStart)
		data.VisaEnd = formatDate(e.VisaEnd)
	}
	data.BaseVM = viewdata.NewBaseVM(w, r, h.SessionMgr, "Personal information", auth.EmployeeHome)
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	templates.Render(w, r, "employee_personal", data)
}
