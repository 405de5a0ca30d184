// internal/app/features/onboarding/form.go
package onboarding

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/hrportal/internal/app/system/auth"
	"github.com/dalemusser/hrportal/internal/app/system/backend"
	"github.com/dalemusser/hrportal/internal/app/system/htmlsanitize"
	"github.com/dalemusser/hrportal/internal/app/system/inputval"
	"github.com/dalemusser/hrportal/internal/app/system/landing"
	"github.com/dalemusser/hrportal/internal/app/system/limits"
	"github.com/dalemusser/hrportal/internal/app/system/normalize"
	"github.com/dalemusser/hrportal/internal/app/system/viewdata"
	"github.com/dalemusser/hrportal/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// Work authorization choices. Anything but citizen or permanent resident
// needs a visa title and validity dates.
const (
	AuthCitizen   = "Citizen"
	AuthGreenCard = "Green Card"
	AuthVisa      = "Work Visa"
)

var visaTitles = []string{"H1-B", "L2", "F1(CPT/OPT)", "H4", "Other"}

type formData struct {
	viewdata.BaseVM
	Error string

	Form      models.OnboardingForm
	Reference models.Contact
	Emergency models.Contact

	// Set when the previous submission was rejected.
	Resubmission bool
	HRComment    string

	AuthOptions []string
	VisaTitles  []string
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /onboarding/form                                                        |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeForm(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)

	switch u.Application.Status {
	case models.StatusPending:
		http.Redirect(w, r, landing.OnboardingSubmitted, http.StatusSeeOther)
		return
	case models.StatusApproved:
		http.Redirect(w, r, landing.PersonalInfo, http.StatusSeeOther)
		return
	}

	emp, err := h.employee(r.Context(), u)
	if err != nil {
		h.ErrLog.HandleAPIError(w, r, "onboarding form: load employee", err, "")
		return
	}

	data := formData{Form: prefill(emp, u)}
	if u.Application.Status == models.StatusRejected {
		data.Resubmission = true
		data.HRComment = htmlsanitize.PlainText(u.Application.Comment)
	}
	h.render(w, r, http.StatusOK, data)
}

func prefill(emp *models.Employee, u *auth.SessionUser) models.OnboardingForm {
	if emp == nil {
		return models.OnboardingForm{Email: u.Email}
	}
	f := models.OnboardingForm{
		FirstName:         emp.FirstName,
		LastName:          emp.LastName,
		MiddleName:        emp.MiddleName,
		PreferredName:     emp.PreferredName,
		Email:             emp.Email,
		CellPhone:         emp.CellPhone,
		WorkPhone:         emp.WorkPhone,
		Address:           emp.Address,
		Gender:            emp.Gender,
		WorkAuthorization: emp.WorkAuthorization,
		VisaTitle:         emp.VisaTitle,
	}
	if emp.DOB != nil {
		f.DOB = emp.DOB.Format(inputval.DateLayout)
	}
	if emp.VisaStart != nil {
		f.VisaStart = emp.VisaStart.Format(inputval.DateLayout)
	}
	if emp.VisaEnd != nil {
		f.VisaEnd = emp.VisaEnd.Format(inputval.DateLayout)
	}
	if f.Email == "" {
		f.Email = u.Email
	}
	return f
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /onboarding/form                                                       |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleFormPost(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)

	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxFormSize)
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "onboarding form: parse", err, "Invalid form submission.", landing.OnboardingForm)
		return
	}

	form, msg := readForm(r, time.Now())
	if msg != "" {
		h.render(w, r, http.StatusUnprocessableEntity, formDataFrom(form, msg))
		return
	}

	app, err := h.API.CreateApplication(r.Context(), form)
	if err != nil {
		var apiErr *backend.APIError
		if errors.As(err, &apiErr) && apiErr.Status < http.StatusInternalServerError {
			h.Log.Info("onboarding submission rejected by backend",
				zap.String("user_id", u.ID), zap.Error(err))
			h.render(w, r, http.StatusUnprocessableEntity, formDataFrom(form, backend.UserMessage(err)))
			return
		}
		h.ErrLog.HandleAPIError(w, r, "onboarding form: create application", err, landing.OnboardingForm)
		return
	}

	snap := auth.AppSnapshot{ID: app.ID, Status: app.Status}
	if err := h.SessionMgr.UpdateApplication(w, r, app.EmployeeID, u.HouseID, snap); err != nil {
		// The next sign-in resolves the same state from the backend.
		h.Log.Warn("onboarding form: update session", zap.Error(err))
	}

	h.Log.Info("onboarding application submitted",
		zap.String("user_id", u.ID),
		zap.String("employee_id", app.EmployeeID),
		zap.String("application_id", app.ID))
	h.AuditLog.OnboardingSubmitted(r.Context(), r, u.ID, app.EmployeeID, app.ID)

	http.Redirect(w, r, landing.OnboardingSubmitted, http.StatusSeeOther)
}

func formDataFrom(form models.OnboardingForm, msg string) formData {
	data := formData{Form: form, Error: msg}
	if form.Reference != nil {
		data.Reference = *form.Reference
	}
	if len(form.EmergencyContacts) > 0 {
		data.Emergency = form.EmergencyContacts[0]
	}
	return data
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, data formData) {
	data.BaseVM = viewdata.NewBaseVM(w, r, h.SessionMgr, "Onboarding application", landing.OnboardingForm)
	data.AuthOptions = []string{AuthCitizen, AuthGreenCard, AuthVisa}
	data.VisaTitles = visaTitles
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	templates.Render(w, r, "onboarding_form", data)
}

// readForm normalizes the posted form and returns the first validation
// problem, if any. now anchors the date-of-birth check.
func readForm(r *http.Request, now time.Time) (models.OnboardingForm, string) {
	v := func(k string) string { return strings.TrimSpace(r.PostFormValue(k)) }

	f := models.OnboardingForm{
		FirstName:         normalize.Name(v("firstName")),
		LastName:          normalize.Name(v("lastName")),
		MiddleName:        normalize.Name(v("middleName")),
		PreferredName:     normalize.Name(v("preferredName")),
		Email:             normalize.Email(v("email")),
		CellPhone:         normalize.Phone(v("cellPhone")),
		WorkPhone:         normalize.Phone(v("workPhone")),
		Address:           v("address"),
		SSN:               normalize.SSN(v("ssn")),
		DOB:               v("dob"),
		Gender:            v("gender"),
		WorkAuthorization: v("workAuthorization"),
		VisaTitle:         v("visaTitle"),
		VisaStart:         v("visaStart"),
		VisaEnd:           v("visaEnd"),
	}

	ref := models.Contact{
		FirstName:    normalize.Name(v("refFirstName")),
		LastName:     normalize.Name(v("refLastName")),
		Phone:        normalize.Phone(v("refPhone")),
		Email:        normalize.Email(v("refEmail")),
		Relationship: v("refRelationship"),
	}
	if ref != (models.Contact{}) {
		f.Reference = &ref
	}
	ec := models.Contact{
		FirstName:    normalize.Name(v("ecFirstName")),
		LastName:     normalize.Name(v("ecLastName")),
		Phone:        normalize.Phone(v("ecPhone")),
		Email:        normalize.Email(v("ecEmail")),
		Relationship: v("ecRelationship"),
	}
	f.EmergencyContacts = []models.Contact{ec}

	switch {
	case f.FirstName == "" || f.LastName == "":
		return f, "First and last name are required."
	case !inputval.IsValidEmail(f.Email):
		return f, "A valid email address is required."
	case !inputval.IsValidPhone(f.CellPhone):
		return f, "A valid cell phone number is required."
	case f.WorkPhone != "" && !inputval.IsValidPhone(f.WorkPhone):
		return f, "Work phone number is not valid."
	case f.Address == "":
		return f, "Current address is required."
	case !inputval.IsValidSSN(f.SSN):
		return f, "SSN must have nine digits."
	}

	dob, ok := inputval.ParseDate(f.DOB)
	if !ok || !dob.Before(now) {
		return f, "A valid date of birth is required."
	}

	switch f.WorkAuthorization {
	case AuthCitizen, AuthGreenCard:
		f.VisaTitle, f.VisaStart, f.VisaEnd = "", "", ""
	case AuthVisa:
		if f.VisaTitle == "" {
			return f, "Select your visa title."
		}
		if !inputval.IsValidRange(f.VisaStart, f.VisaEnd) {
			return f, "Visa start and end dates are required and must be in order."
		}
	default:
		return f, "Select your work authorization."
	}

	if f.Reference != nil {
		if ref.FirstName == "" || ref.LastName == "" || !inputval.IsValidPhone(ref.Phone) {
			return f, "A reference needs a name and a valid phone number."
		}
		if ref.Email != "" && !inputval.IsValidEmail(ref.Email) {
			return f, "Reference email is not valid."
		}
	}
	if ec.FirstName == "" || ec.LastName == "" || !inputval.IsValidPhone(ec.Phone) || ec.Relationship == "" {
		return f, "An emergency contact with name, phone and relationship is required."
	}
	if ec.Email != "" && !inputval.IsValidEmail(ec.Email) {
		return f, "Emergency contact email is not valid."
	}

	return f, ""
}
