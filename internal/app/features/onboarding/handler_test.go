package onboarding_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	uierrors "github.com/dalemusser/hrportal/internal/app/features/errors"
	"github.com/dalemusser/hrportal/internal/app/features/onboarding"
	"github.com/dalemusser/hrportal/internal/app/system/auth"
	"github.com/dalemusser/hrportal/internal/app/system/backend"
	"github.com/dalemusser/hrportal/internal/domain/models"
	"github.com/dalemusser/hrportal/internal/testutil"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*onboarding.Handler, *testutil.FakeBackend, *auth.SessionManager) {
	t.Helper()
	logger := zap.NewNop()
	sm := testutil.NewSessionManager(t)
	api := testutil.NewFakeBackend()
	errLog := uierrors.NewErrorLogger(sm, nil, logger)
	return onboarding.NewHandler(api, sm, errLog, nil, logger), api, sm
}

func validForm() url.Values {
	return url.Values{
		"firstName":         {"Ada"},
		"lastName":          {"Lovelace"},
		"email":             {"ada@example.com"},
		"cellPhone":         {"(555) 123-4567"},
		"address":           {"1 Main St"},
		"ssn":               {"123456789"},
		"dob":               {"1990-12-10"},
		"workAuthorization": {onboarding.AuthVisa},
		"visaTitle":         {"F1(CPT/OPT)"},
		"visaStart":         {"2024-01-01"},
		"visaEnd":           {"2026-01-01"},
		"ecFirstName":       {"Charles"},
		"ecLastName":        {"Babbage"},
		"ecPhone":           {"5559876543"},
		"ecRelationship":    {"Friend"},
	}
}

// post submits form as user, carrying a real session cookie so the
// handler can rewrite it.
func post(t *testing.T, h *onboarding.Handler, sm *auth.SessionManager, user testutil.TestUser, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := testutil.NewFormRequest("/onboarding/form", form.Encode(), user)
	for _, c := range testutil.SignIn(t, sm, user) {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	func() {
		defer func() { _ = recover() }()
		h.HandleFormPost(rec, req)
	}()
	return rec
}

func serve(handler http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	func() {
		defer func() { _ = recover() }()
		handler(rec, req)
	}()
	return rec
}

func newUser() testutil.TestUser {
	u := testutil.EmployeeUser("")
	u.ID = "u1"
	u.HouseID = "h1"
	return u
}

func TestHandleFormPost_CreatesApplication(t *testing.T) {
	h, api, sm := newTestHandler(t)

	rec := post(t, h, sm, newUser(), validForm())

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); loc != "/onboarding/submitted" {
		t.Errorf("Location: got %q, want %q", loc, "/onboarding/submitted")
	}
	if len(api.Apps) != 1 {
		t.Fatalf("applications: got %d, want 1", len(api.Apps))
	}
	app := api.Apps[0]
	if app.Type != models.ApplicationOnboarding || app.Status != models.StatusPending {
		t.Errorf("application: got type=%q status=%q", app.Type, app.Status)
	}

	u := testutil.RestoreUser(t, sm, rec)
	if u == nil {
		t.Fatal("expected session to survive the submission")
	}
	if u.Application.ID != app.ID || u.Application.Status != models.StatusPending {
		t.Errorf("session snapshot: got %+v", u.Application)
	}
	if u.EmployeeID != app.EmployeeID {
		t.Errorf("employee id: got %q, want %q", u.EmployeeID, app.EmployeeID)
	}
	if u.HouseID != "h1" {
		t.Errorf("house id should be kept, got %q", u.HouseID)
	}
}

func TestHandleFormPost_NormalizesInput(t *testing.T) {
	h, api, sm := newTestHandler(t)
	form := validForm()
	form.Set("email", "  ADA@Example.com ")

	rec := post(t, h, sm, newUser(), form)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusSeeOther)
	}
	var emp models.Employee
	for _, e := range api.Emps {
		emp = e
	}
	if emp.Email != "ada@example.com" {
		t.Errorf("email: got %q, want %q", emp.Email, "ada@example.com")
	}
}

func TestHandleFormPost_Validation(t *testing.T) {
	tests := []struct {
		name  string
		field string
		value string
	}{
		{"missing first name", "firstName", ""},
		{"bad email", "email", "nope"},
		{"short phone", "cellPhone", "555"},
		{"missing address", "address", ""},
		{"bad ssn", "ssn", "12345"},
		{"future dob", "dob", time.Now().AddDate(1, 0, 0).Format("2006-01-02")},
		{"no work authorization", "workAuthorization", ""},
		{"visa without title", "visaTitle", ""},
		{"visa dates reversed", "visaEnd", "2023-01-01"},
		{"missing emergency contact", "ecPhone", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, api, sm := newTestHandler(t)
			form := validForm()
			form.Set(tt.field, tt.value)

			rec := post(t, h, sm, newUser(), form)

			if rec.Code != http.StatusUnprocessableEntity {
				t.Errorf("status: got %d, want %d", rec.Code, http.StatusUnprocessableEntity)
			}
			if api.Called("CreateApplication") {
				t.Error("backend should not be called for invalid input")
			}
		})
	}
}

func TestHandleFormPost_CitizenNeedsNoVisa(t *testing.T) {
	h, _, sm := newTestHandler(t)
	form := validForm()
	form.Set("workAuthorization", onboarding.AuthCitizen)
	form.Del("visaTitle")
	form.Del("visaStart")
	form.Del("visaEnd")

	rec := post(t, h, sm, newUser(), form)

	if rec.Code != http.StatusSeeOther {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusSeeOther)
	}
}

func TestHandleFormPost_BackendValidationRerenders(t *testing.T) {
	h, api, sm := newTestHandler(t)
	api.Fail["CreateApplication"] = &backend.APIError{Status: 400, Message: "SSN already on file"}

	rec := post(t, h, sm, newUser(), validForm())

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusUnprocessableEntity)
	}
}

func TestHandleFormPost_BackendErrorRedirectsBack(t *testing.T) {
	h, api, sm := newTestHandler(t)
	api.Fail["CreateApplication"] = &backend.APIError{Status: 503}

	rec := post(t, h, sm, newUser(), validForm())

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); loc != "/onboarding/form" {
		t.Errorf("Location: got %q, want %q", loc, "/onboarding/form")
	}
}

func TestHandleFormPost_UnauthorizedForcesLogout(t *testing.T) {
	h, api, sm := newTestHandler(t)
	api.Fail["CreateApplication"] = backend.ErrUnauthorized

	rec := post(t, h, sm, newUser(), validForm())

	if loc := rec.Header().Get("Location"); loc != "/login?expired=1" {
		t.Errorf("Location: got %q, want %q", loc, "/login?expired=1")
	}
	if u := testutil.RestoreUser(t, sm, rec); u != nil {
		t.Errorf("session should be cleared, got %+v", u)
	}
}

func TestServeForm_RedirectsByStatus(t *testing.T) {
	tests := []struct {
		status models.ApplicationStatus
		want   string
	}{
		{models.StatusPending, "/onboarding/submitted"},
		{models.StatusApproved, "/employee/personal-info"},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			h, api, _ := newTestHandler(t)
			u := newUser()
			u.App = auth.AppSnapshot{ID: "a1", Status: tt.status}

			rec := serve(h.ServeForm, testutil.NewAuthenticatedRequest(http.MethodGet, "/onboarding/form", u))

			if rec.Code != http.StatusSeeOther {
				t.Fatalf("status: got %d, want %d", rec.Code, http.StatusSeeOther)
			}
			if loc := rec.Header().Get("Location"); loc != tt.want {
				t.Errorf("Location: got %q, want %q", loc, tt.want)
			}
			if api.Called("EmployeeByUserID") {
				t.Error("no backend call expected before redirect")
			}
		})
	}
}

func TestServeForm_NewEmployeeLoadsForm(t *testing.T) {
	h, api, _ := newTestHandler(t)

	serve(h.ServeForm, testutil.NewAuthenticatedRequest(http.MethodGet, "/onboarding/form", newUser()))

	if !api.Called("EmployeeByUserID") {
		t.Error("expected employee lookup for prefill")
	}
}

func TestServeRejected_UsesSessionComment(t *testing.T) {
	h, api, _ := newTestHandler(t)
	u := newUser()
	u.EmployeeID = "e1"
	u.App = auth.AppSnapshot{ID: "a1", Status: models.StatusRejected, Comment: "Missing I-20"}

	serve(h.ServeRejected, testutil.NewAuthenticatedRequest(http.MethodGet, "/onboarding/rejected", u))

	if api.Called("ApplicationsByEmployeeID") {
		t.Error("comment is in the session; no refetch expected")
	}
}

func TestServeRejected_RefetchesWithoutComment(t *testing.T) {
	h, api, _ := newTestHandler(t)
	api.AddApplication(models.Application{
		ID: "a1", EmployeeID: "e1", Type: models.ApplicationOnboarding,
		Status: models.StatusRejected, Comment: "Missing I-20", CreatedAt: time.Now(),
	})
	u := newUser()
	u.EmployeeID = "e1"

	serve(h.ServeRejected, testutil.NewAuthenticatedRequest(http.MethodGet, "/onboarding/rejected", u))

	if !api.Called("ApplicationsByEmployeeID") {
		t.Error("expected applications to be fetched when the session has no comment")
	}
}

func TestRoutes_HROnOnboardingAllowed(t *testing.T) {
	h, _, sm := newTestHandler(t)
	router := onboarding.Routes(h, sm)

	req := testutil.NewAuthenticatedRequest(http.MethodGet, "/submitted", testutil.HRUser())
	rec := serve(router.ServeHTTP, req)

	if rec.Code == http.StatusSeeOther && strings.HasPrefix(rec.Header().Get("Location"), "/login") {
		t.Errorf("HR should reach onboarding pages, got redirect to %q", rec.Header().Get("Location"))
	}
}
