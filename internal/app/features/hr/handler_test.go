package hr_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	uierrors "github.com/dalemusser/hrportal/internal/app/features/errors"
	"github.com/dalemusser/hrportal/internal/app/features/hr"
	"github.com/dalemusser/hrportal/internal/app/system/auth"
	"github.com/dalemusser/hrportal/internal/app/system/backend"
	"github.com/dalemusser/hrportal/internal/domain/models"
	"github.com/dalemusser/hrportal/internal/testutil"
	"go.uber.org/zap"
)

var pdfBody = []byte("%PDF-1.4\n%test\n")

func newTestHandler(t *testing.T) (*hr.Handler, *testutil.FakeBackend, *auth.SessionManager) {
	t.Helper()
	logger := zap.NewNop()
	sm := testutil.NewSessionManager(t)
	api := testutil.NewFakeBackend()
	errLog := uierrors.NewErrorLogger(sm, nil, logger)
	return hr.NewHandler(api, sm, errLog, nil, logger), api, sm
}

func serve(handler http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	func() {
		defer func() { _ = recover() }()
		handler(rec, req)
	}()
	return rec
}

func postForm(target, id string, form url.Values) *http.Request {
	req := testutil.NewFormRequest(target, form.Encode(), testutil.HRUser())
	return testutil.WithChiURLParam(req, "id", id)
}

func countCalls(api *testutil.FakeBackend, method string) int {
	n := 0
	for _, c := range api.Calls {
		if c == method {
			n++
		}
	}
	return n
}

/*─────────────────────────────────────────────────────────────────────────────*
| Onboarding review                                                           |
*─────────────────────────────────────────────────────────────────────────────*/

func seedPendingOnboarding(api *testutil.FakeBackend) {
	api.AddEmployee(models.Employee{ID: "e1", FirstName: "Ada", LastName: "Lovelace"})
	api.AddApplication(models.Application{
		ID: "a1", EmployeeID: "e1", Type: models.ApplicationOnboarding,
		Status: models.StatusPending, CreatedAt: time.Now(),
	})
}

func TestOnboardingApprove(t *testing.T) {
	h, api, _ := newTestHandler(t)
	seedPendingOnboarding(api)

	rec := serve(h.HandleOnboardingApprove, postForm("/hr/onboarding/a1/approve", "a1", url.Values{"status": {"Pending"}}))

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); loc != "/hr/onboarding?status=Pending" {
		t.Errorf("Location: got %q, want %q", loc, "/hr/onboarding?status=Pending")
	}
	app, _ := api.Application("a1")
	if app.Status != models.StatusApproved {
		t.Errorf("application status: got %q, want %q", app.Status, models.StatusApproved)
	}
}

func TestOnboardingReject_StoresComment(t *testing.T) {
	h, api, _ := newTestHandler(t)
	seedPendingOnboarding(api)

	serve(h.HandleOnboardingReject, postForm("/hr/onboarding/a1/reject", "a1", url.Values{"comment": {"Missing <i>I-20</i>"}}))

	app, _ := api.Application("a1")
	if app.Status != models.StatusRejected {
		t.Errorf("application status: got %q, want %q", app.Status, models.StatusRejected)
	}
	if app.Comment != "Missing I-20" {
		t.Errorf("comment: got %q, want %q", app.Comment, "Missing I-20")
	}
}

func TestOnboardingReject_RequiresComment(t *testing.T) {
	h, api, _ := newTestHandler(t)
	seedPendingOnboarding(api)

	rec := serve(h.HandleOnboardingReject, postForm("/hr/onboarding/a1/reject", "a1", url.Values{"comment": {"   "}}))

	if rec.Code != http.StatusSeeOther {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if api.Called("RejectApplication") {
		t.Error("rejection without a comment must not reach the backend")
	}
}

func TestOnboardingApprove_AlreadyReviewed(t *testing.T) {
	h, api, _ := newTestHandler(t)
	api.AddApplication(models.Application{
		ID: "a1", EmployeeID: "e1", Type: models.ApplicationOnboarding, Status: models.StatusApproved,
	})

	serve(h.HandleOnboardingApprove, postForm("/hr/onboarding/a1/approve", "a1", url.Values{}))

	if api.Called("ApproveApplication") {
		t.Error("an application that is no longer pending must not be reviewed again")
	}
}

func TestOnboardingApprove_BackendErrorRedirectsBack(t *testing.T) {
	h, api, _ := newTestHandler(t)
	seedPendingOnboarding(api)
	api.Fail["ApproveApplication"] = &backend.APIError{Status: 502}

	rec := serve(h.HandleOnboardingApprove, postForm("/hr/onboarding/a1/approve", "a1", url.Values{}))

	if loc := rec.Header().Get("Location"); loc != "/hr/onboarding" {
		t.Errorf("Location: got %q, want %q", loc, "/hr/onboarding")
	}
}

func TestServeOnboarding_StatusFilter(t *testing.T) {
	tests := []struct {
		target string
	}{
		{"/hr/onboarding"},
		{"/hr/onboarding?status=rejected"},
		{"/hr/onboarding?status=all"},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			h, api, _ := newTestHandler(t)
			seedPendingOnboarding(api)

			serve(h.ServeOnboarding, testutil.NewAuthenticatedRequest(http.MethodGet, tt.target, testutil.HRUser()))

			if !api.Called("Applications") {
				t.Error("expected applications to be listed")
			}
		})
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Visa review                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

func seedVisa(api *testutil.FakeBackend, step string, docType string) {
	api.AddEmployee(models.Employee{ID: "e1", FirstName: "Ada", LastName: "Lovelace", VisaTitle: "F1(CPT/OPT)"})
	api.AddApplication(models.Application{
		ID: "opt1", EmployeeID: "e1", Type: models.ApplicationOPT,
		Status: models.StatusPending, VisaStep: step, CreatedAt: time.Now(),
	})
	if docType != "" {
		api.AddDocument(models.Document{
			ID: "d1", EmployeeID: "e1", Type: docType, Title: docType,
			Status: models.DocumentPending, Filename: "doc.pdf", CreatedAt: time.Now(),
		}, pdfBody)
	}
}

func TestVisaApprove_AdvancesStep(t *testing.T) {
	tests := []struct {
		step string
		want string
	}{
		{"I-983", "I-20"},
		{"I-20", "OPT-Receipt"},
		{"STEM-EAD", "Terminate"},
	}
	for _, tt := range tests {
		t.Run(tt.step, func(t *testing.T) {
			h, api, _ := newTestHandler(t)
			seedVisa(api, tt.step, tt.step)

			rec := serve(h.HandleVisaApprove, postForm("/hr/visa/opt1/approve", "opt1", url.Values{"document": {"d1"}}))

			if rec.Code != http.StatusSeeOther {
				t.Fatalf("status: got %d, want %d", rec.Code, http.StatusSeeOther)
			}
			if loc := rec.Header().Get("Location"); loc != "/hr/visa" {
				t.Errorf("Location: got %q, want %q", loc, "/hr/visa")
			}
			app, _ := api.Application("opt1")
			if app.VisaStep != tt.want {
				t.Errorf("visa step: got %q, want %q", app.VisaStep, tt.want)
			}
			doc, _ := api.Document("d1")
			if doc.Status != models.DocumentApproved {
				t.Errorf("document status: got %q, want %q", doc.Status, models.DocumentApproved)
			}
			if !api.Called("ApproveApplication") {
				t.Error("expected the approval notification call")
			}
		})
	}
}

func TestVisaReject_KeepsStep(t *testing.T) {
	h, api, _ := newTestHandler(t)
	seedVisa(api, "OPT-Receipt", "OPT-Receipt")

	serve(h.HandleVisaReject, postForm("/hr/visa/opt1/reject", "opt1", url.Values{"document": {"d1"}, "comment": {"Blurry scan"}}))

	app, _ := api.Application("opt1")
	if app.VisaStep != "OPT-Receipt" {
		t.Errorf("visa step: got %q, want OPT-Receipt", app.VisaStep)
	}
	if app.Comment != "Blurry scan" {
		t.Errorf("comment: got %q, want %q", app.Comment, "Blurry scan")
	}
	doc, _ := api.Document("d1")
	if doc.Status != models.DocumentRejected {
		t.Errorf("document status: got %q, want %q", doc.Status, models.DocumentRejected)
	}
	if api.Called("UpdateApplication") {
		t.Error("rejection must not move the step pointer")
	}
}

func TestVisaReject_RequiresComment(t *testing.T) {
	h, api, _ := newTestHandler(t)
	seedVisa(api, "I-20", "I-20")

	serve(h.HandleVisaReject, postForm("/hr/visa/opt1/reject", "opt1", url.Values{"document": {"d1"}}))

	if api.Called("RejectApplication") || api.Called("UpdateDocument") {
		t.Error("rejection without a comment must not reach the backend")
	}
}

func TestVisaApprove_StaleDocumentRefused(t *testing.T) {
	h, api, _ := newTestHandler(t)
	// The page showed the I-983 row, but the step has since moved to I-20.
	seedVisa(api, "I-20", "I-983")

	rec := serve(h.HandleVisaApprove, postForm("/hr/visa/opt1/approve", "opt1", url.Values{"document": {"d1"}}))

	if rec.Code != http.StatusSeeOther {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if api.Called("UpdateApplication") {
		t.Error("a document for another step must not advance the workflow")
	}
}

func TestVisaApprove_RejectedDocumentRefused(t *testing.T) {
	h, api, _ := newTestHandler(t)
	seedVisa(api, "I-20", "")
	api.AddDocument(models.Document{
		ID: "d1", EmployeeID: "e1", Type: "I-20", Title: "I-20",
		Status: models.DocumentRejected, Filename: "doc.pdf", CreatedAt: time.Now(),
	}, pdfBody)

	serve(h.HandleVisaApprove, postForm("/hr/visa/opt1/approve", "opt1", url.Values{"document": {"d1"}}))

	for _, m := range []string{"UpdateApplication", "UpdateDocument", "ApproveApplication"} {
		if api.Called(m) {
			t.Errorf("%s called for a rejected document", m)
		}
	}
	if app, _ := api.Application("opt1"); app.VisaStep != "I-20" {
		t.Errorf("visa step: got %q, want I-20", app.VisaStep)
	}
}

func TestVisaApprove_CompleteWorkflowRefused(t *testing.T) {
	h, api, _ := newTestHandler(t)
	seedVisa(api, "Terminate", "STEM-EAD")

	serve(h.HandleVisaApprove, postForm("/hr/visa/opt1/approve", "opt1", url.Values{"document": {"d1"}}))

	for _, m := range []string{"UpdateApplication", "UpdateDocument", "ApproveApplication"} {
		if api.Called(m) {
			t.Errorf("%s called on a finished workflow", m)
		}
	}
}

func TestVisaApprove_UnauthorizedForcesLogout(t *testing.T) {
	h, api, _ := newTestHandler(t)
	seedVisa(api, "I-983", "I-983")
	api.Fail["UpdateApplication"] = backend.ErrUnauthorized

	rec := serve(h.HandleVisaApprove, postForm("/hr/visa/opt1/approve", "opt1", url.Values{"document": {"d1"}}))

	if loc := rec.Header().Get("Location"); loc != "/login?expired=1" {
		t.Errorf("Location: got %q, want %q", loc, "/login?expired=1")
	}
}

func TestServeVisa_FetchesDocumentsOncePerEmployee(t *testing.T) {
	h, api, _ := newTestHandler(t)
	seedVisa(api, "I-983", "I-983")
	// A second, older OPT application for the same employee.
	api.AddApplication(models.Application{
		ID: "opt0", EmployeeID: "e1", Type: models.ApplicationOPT,
		VisaStep: "Terminate", CreatedAt: time.Now().Add(-time.Hour),
	})

	serve(h.ServeVisa, testutil.NewAuthenticatedRequest(http.MethodGet, "/hr/visa", testutil.HRUser()))

	if n := countCalls(api, "DocumentsByEmployeeID"); n != 1 {
		t.Errorf("DocumentsByEmployeeID calls: got %d, want 1", n)
	}
}

func TestServeDocument(t *testing.T) {
	h, api, _ := newTestHandler(t)
	seedVisa(api, "I-983", "I-983")

	req := testutil.WithChiURLParam(testutil.NewAuthenticatedRequest(http.MethodGet, "/hr/documents/d1", testutil.HRUser()), "id", "d1")
	rec := serve(h.ServeDocument, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusOK)
	}
	if !bytes.Equal(rec.Body.Bytes(), pdfBody) {
		t.Error("body does not match the stored file")
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Employees and houses                                                        |
*─────────────────────────────────────────────────────────────────────────────*/

func TestServeEmployee_NotFound(t *testing.T) {
	h, _, _ := newTestHandler(t)

	req := testutil.WithChiURLParam(testutil.NewAuthenticatedRequest(http.MethodGet, "/hr/employees/nope", testutil.HRUser()), "id", "nope")
	rec := serve(h.ServeEmployee, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestServeEmployee_LoadsRecord(t *testing.T) {
	h, api, _ := newTestHandler(t)
	api.AddEmployee(models.Employee{ID: "e1", FirstName: "Ada", LastName: "Lovelace", HouseID: "h1"})
	api.HouseList = append(api.HouseList, models.House{ID: "h1", Address: "10 Elm St"})

	req := testutil.WithChiURLParam(testutil.NewAuthenticatedRequest(http.MethodGet, "/hr/employees/e1", testutil.HRUser()), "id", "e1")
	serve(h.ServeEmployee, req)

	for _, m := range []string{"ApplicationsByEmployeeID", "DocumentsByEmployeeID", "House"} {
		if !api.Called(m) {
			t.Errorf("expected %s to be called", m)
		}
	}
}

func TestServeEmployees_BackendError(t *testing.T) {
	h, api, _ := newTestHandler(t)
	api.Fail["Employees"] = backend.ErrNetwork

	rec := serve(h.ServeEmployees, testutil.NewAuthenticatedRequest(http.MethodGet, "/hr/employees?q=ada", testutil.HRUser()))

	if rec.Code != http.StatusBadGateway {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusBadGateway)
	}
}

func TestServeHouse_NotFound(t *testing.T) {
	h, _, _ := newTestHandler(t)

	req := testutil.WithChiURLParam(testutil.NewAuthenticatedRequest(http.MethodGet, "/hr/houses/x", testutil.HRUser()), "id", "x")
	rec := serve(h.ServeHouse, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusNotFound)
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Routes                                                                      |
*─────────────────────────────────────────────────────────────────────────────*/

func TestRoutes_EmployeeRedirectedHome(t *testing.T) {
	h, api, sm := newTestHandler(t)
	router := hr.Routes(h, sm)

	rec := serve(router.ServeHTTP, testutil.NewAuthenticatedRequest(http.MethodGet, "/home", testutil.EmployeeUser("e1")))

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); loc != "/employee/home" {
		t.Errorf("Location: got %q, want %q", loc, "/employee/home")
	}
	if len(api.Calls) != 0 {
		t.Errorf("no backend calls expected, got %v", api.Calls)
	}
}
