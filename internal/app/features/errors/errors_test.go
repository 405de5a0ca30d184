package errors_test

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	uierrors "github.com/dalemusser/hrportal/internal/app/features/errors"
	"github.com/dalemusser/hrportal/internal/app/system/auth"
	"github.com/dalemusser/hrportal/internal/app/system/backend"
	"github.com/dalemusser/hrportal/internal/testutil"
	"go.uber.org/zap"
)

func TestHandleAPIError_UnauthorizedForcesLogout(t *testing.T) {
	sm := testutil.NewSessionManager(t)
	errLog := uierrors.NewErrorLogger(sm, nil, zap.NewNop())

	req := testutil.NewAuthenticatedRequest("GET", "/employee/visa", testutil.EmployeeUser("e-1"))
	req.Header.Set("Accept", "text/html")
	rec := httptest.NewRecorder()

	err := fmt.Errorf("documents: %w", backend.ErrUnauthorized)
	errLog.HandleAPIError(rec, req, "load documents failed", err, "")

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
	}
	want := "/login?return=%2Femployee%2Fvisa&expired=1"
	if loc := rec.Header().Get("Location"); loc != want {
		t.Errorf("Location: got %q, want %q", loc, want)
	}

	cleared := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == testutil.TestSessionName && c.MaxAge == -1 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("expected session cookie to be deleted")
	}
}

func TestHandleAPIError_UnauthorizedHTMX(t *testing.T) {
	sm := testutil.NewSessionManager(t)
	errLog := uierrors.NewErrorLogger(sm, nil, zap.NewNop())

	req := testutil.NewAuthenticatedRequest("POST", "/hr/visa/a-1/approve", testutil.HRUser())
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()

	errLog.HandleAPIError(rec, req, "approve failed", backend.ErrUnauthorized, "/hr/visa")

	if hx := rec.Header().Get("HX-Redirect"); hx != "/login?expired=1" {
		t.Errorf("HX-Redirect: got %q, want %q", hx, "/login?expired=1")
	}
}

func TestHandleAPIError_NoticeAndRedirectBack(t *testing.T) {
	sm := testutil.NewSessionManager(t)
	errLog := uierrors.NewErrorLogger(sm, nil, zap.NewNop())

	req := testutil.NewAuthenticatedRequest("POST", "/hr/visa/a-1/approve", testutil.HRUser())
	req.Header.Set("Accept", "text/html")
	rec := httptest.NewRecorder()

	err := &backend.APIError{Status: 400, Message: "Document already reviewed"}
	errLog.HandleAPIError(rec, req, "approve failed", err, "/hr/visa")

	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/hr/visa" {
		t.Fatalf("expected redirect to /hr/visa, got %d %q", rec.Code, rec.Header().Get("Location"))
	}

	next := testutil.CarryCookies(rec, httptest.NewRequest("GET", "/hr/visa", nil))
	notices := sm.Notices(httptest.NewRecorder(), next)
	if len(notices) != 1 || notices[0].Kind != auth.NoticeError || notices[0].Message != "Document already reviewed" {
		t.Errorf("notices: got %+v", notices)
	}
}

func TestHandleAPIError_API(t *testing.T) {
	errLog := uierrors.NewErrorLogger(nil, nil, zap.NewNop())

	req := httptest.NewRequest("GET", "/api/user", nil)
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()

	errLog.HandleAPIError(rec, req, "profile failed", fmt.Errorf("x: %w", backend.ErrNetwork), "")

	if rec.Code != http.StatusBadGateway {
		t.Errorf("expected status %d, got %d", http.StatusBadGateway, rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "could not be reached") {
		t.Errorf("body: got %q", rec.Body.String())
	}
}

func TestLogBadRequest_RedirectsBack(t *testing.T) {
	errLog := uierrors.NewErrorLogger(testutil.NewSessionManager(t), nil, zap.NewNop())

	req := httptest.NewRequest("POST", "/employee/visa", nil)
	rec := httptest.NewRecorder()
	errLog.LogBadRequest(rec, req, "parse upload", errors.New("no file"), "Please choose a file.", "/employee/visa")

	if rec.Header().Get("Location") != "/employee/visa" {
		t.Errorf("Location: got %q", rec.Header().Get("Location"))
	}
}

func TestForbidden_Renders(t *testing.T) {
	h := uierrors.NewHandler(nil)
	req := testutil.NewAuthenticatedRequest("GET", "/forbidden", testutil.EmployeeUser("e-1"))
	rec := httptest.NewRecorder()

	// Handler will try to render a template which may panic without initialized templates
	func() {
		defer func() {
			if r := recover(); r != nil {
				// Template rendering may panic in tests
			}
		}()
		h.Forbidden(rec, req)
	}()

	if rec.Code != http.StatusForbidden {
		t.Errorf("expected status %d, got %d", http.StatusForbidden, rec.Code)
	}
}
