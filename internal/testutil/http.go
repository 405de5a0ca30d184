package testutil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/hrportal/internal/app/system/auth"
	"github.com/dalemusser/hrportal/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// TestSessionKey signs cookies in tests.
const TestSessionKey = "test-session-key-must-be-32-chars-long"

// TestSessionName is the cookie name used by NewSessionManager.
const TestSessionName = "test-session"

// NewSessionManager returns a dev-mode session manager for handler tests.
func NewSessionManager(t *testing.T) *auth.SessionManager {
	t.Helper()
	sm, err := auth.NewSessionManager(TestSessionKey, TestSessionName, "", 24*time.Hour, false, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}
	return sm
}

// TestUser represents user data for testing HTTP handlers.
type TestUser struct {
	ID         string
	Username   string
	Email      string
	Roles      []models.Role
	EmployeeID string
	HouseID    string
	App        auth.AppSnapshot
}

// HRUser returns a TestUser with the HR role.
func HRUser() TestUser {
	return TestUser{
		ID:       "u-hr",
		Username: "hr.admin",
		Email:    "hr@test.com",
		Roles:    []models.Role{models.RoleHR, models.RoleEmployee},
	}
}

// EmployeeUser returns a TestUser with the Employee role linked to an
// employee record.
func EmployeeUser(employeeID string) TestUser {
	return TestUser{
		ID:         "u-" + employeeID,
		Username:   "employee." + employeeID,
		Email:      employeeID + "@test.com",
		Roles:      []models.Role{models.RoleEmployee},
		EmployeeID: employeeID,
	}
}

// WithUser adds a user to the request context for testing authenticated handlers.
// This bypasses the session middleware and injects the user directly.
func WithUser(r *http.Request, user TestUser) *http.Request {
	return auth.WithTestUser(r, &auth.SessionUser{
		ID:          user.ID,
		Username:    user.Username,
		Email:       user.Email,
		Roles:       user.Roles,
		Token:       "test-token",
		EmployeeID:  user.EmployeeID,
		HouseID:     user.HouseID,
		Application: user.App,
	})
}

// NewRequest creates an HTTP request for testing.
func NewRequest(method, target string) *http.Request {
	return httptest.NewRequest(method, target, nil)
}

// NewAuthenticatedRequest creates an HTTP request with a user in context.
func NewAuthenticatedRequest(method, target string, user TestUser) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	return WithUser(req, user)
}

// NewFormRequest creates a url-encoded POST with a user in context.
func NewFormRequest(target, body string, user TestUser) *http.Request {
	req := httptest.NewRequest("POST", target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return WithUser(req, user)
}

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx, ok := r.Context().Value(chi.RouteCtxKey).(*chi.Context)
	if !ok {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// CarryCookies copies the cookies set on rec onto req, like a browser
// following a redirect.
func CarryCookies(rec *httptest.ResponseRecorder, req *http.Request) *http.Request {
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

// SignIn writes a real session for user through sm and returns its
// cookies. Use it for handlers that read or rewrite the session cookie
// itself rather than only the user in context.
func SignIn(t *testing.T, sm *auth.SessionManager, user TestUser) []*http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	err := sm.Login(rec, req, auth.SessionData{
		Identity: models.Identity{
			UserID:   user.ID,
			Username: user.Username,
			Email:    user.Email,
			Roles:    user.Roles,
			Token:    "test-token",
			Expiry:   time.Now().Add(time.Hour),
		},
		EmployeeID:  user.EmployeeID,
		HouseID:     user.HouseID,
		Application: user.App,
	})
	if err != nil {
		t.Fatalf("sm.Login failed: %v", err)
	}
	return rec.Result().Cookies()
}

// RestoreUser replays the cookies set on rec through sm.LoadSessionUser
// and returns the restored user, or nil.
func RestoreUser(t *testing.T, sm *auth.SessionManager, rec *httptest.ResponseRecorder) *auth.SessionUser {
	t.Helper()
	req := CarryCookies(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	var got *auth.SessionUser
	sm.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = auth.CurrentUser(r)
	})).ServeHTTP(httptest.NewRecorder(), req)
	return got
}

// ResponseRecorder wraps httptest.ResponseRecorder with helper methods.
type ResponseRecorder struct {
	*httptest.ResponseRecorder
}

// NewRecorder creates a new ResponseRecorder.
func NewRecorder() *ResponseRecorder {
	return &ResponseRecorder{httptest.NewRecorder()}
}

// AssertStatus checks the response status code.
func (r *ResponseRecorder) AssertStatus(t interface{ Errorf(string, ...any) }, expected int) {
	if r.Code != expected {
		t.Errorf("status code: got %d, want %d", r.Code, expected)
	}
}

// AssertRedirect checks for a redirect to the expected location.
func (r *ResponseRecorder) AssertRedirect(t interface{ Errorf(string, ...any) }, expectedLocation string) {
	if r.Code != http.StatusSeeOther && r.Code != http.StatusFound && r.Code != http.StatusMovedPermanently {
		t.Errorf("expected redirect status, got %d", r.Code)
	}
	location := r.Header().Get("Location")
	if location != expectedLocation {
		t.Errorf("redirect location: got %q, want %q", location, expectedLocation)
	}
}

// AssertContains checks if the response body contains the expected string.
func (r *ResponseRecorder) AssertContains(t interface{ Errorf(string, ...any) }, expected string) {
	if !strings.Contains(r.Body.String(), expected) {
		t.Errorf("response body does not contain %q", expected)
	}
}
