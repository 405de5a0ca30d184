package auth_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/dalemusser/hrportal/internal/app/system/auth"
	"github.com/dalemusser/hrportal/internal/domain/models"
	"go.uber.org/zap"
)

func newTestSessionManager(t *testing.T) *auth.SessionManager {
	t.Helper()
	logger := zap.NewNop()
	sm, err := auth.NewSessionManager(
		"test-session-key-must-be-32-chars-long",
		"test-session",
		"",
		24*time.Hour,
		false,
		logger,
	)
	if err != nil {
		t.Fatalf("failed to create session manager: %v", err)
	}
	return sm
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("protected content"))
	})
}

// withTestUser injects a SessionUser into the request context for testing.
// This simulates what LoadSessionUser middleware does.
func withTestUser(r *http.Request, roles ...models.Role) *http.Request {
	return auth.WithTestUser(r, &auth.SessionUser{
		ID:       "u-1",
		Username: "tester",
		Roles:    roles,
		Token:    "tok",
	})
}

// loginCookies runs a Login against a throwaway request and returns the
// cookies it set.
func loginCookies(t *testing.T, sm *auth.SessionManager, data auth.SessionData) []*http.Cookie {
	t.Helper()
	req := httptest.NewRequest("POST", "/login", nil)
	rec := httptest.NewRecorder()
	if err := sm.Login(rec, req, data); err != nil {
		t.Fatalf("Login: %v", err)
	}
	return rec.Result().Cookies()
}

func TestNewSessionManager_EmptyKey(t *testing.T) {
	if _, err := auth.NewSessionManager("", "s", "", time.Hour, false, zap.NewNop()); err == nil {
		t.Error("expected error for empty session key")
	}
}

func TestRequireSignedIn_NoUser_RedirectsToLogin(t *testing.T) {
	sm := newTestSessionManager(t)
	handler := sm.RequireSignedIn(okHandler())

	req := httptest.NewRequest("GET", "/employee/visa?tab=docs", nil)
	req.Header.Set("Accept", "text/html")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Errorf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
	}
	want := "/login?return=" + "%2Femployee%2Fvisa%3Ftab%3Ddocs"
	if location := rec.Header().Get("Location"); location != want {
		t.Errorf("Location: got %q, want %q", location, want)
	}
}

func TestRequireSignedIn_NoUser_API_Returns401(t *testing.T) {
	sm := newTestSessionManager(t)
	handler := sm.RequireSignedIn(okHandler())

	req := httptest.NewRequest("GET", "/api/user", nil)
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestRequireSignedIn_NoUser_HTMX_ReturnsHXRedirect(t *testing.T) {
	sm := newTestSessionManager(t)
	handler := sm.RequireSignedIn(okHandler())

	req := httptest.NewRequest("GET", "/hr/visa", nil)
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
	if hx := rec.Header().Get("HX-Redirect"); !strings.HasPrefix(hx, "/login") {
		t.Errorf("expected HX-Redirect to /login, got %q", hx)
	}
}

// Unauthenticated requests go to login regardless of the allowed set.
func TestRequireRole_NoUser_AlwaysLogin(t *testing.T) {
	sm := newTestSessionManager(t)

	sets := [][]models.Role{
		nil,
		{models.RoleHR},
		{models.RoleEmployee},
		{models.RoleHR, models.RoleEmployee},
	}
	for _, set := range sets {
		handler := sm.RequireRole(set...)(okHandler())
		req := httptest.NewRequest("GET", "/somewhere", nil)
		req.Header.Set("Accept", "text/html")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusSeeOther {
			t.Errorf("roles %v: expected status %d, got %d", set, http.StatusSeeOther, rec.Code)
		}
		if loc := rec.Header().Get("Location"); !strings.HasPrefix(loc, "/login?return=") {
			t.Errorf("roles %v: expected login redirect, got %q", set, loc)
		}
	}
}

func TestRequireRole_EmployeeOnHRRoute_RedirectsToEmployeeHome(t *testing.T) {
	sm := newTestSessionManager(t)
	called := false
	handler := sm.RequireRole(models.RoleHR)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest("GET", "/hr/home", nil)
	req.Header.Set("Accept", "text/html")
	req = withTestUser(req, models.RoleEmployee)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if called {
		t.Error("protected handler must not run for the wrong role")
	}
	if rec.Code != http.StatusSeeOther {
		t.Errorf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/employee/home" {
		t.Errorf("Location: got %q, want %q", loc, "/employee/home")
	}
}

func TestRequireRole_HROnEmployeeRoute_Renders(t *testing.T) {
	sm := newTestSessionManager(t)
	handler := sm.RequireRole(models.RoleHR, models.RoleEmployee)(okHandler())

	req := httptest.NewRequest("GET", "/employee/home", nil)
	req = withTestUser(req, models.RoleHR)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
}

func TestRequireRole_HRHomeForHROnlyRouteMismatch(t *testing.T) {
	sm := newTestSessionManager(t)
	handler := sm.RequireRole(models.RoleEmployee)(okHandler())

	req := httptest.NewRequest("GET", "/onboarding/form", nil)
	req.Header.Set("Accept", "text/html")
	req = withTestUser(req, models.RoleHR, models.RoleEmployee)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if loc := rec.Header().Get("Location"); loc != "/hr/home" {
		t.Errorf("Location: got %q, want %q", loc, "/hr/home")
	}
}

func TestRequireRole_WrongRole_API_Returns403(t *testing.T) {
	sm := newTestSessionManager(t)
	handler := sm.RequireRole(models.RoleHR)(okHandler())

	req := httptest.NewRequest("GET", "/hr/visa", nil)
	req.Header.Set("Accept", "application/json")
	req = withTestUser(req, models.RoleEmployee)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("expected status %d, got %d", http.StatusForbidden, rec.Code)
	}
}

func TestRequireRole_WrongRole_HTMX(t *testing.T) {
	sm := newTestSessionManager(t)
	handler := sm.RequireRole(models.RoleHR)(okHandler())

	req := httptest.NewRequest("GET", "/hr/visa", nil)
	req.Header.Set("HX-Request", "true")
	req = withTestUser(req, models.RoleEmployee)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if hx := rec.Header().Get("HX-Redirect"); hx != "/employee/home" {
		t.Errorf("HX-Redirect: got %q, want %q", hx, "/employee/home")
	}
}

func TestRequireRole_MultipleRoles(t *testing.T) {
	sm := newTestSessionManager(t)
	handler := sm.RequireRole(models.RoleHR)(okHandler())

	tests := []struct {
		name     string
		roles    []models.Role
		expected int
	}{
		{"hr", []models.Role{models.RoleHR}, http.StatusOK},
		{"hr+employee", []models.Role{models.RoleEmployee, models.RoleHR}, http.StatusOK},
		{"employee", []models.Role{models.RoleEmployee}, http.StatusSeeOther},
		{"no roles", nil, http.StatusSeeOther},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/hr/home", nil)
			req.Header.Set("Accept", "text/html")
			req = withTestUser(req, tc.roles...)

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tc.expected {
				t.Errorf("expected status %d, got %d", tc.expected, rec.Code)
			}
		})
	}
}

func TestLoadSessionUser_RestoresFromCookie(t *testing.T) {
	sm := newTestSessionManager(t)
	cookies := loginCookies(t, sm, auth.SessionData{
		Identity: models.Identity{
			UserID:   "u-42",
			Username: "jdoe",
			Roles:    []models.Role{models.RoleEmployee, models.RoleHR},
			Token:    "opaque-token",
			Expiry:   time.Now().Add(time.Hour),
		},
		EmployeeID:  "e-7",
		HouseID:     "h-3",
		Application: auth.AppSnapshot{ID: "a-1", Status: models.StatusRejected, Comment: "Missing I-20"},
	})

	var got *auth.SessionUser
	handler := sm.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = auth.CurrentUser(r)
	}))

	req := httptest.NewRequest("GET", "/employee/home", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if got == nil {
		t.Fatal("expected user restored from cookie")
	}
	if got.ID != "u-42" || got.Username != "jdoe" || got.Token != "opaque-token" {
		t.Errorf("identity: got %+v", got)
	}
	if got.Role != models.RoleHR {
		t.Errorf("effective role: got %q, want HR", got.Role)
	}
	if got.EmployeeID != "e-7" || got.HouseID != "h-3" {
		t.Errorf("employee context: got %q %q", got.EmployeeID, got.HouseID)
	}
	if got.Application.Comment != "Missing I-20" || got.Application.Status != models.StatusRejected {
		t.Errorf("application snapshot: got %+v", got.Application)
	}
}

func TestLoadSessionUser_NoCookie_Unauthenticated(t *testing.T) {
	sm := newTestSessionManager(t)
	authed := true
	handler := sm.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authed = auth.IsAuthenticated(r)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))

	if authed {
		t.Error("expected unauthenticated request with empty storage")
	}
}

func TestLoadSessionUser_ExpiredToken_Unauthenticated(t *testing.T) {
	sm := newTestSessionManager(t)
	cookies := loginCookies(t, sm, auth.SessionData{
		Identity: models.Identity{
			UserID: "u-1",
			Roles:  []models.Role{models.RoleEmployee},
			Token:  "opaque-token",
			Expiry: time.Now().Add(-time.Minute),
		},
	})

	authed := true
	handler := sm.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authed = auth.IsAuthenticated(r)
	}))
	req := httptest.NewRequest("GET", "/", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if authed {
		t.Error("expired token must not restore a session")
	}
}

func TestLoadSessionUser_TamperedCookie_Unauthenticated(t *testing.T) {
	sm := newTestSessionManager(t)
	authed := true
	handler := sm.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authed = auth.IsAuthenticated(r)
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: "test-session", Value: "garbage"})
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if authed {
		t.Error("tampered cookie must not restore a session")
	}
}

func TestLogout_ClearsCookie(t *testing.T) {
	sm := newTestSessionManager(t)
	cookies := loginCookies(t, sm, auth.SessionData{
		Identity: models.Identity{UserID: "u-1", Token: "t", Roles: []models.Role{models.RoleHR}},
	})

	req := httptest.NewRequest("POST", "/logout", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	if err := sm.Logout(rec, req); err != nil {
		t.Fatalf("Logout: %v", err)
	}

	found := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == "test-session" {
			found = true
			if c.MaxAge != -1 {
				t.Errorf("cookie MaxAge: got %d, want -1", c.MaxAge)
			}
		}
	}
	if !found {
		t.Error("expected session cookie to be set for deletion")
	}
}

func TestForceLogout_RedirectsToLoginWithReturn(t *testing.T) {
	sm := newTestSessionManager(t)

	req := httptest.NewRequest("GET", "/hr/visa", nil)
	req.Header.Set("Accept", "text/html")
	rec := httptest.NewRecorder()

	sm.ForceLogout(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Errorf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
	}
	want := "/login?return=%2Fhr%2Fvisa&expired=1"
	if loc := rec.Header().Get("Location"); loc != want {
		t.Errorf("Location: got %q, want %q", loc, want)
	}
}

func TestNotices_RoundTrip(t *testing.T) {
	sm := newTestSessionManager(t)

	req := httptest.NewRequest("POST", "/hr/visa/a1/approve", nil)
	rec := httptest.NewRecorder()
	sm.AddNotice(rec, req, auth.NoticeError, "Approval failed")

	req2 := httptest.NewRequest("GET", "/hr/visa", nil)
	for _, c := range rec.Result().Cookies() {
		req2.AddCookie(c)
	}
	notices := sm.Notices(httptest.NewRecorder(), req2)

	if len(notices) != 1 || notices[0].Kind != auth.NoticeError || notices[0].Message != "Approval failed" {
		t.Errorf("notices: got %+v", notices)
	}
}

func TestHomeFor(t *testing.T) {
	if got := auth.HomeFor(models.RoleHR); got != "/hr/home" {
		t.Errorf("HomeFor(HR): got %q", got)
	}
	if got := auth.HomeFor(models.RoleEmployee); got != "/employee/home" {
		t.Errorf("HomeFor(Employee): got %q", got)
	}
}

func TestTokenExpiry(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("whatever"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	got, ok := auth.TokenExpiry(tok)
	if !ok {
		t.Fatal("expected expiry to be found")
	}
	if !got.Equal(exp) {
		t.Errorf("expiry: got %v, want %v", got, exp)
	}

	if _, ok := auth.TokenExpiry("not-a-jwt"); ok {
		t.Error("opaque token must report no expiry")
	}
}

func TestCurrentUser_NoUser(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)

	user, ok := auth.CurrentUser(req)

	if ok {
		t.Error("expected ok to be false when no user in context")
	}
	if user != nil {
		t.Error("expected user to be nil when no user in context")
	}
}
