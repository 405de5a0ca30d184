package register_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/dalemusser/hrportal/internal/app/features/register"
	"github.com/dalemusser/hrportal/internal/testutil"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*register.Handler, *testutil.FakeBackend) {
	t.Helper()
	api := testutil.NewFakeBackend()
	return register.NewHandler(api, testutil.NewSessionManager(t), nil, zap.NewNop()), api
}

func validForm() url.Values {
	return url.Values{
		"token":    {"reg-token-1"},
		"username": {"alice"},
		"email":    {"Alice@Example.com"},
		"password": {"correct-horse"},
		"confirm":  {"correct-horse"},
	}
}

func post(h *register.Handler, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	func() {
		defer func() { _ = recover() }()
		h.HandleRegisterPost(rec, req)
	}()
	return rec
}

func TestHandleRegisterPost_Success(t *testing.T) {
	h, api := newTestHandler(t)

	rec := post(h, validForm())

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); loc != "/login?registered=1" {
		t.Errorf("Location: got %q, want %q", loc, "/login?registered=1")
	}
	if len(api.Registered) != 1 {
		t.Fatalf("registrations: got %d, want 1", len(api.Registered))
	}
	got := api.Registered[0]
	if got.Token != "reg-token-1" || got.Username != "alice" {
		t.Errorf("registration: got %+v", got)
	}
	if got.Email != "alice@example.com" {
		t.Errorf("email should be normalized, got %q", got.Email)
	}
}

func TestHandleRegisterPost_Validation(t *testing.T) {
	tests := []struct {
		name  string
		field string
		value string
	}{
		{"missing token", "token", ""},
		{"bad username", "username", "a b"},
		{"bad email", "email", "not-an-email"},
		{"short password", "password", "short"},
		{"mismatch", "confirm", "something-else"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, api := newTestHandler(t)
			form := validForm()
			form.Set(tt.field, tt.value)

			rec := post(h, form)

			if rec.Code != http.StatusUnprocessableEntity {
				t.Errorf("status: got %d, want %d", rec.Code, http.StatusUnprocessableEntity)
			}
			if api.Called("Register") {
				t.Error("backend should not be called for invalid input")
			}
		})
	}
}

func TestHandleRegisterPost_DuplicateUsername(t *testing.T) {
	h, api := newTestHandler(t)
	api.AddUser("u1", "alice", "pw")

	rec := post(h, validForm())

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusUnprocessableEntity)
	}
	if len(api.Registered) != 0 {
		t.Errorf("registrations: got %d, want 0", len(api.Registered))
	}
}

func TestServeRegister_RendersForm(t *testing.T) {
	h, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/register?token=abc", nil)
	rec := httptest.NewRecorder()

	defer func() {
		if r := recover(); r != nil {
			t.Log("template rendering panicked (expected without templates):", r)
		}
	}()
	h.ServeRegister(rec, req)
}
