// internal/app/features/login/handler.go
package login

import (
	"context"
	"errors"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/hrportal/internal/app/features/errors"
	"github.com/dalemusser/hrportal/internal/app/system/auditlog"
	"github.com/dalemusser/hrportal/internal/app/system/auth"
	"github.com/dalemusser/hrportal/internal/app/system/backend"
	"github.com/dalemusser/hrportal/internal/app/system/landing"
	"github.com/dalemusser/hrportal/internal/app/system/ratelimit"
	"github.com/dalemusser/hrportal/internal/app/system/viewdata"
	"github.com/dalemusser/hrportal/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"go.uber.org/zap"
)

// API is the part of the backend the login flow talks to.
type API interface {
	Login(ctx context.Context, identifier, password string) (*backend.LoginResponse, error)
	landing.Source
}

type Handler struct {
	API        API
	Resolver   *landing.Resolver
	Limiter    *ratelimit.LoginLimiter // nil disables throttling
	SessionMgr *auth.SessionManager
	ErrLog     *uierrors.ErrorLogger
	AuditLog   *auditlog.Logger
	Log        *zap.Logger
}

func NewHandler(api API, sm *auth.SessionManager, errLog *uierrors.ErrorLogger, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		API:        api,
		Resolver:   landing.NewResolver(api, logger),
		SessionMgr: sm,
		ErrLog:     errLog,
		AuditLog:   audit,
		Log:        logger,
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Template-data                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

type loginFormData struct {
	viewdata.BaseVM
	Error      string
	Identifier string // what the user typed, username or email
	ReturnURL  string
	Expired    bool // session ended because the backend rejected the token
	Registered bool // just came back from a successful registration
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /login                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	if u, ok := auth.CurrentUser(r); ok {
		http.Redirect(w, r, auth.HomeFor(u.Role), http.StatusSeeOther)
		return
	}

	templates.Render(w, r, "login", loginFormData{
		BaseVM:     viewdata.NewBaseVM(w, r, h.SessionMgr, "Sign in", "/"),
		ReturnURL:  query.Get(r, "return"),
		Expired:    query.Get(r, "expired") == "1",
		Registered: query.Get(r, "registered") == "1",
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /login                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleLoginPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderFormWithError(w, r, http.StatusBadRequest, "Invalid form submission.", "")
		return
	}

	identifier := strings.TrimSpace(r.FormValue("identifier"))
	password := r.FormValue("password")
	if identifier == "" || password == "" {
		h.renderFormWithError(w, r, http.StatusUnauthorized, "Username and password are required.", identifier)
		return
	}
	if h.Limiter != nil {
		if ok, msg := h.Limiter.Check(r, identifier); !ok {
			h.Log.Warn("login throttled", zap.String("identifier", identifier), zap.String("ip", ratelimit.ClientIP(r)))
			h.AuditLog.LoginFailed(r.Context(), r, identifier, "rate_limited")
			h.renderFormWithError(w, r, http.StatusTooManyRequests, msg, identifier)
			return
		}
	}

	lr, err := h.API.Login(r.Context(), identifier, password)
	if err != nil {
		h.loginFailed(w, r, identifier, err)
		return
	}

	id := lr.Identity()
	if id.Token == "" {
		h.loginFailed(w, r, identifier, errors.New("login response without token"))
		return
	}
	if id.Expiry.IsZero() {
		if exp, ok := auth.TokenExpiry(id.Token); ok {
			id.Expiry = exp
		}
	}

	// The return target is only honoured when it is a local path.
	ret := urlutil.SafeReturn(r.FormValue("return"), "", "")

	data := auth.SessionData{Identity: id}
	dest := ret
	if id.EffectiveRole() == models.RoleHR {
		if dest == "" {
			dest = auth.HRHome
		}
	} else {
		// The resolver calls the backend as the new user.
		ctx := backend.WithToken(r.Context(), id.Token)
		res := h.Resolver.Resolve(ctx, id.UserID, ret)
		dest = res.Target
		data.EmployeeID = res.EmployeeID
		data.HouseID = res.HouseID
		if res.Application != nil {
			data.Application = auth.AppSnapshot{
				ID:      res.Application.ID,
				Status:  res.Application.Status,
				Comment: res.Application.Comment,
			}
		}
	}

	if h.Limiter != nil {
		h.Limiter.Succeeded(identifier)
	}
	if err := h.SessionMgr.Login(w, r, data); err != nil {
		h.ErrLog.LogServerError(w, r, "session save error", err, "Unable to create session.", auth.LoginPath)
		return
	}

	h.Log.Info("user signed in",
		zap.String("user_id", id.UserID),
		zap.String("role", string(id.EffectiveRole())),
		zap.String("dest", dest))
	h.AuditLog.LoginSuccess(r.Context(), r, id.UserID, id.Username, string(id.EffectiveRole()))

	http.Redirect(w, r, dest, http.StatusSeeOther)
}

func (h *Handler) loginFailed(w http.ResponseWriter, r *http.Request, identifier string, err error) {
	msg := backend.UserMessage(err)
	reason := "backend_error"
	var apiErr *backend.APIError
	switch {
	case errors.Is(err, backend.ErrUnauthorized):
		// A 401 from the login endpoint is a credential failure, not an
		// expired session.
		msg = "Invalid username or password."
		reason = "invalid_credentials"
	case errors.As(err, &apiErr) && apiErr.Status < http.StatusInternalServerError:
		reason = "invalid_credentials"
	case errors.Is(err, backend.ErrNetwork):
		reason = "backend_unreachable"
	}

	h.Log.Info("login failed", zap.String("identifier", identifier), zap.String("reason", reason), zap.Error(err))
	h.AuditLog.LoginFailed(r.Context(), r, identifier, reason)
	h.renderFormWithError(w, r, http.StatusUnauthorized, msg, identifier)
}

func (h *Handler) renderFormWithError(w http.ResponseWriter, r *http.Request, status int, msg, identifier string) {
	// From POST, "return" will be in the form; from GET, we might rely on the query.
	ret := strings.TrimSpace(r.FormValue("return"))
	if ret == "" {
		ret = query.Get(r, "return")
	}

	data := loginFormData{
		BaseVM:     viewdata.NewBaseVM(w, r, h.SessionMgr, "Sign in", "/"),
		Error:      msg,
		Identifier: identifier,
		ReturnURL:  ret,
	}
	w.WriteHeader(status)
	templates.Render(w, r, "login", data)
}
