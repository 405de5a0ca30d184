// internal/app/features/register/handler.go
package register

import (
	"context"
	"net/http"

	"github.com/dalemusser/hrportal/internal/app/system/auditlog"
	"github.com/dalemusser/hrportal/internal/app/system/auth"
	"github.com/dalemusser/hrportal/internal/app/system/backend"
	"github.com/dalemusser/hrportal/internal/app/system/inputval"
	"github.com/dalemusser/hrportal/internal/app/system/limits"
	"github.com/dalemusser/hrportal/internal/app/system/normalize"
	"github.com/dalemusser/hrportal/internal/app/system/viewdata"
	"github.com/dalemusser/hrportal/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// API creates accounts from HR-issued registration tokens.
type API interface {
	Register(ctx context.Context, reg models.Registration) error
}

type Handler struct {
	API        API
	SessionMgr *auth.SessionManager
	AuditLog   *auditlog.Logger
	Log        *zap.Logger
}

func NewHandler(api API, sm *auth.SessionManager, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{API: api, SessionMgr: sm, AuditLog: audit, Log: logger}
}

type registerFormData struct {
	viewdata.BaseVM
	Error    string
	Token    string
	Username string
	Email    string
}

// ServeRegister handles GET /register?token=...
func (h *Handler) ServeRegister(w http.ResponseWriter, r *http.Request) {
	token := normalize.QueryParam(query.Get(r, "token"))
	data := registerFormData{
		BaseVM: viewdata.NewBaseVM(w, r, h.SessionMgr, "Create account", auth.LoginPath),
		Token:  token,
	}
	if token == "" {
		data.Error = "This page needs the registration link HR sent you."
	}
	templates.Render(w, r, "register", data)
}

// HandleRegisterPost handles POST /register.
func (h *Handler) HandleRegisterPost(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxFormSize)
	if err := r.ParseForm(); err != nil {
		h.renderFormWithError(w, r, "Invalid form submission.", models.Registration{})
		return
	}

	reg := models.Registration{
		Token:    normalize.QueryParam(r.PostFormValue("token")),
		Username: normalize.Username(r.PostFormValue("username")),
		Email:    normalize.Email(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
	}
	confirm := r.PostFormValue("confirm")

	if msg := validate(reg, confirm); msg != "" {
		h.renderFormWithError(w, r, msg, reg)
		return
	}

	if err := h.API.Register(r.Context(), reg); err != nil {
		h.Log.Info("registration rejected",
			zap.String("username", reg.Username),
			zap.Error(err))
		h.renderFormWithError(w, r, backend.UserMessage(err), reg)
		return
	}

	h.Log.Info("account registered", zap.String("username", reg.Username))
	h.AuditLog.Registered(r.Context(), r, reg.Username)
	http.Redirect(w, r, auth.LoginPath+"?registered=1", http.StatusSeeOther)
}

func validate(reg models.Registration, confirm string) string {
	switch {
	case reg.Token == "":
		return "The registration link is missing its token."
	case !inputval.IsValidUsername(reg.Username):
		return "Username must be 3 to 32 letters, digits, dots, dashes or underscores."
	case !inputval.IsValidEmail(reg.Email):
		return "A valid email address is required."
	case !inputval.IsValidPassword(reg.Password):
		return "Password must be at least 8 characters."
	case reg.Password != confirm:
		return "Passwords do not match."
	}
	return ""
}

func (h *Handler) renderFormWithError(w http.ResponseWriter, r *http.Request, msg string, reg models.Registration) {
	data := registerFormData{
		BaseVM:   viewdata.NewBaseVM(w, r, h.SessionMgr, "Create account", auth.LoginPath),
		Error:    msg,
		Token:    reg.Token,
		Username: reg.Username,
		Email:    reg.Email,
	}
	w.WriteHeader(http.StatusUnprocessableEntity)
	templates.Render(w, r, "register", data)
}
