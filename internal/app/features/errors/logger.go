// internal/app/features/errors/logger.go
package errors

import (
	stderrors "errors"
	"net/http"
	"strings"

	"github.com/dalemusser/hrportal/internal/app/system/auditlog"
	"github.com/dalemusser/hrportal/internal/app/system/auth"
	"github.com/dalemusser/hrportal/internal/app/system/backend"
	"go.uber.org/zap"
)

// ErrorLogger is the single place where handler failures are logged and
// turned into a response.
//
// Backend failures go through HandleAPIError: a rejected token ends the
// session and sends the user to sign in again; anything else is logged and
// shown to the user as a dismissable notice on the page they return to.
type ErrorLogger struct {
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	AuditLog   *auditlog.Logger
}

// NewErrorLogger creates an ErrorLogger. sm and audit may be nil in tests.
func NewErrorLogger(sm *auth.SessionManager, audit *auditlog.Logger, logger *zap.Logger) *ErrorLogger {
	return &ErrorLogger{Log: logger, SessionMgr: sm, AuditLog: audit}
}

// HandleAPIError handles an error returned by a backend call.
//
// backURL is where the user lands after a POST failure. For page loads
// (GET) pass "": the error page is rendered in place, since redirecting
// to the failing page would loop.
func (e *ErrorLogger) HandleAPIError(w http.ResponseWriter, r *http.Request, msg string, err error, backURL string) {
	if stderrors.Is(err, backend.ErrUnauthorized) {
		e.ForceLogout(w, r)
		return
	}

	fields := []zap.Field{
		zap.Error(err),
		zap.String("path", r.URL.Path),
		zap.String("method", r.Method),
	}
	if u, ok := auth.CurrentUser(r); ok {
		fields = append(fields, zap.String("user_id", u.ID))
	}

	var apiErr *backend.APIError
	if stderrors.As(err, &apiErr) && apiErr.Status < http.StatusInternalServerError {
		e.Log.Warn(msg, fields...)
	} else {
		e.Log.Error(msg, fields...)
	}

	e.respond(w, r, http.StatusBadGateway, backend.UserMessage(err), backURL)
}

// ForceLogout ends a session the backend no longer accepts.
func (e *ErrorLogger) ForceLogout(w http.ResponseWriter, r *http.Request) {
	userID := ""
	if u, ok := auth.CurrentUser(r); ok {
		userID = u.ID
	}
	e.Log.Info("backend rejected session token, signing out",
		zap.String("user_id", userID),
		zap.String("path", r.URL.Path))
	e.AuditLog.SessionExpired(r.Context(), r, userID)

	if e.SessionMgr == nil {
		http.Redirect(w, r, auth.LoginURL(""), http.StatusSeeOther)
		return
	}
	e.SessionMgr.ForceLogout(w, r)
}

// LogBadRequest logs a client error (bad form input, malformed upload) and
// sends the user back with userMsg.
func (e *ErrorLogger) LogBadRequest(w http.ResponseWriter, r *http.Request, msg string, err error, userMsg, backURL string) {
	e.Log.Warn(msg, zap.Error(err), zap.String("path", r.URL.Path))
	e.respond(w, r, http.StatusBadRequest, userMsg, backURL)
}

// LogServerError logs an internal failure and sends the user back with
// userMsg.
func (e *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, msg string, err error, userMsg, backURL string) {
	e.Log.Error(msg, zap.Error(err), zap.String("path", r.URL.Path))
	e.respond(w, r, http.StatusInternalServerError, userMsg, backURL)
}

// respond sends msg back to the user: as a notice plus redirect when
// backURL is set, as the error page otherwise. Non-HTML callers get the
// status code and message.
func (e *ErrorLogger) respond(w http.ResponseWriter, r *http.Request, status int, msg, backURL string) {
	if !wantsHTML(r) {
		http.Error(w, msg, status)
		return
	}

	if backURL == "" {
		RenderError(w, r, e.SessionMgr, status, "Something went wrong", msg)
		return
	}

	if e.SessionMgr != nil {
		e.SessionMgr.AddNotice(w, r, auth.NoticeError, msg)
	}
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", backURL)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, backURL, http.StatusSeeOther)
}

func wantsHTML(r *http.Request) bool {
	if r.Header.Get("HX-Request") == "true" {
		return true
	}
	accept := r.Header.Get("Accept")
	return accept == "" || strings.Contains(accept, "text/html")
}
