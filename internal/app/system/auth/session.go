// internal/app/system/auth/session.go
package auth

import (
	"net/http"
	"strings"

	"github.com/dalemusser/hrportal/internal/domain/models"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

// SessionData is everything written to the session at sign-in.
type SessionData struct {
	Identity    models.Identity
	EmployeeID  string
	HouseID     string
	Application AppSnapshot
}

// Login writes a fresh authenticated session. Values from any previous
// session are dropped first so nothing leaks between users.
func (sm *SessionManager) Login(w http.ResponseWriter, r *http.Request, data SessionData) error {
	sess, err := sm.GetSession(r)
	if err != nil {
		sm.log.Warn("session cookie invalid at login, using fresh session",
			zap.Error(err),
			zap.String("user_id", data.Identity.UserID))
	}
	clearValues(sess)

	id := data.Identity
	roles := make([]string, 0, len(id.Roles))
	for _, role := range id.Roles {
		roles = append(roles, string(role))
	}

	sess.Values[tokenKey] = id.Token
	if !id.Expiry.IsZero() {
		sess.Values[expiryKey] = id.Expiry.Unix()
	}
	sess.Values[userIDKey] = id.UserID
	sess.Values[usernameKey] = id.Username
	sess.Values[emailKey] = id.Email
	sess.Values[rolesKey] = strings.Join(roles, ",")
	sess.Values[roleKey] = string(id.EffectiveRole())
	setApplication(sess, data.EmployeeID, data.HouseID, data.Application)

	return sess.Save(r, w)
}

// UpdateApplication replaces the stored employee context and application
// snapshot, e.g. after an onboarding form is submitted.
func (sm *SessionManager) UpdateApplication(w http.ResponseWriter, r *http.Request, employeeID, houseID string, app AppSnapshot) error {
	sess, err := sm.GetSession(r)
	if err != nil {
		return err
	}
	if getString(sess, tokenKey) == "" {
		return nil
	}
	setApplication(sess, employeeID, houseID, app)
	return sess.Save(r, w)
}

func setApplication(sess *sessions.Session, employeeID, houseID string, app AppSnapshot) {
	sess.Values[employeeIDKey] = employeeID
	sess.Values[houseIDKey] = houseID
	sess.Values[appIDKey] = app.ID
	sess.Values[appStatusKey] = string(app.Status)
	sess.Values[appCommentKey] = app.Comment
}

// Logout clears every session key and expires the cookie. It does not talk
// to the backend; callers do that first, best-effort.
func (sm *SessionManager) Logout(w http.ResponseWriter, r *http.Request) error {
	sess, err := sm.GetSession(r)
	if err != nil {
		// Session decode failed. Log and continue - we'll still try to clear the cookie.
		sm.log.Warn("session decode failed during logout", zap.Error(err))
	}
	clearValues(sess)

	// Ensure the deletion-cookie matches the original store settings.
	if opts := sm.store.Options; opts != nil {
		sess.Options.Domain = opts.Domain
		sess.Options.Path = opts.Path
		sess.Options.Secure = opts.Secure
		sess.Options.HttpOnly = opts.HttpOnly
		sess.Options.SameSite = opts.SameSite
	}
	sess.Options.MaxAge = -1 // delete immediately

	return sess.Save(r, w)
}

// ForceLogout ends the session after the backend rejected its token and
// sends the browser to the login page with the current URI as return
// target.
func (sm *SessionManager) ForceLogout(w http.ResponseWriter, r *http.Request) {
	if err := sm.Logout(w, r); err != nil {
		sm.log.Error("forced logout: save session", zap.Error(err))
	}
	ret := ""
	if r.Method == http.MethodGet {
		ret = currentURI(r)
	}
	dest := LoginURL(ret)
	if strings.Contains(dest, "?") {
		dest += "&expired=1"
	} else {
		dest += "?expired=1"
	}

	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", dest)
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	if wantsHTML(r) {
		http.Redirect(w, r, dest, http.StatusSeeOther)
		return
	}
	http.Error(w, "unauthorized", http.StatusUnauthorized)
}

func clearValues(sess *sessions.Session) {
	for _, k := range sessionKeys {
		delete(sess.Values, k)
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Notifications                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

// Notice kinds.
const (
	NoticeError   = "error"
	NoticeSuccess = "success"
)

// Notice is a dismissable one-shot message shown on the next page render.
type Notice struct {
	Kind    string
	Message string
}

// AddNotice queues a notice for the next page.
func (sm *SessionManager) AddNotice(w http.ResponseWriter, r *http.Request, kind, msg string) {
	sess, err := sm.GetSession(r)
	if err != nil {
		sm.log.Debug("add notice: session decode failed", zap.Error(err))
	}
	sess.AddFlash(msg, kind)
	if err := sess.Save(r, w); err != nil {
		sm.log.Warn("add notice: save session", zap.Error(err))
	}
}

// Notices pops all queued notices. It must be called before anything is
// written to w since it rewrites the cookie.
func (sm *SessionManager) Notices(w http.ResponseWriter, r *http.Request) []Notice {
	sess, err := sm.GetSession(r)
	if err != nil {
		return nil
	}
	var out []Notice
	for _, kind := range []string{NoticeError, NoticeSuccess} {
		for _, f := range sess.Flashes(kind) {
			if msg, ok := f.(string); ok && msg != "" {
				out = append(out, Notice{Kind: kind, Message: msg})
			}
		}
	}
	if len(out) > 0 {
		if err := sess.Save(r, w); err != nil {
			sm.log.Warn("notices: save session", zap.Error(err))
		}
	}
	return out
}
