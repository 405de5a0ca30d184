// internal/app/system/auth/auth.go
package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dalemusser/hrportal/internal/app/system/backend"
	"github.com/dalemusser/hrportal/internal/domain/models"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| Session keys                                                                |
*─────────────────────────────────────────────────────────────────────────────*/

// Every key written by the session manager. Logout and forced logout clear
// exactly this set.
const (
	tokenKey      = "token"
	expiryKey     = "token_expiry"
	userIDKey     = "user_id"
	usernameKey   = "username"
	emailKey      = "email"
	rolesKey      = "roles"
	roleKey       = "role"
	employeeIDKey = "employee_id"
	houseIDKey    = "house_id"
	appIDKey      = "application_id"
	appStatusKey  = "application_status"
	appCommentKey = "application_comment"
)

var sessionKeys = []string{
	tokenKey, expiryKey, userIDKey, usernameKey, emailKey, rolesKey, roleKey,
	employeeIDKey, houseIDKey, appIDKey, appStatusKey, appCommentKey,
}

// Home routes per effective role.
const (
	LoginPath    = "/login"
	HRHome       = "/hr/home"
	EmployeeHome = "/employee/home"
)

// HomeFor returns the default landing route of a role.
func HomeFor(role models.Role) string {
	if role == models.RoleHR {
		return HRHome
	}
	return EmployeeHome
}

/*─────────────────────────────────────────────────────────────────────────────*
| Current-User helper                                                         |
*─────────────────────────────────────────────────────────────────────────────*/

// SessionUser is what we restore from the session & inject into r.Context().
type SessionUser struct {
	ID       string
	Username string
	Email    string
	Roles    []models.Role
	Role     models.Role // effective role
	Token    string
	Expiry   time.Time

	EmployeeID string
	HouseID    string

	// Latest onboarding application as resolved at login.
	Application AppSnapshot
}

// AppSnapshot is the application state stored at login so downstream pages
// do not have to fetch it again.
type AppSnapshot struct {
	ID      string
	Status  models.ApplicationStatus
	Comment string
}

// IsHR reports whether the effective role is HR.
func (u *SessionUser) IsHR() bool { return u != nil && u.Role == models.RoleHR }

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the user & “found?” flag.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(*SessionUser)
	return u, ok
}

// IsAuthenticated reports whether a user was restored for this request.
func IsAuthenticated(r *http.Request) bool {
	_, ok := CurrentUser(r)
	return ok
}

// EffectiveRole returns the request user's effective role.
func EffectiveRole(r *http.Request) (models.Role, bool) {
	u, ok := CurrentUser(r)
	if !ok {
		return "", false
	}
	return u.Role, true
}

// WithTestUser injects u the same way LoadSessionUser does. For tests.
func WithTestUser(r *http.Request, u *SessionUser) *http.Request {
	if u.Role == "" {
		u.Role = models.EffectiveRole(u.Roles)
	}
	return withUser(r, u)
}

/*─────────────────────────────────────────────────────────────────────────────*
| SessionManager                                                              |
*─────────────────────────────────────────────────────────────────────────────*/

// SessionManager owns the session cookie. It is the only writer of session
// state; features go through its methods.
type SessionManager struct {
	store *sessions.CookieStore
	name  string
	log   *zap.Logger
	now   func() time.Time
}

// NewSessionManager builds the cookie store. secure=true (prod) sets
// Secure + SameSite=None; dev uses Lax so http://localhost works.
func NewSessionManager(sessionKey, name, domain string, maxAge time.Duration, secure bool, logger *zap.Logger) (*SessionManager, error) {
	if sessionKey == "" {
		return nil, fmt.Errorf("session key is empty; provide ≥32 random chars")
	}
	if len(sessionKey) < 32 {
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(sessionKey)))
	}
	if name == "" {
		name = "hrportal-session"
	}

	store := sessions.NewCookieStore([]byte(sessionKey))
	opts := &sessions.Options{
		Domain:   domain,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		Secure:   secure,
		HttpOnly: true,
	}
	if secure {
		opts.SameSite = http.SameSiteNoneMode
	} else {
		opts.SameSite = http.SameSiteLaxMode
	}
	store.Options = opts

	logger.Info("session store initialized",
		zap.Bool("secure", secure),
		zap.String("domain", domain),
		zap.Duration("max_age", maxAge))

	return &SessionManager{store: store, name: name, log: logger, now: time.Now}, nil
}

// Store exposes the cookie store options (logout mirrors them).
func (sm *SessionManager) Store() *sessions.CookieStore { return sm.store }

// Name returns the cookie name.
func (sm *SessionManager) Name() string { return sm.name }

// GetSession returns the request's session. A cookie that fails to decode
// (rotated key, tampering) yields a fresh session and the decode error.
func (sm *SessionManager) GetSession(r *http.Request) (*sessions.Session, error) {
	return sm.store.Get(r, sm.name)
}

// LoadSessionUser restores the user from the cookie and injects it into the
// request context. Restoration is optimistic: a stored, unexpired token is
// trusted until the backend answers 401 to some call. The token is also
// attached to the context for backend calls.
func (sm *SessionManager) LoadSessionUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := sm.GetSession(r)
		if err != nil {
			if scErr, ok := err.(securecookie.Error); ok && scErr.IsDecode() {
				sm.log.Debug("session cookie invalid, continuing unauthenticated", zap.Error(err))
			} else {
				sm.log.Warn("session store error", zap.Error(err))
			}
			next.ServeHTTP(w, r)
			return
		}

		if u, ok := sm.restore(sess); ok {
			r = withUser(r, u)
			r = r.WithContext(backend.WithToken(r.Context(), u.Token))
		}
		next.ServeHTTP(w, r)
	})
}

func (sm *SessionManager) restore(sess *sessions.Session) (*SessionUser, bool) {
	token := getString(sess, tokenKey)
	if token == "" {
		return nil, false
	}

	var expiry time.Time
	if secs, ok := sess.Values[expiryKey].(int64); ok && secs > 0 {
		expiry = time.Unix(secs, 0)
	} else if exp, ok := TokenExpiry(token); ok {
		expiry = exp
	}
	if !expiry.IsZero() && !sm.now().Before(expiry) {
		return nil, false
	}

	roles := models.ParseRoles(strings.Split(getString(sess, rolesKey), ","))
	if len(roles) == 0 {
		if role, ok := models.ParseRole(getString(sess, roleKey)); ok {
			roles = []models.Role{role}
		}
	}

	return &SessionUser{
		ID:         getString(sess, userIDKey),
		Username:   getString(sess, usernameKey),
		Email:      getString(sess, emailKey),
		Roles:      roles,
		Role:       models.EffectiveRole(roles),
		Token:      token,
		Expiry:     expiry,
		EmployeeID: getString(sess, employeeIDKey),
		HouseID:    getString(sess, houseIDKey),

		Application: AppSnapshot{
			ID:      getString(sess, appIDKey),
			Status:  models.ApplicationStatus(getString(sess, appStatusKey)),
			Comment: getString(sess, appCommentKey),
		},
	}, true
}

/*─────────────────────────────────────────────────────────────────────────────*
| Route guards                                                                |
*─────────────────────────────────────────────────────────────────────────────*/

// RequireSignedIn ensures there is a user in context (set by LoadSessionUser).
// If not signed in:
//   - HTMX: sends HX-Redirect to /login?return=...
//   - HTML: 303 redirect to /login?return=...
//   - API:  401 Unauthorized with a plain error body.
func (sm *SessionManager) RequireSignedIn(next http.Handler) http.Handler {
	return sm.RequireRole()(next)
}

// RequireRole gates a route subtree on the effective role. An empty role list
// admits any signed-in user. A signed-in user with the wrong role is sent
// to their own home route; that is normal navigation, not an error page.
// The check runs on every request.
func (sm *SessionManager) RequireRole(allowed ...models.Role) func(http.Handler) http.Handler {
	set := make(map[models.Role]struct{}, len(allowed))
	for _, role := range allowed {
		set[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := CurrentUser(r)

			// 1) Not signed in → login with return target
			if !ok {
				sm.redirectToLogin(w, r, http.StatusUnauthorized)
				return
			}

			// 2) Signed in but wrong role → own home
			if len(set) > 0 {
				if _, has := set[u.Role]; !has {
					dest := HomeFor(u.Role)
					if r.Header.Get("HX-Request") == "true" {
						w.Header().Set("HX-Redirect", dest)
						w.WriteHeader(http.StatusForbidden)
						return
					}
					if wantsHTML(r) {
						http.Redirect(w, r, dest, http.StatusSeeOther)
						return
					}
					http.Error(w, "forbidden", http.StatusForbidden)
					return
				}
			}

			// Authorized → carry on
			next.ServeHTTP(w, r)
		})
	}
}

func (sm *SessionManager) redirectToLogin(w http.ResponseWriter, r *http.Request, apiStatus int) {
	dest := LoginURL(currentURI(r))

	// HTMX: full-page client redirect (no partial swap)
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", dest)
		w.WriteHeader(apiStatus)
		return
	}

	// Browser/HTML: go to login and preserve return
	if wantsHTML(r) {
		http.Redirect(w, r, dest, http.StatusSeeOther)
		return
	}

	// Non-HTML (API) callers: keep the status code
	http.Error(w, strings.ToLower(http.StatusText(apiStatus)), apiStatus)
}

// LoginURL builds the login route carrying ret as the return target.
func LoginURL(ret string) string {
	if ret == "" || ret == "/" {
		return LoginPath
	}
	return LoginPath + "?return=" + url.QueryEscape(ret)
}

// helpers

func withUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}

// getString safely extracts a string from a session value.
func getString(s *sessions.Session, key string) string {
	if v, ok := s.Values[key].(string); ok {
		return v
	}
	return ""
}

func wantsHTML(r *http.Request) bool {
	// Very light heuristic: treat it as HTML if it's HTMX or Accepts text/html.
	if r.Header.Get("HX-Request") == "true" {
		return true
	}
	accept := r.Header.Get("Accept")
	return accept == "" || strings.Contains(accept, "text/html")
}

func currentURI(r *http.Request) string {
	// Preserve path + query as a return param.
	u := *r.URL
	return u.RequestURI()
}
