// internal/app/bootstrap/routes.go
package bootstrap

import (
	"crypto/sha256"
	"net/http"

	employeefeature "github.com/dalemusser/hrportal/internal/app/features/employee"
	errorsfeature "github.com/dalemusser/hrportal/internal/app/features/errors"
	healthfeature "github.com/dalemusser/hrportal/internal/app/features/health"
	hrfeature "github.com/dalemusser/hrportal/internal/app/features/hr"
	loginfeature "github.com/dalemusser/hrportal/internal/app/features/login"
	logoutfeature "github.com/dalemusser/hrportal/internal/app/features/logout"
	onboardingfeature "github.com/dalemusser/hrportal/internal/app/features/onboarding"
	registerfeature "github.com/dalemusser/hrportal/internal/app/features/register"
	userinfofeature "github.com/dalemusser/hrportal/internal/app/features/userinfo"
	auditstore "github.com/dalemusser/hrportal/internal/app/store/audit"
	"github.com/dalemusser/hrportal/internal/app/system/auditlog"
	"github.com/dalemusser/hrportal/internal/app/system/auth"
	"github.com/dalemusser/hrportal/internal/app/system/backend"
	"github.com/dalemusser/hrportal/internal/app/system/landing"
	"github.com/dalemusser/hrportal/internal/app/system/ratelimit"
	"github.com/dalemusser/hrportal/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/csrf"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. At this point you have access to:
//   - coreCfg: WAFFLE core configuration (ports, env, timeouts, etc.)
//   - appCfg: app-specific configuration defined in AppConfig
//   - deps: the MongoDB client bundled in DBDeps
//   - logger: the fully configured zap.Logger for this app
//
// The portal builds one backend client shared by every feature, applies
// CSRF protection and session restoration globally, and mounts the public,
// employee and HR areas. Access rules live in each feature's routes.go.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	api, err := backend.New(backend.Config{
		BaseURL:             appCfg.BackendURL,
		Timeout:             appCfg.BackendTimeout,
		BreakerMinRequests:  appCfg.BreakerMinRequests,
		BreakerFailureRatio: appCfg.BreakerFailureRatio,
		BreakerOpenTimeout:  appCfg.BreakerOpenTimeout,
	}, logger)
	if err != nil {
		logger.Error("backend client init failed", zap.Error(err))
		return nil, err
	}

	// Initialize and boot the template engine once at startup.
	// Dev mode enables template reloading for faster iteration.
	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	var auditStore *auditstore.Store
	if deps.MongoDatabase != nil {
		auditStore = auditstore.New(deps.MongoDatabase)
	}
	auditLog := auditlog.New(auditStore, logger, auditlog.Config{
		Auth:   appCfg.AuditLogAuth,
		Review: appCfg.AuditLogReview,
	})

	errLog := errorsfeature.NewErrorLogger(sessionMgr, auditLog, logger)

	proxies, err := ratelimit.ParseTrustedProxies(appCfg.TrustedProxies)
	if err != nil {
		logger.Error("trusted proxies invalid", zap.Error(err))
		return nil, err
	}

	r := chi.NewRouter()

	// Resolve the client address first; the limiter and audit log read it.
	r.Use(proxies.RealIP)

	// CSRF tokens are keyed off the session secret. Outside production the
	// portal is usually served over plain HTTP.
	csrfKey := sha256.Sum256([]byte("csrf:" + appCfg.SessionKey))
	protect := csrf.Protect(csrfKey[:],
		csrf.Secure(secure),
		csrf.Path("/"),
		csrf.CookieName("hrportal-csrf"),
		csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger.Warn("csrf check failed", zap.String("path", r.URL.Path), zap.Error(csrf.FailureReason(r)))
			errorsfeature.RenderError(w, r, sessionMgr, http.StatusForbidden, "Form expired",
				"Your form expired. Go back, reload the page and try again.")
		})),
	)
	if !secure {
		r.Use(markPlaintext)
	}
	r.Use(protect)

	// Global auth middleware: loads SessionUser into context if logged in
	// and attaches the backend token to the request context.
	r.Use(sessionMgr.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators.
	var pinger healthfeature.Pinger
	if deps.MongoClient != nil {
		pinger = deps.MongoClient
	}
	healthHandler := healthfeature.NewHandler(pinger, api, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Static assets with pre-compressed file support (gzip/brotli)
	r.Handle("/static/*", fileserver.Handler("/static", "public"))

	r.Get("/", rootRedirect)

	// Authentication
	loginHandler := loginfeature.NewHandler(api, sessionMgr, errLog, auditLog, logger)
	if appCfg.LoginRateLimit {
		loginHandler.Limiter = ratelimit.NewLoginLimiter()
	}
	r.Mount("/login", loginfeature.Routes(loginHandler))

	logoutHandler := logoutfeature.NewHandler(api, sessionMgr, auditLog, logger)
	r.Mount("/logout", logoutfeature.Routes(logoutHandler))

	registerHandler := registerfeature.NewHandler(api, sessionMgr, auditLog, logger)
	r.Mount("/register", registerfeature.Routes(registerHandler))

	// Error pages
	errorsHandler := errorsfeature.NewHandler(sessionMgr)
	r.Get("/forbidden", errorsHandler.Forbidden)

	// Onboarding (employees whose application is not approved yet)
	onboardingHandler := onboardingfeature.NewHandler(api, sessionMgr, errLog, auditLog, logger)
	r.Mount("/onboarding", onboardingfeature.Routes(onboardingHandler, sessionMgr))

	// Employee self-service
	employeeHandler := employeefeature.NewHandler(api, sessionMgr, errLog, auditLog, logger)
	r.Mount("/employee", employeefeature.Routes(employeeHandler, sessionMgr))

	// HR
	hrHandler := hrfeature.NewHandler(api, sessionMgr, errLog, auditLog, logger)
	r.Mount("/hr", hrfeature.Routes(hrHandler, sessionMgr))

	// JSON identity for client-side scripts
	userinfofeature.MountRoutes(r, userinfofeature.NewHandler())

	// Server spans; the request context carries them into backend calls.
	return otelhttp.NewHandler(r, "hrportal"), nil
}

// rootRedirect sends visitors to their landing page: HR home, the page
// matching the employee's onboarding state, or the sign-in form.
func rootRedirect(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	switch {
	case !ok:
		http.Redirect(w, r, auth.LoginPath, http.StatusSeeOther)
	case u.Role == models.RoleHR:
		http.Redirect(w, r, auth.HRHome, http.StatusSeeOther)
	default:
		http.Redirect(w, r, landing.TargetFor(u.Application.Status), http.StatusSeeOther)
	}
}

// markPlaintext tells the CSRF middleware that a request arrived over plain
// HTTP so it skips the strict Referer check meant for HTTPS.
func markPlaintext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.TLS == nil {
			r = csrf.PlaintextHTTPRequest(r)
		}
		next.ServeHTTP(w, r)
	})
}
