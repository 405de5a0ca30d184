// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dalemusser/hrportal/internal/app/system/ratelimit"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for the HR portal.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: backend_url, session_name, etc.
//   - Environment variables: HRPORTAL_BACKEND_URL, HRPORTAL_SESSION_NAME, etc.
//   - Command-line flags: --backend_url, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI (audit trail)"},
	{Name: "mongo_database", Default: "hrportal", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 50, Desc: "MongoDB max connection pool size"},
	{Name: "mongo_min_pool_size", Default: 2, Desc: "MongoDB min connection pool size"},

	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "hrportal-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "24h", Desc: "Session cookie lifetime (e.g., 8h, 24h)"},

	// HR REST backend
	{Name: "backend_url", Default: "http://localhost:8080/api", Desc: "Base URL of the HR REST backend"},
	{Name: "backend_timeout", Default: "15s", Desc: "Timeout for each backend request"},

	// Circuit breaker
	{Name: "breaker_min_requests", Default: 5, Desc: "Requests in an interval before the breaker may trip"},
	{Name: "breaker_failure_ratio", Default: "0.6", Desc: "Failure ratio (0-1] that trips the breaker"},
	{Name: "breaker_open_timeout", Default: "30s", Desc: "How long the breaker stays open before probing"},

	{Name: "login_rate_limit", Default: true, Desc: "Throttle sign-in attempts per IP and per account"},
	{Name: "trusted_proxies", Default: "", Desc: "Comma-separated CIDRs/IPs of reverse proxies allowed to set X-Forwarded-For"},

	// Tracing
	{Name: "otel_endpoint", Default: "", Desc: "OTLP/HTTP collector host:port (blank disables trace export)"},
	{Name: "otel_insecure", Default: true, Desc: "Send traces to the collector over plain HTTP"},

	// Audit logging settings
	{Name: "audit_log_auth", Default: "all", Desc: "Auth event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_review", Default: "all", Desc: "Onboarding/visa review logging: 'all' (db+log), 'db', 'log', or 'off'"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, HRPORTAL_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "HRPORTAL", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	ratio, err := strconv.ParseFloat(strings.TrimSpace(appValues.String("breaker_failure_ratio")), 64)
	if err != nil {
		return nil, AppConfig{}, fmt.Errorf("breaker_failure_ratio: %w", err)
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),
		SessionMaxAge: appValues.Duration("session_max_age", 24*time.Hour),

		BackendURL:     strings.TrimSpace(appValues.String("backend_url")),
		BackendTimeout: appValues.Duration("backend_timeout", 15*time.Second),

		BreakerMinRequests:  uint32(appValues.Int("breaker_min_requests")),
		BreakerFailureRatio: ratio,
		BreakerOpenTimeout:  appValues.Duration("breaker_open_timeout", 30*time.Second),

		LoginRateLimit: appValues.Bool("login_rate_limit"),
		TrustedProxies: appValues.String("trusted_proxies"),

		OTelEndpoint: strings.TrimSpace(appValues.String("otel_endpoint")),
		OTelInsecure: appValues.Bool("otel_insecure"),

		AuditLogAuth:   appValues.String("audit_log_auth"),
		AuditLogReview: appValues.String("audit_log_review"),
	}

	return coreCfg, appCfg, nil
}

var auditModes = map[string]bool{"all": true, "db": true, "log": true, "off": true}

// ValidateConfig performs app-specific config validation.
//
// The MongoDB URI and backend URL are checked here so that a typo fails
// startup instead of the first request.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	if err := validateBackendURL(appCfg.BackendURL); err != nil {
		logger.Error("invalid backend URL", zap.String("backend_url", appCfg.BackendURL), zap.Error(err))
		return err
	}

	if appCfg.BreakerFailureRatio <= 0 || appCfg.BreakerFailureRatio > 1 {
		return fmt.Errorf("breaker_failure_ratio must be in (0, 1], got %v", appCfg.BreakerFailureRatio)
	}

	if _, err := ratelimit.ParseTrustedProxies(appCfg.TrustedProxies); err != nil {
		return fmt.Errorf("trusted_proxies: %w", err)
	}

	if coreCfg != nil && coreCfg.Env == "prod" && len(appCfg.SessionKey) < 32 {
		return fmt.Errorf("session_key must be at least 32 characters in production")
	}

	for name, v := range map[string]string{"audit_log_auth": appCfg.AuditLogAuth, "audit_log_review": appCfg.AuditLogReview} {
		if v != "" && !auditModes[v] {
			return fmt.Errorf("%s must be one of all, db, log, off; got %q", name, v)
		}
	}

	return nil
}

func validateBackendURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("backend_url is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid backend_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("backend_url must be http or https, got %q", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("backend_url has no host: %q", raw)
	}
	return nil
}
