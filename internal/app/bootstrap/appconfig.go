// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration.
//
// WAFFLE's CoreConfig handles framework-level settings like:
//   - HTTP/HTTPS ports and TLS configuration
//   - Logging level and format
//   - CORS settings
//   - Request body size limits
//
// AppConfig carries what the HR portal itself needs: where the HR REST
// backend lives and how hard to lean on it, the session cookie, and the
// MongoDB database that holds the audit trail.
type AppConfig struct {
	// MongoDB (audit trail only)
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session management configuration
	SessionKey    string        // Secret key for signing session cookies (must be strong in production)
	SessionName   string        // Cookie name for sessions (default: hrportal-session)
	SessionDomain string        // Cookie domain (blank means current host)
	SessionMaxAge time.Duration // Cookie lifetime; the backend token may end the session sooner

	// HR REST backend
	BackendURL     string        // Base URL, e.g. http://localhost:8080/api
	BackendTimeout time.Duration // Per-request timeout

	// Circuit breaker around the backend client
	BreakerMinRequests  uint32
	BreakerFailureRatio float64
	BreakerOpenTimeout  time.Duration

	// Sign-in throttling and client address resolution
	LoginRateLimit bool
	TrustedProxies string // comma-separated CIDRs/IPs whose forwarding headers are believed

	// OpenTelemetry trace export (blank endpoint disables it)
	OTelEndpoint string
	OTelInsecure bool

	// Audit logging: "all" (db+log), "db", "log", or "off"
	AuditLogAuth   string
	AuditLogReview string
}
