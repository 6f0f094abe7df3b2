// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for CampusConnect.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig covers the
// framework-level settings (ports, TLS, logging level); everything specific
// to the campus API lives here and is passed to every lifecycle hook.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Moderation classifier
	ModerationEnabled          bool
	ModerationEndpoint         string
	ModerationAPIKey           string // blank disables the classifier; content is then accepted
	ModerationTimeout          time.Duration
	ModerationMessageThreshold float64
	ModerationRequestThreshold float64

	// Admin access
	AdminEmails        string // comma separated allowlist
	SessionKey         string // Secret key for signing admin session cookies
	SessionName        string // Cookie name (default: campusconnect-admin)
	SessionDomain      string // Cookie domain (blank means current host)
	AdminSessionMaxAge time.Duration

	// Optional bearer identity tokens
	IdentityTokenSecret string
	IdentityTokenIssuer string

	// Background stats gauges
	StatsRefreshInterval time.Duration

	// Audit logging destinations: all, db, log, off
	AuditLogAdmin    string
	AuditLogRequests string

	// Per-IP requests per minute; 0 disables
	AdminRateLimit           int
	ModerationCheckRateLimit int

	// Browser client origin allowed by CORS
	ClientURL string
}
