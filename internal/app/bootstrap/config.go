// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dalemusser/campusconnect/internal/app/system/auditlog"
	"github.com/dalemusser/campusconnect/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for CampusConnect.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, admin_emails, etc.
//   - Environment variables: CAMPUSCONNECT_MONGO_URI, CAMPUSCONNECT_ADMIN_EMAILS, etc.
//   - Command-line flags: --mongo_uri, --admin_emails, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "campus_connect", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	// Moderation classifier
	{Name: "moderation_enabled", Default: true, Desc: "Screen messages and requests with the toxicity classifier"},
	{Name: "moderation_endpoint", Default: "https://api-inference.huggingface.co/models/unitary/toxic-bert", Desc: "Classifier inference URL"},
	{Name: "moderation_api_key", Default: "", Desc: "Classifier API key (blank disables moderation)"},
	{Name: "moderation_timeout", Default: "10s", Desc: "Classifier request timeout"},
	{Name: "moderation_message_threshold", Default: "0.5", Desc: "Toxicity score at which message text is redacted"},
	{Name: "moderation_request_threshold", Default: "0.7", Desc: "Toxicity score at which a request is rejected"},

	// Admin access
	{Name: "admin_emails", Default: "", Desc: "Comma separated admin email allowlist"},
	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Admin session signing key (must be strong in production)"},
	{Name: "session_name", Default: "campusconnect-admin", Desc: "Admin session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Admin session cookie domain (blank means current host)"},
	{Name: "admin_session_max_age", Default: "8h", Desc: "Admin session lifetime"},

	// Bearer identity tokens
	{Name: "identity_token_secret", Default: "", Desc: "HMAC secret for bearer identity tokens (blank disables them)"},
	{Name: "identity_token_issuer", Default: "campusconnect", Desc: "Expected issuer of bearer identity tokens"},

	{Name: "stats_refresh_interval", Default: "1m", Desc: "How often aggregate gauges are recomputed"},

	// Audit logging settings
	{Name: "audit_log_admin", Default: "all", Desc: "Admin event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_requests", Default: "all", Desc: "Request owner event logging: 'all' (db+log), 'db', 'log', or 'off'"},

	// Rate limits (requests per minute per client IP, 0 disables)
	{Name: "admin_rate_limit", Default: 60, Desc: "Requests per minute per IP on /api/admin"},
	{Name: "moderation_check_rate_limit", Default: 30, Desc: "Requests per minute per IP on /api/moderation/check"},

	{Name: "client_url", Default: "http://localhost:5173", Desc: "Browser client origin allowed by CORS"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles .env files, config files,
// environment variables (WAFFLE_* for core, CAMPUSCONNECT_* for app) and
// flags, merged with precedence flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "CAMPUSCONNECT", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	msgThreshold, err := parseThreshold("moderation_message_threshold", appValues.String("moderation_message_threshold"))
	if err != nil {
		return nil, AppConfig{}, err
	}
	reqThreshold, err := parseThreshold("moderation_request_threshold", appValues.String("moderation_request_threshold"))
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		ModerationEnabled:          appValues.Bool("moderation_enabled"),
		ModerationEndpoint:         appValues.String("moderation_endpoint"),
		ModerationAPIKey:           appValues.String("moderation_api_key"),
		ModerationTimeout:          appValues.Duration("moderation_timeout", 10*time.Second),
		ModerationMessageThreshold: msgThreshold,
		ModerationRequestThreshold: reqThreshold,

		AdminEmails:        appValues.String("admin_emails"),
		SessionKey:         appValues.String("session_key"),
		SessionName:        appValues.String("session_name"),
		SessionDomain:      appValues.String("session_domain"),
		AdminSessionMaxAge: appValues.Duration("admin_session_max_age", 8*time.Hour),

		IdentityTokenSecret: appValues.String("identity_token_secret"),
		IdentityTokenIssuer: appValues.String("identity_token_issuer"),

		StatsRefreshInterval: appValues.Duration("stats_refresh_interval", time.Minute),

		AuditLogAdmin:    appValues.String("audit_log_admin"),
		AuditLogRequests: appValues.String("audit_log_requests"),

		AdminRateLimit:           appValues.Int("admin_rate_limit"),
		ModerationCheckRateLimit: appValues.Int("moderation_check_rate_limit"),

		ClientURL: appValues.String("client_url"),
	}

	// TIMEOUT_* overrides apply before ConnectDB uses timeouts.Ping.
	if n := timeouts.ConfigureFromEnv(); n > 0 {
		logger.Info("timeouts overridden from environment", zap.Int("count", n))
	}

	if appCfg.ModerationEnabled && appCfg.ModerationAPIKey == "" {
		logger.Warn("moderation_api_key is empty; content will be accepted unchecked")
	}

	return coreCfg, appCfg, nil
}

func parseThreshold(key, raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not a number", key, raw)
	}
	return v, nil
}

// ValidateConfig performs app-specific config validation.
//
// The MongoDB URI is checked before any connection is attempted. The
// moderation thresholds are probabilities and must sit in (0, 1].
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if appCfg.MongoDatabase == "" {
		return fmt.Errorf("mongo_database must be set")
	}
	if appCfg.MongoMinPoolSize > appCfg.MongoMaxPoolSize {
		return fmt.Errorf("mongo_min_pool_size (%d) exceeds mongo_max_pool_size (%d)",
			appCfg.MongoMinPoolSize, appCfg.MongoMaxPoolSize)
	}

	for key, v := range map[string]float64{
		"moderation_message_threshold": appCfg.ModerationMessageThreshold,
		"moderation_request_threshold": appCfg.ModerationRequestThreshold,
	} {
		if v <= 0 || v > 1 {
			return fmt.Errorf("%s must be in (0, 1], got %g", key, v)
		}
	}
	if appCfg.ModerationTimeout <= 0 {
		return fmt.Errorf("moderation_timeout must be positive")
	}

	for key, v := range map[string]string{
		"audit_log_admin":    appCfg.AuditLogAdmin,
		"audit_log_requests": appCfg.AuditLogRequests,
	} {
		switch v {
		case auditlog.All, auditlog.DB, auditlog.Log, auditlog.Off:
		default:
			return fmt.Errorf("%s must be one of all, db, log, off; got %q", key, v)
		}
	}

	if appCfg.AdminRateLimit < 0 || appCfg.ModerationCheckRateLimit < 0 {
		return fmt.Errorf("rate limits must not be negative")
	}

	if coreCfg != nil && coreCfg.Env == "prod" && appCfg.AdminEmails == "" {
		logger.Warn("admin_emails is empty; no one can open an admin session")
	}

	return nil
}
