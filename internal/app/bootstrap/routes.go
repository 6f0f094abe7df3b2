// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"
	"strings"
	"time"

	adminfeature "github.com/dalemusser/campusconnect/internal/app/features/admin"
	auditlogfeature "github.com/dalemusser/campusconnect/internal/app/features/auditlog"
	feedbackfeature "github.com/dalemusser/campusconnect/internal/app/features/feedback"
	healthfeature "github.com/dalemusser/campusconnect/internal/app/features/health"
	messagesfeature "github.com/dalemusser/campusconnect/internal/app/features/messages"
	moderationfeature "github.com/dalemusser/campusconnect/internal/app/features/moderation"
	requestsfeature "github.com/dalemusser/campusconnect/internal/app/features/requests"
	usersfeature "github.com/dalemusser/campusconnect/internal/app/features/users"
	auditstore "github.com/dalemusser/campusconnect/internal/app/store/audit"
	feedbackstore "github.com/dalemusser/campusconnect/internal/app/store/feedback"
	messagestore "github.com/dalemusser/campusconnect/internal/app/store/messages"
	requeststore "github.com/dalemusser/campusconnect/internal/app/store/requests"
	userstore "github.com/dalemusser/campusconnect/internal/app/store/users"
	"github.com/dalemusser/campusconnect/internal/app/system/auditlog"
	"github.com/dalemusser/campusconnect/internal/app/system/auth"
	"github.com/dalemusser/campusconnect/internal/app/system/authz"
	"github.com/dalemusser/campusconnect/internal/app/system/categories"
	"github.com/dalemusser/campusconnect/internal/app/system/identity"
	"github.com/dalemusser/campusconnect/internal/app/system/metrics"
	"github.com/dalemusser/campusconnect/internal/app/system/moderation"
	"github.com/dalemusser/campusconnect/internal/app/system/ratelimit"
	"github.com/dalemusser/campusconnect/internal/app/system/requestid"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// limiters belong to the most recently built handler. They are stopped in
// Shutdown or when BuildHandler runs again.
var limiters []*ratelimit.Limiter

func stopLimiters() {
	for _, l := range limiters {
		l.Stop()
	}
	limiters = nil
}

// BuildHandler constructs the root HTTP handler for the campus API.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// Startup have completed. Shared services (identity resolution, admin
// sessions, moderation and audit logging) are built once here and handed to
// each feature by constructor. Every route under /api speaks JSON.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.MongoDatabase

	// Stores
	users := userstore.New(db)
	requests := requeststore.New(db)
	msgs := messagestore.New(db)
	fb := feedbackstore.New(db)
	events := auditstore.New(db)

	// Shared services
	var tokens *identity.TokenVerifier
	if appCfg.IdentityTokenSecret != "" {
		tokens = identity.NewTokenVerifier(appCfg.IdentityTokenSecret, appCfg.IdentityTokenIssuer)
	}
	resolver := identity.NewResolver(tokens)

	// Secure cookies are enabled in production mode.
	sessions := auth.NewAdminSessions(auth.SessionConfig{
		Key:       appCfg.SessionKey,
		Name:      appCfg.SessionName,
		Domain:    appCfg.SessionDomain,
		MaxAge:    appCfg.AdminSessionMaxAge,
		Secure:    coreCfg.Env == "prod",
		Allowlist: auth.ParseAllowlist(appCfg.AdminEmails),
	}, logger)

	gateway := moderation.New(moderation.Config{
		Enabled:          appCfg.ModerationEnabled,
		Endpoint:         appCfg.ModerationEndpoint,
		APIKey:           appCfg.ModerationAPIKey,
		Timeout:          appCfg.ModerationTimeout,
		MessageThreshold: appCfg.ModerationMessageThreshold,
		RequestThreshold: appCfg.ModerationRequestThreshold,
	}, logger)

	auditLogger := auditlog.New(events, logger, auditlog.Config{
		Requests: appCfg.AuditLogRequests,
		Admin:    appCfg.AuditLogAdmin,
	})

	gate := &authz.Gate{Resolver: resolver, Sessions: sessions, Log: logger}

	stopLimiters()
	adminLimit := ratelimit.New(appCfg.AdminRateLimit, time.Minute)
	checkLimit := ratelimit.New(appCfg.ModerationCheckRateLimit, time.Minute)
	limiters = []*ratelimit.Limiter{adminLimit, checkLimit}

	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(requestid.Middleware)
	r.Use(metrics.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins(appCfg.ClientURL),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", identity.HeaderID, identity.HeaderEmail, identity.HeaderName, requestid.Header},
		ExposedHeaders:   []string{requestid.Header},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(api chi.Router) {
		usersHandler := usersfeature.NewHandler(users, requests, resolver, logger)
		api.Mount("/users", usersfeature.Routes(usersHandler))

		requestsHandler := requestsfeature.NewHandler(requests, categories.Default(), gateway, resolver, auditLogger, logger)
		api.Mount("/requests", requestsfeature.Routes(requestsHandler))

		messagesHandler := messagesfeature.NewHandler(msgs, users, gateway, resolver, logger)
		api.Mount("/messages", messagesfeature.Routes(messagesHandler))

		feedbackHandler := feedbackfeature.NewHandler(fb, resolver, logger)
		api.Mount("/feedback", feedbackfeature.Routes(feedbackHandler))

		moderationHandler := moderationfeature.NewHandler(gateway, logger)
		api.With(checkLimit.Middleware(logger)).Mount("/moderation", moderationfeature.Routes(moderationHandler))

		// Administration: session endpoints are open, the rest sits behind the gate.
		auditHandler := auditlogfeature.NewHandler(events, logger)
		adminHandler := adminfeature.NewHandler(
			sessions, resolver, requests, users, fb,
			newCollector(db), auditLogger, logger,
		)
		api.With(adminLimit.Middleware(logger)).Mount("/admin", adminfeature.Routes(adminHandler, gate.RequireAdmin,
			auditlogfeature.Routes(auditHandler, gate.RequireAdmin)))
	})

	return r, nil
}

// allowedOrigins splits a comma separated client_url value.
func allowedOrigins(raw string) []string {
	var out []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, strings.TrimRight(o, "/"))
		}
	}
	return out
}
