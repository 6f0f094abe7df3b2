// internal/app/system/auditlog/logger.go
package auditlog

// Actor and target ids are external identity ids; request ids are hex
// ObjectIDs.

import (
	"context"
	"net/http"
	"strings"

	"github.com/dalemusser/campusconnect/internal/app/store/audit"
	"github.com/dalemusser/campusconnect/internal/app/system/requestid"
	"github.com/dalemusser/campusconnect/internal/domain/models"
	"go.uber.org/zap"
)

// Destinations for a category.
const (
	All = "all" // MongoDB + zap
	DB  = "db"
	Log = "log"
	Off = "off"
)

// Config holds audit logging configuration per category.
type Config struct {
	// Requests covers deletions, status changes and interest decisions by request owners.
	Requests string
	// Admin covers admin sessions and administrative deletions.
	Admin string
}

// Sink persists events.
type Sink interface {
	Log(ctx context.Context, event audit.Event) error
}

// Logger records audit events to the store and to zap.
type Logger struct {
	store  Sink
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(store Sink, zapLog *zap.Logger, config Config) *Logger {
	if zapLog == nil {
		zapLog = zap.NewNop()
	}
	return &Logger{store: store, zapLog: zapLog, config: config}
}

// getClientIP extracts the client IP, preferring proxy headers.
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}

func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("actor_id", event.ActorID),
		zap.String("ip", event.IP),
	}
	if event.RequestID != "" {
		fields = append(fields, zap.String("request_id", event.RequestID))
	}
	if event.TargetID != "" {
		fields = append(fields, zap.String("target_id", event.TargetID))
	}
	if event.Reason != "" {
		fields = append(fields, zap.String("reason", event.Reason))
	}
	if event.CorrelationID != "" {
		fields = append(fields, zap.String("correlation_id", event.CorrelationID))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records event according to the category's destination setting.
// A nil Logger is a no-op.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	setting := All
	switch event.Category {
	case audit.CategoryRequests:
		setting = l.config.Requests
	case audit.CategoryAdmin:
		setting = l.config.Admin
	}
	if setting == "" {
		setting = All
	}
	if setting == Off {
		return
	}

	if setting == All || setting == Log {
		l.logToZap(event)
	}
	if (setting == All || setting == DB) && l.store != nil {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

func base(r *http.Request, category, eventType string, actor models.Identity) audit.Event {
	return audit.Event{
		Category:      category,
		EventType:     eventType,
		ActorID:       actor.ExternalID,
		ActorMail:     actor.Email,
		IP:            getClientIP(r),
		UserAgent:     r.UserAgent(),
		CorrelationID: requestid.FromContext(r.Context()),
		Success:       true,
	}
}

// --- Request events ---

// RequestDeleted logs an owner deleting their request.
func (l *Logger) RequestDeleted(ctx context.Context, r *http.Request, actor models.Identity, req models.Request, reason string) {
	ev := base(r, audit.CategoryRequests, audit.EventRequestDeleted, actor)
	ev.RequestID = req.ID.Hex()
	ev.Reason = reason
	ev.Details = map[string]string{"title": req.Title, "category": req.Category}
	l.Log(ctx, ev)
}

// StatusChanged logs a status update.
func (l *Logger) StatusChanged(ctx context.Context, r *http.Request, actor models.Identity, requestID, from, to, reason string) {
	ev := base(r, audit.CategoryRequests, audit.EventRequestStatusChanged, actor)
	ev.RequestID = requestID
	ev.Reason = reason
	ev.Details = map[string]string{"from": from, "to": to}
	l.Log(ctx, ev)
}

// InterestDecided logs an accept or reject of an interested user.
func (l *Logger) InterestDecided(ctx context.Context, r *http.Request, actor models.Identity, requestID, targetID, decision string) {
	eventType := audit.EventInterestAccepted
	if decision == models.InterestRejected {
		eventType = audit.EventInterestRejected
	}
	ev := base(r, audit.CategoryRequests, eventType, actor)
	ev.RequestID = requestID
	ev.TargetID = targetID
	l.Log(ctx, ev)
}

// --- Admin events ---

// AdminSessionStarted logs an admin signing in.
func (l *Logger) AdminSessionStarted(ctx context.Context, r *http.Request, actor models.Identity) {
	l.Log(ctx, base(r, audit.CategoryAdmin, audit.EventAdminSessionStarted, actor))
}

// AdminSessionDenied logs a non-allowlisted identity asking for an admin session.
func (l *Logger) AdminSessionDenied(ctx context.Context, r *http.Request, actor models.Identity) {
	ev := base(r, audit.CategoryAdmin, audit.EventAdminSessionDenied, actor)
	ev.Success = false
	ev.FailureReason = "not on admin allowlist"
	l.Log(ctx, ev)
}

// AdminSessionEnded logs an admin signing out.
func (l *Logger) AdminSessionEnded(ctx context.Context, r *http.Request, actor models.Identity) {
	l.Log(ctx, base(r, audit.CategoryAdmin, audit.EventAdminSessionEnded, actor))
}

// AdminRequestDeleted logs an administrative deletion of someone else's request.
func (l *Logger) AdminRequestDeleted(ctx context.Context, r *http.Request, actor models.Identity, req models.Request, reason string) {
	ev := base(r, audit.CategoryAdmin, audit.EventAdminRequestDeleted, actor)
	ev.RequestID = req.ID.Hex()
	ev.TargetID = req.Creator.ExternalID
	ev.Reason = reason
	ev.Details = map[string]string{"title": req.Title, "category": req.Category}
	l.Log(ctx, ev)
}
