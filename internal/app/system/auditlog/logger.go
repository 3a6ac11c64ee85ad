// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"

	"github.com/dalemusser/taskhub/internal/app/store/audit"
	"github.com/dalemusser/taskhub/internal/app/system/ratelimit"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Config controls where each event category is written.
// Values: "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only), "off".
type Config struct {
	Auth  string
	Task  string
	Admin string
}

// Logger records audit events to MongoDB (via audit.Store) and to
// structured logs (via zap). A nil *Logger is a no-op, which lets
// handlers carry an optional audit logger without nil checks.
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{store: store, zapLog: zapLog, config: config}
}

func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}
	if event.ActorID != nil {
		fields = append(fields, zap.String("actor_id", event.ActorID.Hex()))
	}
	if event.TargetID != nil {
		fields = append(fields, zap.String("target_id", event.TargetID.Hex()))
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

// Log records an event according to the configured destination for its
// category. Safe to call on a nil Logger.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	var setting string
	switch event.Category {
	case audit.CategoryAuth:
		setting = l.config.Auth
	case audit.CategoryTask:
		setting = l.config.Task
	default:
		setting = l.config.Admin
	}

	if setting == "off" {
		return
	}
	if setting == "all" || setting == "log" {
		l.logToZap(event)
	}
	if setting == "all" || setting == "db" {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType))
		}
	}
}

// --- Authentication events ---

func (l *Logger) Registered(ctx context.Context, r *http.Request, userID primitive.ObjectID, email, role string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventRegistered,
		ActorID:   &userID,
		IP:        ratelimit.ClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
		Details:   map[string]string{"email": email, "role": role},
	})
}

func (l *Logger) LoginSuccess(ctx context.Context, r *http.Request, userID primitive.ObjectID, email string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLoginSuccess,
		ActorID:   &userID,
		IP:        ratelimit.ClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
		Details:   map[string]string{"email": email},
	})
}

// LoginFailed covers both unknown emails and wrong passwords. The
// attempted email goes into details so operators can spot probing.
func (l *Logger) LoginFailed(ctx context.Context, r *http.Request, attemptedEmail, reason string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     audit.EventLoginFailed,
		IP:            ratelimit.ClientIP(r),
		UserAgent:     r.UserAgent(),
		Success:       false,
		FailureReason: reason,
		Details:       map[string]string{"attempted_email": attemptedEmail},
	})
}

func (l *Logger) LoginRateLimited(ctx context.Context, r *http.Request, attemptedEmail string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     audit.EventLoginRateLimited,
		IP:            ratelimit.ClientIP(r),
		UserAgent:     r.UserAgent(),
		Success:       false,
		FailureReason: "rate limit exceeded",
		Details:       map[string]string{"attempted_email": attemptedEmail},
	})
}

func (l *Logger) Logout(ctx context.Context, r *http.Request, userIDStr string) {
	var userID *primitive.ObjectID
	if oid, err := primitive.ObjectIDFromHex(userIDStr); err == nil {
		userID = &oid
	}
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLogout,
		ActorID:   userID,
		IP:        ratelimit.ClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
	})
}

// --- Task events ---

func (l *Logger) TaskCreated(ctx context.Context, r *http.Request, actorID, taskID primitive.ObjectID, title string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryTask,
		EventType: audit.EventTaskCreated,
		ActorID:   &actorID,
		TargetID:  &taskID,
		IP:        ratelimit.ClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
		Details:   map[string]string{"title": title},
	})
}

func (l *Logger) TaskUpdated(ctx context.Context, r *http.Request, actorID, taskID primitive.ObjectID) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryTask,
		EventType: audit.EventTaskUpdated,
		ActorID:   &actorID,
		TargetID:  &taskID,
		IP:        ratelimit.ClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
	})
}

func (l *Logger) TaskDeleted(ctx context.Context, r *http.Request, actorID, taskID primitive.ObjectID) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryTask,
		EventType: audit.EventTaskDeleted,
		ActorID:   &actorID,
		TargetID:  &taskID,
		IP:        ratelimit.ClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
	})
}

// --- Team events ---

func (l *Logger) TeamCreated(ctx context.Context, r *http.Request, actorID, teamID primitive.ObjectID, name string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryTeam,
		EventType: audit.EventTeamCreated,
		ActorID:   &actorID,
		TeamID:    &teamID,
		IP:        ratelimit.ClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
		Details:   map[string]string{"name": name},
	})
}

func (l *Logger) TeamUpdated(ctx context.Context, r *http.Request, actorID, teamID primitive.ObjectID) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryTeam,
		EventType: audit.EventTeamUpdated,
		ActorID:   &actorID,
		TeamID:    &teamID,
		IP:        ratelimit.ClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
	})
}

func (l *Logger) TeamDeleted(ctx context.Context, r *http.Request, actorID, teamID primitive.ObjectID) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryTeam,
		EventType: audit.EventTeamDeleted,
		ActorID:   &actorID,
		TeamID:    &teamID,
		IP:        ratelimit.ClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
	})
}

// --- User admin events ---

func (l *Logger) UserUpdated(ctx context.Context, r *http.Request, actorID, targetID primitive.ObjectID, fieldsChanged string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryUser,
		EventType: audit.EventUserUpdated,
		ActorID:   &actorID,
		TargetID:  &targetID,
		IP:        ratelimit.ClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
		Details:   map[string]string{"fields_changed": fieldsChanged},
	})
}

func (l *Logger) UserDeleted(ctx context.Context, r *http.Request, actorID, targetID primitive.ObjectID) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryUser,
		EventType: audit.EventUserDeleted,
		ActorID:   &actorID,
		TargetID:  &targetID,
		IP:        ratelimit.ClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
	})
}
