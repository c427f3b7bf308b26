// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gamifystation/pointsboard/internal/app/store/audit"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Config holds audit logging configuration. Each category is one of
// "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only), or
// "off".
type Config struct {
	// Auth controls logging for authentication events (signup, login, logout).
	Auth string
	// Points controls logging for award/deduction events.
	Points string
	// Tasks controls logging for task lifecycle events.
	Tasks string
}

// Logger provides convenience methods for logging audit events.
// It logs to both MongoDB (via audit.Store) and structured logs (via zap).
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

// getClientIP extracts the client IP from the request.
func getClientIP(r *http.Request) string {
	// Check X-Forwarded-For header first (for reverse proxies)
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}

// logToZap logs the event to zap with consistent structure.
func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}

	if event.UserID != nil {
		fields = append(fields, zap.String("user_id", event.UserID.Hex()))
	}
	if event.ActorID != nil {
		fields = append(fields, zap.String("actor_id", event.ActorID.Hex()))
	}
	if event.TaskID != nil {
		fields = append(fields, zap.String("task_id", event.TaskID.Hex()))
	}
	if event.Points != 0 {
		fields = append(fields, zap.Int("points", event.Points))
	}
	if event.Reason != "" {
		fields = append(fields, zap.String("reason", event.Reason))
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

// Log records an audit event based on configuration.
// If the logger is nil, this is a no-op (allows tests to use nil audit logger).
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	var setting string
	switch event.Category {
	case audit.CategoryAuth:
		setting = l.config.Auth
	case audit.CategoryPoints:
		setting = l.config.Points
	case audit.CategoryTasks:
		setting = l.config.Tasks
	default:
		setting = "all"
	}

	if setting == "off" {
		return
	}

	if setting == "all" || setting == "log" {
		l.logToZap(event)
	}

	if setting == "all" || setting == "db" {
		if l.store != nil {
			if err := l.store.Log(ctx, event); err != nil {
				l.zapLog.Error("failed to persist audit event",
					zap.Error(err),
					zap.String("event_type", event.EventType))
			}
		}
	}
}

/*── auth events ─────────────────────────────────────────────────────────────*/

// LoginSuccess records a successful login.
func (l *Logger) LoginSuccess(ctx context.Context, r *http.Request, userID primitive.ObjectID, email string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLoginSuccess,
		UserID:    &userID,
		IP:        getClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
		Details:   map[string]string{"email": email},
	})
}

// LoginFailedUserNotFound records a login attempt for an unknown email.
func (l *Logger) LoginFailedUserNotFound(ctx context.Context, r *http.Request, email string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     audit.EventLoginFailedUserNotFound,
		IP:            getClientIP(r),
		UserAgent:     r.UserAgent(),
		Success:       false,
		FailureReason: "user not found",
		Details:       map[string]string{"email": email},
	})
}

// LoginFailedWrongPassword records a login attempt with a bad password.
func (l *Logger) LoginFailedWrongPassword(ctx context.Context, r *http.Request, userID primitive.ObjectID, email string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     audit.EventLoginFailedWrongPassword,
		UserID:        &userID,
		IP:            getClientIP(r),
		UserAgent:     r.UserAgent(),
		Success:       false,
		FailureReason: "wrong password",
		Details:       map[string]string{"email": email},
	})
}

// Logout records a sign-out.
func (l *Logger) Logout(ctx context.Context, r *http.Request, userID primitive.ObjectID) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLogout,
		UserID:    &userID,
		IP:        getClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
	})
}

// UserCreated records a signup.
func (l *Logger) UserCreated(ctx context.Context, r *http.Request, userID primitive.ObjectID, role string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventUserCreated,
		UserID:    &userID,
		IP:        getClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
		Details:   map[string]string{"role": role},
	})
}

/*── points events ───────────────────────────────────────────────────────────*/

// PointsAwarded records a successful award or deduction.
func (l *Logger) PointsAwarded(ctx context.Context, r *http.Request, userID, actorID primitive.ObjectID, points int, reason string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryPoints,
		EventType: audit.EventPointsAwarded,
		UserID:    &userID,
		ActorID:   &actorID,
		Points:    points,
		Reason:    reason,
		IP:        getClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
	})
}

// PointsRejected records an award that failed validation.
func (l *Logger) PointsRejected(ctx context.Context, r *http.Request, actorID primitive.ObjectID, points int, failure string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryPoints,
		EventType:     audit.EventPointsRejected,
		ActorID:       &actorID,
		Points:        points,
		IP:            getClientIP(r),
		UserAgent:     r.UserAgent(),
		Success:       false,
		FailureReason: failure,
	})
}

/*── task events ─────────────────────────────────────────────────────────────*/

// TaskCreated records a new task.
func (l *Logger) TaskCreated(ctx context.Context, r *http.Request, taskID, actorID primitive.ObjectID, points int) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryTasks,
		EventType: audit.EventTaskCreated,
		TaskID:    &taskID,
		ActorID:   &actorID,
		Points:    points,
		IP:        getClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
	})
}

// TaskApproved records an approval, with how many volunteers were paid.
func (l *Logger) TaskApproved(ctx context.Context, r *http.Request, taskID, actorID primitive.ObjectID, points, volunteers int) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryTasks,
		EventType: audit.EventTaskApproved,
		TaskID:    &taskID,
		ActorID:   &actorID,
		Points:    points,
		IP:        getClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
		Details:   map[string]string{"volunteers": strconv.Itoa(volunteers)},
	})
}

// TaskRejected records a rejection.
func (l *Logger) TaskRejected(ctx context.Context, r *http.Request, taskID, actorID primitive.ObjectID) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryTasks,
		EventType: audit.EventTaskRejected,
		TaskID:    &taskID,
		ActorID:   &actorID,
		IP:        getClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
	})
}

// TaskDeleted records a deletion.
func (l *Logger) TaskDeleted(ctx context.Context, r *http.Request, taskID, actorID primitive.ObjectID) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryTasks,
		EventType: audit.EventTaskDeleted,
		TaskID:    &taskID,
		ActorID:   &actorID,
		IP:        getClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
	})
}
