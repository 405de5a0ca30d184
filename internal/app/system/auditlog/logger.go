// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"

	"github.com/dalemusser/hrportal/internal/app/store/audit"
	"github.com/dalemusser/hrportal/internal/app/system/ratelimit"
	"github.com/dalemusser/hrportal/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// Config holds audit logging configuration.
type Config struct {
	// Auth controls logging for authentication events (login, logout, forced logout, registration).
	// Values: "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only), "off" (disabled)
	Auth string
	// Review controls logging for onboarding and visa review events.
	// Values: "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only), "off" (disabled)
	Review string
}

// Logger provides convenience methods for logging audit events.
// It logs to both MongoDB (via audit.Store) and structured logs (via zap).
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger. store may be nil, in which case only
// the zap destination is used.
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
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

	if event.UserID != "" {
		fields = append(fields, zap.String("user_id", event.UserID))
	}
	if event.ActorID != "" {
		fields = append(fields, zap.String("actor_id", event.ActorID))
	}
	if event.EmployeeID != "" {
		fields = append(fields, zap.String("employee_id", event.EmployeeID))
	}
	if event.ApplicationID != "" {
		fields = append(fields, zap.String("application_id", event.ApplicationID))
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
// Logging destination is controlled by config: "all", "db", "log", or "off".
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	var setting string
	switch event.Category {
	case audit.CategoryAuth:
		setting = l.config.Auth
	case audit.CategoryReview:
		setting = l.config.Review
	default:
		setting = "all"
	}
	if setting == "" {
		setting = "all"
	}

	if setting == "off" {
		return
	}

	if setting == "all" || setting == "log" {
		l.logToZap(event)
	}

	if (setting == "all" || setting == "db") && l.store != nil {
		wctx, cancel := timeouts.WithTimeout(ctx, timeouts.Short(), l.zapLog, "audit write")
		defer cancel()
		if err := l.store.Log(wctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

func (l *Logger) authEvent(r *http.Request, eventType, userID string, success bool) audit.Event {
	return audit.Event{
		Category:  audit.CategoryAuth,
		EventType: eventType,
		UserID:    userID,
		IP:        ratelimit.ClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   success,
	}
}

// --- Authentication Events ---

// LoginSuccess logs a successful login.
func (l *Logger) LoginSuccess(ctx context.Context, r *http.Request, userID, username, role string) {
	ev := l.authEvent(r, audit.EventLoginSuccess, userID, true)
	ev.Details = map[string]string{
		"username": username,
		"role":     role,
	}
	l.Log(ctx, ev)
}

// LoginFailed logs a login the backend refused.
func (l *Logger) LoginFailed(ctx context.Context, r *http.Request, attemptedID, reason string) {
	ev := l.authEvent(r, audit.EventLoginFailed, "", false)
	ev.FailureReason = reason
	ev.Details = map[string]string{
		"attempted_id": attemptedID,
	}
	l.Log(ctx, ev)
}

// Logout logs a user logout.
func (l *Logger) Logout(ctx context.Context, r *http.Request, userID string) {
	l.Log(ctx, l.authEvent(r, audit.EventLogout, userID, true))
}

// SessionExpired logs a forced logout after the backend rejected the token.
func (l *Logger) SessionExpired(ctx context.Context, r *http.Request, userID string) {
	ev := l.authEvent(r, audit.EventSessionExpired, userID, false)
	ev.FailureReason = "token rejected by backend"
	ev.Details = map[string]string{
		"path": r.URL.Path,
	}
	l.Log(ctx, ev)
}

// Registered logs an account created from an HR registration token.
func (l *Logger) Registered(ctx context.Context, r *http.Request, username string) {
	ev := l.authEvent(r, audit.EventRegistered, "", true)
	ev.Details = map[string]string{
		"username": username,
	}
	l.Log(ctx, ev)
}

// --- Review Events ---

// OnboardingSubmitted logs an employee submitting the onboarding form.
func (l *Logger) OnboardingSubmitted(ctx context.Context, r *http.Request, userID, employeeID, applicationID string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryReview,
		EventType:     audit.EventOnboardingSubmitted,
		UserID:        userID,
		EmployeeID:    employeeID,
		ApplicationID: applicationID,
		IP:            ratelimit.ClientIP(r),
		UserAgent:     r.UserAgent(),
		Success:       true,
	})
}

// OnboardingReviewed logs an HR decision on an onboarding application.
func (l *Logger) OnboardingReviewed(ctx context.Context, r *http.Request, actorID, employeeID, applicationID string, approved bool, comment string) {
	eventType := audit.EventOnboardingRejected
	if approved {
		eventType = audit.EventOnboardingApproved
	}
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryReview,
		EventType:     eventType,
		ActorID:       actorID,
		EmployeeID:    employeeID,
		ApplicationID: applicationID,
		IP:            ratelimit.ClientIP(r),
		UserAgent:     r.UserAgent(),
		Success:       true,
		Details: map[string]string{
			"comment": comment,
		},
	})
}

// VisaStepReviewed logs an HR decision on a visa document. next is the
// step stored after the decision.
func (l *Logger) VisaStepReviewed(ctx context.Context, r *http.Request, actorID, employeeID, applicationID string, approved bool, step, next string) {
	eventType := audit.EventVisaStepRejected
	if approved {
		eventType = audit.EventVisaStepApproved
	}
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryReview,
		EventType:     eventType,
		ActorID:       actorID,
		EmployeeID:    employeeID,
		ApplicationID: applicationID,
		IP:            ratelimit.ClientIP(r),
		UserAgent:     r.UserAgent(),
		Success:       true,
		Details: map[string]string{
			"step":      step,
			"next_step": next,
		},
	})
}

// DocumentUploaded logs an employee uploading a visa document.
func (l *Logger) DocumentUploaded(ctx context.Context, r *http.Request, userID, employeeID, docType string) {
	l.Log(ctx, audit.Event{
		Category:   audit.CategoryReview,
		EventType:  audit.EventDocumentUploaded,
		UserID:     userID,
		EmployeeID: employeeID,
		IP:         ratelimit.ClientIP(r),
		UserAgent:  r.UserAgent(),
		Success:    true,
		Details: map[string]string{
			"type": docType,
		},
	})
}
