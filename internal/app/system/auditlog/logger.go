// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"

	"github.com/brooky/dazle/internal/app/store/audit"
	"github.com/brooky/dazle/internal/app/system/ratelimit"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Destinations accepted by Config fields.
const (
	DestAll = "all" // MongoDB + zap
	DestDB  = "db"  // MongoDB only
	DestLog = "log" // zap only
	DestOff = "off"
)

// Config holds audit logging configuration, one destination per category.
type Config struct {
	Auth       string
	Connection string
}

// Uniform returns a Config that sends every category to dest.
func Uniform(dest string) Config {
	return Config{Auth: dest, Connection: dest}
}

// Logger records audit events to MongoDB (via audit.Store) and/or zap.
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

func clientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	return ratelimit.ClientIP(r)
}

func userAgent(r *http.Request) string {
	if r == nil {
		return ""
	}
	return r.UserAgent()
}

func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
	}
	if event.IP != "" {
		fields = append(fields, zap.String("ip", event.IP))
	}
	if event.UserID != nil {
		fields = append(fields, zap.String("user_id", event.UserID.Hex()))
	}
	if event.CounterpartID != nil {
		fields = append(fields, zap.String("counterpart_id", event.CounterpartID.Hex()))
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

// Log records an audit event according to the category's destination.
// A nil Logger is a no-op so tests and optional wiring can skip auditing.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	var dest string
	switch event.Category {
	case audit.CategoryAuth:
		dest = l.config.Auth
	case audit.CategoryConnection:
		dest = l.config.Connection
	default:
		dest = DestAll
	}

	switch dest {
	case DestOff:
		return
	case DestLog:
		l.logToZap(event)
	case DestDB:
		l.persist(ctx, event)
	default:
		l.logToZap(event)
		l.persist(ctx, event)
	}
}

func (l *Logger) persist(ctx context.Context, event audit.Event) {
	if err := l.store.Log(ctx, event); err != nil {
		l.zapLog.Error("failed to store audit event",
			zap.Error(err),
			zap.String("event_type", event.EventType),
		)
	}
}

// --- Account events ---

// UserRegistered logs a new account.
func (l *Logger) UserRegistered(ctx context.Context, r *http.Request, userID primitive.ObjectID, email, position string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventUserRegistered,
		UserID:    &userID,
		IP:        clientIP(r),
		UserAgent: userAgent(r),
		Success:   true,
		Details: map[string]string{
			"email":    email,
			"position": position,
		},
	})
}

// LoginSuccess logs a successful login.
func (l *Logger) LoginSuccess(ctx context.Context, r *http.Request, userID primitive.ObjectID, email string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLoginSuccess,
		UserID:    &userID,
		IP:        clientIP(r),
		UserAgent: userAgent(r),
		Success:   true,
		Details:   map[string]string{"email": email},
	})
}

// LoginFailed logs a rejected login. userID is nil when the email is unknown.
func (l *Logger) LoginFailed(ctx context.Context, r *http.Request, userID *primitive.ObjectID, email, reason string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     audit.EventLoginFailed,
		UserID:        userID,
		IP:            clientIP(r),
		UserAgent:     userAgent(r),
		Success:       false,
		FailureReason: reason,
		Details:       map[string]string{"attempted_email": email},
	})
}

// --- Connection events ---

// InviteSeeded logs a pending entry pushed onto ownerID's invites.
func (l *Logger) InviteSeeded(ctx context.Context, ownerID, counterpartID primitive.ObjectID, counterpartEmail string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryConnection,
		EventType:     audit.EventInviteSeeded,
		UserID:        &ownerID,
		CounterpartID: &counterpartID,
		Success:       true,
		Details:       map[string]string{"counterpart_email": counterpartEmail},
	})
}

// ConnectionAdded logs an accepted invite.
func (l *Logger) ConnectionAdded(ctx context.Context, r *http.Request, ownerID, counterpartID primitive.ObjectID) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryConnection,
		EventType:     audit.EventConnectionAdded,
		UserID:        &ownerID,
		CounterpartID: &counterpartID,
		IP:            clientIP(r),
		UserAgent:     userAgent(r),
		Success:       true,
	})
}

// ConnectionRemoved logs an invite returned to pending.
func (l *Logger) ConnectionRemoved(ctx context.Context, r *http.Request, ownerID, counterpartID primitive.ObjectID) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryConnection,
		EventType:     audit.EventConnectionRemoved,
		UserID:        &ownerID,
		CounterpartID: &counterpartID,
		IP:            clientIP(r),
		UserAgent:     userAgent(r),
		Success:       true,
	})
}
