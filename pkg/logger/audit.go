package logger

import (
	"context"
	"log/slog"
	"strconv"
	"time"
)

// Audit event types
const (
	EventLogin           = "login"
	EventLogout          = "logout"
	EventLockoutArmed    = "lockout_armed"
	EventLockoutExpired  = "lockout_expired"
	EventSystemReset     = "system_reset"
	EventPolicyChanged   = "firewall_policy_changed"
	EventQueryBlocked    = "query_blocked"
	EventSessionRestored = "session_restored"
)

type clientIPKey struct{}

// ContextWithClientIP attaches the caller's address so audit records can include it
func ContextWithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey{}, ip)
}

// ClientIPFromContext returns the address set by ContextWithClientIP, or ""
func ClientIPFromContext(ctx context.Context) string {
	ip, _ := ctx.Value(clientIPKey{}).(string)
	return ip
}

// AuditEvent represents a security audit event
type AuditEvent struct {
	EventType     string
	Principal     string
	Success       bool
	FailureReason string
	Metadata      map[string]string
}

// AuditLogger provides audit logging functionality
type AuditLogger struct {
	logger *slog.Logger
}

// NewAuditLogger creates a new audit logger
func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	return &AuditLogger{
		logger: logger,
	}
}

func (al *AuditLogger) emit(ctx context.Context, auditType string, event AuditEvent) {
	attrs := []slog.Attr{
		slog.String("audit_type", auditType),
		slog.String("event_type", event.EventType),
		slog.Bool("success", event.Success),
		slog.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
	}

	if event.Principal != "" {
		attrs = append(attrs, slog.String("principal", MaskIdentifier(event.Principal)))
	}
	if ip := ClientIPFromContext(ctx); ip != "" {
		attrs = append(attrs, slog.String("ip_address", ip))
	}
	if event.FailureReason != "" {
		attrs = append(attrs, slog.String("failure_reason", event.FailureReason))
	}
	for key, val := range event.Metadata {
		attrs = append(attrs, slog.String(key, val))
	}

	level := slog.LevelInfo
	if !event.Success {
		level = slog.LevelWarn
	}
	al.logger.LogAttrs(ctx, level, "audit", attrs...)
}

// LogAuthAttempt logs login, logout and session restore events
func (al *AuditLogger) LogAuthAttempt(ctx context.Context, event AuditEvent) {
	al.emit(ctx, "auth", event)
}

// LogLockoutArmed logs the start of a lockout window
func (al *AuditLogger) LogLockoutArmed(ctx context.Context, until time.Time, failedCount int) {
	al.emit(ctx, "lockout", AuditEvent{
		EventType: EventLockoutArmed,
		Success:   false,
		Metadata: map[string]string{
			"lockout_end_time": until.UTC().Format(time.RFC3339),
			"failed_count":     strconv.Itoa(failedCount),
		},
	})
}

// LogLockoutExpired logs the end of a lockout window
func (al *AuditLogger) LogLockoutExpired(ctx context.Context) {
	al.emit(ctx, "lockout", AuditEvent{EventType: EventLockoutExpired, Success: true})
}

// LogSystemReset logs a reset request and whether it was permitted
func (al *AuditLogger) LogSystemReset(ctx context.Context, actor string, success bool) {
	event := AuditEvent{EventType: EventSystemReset, Principal: actor, Success: success}
	if !success {
		event.FailureReason = "not_permitted"
	}
	al.emit(ctx, "admin", event)
}

// LogPolicyChange logs a firewall policy mutation
func (al *AuditLogger) LogPolicyChange(ctx context.Context, actor, action string, metadata map[string]string) {
	if metadata == nil {
		metadata = map[string]string{}
	}
	metadata["action"] = action
	al.emit(ctx, "firewall", AuditEvent{
		EventType: EventPolicyChanged,
		Principal: actor,
		Success:   true,
		Metadata:  metadata,
	})
}

// LogQueryBlocked logs a query rejected by a block word. The query text itself is not logged.
func (al *AuditLogger) LogQueryBlocked(ctx context.Context, principal, blockWord string) {
	al.emit(ctx, "firewall", AuditEvent{
		EventType:     EventQueryBlocked,
		Principal:     principal,
		Success:       false,
		FailureReason: "block_word",
		Metadata:      map[string]string{"block_word": blockWord},
	})
}
