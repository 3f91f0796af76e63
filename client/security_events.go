package client

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// NIST SP 800-92 event types
const (
	EventAuthentication = "authentication"
	EventConnection     = "connection"
	EventCommand        = "command"
)

// Security event subtypes
const (
	SubtypeConnEstablished = "established"
	SubtypeConnFailed      = "failed"
	SubtypeAuthFailure     = "failure"
	SubtypeCommandExecute  = "execute"
	SubtypeCommandComplete = "complete"
	SubtypeCommandFailed   = "failed"
)

// Security event outcomes
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeDenied  = "denied"
	OutcomeAttempt = "attempt"
)

// Security event severities
const (
	SeverityInfo     = "INFO"
	SeverityWarning  = "WARNING"
	SeverityError    = "ERROR"
	SeverityCritical = "CRITICAL"
)

// SecurityEvent is a structured security log event in the NIST SP 800-92 style.
type SecurityEvent struct {
	Timestamp string `json:"timestamp"`  // ISO 8601 UTC
	EventType string `json:"event_type"` // authentication, connection, command
	Subtype   string `json:"subtype"`
	Severity  string `json:"severity"`

	User          string `json:"user,omitempty"`
	Source        string `json:"source"`
	Target        string `json:"target"`         // endpoint URL
	CorrelationID string `json:"correlation_id"` // one per client

	Action  string         `json:"action"`
	Outcome string         `json:"outcome"`
	Details map[string]any `json:"details,omitempty"`
}

// SecurityLogger writes SecurityEvents for one client.
type SecurityLogger struct {
	logger        *slog.Logger
	user          string
	target        string
	correlationID string
}

// NewSecurityLogger creates a logger with a fresh correlation ID.
func NewSecurityLogger(logger *slog.Logger, user, target string) *SecurityLogger {
	return &SecurityLogger{
		logger:        logger,
		user:          user,
		target:        target,
		correlationID: uuid.New().String(),
	}
}

// CorrelationID returns the ID shared by every event of this logger.
func (l *SecurityLogger) CorrelationID() string {
	return l.correlationID
}

// LogEvent constructs and logs a security event.
func (l *SecurityLogger) LogEvent(eventType, subtype, severity, outcome string, details map[string]any) {
	if l == nil || l.logger == nil {
		return
	}

	event := &SecurityEvent{
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		EventType:     eventType,
		Subtype:       subtype,
		Severity:      severity,
		User:          l.user,
		Source:        "winrm-run",
		Target:        l.target,
		CorrelationID: l.correlationID,
		Action:        subtype,
		Outcome:       outcome,
		Details:       details,
	}
	if details == nil {
		event.Details = make(map[string]any)
	}

	switch severity {
	case SeverityWarning:
		l.logger.Warn("SecurityEvent", "event", event)
	case SeverityError, SeverityCritical:
		l.logger.Error("SecurityEvent", "event", event)
	default:
		l.logger.Info("SecurityEvent", "event", event)
	}
}

// LogConnection logs connection events.
func (l *SecurityLogger) LogConnection(subtype, outcome, severity string, details map[string]any) {
	l.LogEvent(EventConnection, subtype, severity, outcome, details)
}

// LogCommand logs command execution events.
func (l *SecurityLogger) LogCommand(subtype, outcome, severity string, details map[string]any) {
	l.LogEvent(EventCommand, subtype, severity, outcome, details)
}

// LogAuthentication logs authentication events.
func (l *SecurityLogger) LogAuthentication(subtype, outcome, severity string, details map[string]any) {
	l.LogEvent(EventAuthentication, subtype, severity, outcome, details)
}

// String returns the JSON representation of the event.
func (e *SecurityEvent) String() string {
	b, _ := json.Marshal(e)
	return string(b)
}

// LogValue renders the event as a group so text handlers print its fields.
func (e *SecurityEvent) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("timestamp", e.Timestamp),
		slog.String("event_type", e.EventType),
		slog.String("subtype", e.Subtype),
		slog.String("severity", e.Severity),
		slog.String("user", e.User),
		slog.String("source", e.Source),
		slog.String("target", e.Target),
		slog.String("correlation_id", e.CorrelationID),
		slog.String("outcome", e.Outcome),
	}
	for k, v := range e.Details {
		attrs = append(attrs, slog.Any(k, v))
	}
	return slog.GroupValue(attrs...)
}
