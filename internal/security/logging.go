// Package security provides structured security logging and monitoring.
// All log output is JSON, one entry per line, suitable for log aggregation.
package security

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sync"
	"time"
)

// LogLevel represents the severity of a log entry.
type LogLevel string

// Log levels ordered by severity. Security events get their own level so
// they can be filtered out into a separate audit stream.
const (
	LogLevelInfo     LogLevel = "INFO"
	LogLevelWarning  LogLevel = "WARNING"
	LogLevelError    LogLevel = "ERROR"
	LogLevelCritical LogLevel = "CRITICAL"
	LogLevelSecurity LogLevel = "SECURITY"
)

// SecurityEventType identifies the kind of security-relevant event being logged.
type SecurityEventType string

// Security event types covering authentication, authorization, document
// lifecycle actions, user management, and attack detection.
const (
	// Authentication events
	EventLoginSuccess  SecurityEventType = "LOGIN_SUCCESS"
	EventLoginFailure  SecurityEventType = "LOGIN_FAILURE"
	EventLogout        SecurityEventType = "LOGOUT"
	EventAccountLocked SecurityEventType = "ACCOUNT_LOCKED"

	// Authorization events
	EventUnauthorizedAccess  SecurityEventType = "UNAUTHORIZED_ACCESS"
	EventPrivilegeEscalation SecurityEventType = "PRIVILEGE_ESCALATION"

	// Document lifecycle events
	EventPriorityChange      SecurityEventType = "PRIORITY_CHANGE"
	EventDraftRegister       SecurityEventType = "DRAFT_REGISTER"
	EventRegistrationArchive SecurityEventType = "REGISTRATION_ARCHIVE"
	EventCommitteeAssign     SecurityEventType = "COMMITTEE_ASSIGN"

	// Notification events
	EventNotificationBulkRead  SecurityEventType = "NOTIFICATION_BULK_READ"
	EventNotificationBulkClear SecurityEventType = "NOTIFICATION_BULK_CLEAR"

	// User management events
	EventUserCreate     SecurityEventType = "USER_CREATE"
	EventUserDelete     SecurityEventType = "USER_DELETE"
	EventUserRoleChange SecurityEventType = "USER_ROLE_CHANGE"

	// Attack detection events
	EventRateLimitExceeded   SecurityEventType = "RATE_LIMIT_EXCEEDED"
	EventCSRFViolation       SecurityEventType = "CSRF_VIOLATION"
	EventSQLInjectionAttempt SecurityEventType = "SQL_INJECTION_ATTEMPT"
	EventXSSAttempt          SecurityEventType = "XSS_ATTEMPT"
	EventSessionFixation     SecurityEventType = "SESSION_FIXATION"
)

// LogEntry is the JSON shape of every log line.
// Optional fields are omitted when empty so entries stay compact.
type LogEntry struct {
	Message    string                 `json:"message"`
	Level      LogLevel               `json:"level"`
	Timestamp  time.Time              `json:"timestamp"`
	EventType  SecurityEventType      `json:"event_type,omitempty"`
	ActorID    *int                   `json:"actor_id,omitempty"`
	ActorEmail string                 `json:"actor_email,omitempty"`
	IPAddress  string                 `json:"ip_address,omitempty"`
	UserAgent  string                 `json:"user_agent,omitempty"`
	Extra      map[string]interface{} `json:"extra,omitempty"`
	Method     string                 `json:"method,omitempty"`
	Path       string                 `json:"path,omitempty"`
	Status     int                    `json:"status,omitempty"`
	LatencyMS  int                    `json:"latency_ms,omitempty"`
	Error      string                 `json:"error,omitempty"`
}

// Logger writes structured JSON log entries.
// The output destination is swappable for tests.
type Logger struct {
	output *log.Logger
}

// NewLogger creates a logger writing JSON entries to stdout.
func NewLogger() *Logger {
	return &Logger{
		output: log.New(os.Stdout, "", 0),
	}
}

// write marshals and emits a single entry. Marshaling failures fall back to
// a plain-text line rather than dropping the event.
func (l *Logger) write(entry LogEntry) {
	entry.Timestamp = time.Now().UTC()

	data, err := json.Marshal(entry)
	if err != nil {
		l.output.Printf("LOG_MARSHAL_ERROR level=%s message=%q", entry.Level, entry.Message)
		return
	}

	l.output.Println(string(data))
}

// Info logs an informational message.
func (l *Logger) Info(message string) {
	l.write(LogEntry{Message: message, Level: LogLevelInfo})
}

// Warn logs a warning message.
func (l *Logger) Warn(message string) {
	l.write(LogEntry{Message: message, Level: LogLevelWarning})
}

// Error logs an error message with the underlying error attached.
func (l *Logger) Error(message string, err error) {
	entry := LogEntry{Message: message, Level: LogLevelError}
	if err != nil {
		entry.Error = err.Error()
	}
	l.write(entry)
}

// Critical logs a critical failure that requires immediate attention.
func (l *Logger) Critical(message string, err error) {
	entry := LogEntry{Message: message, Level: LogLevelCritical}
	if err != nil {
		entry.Error = err.Error()
	}
	l.write(entry)
}

// SecurityEvent logs a security-relevant event with actor context.
// actorID may be nil for unauthenticated events (failed logins, CSRF).
func (l *Logger) SecurityEvent(eventType SecurityEventType, actorID *int, actorEmail, ipAddress, userAgent string, extra map[string]interface{}) {
	l.write(LogEntry{
		Message:    fmt.Sprintf("security event: %s", eventType),
		Level:      LogLevelSecurity,
		EventType:  eventType,
		ActorID:    actorID,
		ActorEmail: actorEmail,
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Extra:      extra,
	})
}

// HTTPRequest logs a completed HTTP request with latency and status.
func (l *Logger) HTTPRequest(method, path string, status, latencyMS int, ipAddress, userAgent string) {
	level := LogLevelInfo
	if status >= 500 {
		level = LogLevelError
	} else if status >= 400 {
		level = LogLevelWarning
	}

	l.write(LogEntry{
		Message:   fmt.Sprintf("%s %s -> %d", method, path, status),
		Level:     level,
		Method:    method,
		Path:      path,
		Status:    status,
		LatencyMS: latencyMS,
		IPAddress: ipAddress,
		UserAgent: userAgent,
	})
}

// Alerter delivers high-severity alerts to an external channel
// (email, chat webhook). Implementations must be safe for concurrent use.
type Alerter interface {
	SendAlert(ctx context.Context, severity, title, message string) error
}

// SecurityMonitor watches security events and raises alerts when
// thresholds are crossed. Counters reset on a fixed interval, not per event.
type SecurityMonitor struct {
	logger  *Logger
	config  *SecurityConfig
	alerter Alerter

	mu           sync.Mutex
	failedLogins map[string]int
	lastReset    time.Time
}

// NewSecurityMonitor creates a monitor wired to the given logger and alerter.
// alerter may be nil; threshold crossings are then logged only.
func NewSecurityMonitor(logger *Logger, config *SecurityConfig, alerter Alerter) *SecurityMonitor {
	return &SecurityMonitor{
		logger:       logger,
		config:       config,
		alerter:      alerter,
		failedLogins: make(map[string]int),
		lastReset:    time.Now(),
	}
}

// MonitorLoginFailure records a failed login from the given IP and alerts
// once the configured threshold is reached.
func (m *SecurityMonitor) MonitorLoginFailure(ipAddress string) {
	m.mu.Lock()
	m.failedLogins[ipAddress]++
	count := m.failedLogins[ipAddress]
	m.mu.Unlock()

	if count >= m.config.AlertThresholdFailures {
		message := fmt.Sprintf("%d failed login attempts from %s", count, ipAddress)
		m.logger.Warn(message)

		if m.alerter != nil {
			if err := m.alerter.SendAlert(context.Background(), "HIGH", "Repeated login failures", message); err != nil {
				m.logger.Error("failed to send login failure alert", err)
			}
		}
	}
}

// MonitorBulkOperation records a bulk notification operation and alerts when
// the row count exceeds the configured threshold. The event type identifies
// the operation (bulk read vs bulk clear) in the security stream.
func (m *SecurityMonitor) MonitorBulkOperation(event SecurityEventType, actorEmail string, rowCount int, params map[string]string) {
	if rowCount < m.config.AlertThresholdBulk {
		return
	}

	message := fmt.Sprintf("bulk operation by %s touched %d rows", actorEmail, rowCount)
	m.logger.Warn(message)

	extra := make(map[string]interface{}, len(params))
	for k, v := range params {
		extra[k] = v
	}
	m.logger.SecurityEvent(event, nil, actorEmail, "", "", extra)

	if m.alerter != nil {
		if err := m.alerter.SendAlert(context.Background(), "MEDIUM", "Large bulk operation", message); err != nil {
			m.logger.Error("failed to send bulk operation alert", err)
		}
	}
}

// ResetCounters clears failure counters once the monitoring interval has
// elapsed. Called periodically; calling early is a no-op.
func (m *SecurityMonitor) ResetCounters() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if time.Since(m.lastReset) < m.config.MonitoringInterval {
		return
	}

	m.failedLogins = make(map[string]int)
	m.lastReset = time.Now()
}
