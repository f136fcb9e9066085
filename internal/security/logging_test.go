// Package security provides security tests for structured logging
// and threshold-based monitoring.
package security

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"testing"
)

// TestLogger_JSONFormat tests that logs are output in valid JSON format.
func TestLogger_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger()
	logger.output = log.New(&buf, "", 0)

	logger.Info("Test message")

	output := buf.String()

	// Should be valid JSON
	var entry LogEntry
	if err := json.Unmarshal([]byte(output), &entry); err != nil {
		t.Errorf("Log output is not valid JSON: %v", err)
	}

	// Check required fields
	if entry.Message != "Test message" {
		t.Errorf("Expected message 'Test message', got %q", entry.Message)
	}

	if entry.Level != LogLevelInfo {
		t.Errorf("Expected level INFO, got %q", entry.Level)
	}

	if entry.Timestamp.IsZero() {
		t.Error("Timestamp should not be zero")
	}
}

// TestLogger_Levels tests different log levels.
func TestLogger_Levels(t *testing.T) {
	tests := []struct {
		name     string
		logFunc  func(*Logger, string)
		expected LogLevel
	}{
		{"Info", func(l *Logger, m string) { l.Info(m) }, LogLevelInfo},
		{"Warn", func(l *Logger, m string) { l.Warn(m) }, LogLevelWarning},
		{"Error", func(l *Logger, m string) { l.Error(m, nil) }, LogLevelError},
		{"Critical", func(l *Logger, m string) { l.Critical(m, nil) }, LogLevelCritical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLogger()
			logger.output = log.New(&buf, "", 0)

			tt.logFunc(logger, "test message")

			var entry LogEntry
			json.Unmarshal(buf.Bytes(), &entry)

			if entry.Level != tt.expected {
				t.Errorf("Expected level %q, got %q", tt.expected, entry.Level)
			}
		})
	}
}

// TestLogger_ErrorAttachment tests that the underlying error is captured.
func TestLogger_ErrorAttachment(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger()
	logger.output = log.New(&buf, "", 0)

	logger.Error("query failed", fmt.Errorf("connection refused"))

	var entry LogEntry
	json.Unmarshal(buf.Bytes(), &entry)

	if entry.Error != "connection refused" {
		t.Errorf("Expected error 'connection refused', got %q", entry.Error)
	}
}

// TestLogger_SecurityEvent tests security event logging.
func TestLogger_SecurityEvent(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger()
	logger.output = log.New(&buf, "", 0)

	actorID := 123
	extra := map[string]interface{}{
		"document_id":   456,
		"document_type": "ordinance",
	}

	logger.SecurityEvent(
		EventPriorityChange,
		&actorID,
		"admin@quezoncity.gov.ph",
		"192.168.1.100",
		"Mozilla/5.0",
		extra,
	)

	var entry LogEntry
	json.Unmarshal(buf.Bytes(), &entry)

	// Verify all fields present
	if entry.Level != LogLevelSecurity {
		t.Errorf("Expected SECURITY level, got %q", entry.Level)
	}

	if entry.EventType != EventPriorityChange {
		t.Errorf("Expected event type %q, got %q", EventPriorityChange, entry.EventType)
	}

	if entry.ActorID == nil || *entry.ActorID != 123 {
		t.Errorf("Expected actor_id 123, got %v", entry.ActorID)
	}

	if entry.ActorEmail != "admin@quezoncity.gov.ph" {
		t.Errorf("Expected actor_email admin@quezoncity.gov.ph, got %q", entry.ActorEmail)
	}

	if entry.IPAddress != "192.168.1.100" {
		t.Errorf("Expected ip_address 192.168.1.100, got %q", entry.IPAddress)
	}

	if entry.UserAgent != "Mozilla/5.0" {
		t.Errorf("Expected user_agent Mozilla/5.0, got %q", entry.UserAgent)
	}

	if entry.Extra["document_id"] != float64(456) { // JSON unmarshals numbers as float64
		t.Errorf("Expected extra.document_id 456, got %v", entry.Extra["document_id"])
	}
}

// TestLogger_SecurityEvent_NilActor tests unauthenticated security events.
func TestLogger_SecurityEvent_NilActor(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger()
	logger.output = log.New(&buf, "", 0)

	logger.SecurityEvent(EventLoginFailure, nil, "", "10.0.0.5", "curl/8.0", nil)

	var entry LogEntry
	json.Unmarshal(buf.Bytes(), &entry)

	if entry.ActorID != nil {
		t.Errorf("Expected nil actor_id, got %v", entry.ActorID)
	}

	if entry.EventType != EventLoginFailure {
		t.Errorf("Expected event type %q, got %q", EventLoginFailure, entry.EventType)
	}
}

// TestLogger_HTTPRequest tests HTTP request logging.
func TestLogger_HTTPRequest(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger()
	logger.output = log.New(&buf, "", 0)

	logger.HTTPRequest("POST", "/priority", 200, 42, "192.168.1.100", "Mozilla/5.0")

	var entry LogEntry
	json.Unmarshal(buf.Bytes(), &entry)

	if entry.Method != "POST" {
		t.Errorf("Expected method POST, got %q", entry.Method)
	}

	if entry.Path != "/priority" {
		t.Errorf("Expected path /priority, got %q", entry.Path)
	}

	if entry.Status != 200 {
		t.Errorf("Expected status 200, got %d", entry.Status)
	}

	if entry.LatencyMS != 42 {
		t.Errorf("Expected latency 42ms, got %d", entry.LatencyMS)
	}

	// Message should mention method and status
	if !strings.Contains(entry.Message, "POST") || !strings.Contains(entry.Message, "200") {
		t.Errorf("Message should contain method and status, got %q", entry.Message)
	}
}

// TestLogger_HTTPRequest_ErrorLevels tests level escalation by status code.
func TestLogger_HTTPRequest_ErrorLevels(t *testing.T) {
	tests := []struct {
		status   int
		expected LogLevel
	}{
		{200, LogLevelInfo},
		{302, LogLevelInfo},
		{404, LogLevelWarning},
		{500, LogLevelError},
	}

	for _, tt := range tests {
		var buf bytes.Buffer
		logger := NewLogger()
		logger.output = log.New(&buf, "", 0)

		logger.HTTPRequest("GET", "/history", tt.status, 5, "10.0.0.1", "Mozilla/5.0")

		var entry LogEntry
		json.Unmarshal(buf.Bytes(), &entry)

		if entry.Level != tt.expected {
			t.Errorf("Status %d: expected level %q, got %q", tt.status, tt.expected, entry.Level)
		}
	}
}

// mockAlerter captures alerts for testing.
type mockAlerter struct {
	alerts []string
}

func (m *mockAlerter) SendAlert(ctx context.Context, severity, title, message string) error {
	m.alerts = append(m.alerts, severity+": "+message)
	return nil
}

// TestSecurityMonitor_LoginFailures tests alerting on repeated login failures.
func TestSecurityMonitor_LoginFailures(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger()
	logger.output = log.New(&buf, "", 0)

	config := DefaultSecurityConfig()
	config.AlertThresholdFailures = 3

	alerter := &mockAlerter{}
	monitor := NewSecurityMonitor(logger, config, alerter)

	// Below threshold: no alerts
	monitor.MonitorLoginFailure("10.0.0.9")
	monitor.MonitorLoginFailure("10.0.0.9")

	if len(alerter.alerts) != 0 {
		t.Errorf("Expected no alerts below threshold, got %d", len(alerter.alerts))
	}

	// Crossing threshold triggers a HIGH alert naming the IP
	monitor.MonitorLoginFailure("10.0.0.9")

	if len(alerter.alerts) != 1 {
		t.Fatalf("Expected 1 alert at threshold, got %d", len(alerter.alerts))
	}

	if !strings.HasPrefix(alerter.alerts[0], "HIGH") {
		t.Errorf("Expected HIGH severity, got %q", alerter.alerts[0])
	}

	if !strings.Contains(alerter.alerts[0], "10.0.0.9") {
		t.Errorf("Alert should name the IP, got %q", alerter.alerts[0])
	}
}

// TestSecurityMonitor_PerIPCounters tests that failure counters are per IP.
func TestSecurityMonitor_PerIPCounters(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger()
	logger.output = log.New(&buf, "", 0)

	config := DefaultSecurityConfig()
	config.AlertThresholdFailures = 3

	alerter := &mockAlerter{}
	monitor := NewSecurityMonitor(logger, config, alerter)

	monitor.MonitorLoginFailure("10.0.0.1")
	monitor.MonitorLoginFailure("10.0.0.2")
	monitor.MonitorLoginFailure("10.0.0.3")

	if len(alerter.alerts) != 0 {
		t.Errorf("Separate IPs should not share a counter, got %d alerts", len(alerter.alerts))
	}
}

// TestSecurityMonitor_BulkOperation tests alerting on large bulk operations.
func TestSecurityMonitor_BulkOperation(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger()
	logger.output = log.New(&buf, "", 0)

	config := DefaultSecurityConfig()
	config.AlertThresholdBulk = 100

	alerter := &mockAlerter{}
	monitor := NewSecurityMonitor(logger, config, alerter)

	// Below threshold: no alert
	monitor.MonitorBulkOperation(EventNotificationBulkClear, "staff@quezoncity.gov.ph", 50, nil)

	if len(alerter.alerts) != 0 {
		t.Errorf("Expected no alerts below threshold, got %d", len(alerter.alerts))
	}

	// At threshold: MEDIUM alert with the row count
	monitor.MonitorBulkOperation(EventNotificationBulkClear, "staff@quezoncity.gov.ph", 250, map[string]string{"action": "clear_all"})

	if len(alerter.alerts) != 1 {
		t.Fatalf("Expected 1 alert, got %d", len(alerter.alerts))
	}

	if !strings.HasPrefix(alerter.alerts[0], "MEDIUM") {
		t.Errorf("Expected MEDIUM severity, got %q", alerter.alerts[0])
	}

	if !strings.Contains(alerter.alerts[0], "250") {
		t.Errorf("Alert should contain row count, got %q", alerter.alerts[0])
	}
}

// TestSecurityMonitor_BulkOperation_EventType tests that the caller's event
// type reaches the security stream, so bulk reads and bulk clears are
// distinguishable.
func TestSecurityMonitor_BulkOperation_EventType(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger()
	logger.output = log.New(&buf, "", 0)

	config := DefaultSecurityConfig()
	config.AlertThresholdBulk = 100

	monitor := NewSecurityMonitor(logger, config, nil)

	monitor.MonitorBulkOperation(EventNotificationBulkRead, "staff@quezoncity.gov.ph", 150, map[string]string{"action": "MARK_ALL_READ"})

	if !strings.Contains(buf.String(), string(EventNotificationBulkRead)) {
		t.Errorf("Expected %s in the security stream, got %q", EventNotificationBulkRead, buf.String())
	}
	if strings.Contains(buf.String(), string(EventNotificationBulkClear)) {
		t.Errorf("Bulk read must not be logged as %s", EventNotificationBulkClear)
	}
}

// TestSecurityMonitor_ResetCounters tests interval-gated counter reset.
func TestSecurityMonitor_ResetCounters(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger()
	logger.output = log.New(&buf, "", 0)

	config := DefaultSecurityConfig()
	monitor := NewSecurityMonitor(logger, config, nil)

	monitor.MonitorLoginFailure("10.0.0.7")

	// Interval has not elapsed; counters survive the call.
	monitor.ResetCounters()

	monitor.mu.Lock()
	count := monitor.failedLogins["10.0.0.7"]
	monitor.mu.Unlock()

	if count != 1 {
		t.Errorf("Expected counter to survive early reset, got %d", count)
	}
}
