// Movici Simulation Core
// Copyright 2026 Movici Simulation Core Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/movici/simulation-core

package logging

import (
	"strings"

	"github.com/rs/zerolog"
)

// AccessEvent represents a security-relevant access to the status API or to
// a model's configuration secrets, for audit logging.
type AccessEvent struct {
	// Event is the type of event (e.g., "status_api_auth", "secret_decrypt").
	Event string
	// Subject is the bearer token's subject claim, if known.
	Subject string
	// ModelID is the model whose config/secret was touched, if applicable.
	ModelID string
	// IPAddress is the client's IP address (status API requests only).
	IPAddress string
	// UserAgent is the client's user agent (truncated).
	UserAgent string
	// Success indicates if the operation was successful.
	Success bool
	// Error is the error message if the operation failed.
	Error string
	// Details contains additional sanitized details.
	Details map[string]string
}

// AccessLogger provides secure logging for status-API authentication and
// model-secret handling. It automatically sanitizes sensitive data before
// logging.
type AccessLogger struct {
	logger zerolog.Logger
}

// NewAccessLogger creates a new access logger.
func NewAccessLogger() *AccessLogger {
	return &AccessLogger{
		logger: With().Str("component", "access").Logger(),
	}
}

// NewAccessLoggerWithLogger creates an access logger with a custom zerolog logger.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewAccessLoggerWithLogger(logger zerolog.Logger) *AccessLogger {
	return &AccessLogger{
		logger: logger.With().Str("component", "access").Logger(),
	}
}

// LogEvent logs an access event with automatic sanitization.
func (l *AccessLogger) LogEvent(event *AccessEvent) {
	e := l.logger.Info().
		Str("event", event.Event)

	if event.Success {
		e = e.Str("status", "success")
	} else {
		e = e.Str("status", "failed")
	}

	if event.Subject != "" {
		e = e.Str("subject", SanitizeToken(event.Subject))
	}

	if event.ModelID != "" {
		e = e.Str("model_id", event.ModelID)
	}

	if event.IPAddress != "" {
		e = e.Str("ip", event.IPAddress)
	}

	if event.UserAgent != "" {
		e = e.Str("user_agent", truncateString(event.UserAgent, 100))
	}

	if event.Error != "" && !event.Success {
		e = e.Str("error", SanitizeError(event.Error))
	}

	for k, v := range event.Details {
		e = e.Str(k, SanitizeValue(k, v))
	}

	e.Msg("")
}

// Debug logs a debug-level message.
func (l *AccessLogger) Debug(msg string, fields ...interface{}) {
	e := l.logger.Debug()
	e = addFieldPairs(e, fields)
	e.Msg(msg)
}

// Info logs an info-level message.
func (l *AccessLogger) Info(msg string, fields ...interface{}) {
	e := l.logger.Info()
	e = addFieldPairs(e, fields)
	e.Msg(msg)
}

// Warn logs a warning-level message.
func (l *AccessLogger) Warn(msg string, fields ...interface{}) {
	e := l.logger.Warn()
	e = addFieldPairs(e, fields)
	e.Msg(msg)
}

// Error logs an error-level message.
func (l *AccessLogger) Error(msg string, fields ...interface{}) {
	e := l.logger.Error()
	e = addFieldPairs(e, fields)
	e.Msg(msg)
}

// addFieldPairs adds key-value pairs to a zerolog event.
func addFieldPairs(e *zerolog.Event, fields []interface{}) *zerolog.Event {
	for i := 0; i < len(fields); i += 2 {
		if i+1 < len(fields) {
			key, ok := fields[i].(string)
			if !ok {
				continue
			}
			e = e.Interface(key, fields[i+1])
		}
	}
	return e
}

// ============================================================
// Pre-defined access events
// ============================================================

// LogAuthSuccess logs a successful status-API bearer authentication.
func (l *AccessLogger) LogAuthSuccess(subject, ip, userAgent string) {
	l.LogEvent(&AccessEvent{
		Event:     "status_api_auth",
		Subject:   subject,
		IPAddress: ip,
		UserAgent: userAgent,
		Success:   true,
	})
}

// LogAuthFailure logs a failed status-API bearer authentication.
func (l *AccessLogger) LogAuthFailure(ip, userAgent, reason string) {
	l.LogEvent(&AccessEvent{
		Event:     "status_api_auth",
		IPAddress: ip,
		UserAgent: userAgent,
		Success:   false,
		Error:     reason,
	})
}

// LogSecretDecrypt logs decryption of a model's config secret before it is
// written into a connector's subprocess bootstrap.
func (l *AccessLogger) LogSecretDecrypt(modelID string, success bool, errMsg string) {
	l.LogEvent(&AccessEvent{
		Event:   "secret_decrypt",
		ModelID: modelID,
		Success: success,
		Error:   errMsg,
	})
}

// LogRateLimited logs a status-API request rejected by the rate limiter.
func (l *AccessLogger) LogRateLimited(ip, path string) {
	l.LogEvent(&AccessEvent{
		Event:     "rate_limited",
		IPAddress: ip,
		Success:   false,
		Details: map[string]string{
			"path": path,
		},
	})
}

// ============================================================
// Sanitization functions
// ============================================================

// SanitizeToken masks a token or JWT subject, showing only first and last 4 characters.
func SanitizeToken(token string) string {
	if token == "" {
		return ""
	}
	if len(token) <= 12 {
		return "***"
	}
	return token[:4] + "..." + token[len(token)-4:]
}

// SanitizeError removes potentially sensitive information from error messages.
func SanitizeError(err string) string {
	sensitivePatterns := []string{
		"secret",
		"token",
		"key",
		"bearer",
		"authorization",
		"password",
	}

	lowerErr := strings.ToLower(err)
	for _, pattern := range sensitivePatterns {
		if strings.Contains(lowerErr, pattern) {
			return "authentication error"
		}
	}

	return truncateString(err, 200)
}

// SanitizeValue sanitizes a value based on its key name.
func SanitizeValue(key, value string) string {
	lowerKey := strings.ToLower(key)

	sensitiveKeys := map[string]bool{
		"token":         true,
		"secret":        true,
		"api_key":       true,
		"apikey":        true,
		"authorization": true,
		"bearer":        true,
		"nats_token":    true,
		"jwt_secret":    true,
	}

	if sensitiveKeys[lowerKey] {
		return SanitizeToken(value)
	}

	return value
}

// truncateString truncates a string to a maximum length.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
