// Movici Simulation Core
// Copyright 2026 Movici Simulation Core Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/movici/simulation-core

package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestSanitizeToken(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected string
	}{
		{"", ""},
		{"short", "***"},
		{"exactlytwelv", "***"},
		{"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9", "eyJh...VCJ9"},
		{"1234567890123456", "1234...3456"},
	}

	for _, tt := range tests {
		result := SanitizeToken(tt.input)
		if result != tt.expected {
			t.Errorf("SanitizeToken(%q) = %q, want %q", tt.input, result, tt.expected)
		}
	}
}

func TestSanitizeError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected string
	}{
		{"", ""},
		{"regular error", "regular error"},
		{"invalid password", "authentication error"},
		{"token expired", "authentication error"},
		{"secret key invalid", "authentication error"},
		{"Bearer token missing", "authentication error"},
		{"authorization failed", "authentication error"},
	}

	for _, tt := range tests {
		result := SanitizeError(tt.input)
		if result != tt.expected {
			t.Errorf("SanitizeError(%q) = %q, want %q", tt.input, result, tt.expected)
		}
	}
}

func TestSanitizeError_LongError(t *testing.T) {
	t.Parallel()

	longErr := strings.Repeat("a", 250)
	result := SanitizeError(longErr)

	if len(result) > 210 { // 200 + "..."
		t.Errorf("expected truncated error, got length %d", len(result))
	}
	if !strings.HasSuffix(result, "...") {
		t.Error("expected truncation suffix")
	}
}

func TestSanitizeValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		key      string
		value    string
		expected string
	}{
		{"name", "John", "John"},
		{"token", "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9", "eyJh...VCJ9"},
		{"secret", "secret123", "***"},                   // <= 12 chars, fully masked
		{"api_key", "key-12345678901234", "key-...1234"}, // > 12 chars, partial mask
	}

	for _, tt := range tests {
		result := SanitizeValue(tt.key, tt.value)
		if result != tt.expected {
			t.Errorf("SanitizeValue(%q, %q) = %q, want %q", tt.key, tt.value, result, tt.expected)
		}
	}
}

func TestAccessLogger_LogEvent(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	accLog := NewAccessLoggerWithLogger(logger)

	accLog.LogEvent(&AccessEvent{
		Event:     "test_event",
		Subject:   "subject-12345678",
		ModelID:   "model-a",
		IPAddress: "192.168.1.1",
		UserAgent: "TestClient/1.0",
		Success:   true,
	})

	output := buf.String()
	if !strings.Contains(output, "test_event") {
		t.Errorf("expected event in output: %s", output)
	}
	if !strings.Contains(output, "success") {
		t.Errorf("expected status in output: %s", output)
	}
	if !strings.Contains(output, "model-a") {
		t.Errorf("expected model_id in output: %s", output)
	}
	if !strings.Contains(output, "subj...5678") {
		t.Errorf("expected sanitized subject in output: %s", output)
	}
}

func TestAccessLogger_LogEvent_Failed(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	accLog := NewAccessLoggerWithLogger(logger)

	accLog.LogEvent(&AccessEvent{
		Event:   "status_api_auth",
		Success: false,
		Error:   "invalid bearer token",
	})

	output := buf.String()
	if !strings.Contains(output, "failed") {
		t.Errorf("expected failed status in output: %s", output)
	}
	if !strings.Contains(output, "authentication error") {
		t.Errorf("expected sanitized error in output: %s", output)
	}
}

func TestAccessLogger_LogAuthSuccess(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	accLog := NewAccessLoggerWithLogger(logger)

	accLog.LogAuthSuccess("subject-123456789", "192.168.1.1", "curl/8.0")

	output := buf.String()
	if !strings.Contains(output, "status_api_auth") {
		t.Errorf("expected status_api_auth event: %s", output)
	}
	if !strings.Contains(output, "success") {
		t.Errorf("expected success status: %s", output)
	}
}

func TestAccessLogger_LogAuthFailure(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	accLog := NewAccessLoggerWithLogger(logger)

	accLog.LogAuthFailure("192.168.1.1", "curl/8.0", "invalid bearer token")

	output := buf.String()
	if !strings.Contains(output, "status_api_auth") {
		t.Errorf("expected status_api_auth event: %s", output)
	}
	if !strings.Contains(output, "failed") {
		t.Errorf("expected failed status: %s", output)
	}
}

func TestAccessLogger_LogSecretDecrypt(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	accLog := NewAccessLoggerWithLogger(logger)

	accLog.LogSecretDecrypt("model-a", true, "")

	output := buf.String()
	if !strings.Contains(output, "secret_decrypt") {
		t.Errorf("expected secret_decrypt event: %s", output)
	}
	if !strings.Contains(output, "model-a") {
		t.Errorf("expected model_id in output: %s", output)
	}
}

func TestAccessLogger_LogRateLimited(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	accLog := NewAccessLoggerWithLogger(logger)

	accLog.LogRateLimited("192.168.1.1", "/status")

	output := buf.String()
	if !strings.Contains(output, "rate_limited") {
		t.Errorf("expected rate_limited event: %s", output)
	}
}

func TestAccessLogger_LogLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	accLog := NewAccessLoggerWithLogger(logger)

	tests := []struct {
		name    string
		logFunc func()
		level   string
	}{
		{"Debug", func() { accLog.Debug("debug msg") }, "debug"},
		{"Info", func() { accLog.Info("info msg") }, "info"},
		{"Warn", func() { accLog.Warn("warn msg") }, "warn"},
		{"Error", func() { accLog.Error("error msg") }, "error"},
	}

	for _, tt := range tests {
		buf.Reset()
		tt.logFunc()
		output := buf.String()
		if !strings.Contains(output, tt.level) {
			t.Errorf("%s: expected level '%s' in output: %s", tt.name, tt.level, output)
		}
	}
}

func TestAccessLogger_WithFields(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	accLog := NewAccessLoggerWithLogger(logger)

	accLog.Info("test", "key1", "value1", "key2", 42)

	output := buf.String()
	if !strings.Contains(output, "key1") {
		t.Errorf("expected key1 in output: %s", output)
	}
	if !strings.Contains(output, "value1") {
		t.Errorf("expected value1 in output: %s", output)
	}
}

func TestNewAccessLogger(t *testing.T) {
	accLog := NewAccessLogger()
	if accLog == nil {
		t.Error("expected non-nil access logger")
	}
}

func TestTruncateString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		maxLen   int
		expected string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"this is a longer string", 10, "this is a ..."},
	}

	for _, tt := range tests {
		result := truncateString(tt.input, tt.maxLen)
		if result != tt.expected {
			t.Errorf("truncateString(%q, %d) = %q, want %q", tt.input, tt.maxLen, result, tt.expected)
		}
	}
}
