// Movici Simulation Core
// Copyright 2026 Movici Simulation Core Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/movici/simulation-core

package logging

import (
	"context"

	"github.com/rs/zerolog"
)

// EventLogger provides specialized logging for the messaging path: the
// orchestrator/connector/service traffic carried over NATS and framed as
// Watermill messages.
type EventLogger struct {
	logger zerolog.Logger
}

// NewEventLogger creates a logger configured for messaging events.
// If logger is nil, uses the global logger with component field.
func NewEventLogger() *EventLogger {
	return &EventLogger{
		logger: With().Str("component", "transport").Logger(),
	}
}

// NewEventLoggerWithLogger creates an EventLogger with a custom logger.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value (copy-on-write semantics)
func NewEventLoggerWithLogger(logger zerolog.Logger) *EventLogger {
	return &EventLogger{
		logger: logger.With().Str("component", "transport").Logger(),
	}
}

// WithFields returns a new EventLogger with additional default fields.
func (e *EventLogger) WithFields(fields map[string]interface{}) *EventLogger {
	ctx := e.logger.With()
	for k, v := range fields {
		ctx = ctx.Interface(k, v)
	}
	return &EventLogger{logger: ctx.Logger()}
}

// Debug logs a debug message.
func (e *EventLogger) Debug(msg string, fields ...interface{}) {
	event := e.logger.Debug()
	event = addFieldPairs(event, fields)
	event.Msg(msg)
}

// Info logs an info message.
func (e *EventLogger) Info(msg string, fields ...interface{}) {
	event := e.logger.Info()
	event = addFieldPairs(event, fields)
	event.Msg(msg)
}

// Warn logs a warning message.
func (e *EventLogger) Warn(msg string, fields ...interface{}) {
	event := e.logger.Warn()
	event = addFieldPairs(event, fields)
	event.Msg(msg)
}

// Error logs an error message.
func (e *EventLogger) Error(msg string, fields ...interface{}) {
	event := e.logger.Error()
	event = addFieldPairs(event, fields)
	event.Msg(msg)
}

// DebugContext logs a debug message with context (for correlation ID).
func (e *EventLogger) DebugContext(ctx context.Context, msg string, fields ...interface{}) {
	logger := e.loggerWithContext(ctx)
	event := logger.Debug()
	event = addFieldPairs(event, fields)
	event.Msg(msg)
}

// InfoContext logs an info message with context.
func (e *EventLogger) InfoContext(ctx context.Context, msg string, fields ...interface{}) {
	logger := e.loggerWithContext(ctx)
	event := logger.Info()
	event = addFieldPairs(event, fields)
	event.Msg(msg)
}

// WarnContext logs a warning message with context.
func (e *EventLogger) WarnContext(ctx context.Context, msg string, fields ...interface{}) {
	logger := e.loggerWithContext(ctx)
	event := logger.Warn()
	event = addFieldPairs(event, fields)
	event.Msg(msg)
}

// ErrorContext logs an error message with context.
func (e *EventLogger) ErrorContext(ctx context.Context, msg string, fields ...interface{}) {
	logger := e.loggerWithContext(ctx)
	event := logger.Error()
	event = addFieldPairs(event, fields)
	event.Msg(msg)
}

// loggerWithContext returns a logger with context fields added.
func (e *EventLogger) loggerWithContext(ctx context.Context) zerolog.Logger {
	logCtx := e.logger.With()

	if correlationID := CorrelationIDFromContext(ctx); correlationID != "" {
		logCtx = logCtx.Str("correlation_id", correlationID)
	}

	if requestID := RequestIDFromContext(ctx); requestID != "" {
		logCtx = logCtx.Str("request_id", requestID)
	}

	return logCtx.Logger()
}

// ============================================================
// Domain-specific logging methods for the simulation message bus
// ============================================================

// LogEnvelopeReceived logs when a wire envelope is received from a peer.
func (e *EventLogger) LogEnvelopeReceived(ctx context.Context, modelID, subject, kind string) {
	e.InfoContext(ctx, "envelope received",
		"model_id", modelID,
		"subject", subject,
		"kind", kind,
	)
}

// LogEnvelopePublished logs when an envelope is published to a subject.
func (e *EventLogger) LogEnvelopePublished(ctx context.Context, modelID, subject string) {
	e.DebugContext(ctx, "envelope published",
		"model_id", modelID,
		"subject", subject,
	)
}

// LogStepDispatched logs when the orchestrator dispatches a NEW_TIME command.
func (e *EventLogger) LogStepDispatched(ctx context.Context, modelID string, timestamp int64) {
	e.InfoContext(ctx, "step dispatched",
		"model_id", modelID,
		"timestamp", timestamp,
	)
}

// LogStepCompleted logs when a model returns its RESULT for a step.
func (e *EventLogger) LogStepCompleted(ctx context.Context, modelID string, timestamp int64, durationMs int64) {
	e.InfoContext(ctx, "step completed",
		"model_id", modelID,
		"timestamp", timestamp,
		"duration_ms", durationMs,
	)
}

// LogProtocolViolation logs a malformed or out-of-sequence envelope from a peer.
func (e *EventLogger) LogProtocolViolation(ctx context.Context, modelID string, err error) {
	logger := e.loggerWithContext(ctx)
	event := logger.Error().
		Str("model_id", modelID).
		Err(err)
	event.Msg("protocol violation")
}

// LogTimeout logs a request that exceeded its deadline waiting on a peer.
func (e *EventLogger) LogTimeout(ctx context.Context, modelID, waiting string) {
	logger := e.loggerWithContext(ctx)
	event := logger.Warn().
		Str("model_id", modelID).
		Str("waiting", waiting)
	event.Msg("timed out waiting for peer")
}

// LogSubscriptionStarted logs when a subscription is started.
func (e *EventLogger) LogSubscriptionStarted(subject, queue string) {
	e.Info("subscription started",
		"subject", subject,
		"queue", queue,
	)
}

// LogSubscriptionStopped logs when a subscription is stopped.
func (e *EventLogger) LogSubscriptionStopped(subject string) {
	e.Info("subscription stopped",
		"subject", subject,
	)
}

// LogRouterStarted logs when the Watermill router starts.
func (e *EventLogger) LogRouterStarted() {
	e.Info("router started")
}

// LogRouterStopped logs when the Watermill router stops.
func (e *EventLogger) LogRouterStopped() {
	e.Info("router stopped")
}
