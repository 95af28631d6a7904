// Movici Simulation Core
// Copyright 2026 Movici Simulation Core Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/movici/simulation-core

// Package logging provides centralized zerolog-based structured logging for
// the simulation core.
//
// This package implements a unified logging layer using zerolog, providing
// zero-allocation structured JSON logging for production and human-readable
// console output for development.
//
// # Overview
//
// The package provides:
//   - Zero-allocation structured logging via zerolog
//   - JSON output format for production (machine-parseable)
//   - Console output format for development (human-readable)
//   - Global logger configuration via environment variables
//   - Context-aware logging with correlation ID propagation
//   - An slog adapter so the supervisor tree (suture/sutureslog) can log
//     through the same zerolog sink
//   - Access logging with sensitive-value redaction for the status API and
//     model secrets
//
// # Quick Start
//
//	import "github.com/movici/simulation-core/internal/logging"
//
//	// Initialize at application startup
//	logging.Init(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	    Caller: false,
//	})
//
//	// Log messages with structured fields
//	logging.Info().Str("model_id", "traffic").Msg("model registered")
//	logging.Error().Err(err).Int64("timestamp", ts).Msg("step failed")
//
//	// Context-aware logging
//	logging.Ctx(ctx).Info().Str("correlation_id", cid).Msg("dispatching step")
//
// # Configuration
//
// Environment Variables:
//
//	LOG_LEVEL   - Minimum log level: trace, debug, info, warn, error (default: info)
//	LOG_FORMAT  - Output format: json, console (default: json)
//	LOG_CALLER  - Include caller file:line: true, false (default: false)
//
// Programmatic Configuration:
//
//	logging.Init(logging.Config{
//	    Level:     "debug",    // trace, debug, info, warn, error, fatal
//	    Format:    "console",  // json or console
//	    Caller:    true,       // Include caller info
//	    Timestamp: true,       // Include timestamps
//	    Output:    os.Stderr,  // Output writer
//	})
//
// # Log Levels
//
// Supported log levels (from most to least verbose):
//
//	trace  - Very detailed diagnostic information
//	debug  - Detailed diagnostic information
//	info   - General operational information (default)
//	warn   - Warning conditions that should be addressed
//	error  - Error conditions requiring attention
//	fatal  - Fatal errors that terminate the program
//	panic  - Panic conditions that crash the program
//
// # Structured Logging Best Practices
//
// Always terminate log chains with .Msg() or .Send():
//
//	logging.Info().Str("key", "value").Msg("message")  // Correct
//	logging.Info().Str("key", "value")                 // WRONG - log not emitted
//
// Use structured fields instead of string formatting:
//
//	// Good - structured, searchable, efficient
//	logging.Info().
//	    Str("model_id", modelID).
//	    Int64("timestamp", ts).
//	    Dur("elapsed", duration).
//	    Msg("step completed")
//
//	// Avoid - unstructured, harder to parse
//	logging.Info().Msgf("Model %s completed step at %d in %v", modelID, ts, duration)
//
// # Component Loggers
//
// Create component-specific loggers with default fields:
//
//	orchLogger := logging.With().Str("component", "orchestrator").Logger()
//	orchLogger.Info().Msg("starting run")
//	orchLogger.Error().Err(err).Msg("run failed")
//
// # Context-Aware Logging
//
// Propagate a correlation ID (a run, or a single timestamp's dispatch) through logging:
//
//	logger := logging.Ctx(ctx)
//	logger.Info().Msg("dispatching NEW_TIME")
//
// # slog Adapter
//
// The package provides an slog adapter for libraries that require slog.Logger:
//
//	slogLogger := logging.NewSlogLogger()
//	// Use slogLogger with the suture supervisor tree's EventHook
//
// # Access Logging
//
// Status-API authentication and model-secret access should use the
// AccessLogger, which automatically redacts tokens and secrets:
//
//	access := logging.NewAccessLogger()
//	access.LogAuthFailure(clientIP, userAgent, "invalid bearer token")
//
// # Output Formats
//
// JSON Format (Production):
//
//	{"level":"info","time":"2026-01-03T10:30:00Z","message":"step completed","model_id":"traffic"}
//
// Console Format (Development):
//
//	10:30:00 INF step completed model_id=traffic
//
// # Thread Safety
//
// All exported functions are safe for concurrent use. The global logger
// is protected by sync.RWMutex for configuration changes.
//
// # Testing
//
// Create test loggers that capture output:
//
//	var buf bytes.Buffer
//	logger := logging.NewTestLogger(&buf)
//	logger.Info().Msg("test message")
//	output := buf.String()
//
// # See Also
//
//   - github.com/rs/zerolog: Underlying logging library
//   - github.com/thejerf/sutureslog: slog bridge consumed by the supervisor tree
package logging
