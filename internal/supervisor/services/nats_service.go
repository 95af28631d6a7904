// Movici Simulation Core
// Copyright 2026 Movici Simulation Core Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/movici/simulation-core

package services

import (
	"context"
	"fmt"
	"time"
)

// TransportRunner matches the lifecycle of the embedded NATS server plus its
// Init-Data and Update-Data subscribers.
//
// This interface allows NATSTransportService to work with the transport
// bundle without importing internal/transport, avoiding a dependency cycle
// between the supervisor and the packages it supervises.
//
// Satisfied by *transport.Bus from internal/transport:
//   - Start(ctx context.Context) error - starts the embedded server and subscribers
//   - Shutdown(ctx context.Context) - drains and stops the embedded server
//   - IsRunning() bool - reports current connection state
type TransportRunner interface {
	Start(ctx context.Context) error
	Shutdown(ctx context.Context)
	IsRunning() bool
}

// NATSTransportService wraps the embedded NATS transport bundle as a
// supervised service.
//
// It adapts the Start/Shutdown lifecycle pattern to suture's Serve pattern:
//  1. Calls Start(ctx) to bring up the embedded server and subscribers
//  2. Waits for context cancellation
//  3. Calls Shutdown(ctx) for graceful cleanup
//
// Example usage:
//
//	bus, _ := transport.NewBus(cfg)
//	svc := services.NewNATSTransportService(bus)
//	tree.AddTransportService(svc)
type NATSTransportService struct {
	transport       TransportRunner
	shutdownTimeout time.Duration
	name            string
}

// NewNATSTransportService creates a new transport service wrapper with a
// default 10 second shutdown timeout.
func NewNATSTransportService(transport TransportRunner) *NATSTransportService {
	return &NATSTransportService{
		transport:       transport,
		shutdownTimeout: 10 * time.Second,
		name:            "nats-transport",
	}
}

// NewNATSTransportServiceWithTimeout creates a transport service with a
// custom shutdown timeout.
func NewNATSTransportServiceWithTimeout(transport TransportRunner, shutdownTimeout time.Duration) *NATSTransportService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	return &NATSTransportService{
		transport:       transport,
		shutdownTimeout: shutdownTimeout,
		name:            "nats-transport",
	}
}

// Serve implements suture.Service.
//
// If Start() fails, the error is returned immediately, causing suture to
// restart the service according to its backoff policy.
func (s *NATSTransportService) Serve(ctx context.Context) error {
	if err := s.transport.Start(ctx); err != nil {
		return fmt.Errorf("transport start failed: %w", err)
	}

	<-ctx.Done()

	// Shutdown with timeout - use fresh context since original is canceled
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	s.transport.Shutdown(shutdownCtx)

	return ctx.Err()
}

// String implements fmt.Stringer for logging.
// Suture uses this to identify the service in log messages.
func (s *NATSTransportService) String() string {
	return s.name
}
