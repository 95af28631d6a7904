// Movici Simulation Core
// Copyright 2026 Movici Simulation Core Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/movici/simulation-core

/*
Package services provides suture.Service wrappers for simulation core
components whose native lifecycle is not already Serve(ctx) shaped.

This package adapts components to the suture v4 supervision model,
translating Start/Shutdown and ListenAndServe lifecycle patterns into
suture's context-aware Serve pattern.

# Overview

Each wrapper implements the suture.Service interface:

	type Service interface {
	    Serve(ctx context.Context) error
	}

The wrappers handle:
  - Lifecycle translation (Start/Shutdown or ListenAndServe to Serve)
  - Graceful shutdown via context cancellation
  - Error propagation for supervisor restart decisions
  - Service identification via fmt.Stringer

# Available Services

NATS Transport (NATSTransportService):
  - Wraps the embedded NATS server plus the Init-Data and Update-Data
    subscribers as a single transport-layer service
  - Converts the Start/Shutdown pattern to Serve

HTTP Server (HTTPServerService):
  - Wraps *http.Server with graceful shutdown
  - Converts the ListenAndServe pattern to Serve
  - Configurable shutdown timeout for draining status API connections

WebSocket Hub (WebSocketHubService):
  - Wraps the status API's websocket.Hub with context support
  - Handles client connection cleanup on shutdown

Model connector services (one per registered model) implement
suture.Service directly in internal/modelconnector rather than going
through a wrapper here, since their Serve method is also what runs
inside a spawned model subprocess's main.

# Usage Example

Creating and registering services:

	import (
	    "net/http"
	    "time"

	    "github.com/movici/simulation-core/internal/supervisor"
	    "github.com/movici/simulation-core/internal/supervisor/services"
	)

	func setupSupervisor(bus *transport.Bus, server *http.Server, hub *websocket.Hub) {
	    tree, _ := supervisor.NewSupervisorTree(logger, config)

	    tree.AddTransportService(services.NewNATSTransportService(bus))
	    tree.AddTransportService(services.NewHTTPServerService(server, 10*time.Second))
	    tree.AddTransportService(services.NewWebSocketHubService(hub))

	    tree.Serve(ctx)
	}

# Lifecycle Patterns

The package handles two lifecycle patterns:

Start/Shutdown Pattern:

	type StartStopper interface {
	    Start(ctx context.Context) error
	    Shutdown(ctx context.Context)
	}

	// Wrapped as:
	func (s *Service) Serve(ctx context.Context) error {
	    if err := s.component.Start(ctx); err != nil {
	        return err
	    }
	    <-ctx.Done()
	    s.component.Shutdown(shutdownCtx)
	    return ctx.Err()
	}

ListenAndServe Pattern:

	type Listener interface {
	    ListenAndServe() error
	    Shutdown(ctx context.Context) error
	}

	// Wrapped as:
	func (s *Service) Serve(ctx context.Context) error {
	    go s.server.ListenAndServe()
	    <-ctx.Done()
	    return s.server.Shutdown(shutdownCtx)
	}

# Error Handling

Return values determine supervisor behavior:

	nil         -> Service stopped cleanly, will not restart
	error       -> Service crashed, supervisor will restart
	ctx.Err()   -> Shutdown requested, normal termination

# Service Identification

All services implement fmt.Stringer for logging:

	func (s *HTTPServerService) String() string {
	    return "http-server"
	}

Suture uses this for log messages:

	INFO http-server: starting
	INFO http-server: stopped
	ERROR http-server: restarting after failure

# Thread Safety

All service wrappers are safe for concurrent use:
  - State is protected by mutexes where needed
  - Context cancellation is handled atomically
  - Multiple Serve calls are not supported (undefined behavior)

# See Also

  - internal/supervisor: SupervisorTree that manages these services
  - github.com/thejerf/suture/v4: Underlying supervision library
  - internal/transport: Embedded NATS bus wrapped by NATSTransportService
*/
package services
