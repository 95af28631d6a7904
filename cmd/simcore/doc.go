// Movici Simulation Core
// Copyright 2026 Movici Simulation Core Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/movici/simulation-core

// Package main is the entry point for the Movici Simulation Core.
//
// Simulation Core runs a scenario of event-driven models against a
// shared tracked-state dataset, coordinated over an embedded NATS bus.
// Each model runs behind a Model Connector that speaks the
// NEW_TIME/UPDATE/UPDATE_SERIES/END protocol with the Orchestrator; the
// Init-Data and Update-Data services answer dataset-resolution and
// scratch-storage requests from those connectors over the same bus. A
// status HTTP/WebSocket API exposes run health and a live event feed to
// an operator.
//
// # Application Architecture
//
// The process wires its components in the following order:
//
//  1. Configuration: layered load via Koanf (defaults -> YAML file -> environment)
//  2. Logging: zerolog, bridged to slog for the supervisor tree's event hook
//  3. Supervisor tree: three layers - transport, orchestrator, connectors
//  4. Transport: the embedded NATS bus, plus the Init-Data and Update-Data services
//  5. Model connectors: one per configured model, registered from a Registry of factories
//  6. Orchestrator: drives simulation rounds across every connector
//  7. WebSocket hub and bridge: mirror bus traffic to connected dashboard clients
//  8. Status API: health, operator login, and the WebSocket upgrade endpoint
//
// # Configuration
//
// Configuration is loaded via Koanf with layered sources (highest
// priority wins):
//   - Environment variables, prefixed SIMCORE_ (see internal/config)
//   - A YAML config file (SIMCORE_CONFIG_PATH, or a default search path)
//   - Built-in defaults
//
// # Signal Handling
//
// The process handles graceful shutdown on SIGINT and SIGTERM: it
// cancels the root context, lets the supervisor tree stop every
// connector, the orchestrator, and the transport layer within
// ShutdownTimeout, and reports any service that failed to stop in
// time.
package main
