// Movici Simulation Core
// Copyright 2026 Movici Simulation Core Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/movici/simulation-core

/*
Package metrics provides Prometheus metrics collection and export for the
simulation core.

# Overview

The package provides metrics for:
  - Orchestrator step cadence and Timeline depth
  - Model connector call latency and circuit breaker state
  - Data mask / pub-sub matrix fan-out
  - Update-Data and Init-Data service request latency and size
  - Transport (NATS) publish/consume counts and protocol violations
  - Supervisor tree service counts and restarts
  - Status API request latency and connected WebSocket clients

# Metrics Endpoint

Metrics are exposed at the status API's /metrics endpoint in Prometheus text format:

	curl http://localhost:8080/metrics

# Recording Helpers

Each metric has a small recording function (RecordStep, RecordModelCall,
RecordFanout, ...) so callers never touch label ordering directly. Label
values are always a small, known set (model id, subject, layer) — never raw
error text or user-controlled strings — to keep cardinality bounded.

# See Also

  - github.com/prometheus/client_golang: Underlying Prometheus client library
*/
package metrics
